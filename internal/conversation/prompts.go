package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

const chatSystemPrompt = `You are the appointment concierge for a retail bank. Your only job is to
help the customer settle on a reason, date, time, and branch for a bank
appointment, and optionally a preferred banker.

Branches: Brooklyn, Manhattan, New York.

ALWAYS respond with a single JSON object of exactly this shape and nothing
else:

{
  "response": "<what you want to say to the customer>",
  "appointmentDetails": {
    "reason": "<purpose of the visit, or empty string>",
    "date": "<YYYY-MM-DD, or empty string>",
    "time": "<HH:MM 24-hour or h:mm AM/PM, or empty string>",
    "location": "<Brooklyn | Manhattan | New York, or empty string>",
    "banker": "<staff identifier like staff-ab12, or empty string>"
  }
}

Rules:
- Fill appointmentDetails only with what the customer actually said, in this
  or an earlier message. Never invent values.
- Dates must be concrete YYYY-MM-DD. Resolve relative phrases ("tomorrow",
  "next Tuesday") against the current date given below.
- If something is still missing, ask for it in "response" - one or two
  friendly sentences, no markdown.
- If the customer names a banker, only use their staff identifier when it was
  mentioned; never fabricate one.
- Keep replies short. This is a chat widget, not a letter.`

// guided-step prompts each demand exactly one structured array so the flow
// never has to guess what the model meant.
const guidedTimePrompt = `The customer wants a bank appointment for: %s.
Propose exactly 3 candidate appointment slots within the next two weeks of
%s, during business hours (09:00-17:00 UTC).

Respond with a single JSON object and nothing else:
{"timeSlots": ["<RFC 3339 timestamp>", "<RFC 3339 timestamp>", "<RFC 3339 timestamp>"]}`

const guidedLocationPrompt = `The customer booked a %s on %s.
Offer the available branches for this appointment.

Respond with a single JSON object and nothing else:
{"locationOptions": ["Brooklyn", "Manhattan", "New York"]}`

const guidedConfirmPrompt = `Write one short, friendly confirmation summary for this bank appointment
and ask the customer to confirm. No markdown, no JSON, two sentences at most.

Reason: %s
When: %s
Branch: %s%s`

// buildChatSystem grounds the model in the current date plus whatever the
// context assembler knows about the customer.
func buildChatSystem(contextBlock string, now time.Time) []string {
	system := []string{
		chatSystemPrompt,
		fmt.Sprintf("Current date: %s.", now.UTC().Format("Monday, 2006-01-02")),
	}
	if strings.TrimSpace(contextBlock) != "" {
		system = append(system, contextBlock)
	}
	return system
}

func buildGuidedTimePrompt(reason string, now time.Time) string {
	return fmt.Sprintf(guidedTimePrompt, reason, now.UTC().Format("2006-01-02"))
}

func buildGuidedLocationPrompt(reason string, ts time.Time) string {
	return fmt.Sprintf(guidedLocationPrompt, reason, appointment.FormatTimestamp(ts))
}

func buildGuidedConfirmPrompt(slots appointment.SlotSet) string {
	banker := ""
	if slots.BankerID != "" {
		banker = fmt.Sprintf("\nBanker: %s", slots.BankerID)
	}
	when := ""
	if slots.Timestamp != nil {
		when = appointment.FormatTimestamp(*slots.Timestamp)
	}
	return fmt.Sprintf(guidedConfirmPrompt, slots.Reason, when, slots.Location, banker)
}
