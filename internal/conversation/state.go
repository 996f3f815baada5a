package conversation

import (
	"time"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

// GuidedStep is the explicit position in the guided booking wizard. It is
// tracked in state, never re-derived by parsing the transcript.
type GuidedStep string

const (
	StepNone         GuidedStep = ""
	StepReason       GuidedStep = "reason"
	StepTime         GuidedStep = "time"
	StepLocation     GuidedStep = "location"
	StepConfirmation GuidedStep = "confirmation"
	StepCompleted    GuidedStep = "completed"
)

// TurnEntry is one line of the session transcript. The transcript grounds
// the LLM and replays into the UI; it is append-only within a session.
type TurnEntry struct {
	Speaker   string    `json:"speaker"` // user, assistant, or system
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ProposedSlot is a bookable candidate offered to the user, either by the
// guided flow or as a conflict alternative.
type ProposedSlot struct {
	Timestamp time.Time            `json:"timestamp"`
	Location  appointment.Location `json:"location"`
	Display   string               `json:"display"`
}

// ConversationState is everything the dialogue engine knows about one
// session. It is an explicit value passed through each turn and persisted by
// the injected session store; there is no hidden shared mutable state.
type ConversationState struct {
	SessionID string              `json:"sessionId"`
	TurnLog   []TurnEntry         `json:"turnLog"`
	Slots     appointment.SlotSet `json:"slots"`

	GuidedStep GuidedStep `json:"guidedStep,omitempty"`
	// Proposals made by the current guided step, kept so a pick like "the
	// second one" can be resolved without re-asking the model.
	ProposedTimes     []ProposedSlot `json:"proposedTimes,omitempty"`
	ProposedLocations []string       `json:"proposedLocations,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConversationState opens state for a fresh session.
func NewConversationState(sessionID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a transcript line.
func (s *ConversationState) Append(speaker, text string) {
	s.TurnLog = append(s.TurnLog, TurnEntry{
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	s.UpdatedAt = time.Now().UTC()
}

// ChatHistory renders the transcript as LLM messages. System lines are
// internal bookkeeping and stay out of the prompt.
func (s *ConversationState) ChatHistory() []ChatMessage {
	msgs := make([]ChatMessage, 0, len(s.TurnLog))
	for _, entry := range s.TurnLog {
		if entry.Speaker == ChatRoleSystem {
			continue
		}
		msgs = append(msgs, ChatMessage{Role: entry.Speaker, Content: entry.Text})
	}
	return msgs
}

// ResetGuided discards guided-flow progress and the working slots, returning
// the wizard to its initial step.
func (s *ConversationState) ResetGuided() {
	s.Slots.Reset()
	s.ProposedTimes = nil
	s.ProposedLocations = nil
	s.GuidedStep = StepReason
	s.UpdatedAt = time.Now().UTC()
}
