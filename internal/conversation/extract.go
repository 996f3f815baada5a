package conversation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

// turnPayload is the shape the chat system prompt demands from the model.
type turnPayload struct {
	Response           string                `json:"response"`
	AppointmentDetails appointment.Extracted `json:"appointmentDetails"`
}

// guidedPayload covers the structured arrays the guided-flow prompts demand.
type guidedPayload struct {
	TimeSlots       []string `json:"timeSlots"`
	LocationOptions []string `json:"locationOptions"`
}

// TurnParse is the tagged result of coercing untrusted model output: either
// a parsed payload or the raw text for the caller to degrade gracefully on.
type TurnParse struct {
	Parsed   bool
	Payload  turnPayload
	Strategy string
	Raw      string
}

// parserStrategy is one attempt at pulling a JSON object out of free text.
// Strategies run in order; the first hit wins. This is an explicit chain,
// not nested error recovery.
type parserStrategy struct {
	name    string
	extract func(text string) (json.RawMessage, bool)
}

var fencedBlockRE = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?})\\s*```")

var parserStrategies = []parserStrategy{
	{
		name: "direct",
		extract: func(text string) (json.RawMessage, bool) {
			trimmed := strings.TrimSpace(text)
			if !strings.HasPrefix(trimmed, "{") {
				return nil, false
			}
			if !json.Valid([]byte(trimmed)) {
				return nil, false
			}
			return json.RawMessage(trimmed), true
		},
	},
	{
		name: "fenced",
		extract: func(text string) (json.RawMessage, bool) {
			m := fencedBlockRE.FindStringSubmatch(text)
			if m == nil || !json.Valid([]byte(m[1])) {
				return nil, false
			}
			return json.RawMessage(m[1]), true
		},
	},
	{
		name: "balanced",
		extract: func(text string) (json.RawMessage, bool) {
			for start := 0; start < len(text); start++ {
				if text[start] != '{' {
					continue
				}
				if candidate, ok := balancedObjectAt(text, start); ok && json.Valid([]byte(candidate)) {
					return json.RawMessage(candidate), true
				}
			}
			return nil, false
		},
	},
}

// balancedObjectAt returns the substring from start to its matching closing
// brace, tracking strings so braces inside quoted values don't count.
func balancedObjectAt(text string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// extractJSONObject runs the strategy chain over raw model text.
func extractJSONObject(text string) (json.RawMessage, string, bool) {
	for _, strat := range parserStrategies {
		if raw, ok := strat.extract(text); ok {
			return raw, strat.name, true
		}
	}
	return nil, "unparseable", false
}

// ParseTurnPayload coerces a chat-turn completion into the expected payload.
// Total failure degrades to an unparsed result carrying the raw text; the
// turn continues with empty details rather than crashing.
func ParseTurnPayload(text string) TurnParse {
	raw, strategy, ok := extractJSONObject(text)
	parseStrategyTotal.WithLabelValues(strategy).Inc()
	if !ok {
		return TurnParse{Raw: text, Strategy: strategy}
	}

	var payload turnPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		parseStrategyTotal.WithLabelValues("unparseable").Inc()
		return TurnParse{Raw: text, Strategy: "unparseable"}
	}
	return TurnParse{Parsed: true, Payload: payload, Strategy: strategy, Raw: text}
}

// parseGuidedPayload pulls the structured arrays out of a guided-step
// completion using the same strategy chain.
func parseGuidedPayload(text string) (guidedPayload, bool) {
	raw, _, ok := extractJSONObject(text)
	if !ok {
		return guidedPayload{}, false
	}
	var payload guidedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return guidedPayload{}, false
	}
	return payload, true
}
