package conversation

import "strings"

// IntentMatcher decides whether an utterance triggers a canned intent.
type IntentMatcher func(utterance string) bool

// CannedIntent pairs a matcher with a fixed reply. Canned intents are
// evaluated in priority order before any LLM call, guaranteeing
// deterministic answers for known non-booking queries.
type CannedIntent struct {
	Name  string
	Match IntentMatcher
	Reply string
}

// IntentRouter evaluates a prioritized list of canned intents.
type IntentRouter struct {
	intents []CannedIntent
}

// NewIntentRouter builds a router over the given intents, evaluated in the
// order supplied.
func NewIntentRouter(intents ...CannedIntent) *IntentRouter {
	return &IntentRouter{intents: intents}
}

// Route returns the first matching canned reply, if any.
func (r *IntentRouter) Route(utterance string) (*CannedIntent, bool) {
	for i := range r.intents {
		if r.intents[i].Match(utterance) {
			return &r.intents[i], true
		}
	}
	return nil, false
}

// ContainsAll matches when every keyword appears in the utterance,
// case-insensitively.
func ContainsAll(keywords ...string) IntentMatcher {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return func(utterance string) bool {
		u := strings.ToLower(utterance)
		for _, k := range lowered {
			if !strings.Contains(u, k) {
				return false
			}
		}
		return true
	}
}

// DefaultIntents are the canned intents the assistant ships with.
func DefaultIntents() []CannedIntent {
	return []CannedIntent{
		{
			Name:  "branch_locator",
			Match: ContainsAll("where", "branch"),
			Reply: "We have branches in Brooklyn, Manhattan, and New York. All three are open weekdays 9 AM to 5 PM - just tell me which one suits you and I can book you in.",
		},
		{
			Name:  "opening_hours",
			Match: ContainsAll("opening hours"),
			Reply: "Our branches are open Monday through Friday, 9 AM to 5 PM.",
		},
	}
}
