package conversation

import (
	"context"
	"encoding/json"
	"strings"
)

// OptionNotFound is the sentinel the option extractor emits when the reply
// contains nothing selectable. Callers fall back to free-text input.
const OptionNotFound = "NotFound"

// OtherOption is the fixed trailing choice appended to every extracted set
// so the user can always escape back to free text.
const OtherOption = "Other"

const maxOptions = 3

const optionExtractorPrompt = `Below is an assistant's reply in a bank appointment chat. Extract up to 3
short choices the customer could tap as quick replies (e.g. proposed times,
branches, or yes/no answers). Each choice must be at most five words.

If the reply contains nothing selectable, respond with exactly: NotFound

Otherwise respond with a single JSON object and nothing else:
{"options": ["<choice>", "<choice>", "<choice>"]}

Assistant's reply:
%s`

// OptionExtractor turns an assistant reply into quick-reply chips. This is a
// deliberate second LLM round-trip over the first model's output: it keeps
// the primary booking prompt focused while still producing UI-friendly
// buttons.
type OptionExtractor struct {
	client LLMClient
	model  string
}

// NewOptionExtractor creates an option extractor over the given client.
func NewOptionExtractor(client LLMClient, model string) *OptionExtractor {
	if client == nil {
		panic("conversation: llm client cannot be nil")
	}
	return &OptionExtractor{client: client, model: model}
}

// ExtractOptions returns at most three selectable options plus the fixed
// trailing Other choice. An empty slice means nothing was extractable and
// the caller must fall back to free-text input.
func (e *OptionExtractor) ExtractOptions(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	prompt := strings.Replace(optionExtractorPrompt, "%s", text, 1)
	resp, err := e.client.Complete(ctx, LLMRequest{
		Model:       e.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   120,
		Temperature: 0,
	})
	if err != nil {
		return nil, &LLMUnavailableError{Err: err}
	}

	return ParseOptions(resp.Text), nil
}

// ParseOptions interprets the extractor model's answer. Exported for tests
// and for callers that already hold a completion.
func ParseOptions(text string) []string {
	if strings.Contains(text, OptionNotFound) {
		return nil
	}

	raw, _, ok := extractJSONObject(text)
	if !ok {
		return nil
	}

	var payload struct {
		Options []string `json:"options"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	options := make([]string, 0, maxOptions+1)
	for _, opt := range payload.Options {
		if opt = strings.TrimSpace(opt); opt == "" || strings.EqualFold(opt, OtherOption) {
			continue
		}
		options = append(options, opt)
		if len(options) == maxOptions {
			break
		}
	}
	if len(options) == 0 {
		return nil
	}
	return append(options, OtherOption)
}
