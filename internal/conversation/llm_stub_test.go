package conversation

import (
	"context"
	"errors"
)

// scriptedLLM replays canned completions in order and records every request.
type scriptedLLM struct {
	responses []string
	err       error
	requests  []LLMRequest
}

func (s *scriptedLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	if len(s.requests) > len(s.responses) {
		return LLMResponse{}, errors.New("scriptedLLM: no response scripted for request")
	}
	return LLMResponse{
		Text:  s.responses[len(s.requests)-1],
		Usage: TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
	}, nil
}
