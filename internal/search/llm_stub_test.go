package search

import (
	"context"

	"github.com/brilliance/research-service/internal/llm"
)

// stubLLM is a scripted llm.Client for pipeline tests. Responses are served
// in order; after the script runs out the last entry repeats.
type stubLLM struct {
	responses []string
	err       error
	calls     []llm.Request
}

func (s *stubLLM) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	idx := len(s.calls) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return &llm.Response{Content: s.responses[idx], Model: "stub"}, nil
}

func (s *stubLLM) Provider() string { return "stub" }

func (s *stubLLM) Model() string { return "stub" }
