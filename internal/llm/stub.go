package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// StubClient is a deterministic, scriptable Client used by the pipeline's
// own tests. Responses are keyed by schema, and for the per-chapter schemas
// (boundaries, verify) by the chapter_number metadata key.
type StubClient struct {
	mu sync.Mutex

	Identify   func() (IdentifyResponse, error)
	Boundaries func(chapterNumber int) (BoundariesResponse, error)
	Verify     func(chapterNumber int) (VerifyResponse, error)

	calls []CompletionRequest
}

// NewStubClient creates an empty stub; callers set the Identify/Boundaries/
// Verify fields to script responses.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Calls returns every request the stub has received, in order.
func (s *StubClient) Calls() []CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CompletionRequest, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *StubClient) record(req CompletionRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
}

// Name implements Client.
func (s *StubClient) Name() string { return "stub" }

// Complete implements Client by dispatching to the scripted function for
// the request's schema.
func (s *StubClient) Complete(ctx context.Context, req CompletionRequest) (json.RawMessage, error) {
	s.record(req)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch req.SchemaName {
	case SchemaIdentify:
		if s.Identify == nil {
			return nil, fmt.Errorf("stub: no Identify function configured")
		}
		resp, err := s.Identify()
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)

	case SchemaBoundaries:
		if s.Boundaries == nil {
			return nil, fmt.Errorf("stub: no Boundaries function configured")
		}
		n, err := chapterNumberOf(req)
		if err != nil {
			return nil, err
		}
		resp, err := s.Boundaries(n)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)

	case SchemaVerify:
		if s.Verify == nil {
			return nil, fmt.Errorf("stub: no Verify function configured")
		}
		n, err := chapterNumberOf(req)
		if err != nil {
			return nil, err
		}
		resp, err := s.Verify(n)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)

	default:
		return nil, fmt.Errorf("stub: unknown schema %q", req.SchemaName)
	}
}

func chapterNumberOf(req CompletionRequest) (int, error) {
	raw, ok := req.Metadata["chapter_number"]
	if !ok {
		return 0, fmt.Errorf("stub: request missing chapter_number metadata")
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return 0, fmt.Errorf("stub: invalid chapter_number metadata %q: %w", raw, err)
	}
	return n, nil
}
