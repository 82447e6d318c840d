package llm

import (
	"context"
	"strings"
	"sync"
)

// Mock is a scripted provider for tests and dry runs
type Mock struct {
	Fragments []string
	Err       error // returned by Complete and Stream
	StreamErr error // delivered as an event after the fragments
	FailFirst int   // number of calls that fail with Err before succeeding

	// Hold, when set, blocks each call until it is closed or ctx is done
	Hold chan struct{}

	mu       sync.Mutex
	calls    int
	requests []*CompletionRequest
}

func (m *Mock) Name() string {
	return "mock"
}

func (m *Mock) Ping(ctx context.Context) error {
	return nil
}

// Calls returns the number of Complete and Stream invocations
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns the requests seen so far
func (m *Mock) Requests() []*CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*CompletionRequest(nil), m.requests...)
}

func (m *Mock) begin(ctx context.Context, req *CompletionRequest) error {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Hold != nil {
		select {
		case <-m.Hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.Err != nil && (m.FailFirst == 0 || n <= m.FailFirst) {
		return m.Err
	}
	return ctx.Err()
}

func (m *Mock) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := m.begin(ctx, req); err != nil {
		return nil, err
	}
	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	return &CompletionResponse{
		Content:      strings.Join(m.Fragments, ""),
		Model:        "mock",
		FinishReason: "stop",
	}, nil
}

func (m *Mock) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	if err := m.begin(ctx, req); err != nil {
		return nil, err
	}

	events := make(chan StreamEvent)

	go func() {
		defer close(events)

		for _, f := range m.Fragments {
			if !send(ctx, events, StreamEvent{Chunk: f}) {
				return
			}
		}
		if m.StreamErr != nil {
			send(ctx, events, StreamEvent{Error: m.StreamErr})
			return
		}
		send(ctx, events, StreamEvent{Done: true})
	}()

	return events, nil
}
