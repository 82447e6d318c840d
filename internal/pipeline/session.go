package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sant0-9/reportgenie/internal/errs"
)

// Session allows at most one request in flight. A second Submit while one is
// running fails with errs.KindBusy instead of queueing.
type Session struct {
	pipeline *Pipeline
	busy     atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	last   *Artifact
}

func NewSession(p *Pipeline) *Session {
	return &Session{pipeline: p}
}

// Busy reports whether a request is running
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Submit runs req on the session's pipeline
func (s *Session) Submit(ctx context.Context, req Request) (*Artifact, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, errs.New(errs.KindBusy, "a report is already being generated")
	}
	defer s.busy.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	artifact, err := s.pipeline.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = artifact
	s.mu.Unlock()
	return artifact, nil
}

// Cancel abandons the running request, if any
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Last returns the most recent artifact, or nil
func (s *Session) Last() *Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Reset forgets the last artifact
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
}
