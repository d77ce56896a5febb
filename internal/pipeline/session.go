package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBusy is returned when a submission arrives while another is in flight
var ErrBusy = errors.New("an analysis is already in progress")

// State is the lifecycle position of a Session
type State int

const (
	StateIdle State = iota
	StateAnalyzing
	StateComplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Analyzer runs one submission to completion
type Analyzer interface {
	Analyze(ctx context.Context, sub Submission) (*Outcome, error)
}

// Session allows one analysis in flight at a time. A finished analysis,
// successful or not, stays visible until the caller resets or submits again.
type Session struct {
	analyzer Analyzer

	mu      sync.Mutex
	state   State
	outcome *Outcome
	err     error
}

// NewSession creates an idle session
func NewSession(a Analyzer) *Session {
	return &Session{analyzer: a}
}

// Submit runs sub and blocks until it finishes. It returns ErrBusy without
// side effects while another submission is analyzing.
func (s *Session) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	s.mu.Lock()
	if s.state == StateAnalyzing {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.state = StateAnalyzing
	s.outcome, s.err = nil, nil
	s.mu.Unlock()

	// A panicking analyzer must not leave the session analyzing forever
	defer func() {
		if r := recover(); r != nil {
			s.finish(nil, fmt.Errorf("analysis aborted: %v", r))
			panic(r)
		}
	}()

	out, err := s.analyzer.Analyze(ctx, sub)
	s.finish(out, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) finish(out *Outcome, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.outcome, s.err = nil, err
		return
	}
	s.state = StateComplete
	s.outcome, s.err = out, nil
}

// Reset discards the last outcome and returns to idle. It has no effect
// while an analysis is in flight.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAnalyzing {
		return
	}
	s.state = StateIdle
	s.outcome, s.err = nil, nil
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns the outcome or error of the most recent finished analysis
func (s *Session) Last() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.err
}
