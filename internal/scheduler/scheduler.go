// Package scheduler implements the per-table turn deadline (C6): a single
// cancellable, at-most-once timer per table, grounded on the teacher's
// scheduleAutoStart/autoStartTimer pattern (pkg/server/lobby.go) and
// generalized from "schedule next hand" to "schedule this actor's
// deadline," and on lox-pokerforbots' use of coder/quartz for a testable
// clock.
package scheduler

import (
	"sync"
	"time"

	"github.com/vctt94/pokertable/internal/clock"
)

// Scheduler owns at most one outstanding timer at a time. Firing invokes
// the callback with the generation number active when it was scheduled;
// callers discard fires whose generation no longer matches (the
// linearization rule of spec.md §5: "whichever arrived first wins and the
// other is discarded if now moot").
type Scheduler struct {
	clock clock.Clock

	mu         sync.Mutex
	timer      stoppableTimer
	generation uint64
}

// stoppableTimer abstracts quartz's timer handle so this file doesn't need
// to name the concrete quartz type beyond clock.Clock.
type stoppableTimer interface {
	Stop() bool
}

// New builds a Scheduler driven by clk (production: clock.NewReal();
// tests: a quartz.Mock passed through the clock.Clock interface).
func New(clk clock.Clock) *Scheduler {
	return &Scheduler{clock: clk}
}

// Schedule cancels any outstanding timer and starts a new one that invokes
// fire(generation) after d. The returned generation uniquely identifies
// this deadline; fire is invoked at most once.
func (s *Scheduler) Schedule(d time.Duration, fire func(generation uint64)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	gen := s.generation
	s.timer = s.clock.AfterFunc(d, func() { fire(gen) })
	return gen
}

// Cancel stops any outstanding timer without starting a new one and
// advances the generation, so a fire for the cancelled deadline that is
// already in flight fails the caller's generation check.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

// CurrentGeneration returns the current generation (the one returned by
// the most recent Schedule, or a newer one if Cancel ran after it), for
// callers validating a fired callback.
func (s *Scheduler) CurrentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
