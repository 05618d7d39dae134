// Package clock thinly wraps coder/quartz.Clock so the turn scheduler and
// hand-complete auto-advance delay are deterministically testable without
// real sleeps, grounded on lox-pokerforbots' test-clock pattern.
package clock

import "github.com/coder/quartz"

// Clock is the subset of quartz.Clock the core actually uses.
type Clock = quartz.Clock

// NewReal returns a wall-clock backed Clock for production use.
func NewReal() Clock { return quartz.NewReal() }

// Tests construct a mock clock directly via quartz.NewMock(t) (quartz ties
// mock-timer leak detection to *testing.T, so no wrapper is provided here).
