// Package statemachine is a small generic Rob Pike-style state function
// engine: a state is a function of the entity that returns the next state
// function (or nil to terminate). internal/table uses it to drive each
// seat's occupancy lifecycle (active / zero-stack / evicted); hand-phase
// transitions are instead driven directly by the table's command executor,
// which already linearizes every transition through a single inbox.
package statemachine

import "sync"

// Event identifies why a callback fired.
type Event int

const (
	Entered Event = iota
	Exited
)

// Callback observes transitions; it may be nil.
type Callback func(state string, event Event)

// Fn is a state function: given the entity and an optional callback, it
// performs the state's work and returns the next state function.
type Fn[T any] func(entity *T, cb Callback) Fn[T]

// Machine is a thread-safe holder of the current state function for an
// entity of type T.
type Machine[T any] struct {
	mu     sync.RWMutex
	entity *T
	state  Fn[T]
}

// New creates a machine with the given initial state.
func New[T any](entity *T, initial Fn[T]) *Machine[T] {
	return &Machine[T]{entity: entity, state: initial}
}

// Dispatch invokes the current state function once and stores the state it
// returns. A nil current state is a no-op (the machine has terminated).
func (m *Machine[T]) Dispatch(cb Callback) {
	m.mu.Lock()
	cur := m.state
	m.mu.Unlock()

	if cur == nil {
		return
	}

	next := cur(m.entity, cb)

	m.mu.Lock()
	m.state = next
	m.mu.Unlock()
}

// Set forces a transition and immediately dispatches it once so the new
// state's entry logic (if any) runs.
func (m *Machine[T]) Set(state Fn[T]) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
	m.Dispatch(nil)
}

// Current returns the current state function, or nil if terminated.
func (m *Machine[T]) Current() Fn[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Terminated reports whether the machine has reached a nil (terminal) state.
func (m *Machine[T]) Terminated() bool {
	return m.Current() == nil
}
