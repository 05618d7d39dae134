// Package session implements the Session Registry (C7): maps a player
// identity to its current live connection, with idempotent reconnect and
// presence tracking, per spec.md §4.7. Grounded on
// TylerPetri-P2Poker's internal/table/takeover.go reconnection/ownership-
// transfer pattern (the teacher binds identity via the chat network
// instead, so there is no direct teacher equivalent).
package session

import "sync"

// ID identifies one live connection (a transport-level session handle,
// e.g. a websocket connection id).
type ID string

// Registry maps playerId -> current sessionId. All mutation is through
// lock-protected operations (spec.md §5: "Session Registry ... expose
// only lock-protected or lock-free atomic operations").
type Registry struct {
	mu       sync.RWMutex
	current  map[string]ID
	onEvict  func(playerID string, evicted ID)
}

// New creates an empty Registry. onEvict, if non-nil, is invoked
// (outside the lock) whenever Register replaces a still-live prior
// session, so the caller can signal that session to close (spec.md §4.7:
// "signals the prior session to close").
func New(onEvict func(playerID string, evicted ID)) *Registry {
	return &Registry{current: make(map[string]ID), onEvict: onEvict}
}

// Register binds playerID to sessionID, replacing any previous mapping.
// Returns the previous sessionID and whether one existed.
func (r *Registry) Register(playerID string, sessionID ID) (prev ID, hadPrev bool) {
	r.mu.Lock()
	prev, hadPrev = r.current[playerID]
	r.current[playerID] = sessionID
	r.mu.Unlock()

	if hadPrev && prev != sessionID && r.onEvict != nil {
		r.onEvict(playerID, prev)
	}
	return prev, hadPrev
}

// Deregister removes playerID's mapping only if it still points at
// sessionID (an already-replaced mapping must not be clobbered by a late
// deregister of the old session).
func (r *Registry) Deregister(playerID string, sessionID ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.current[playerID]; ok && cur == sessionID {
		delete(r.current, playerID)
	}
}

// Lookup returns playerID's current sessionID, if any.
func (r *Registry) Lookup(playerID string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.current[playerID]
	return id, ok
}

// PlayerForSession reverse-looks-up which player (if any) currently owns
// sessionID, for handling a disconnect event keyed only by session.
func (r *Registry) PlayerForSession(sessionID ID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for p, s := range r.current {
		if s == sessionID {
			return p, true
		}
	}
	return "", false
}

// Present reports whether playerID currently has a live session.
func (r *Registry) Present(playerID string) bool {
	_, ok := r.Lookup(playerID)
	return ok
}
