// Package store defines the external collaborator interfaces consumed by
// the table core (spec.md §6: Identity, Balance store) and the persisted
// recovery snapshot shape (spec.md §6 "Persisted state"), plus a
// sqlite-backed reference implementation of all three grounded on the
// teacher's pkg/server/db.go + pkg/server/internal/db/db.go.
package store

import (
	"context"
	"errors"

	"github.com/vctt94/pokertable/internal/card"
)

// ErrInsufficientBalance names the insufficient-funds condition. Debit
// reports that condition as ok=false with a nil error (as SQLiteStore.Debit
// does), not as this error; nothing in this module returns it.
var ErrInsufficientBalance = errors.New("store: insufficient balance")

// IdentityVerifier is the out-of-core identity collaborator (spec.md §6):
// verify(authToken) -> playerId before register succeeds.
type IdentityVerifier interface {
	Verify(ctx context.Context, authToken string) (playerID string, err error)
}

// BalanceStore is the out-of-core persistent balance collaborator
// (spec.md §6): the core debits on seat buy-in and credits the remaining
// stack on leave.
type BalanceStore interface {
	Debit(ctx context.Context, playerID string, amount int64) (ok bool, err error)
	Credit(ctx context.Context, playerID string, amount int64) error
	GetBalance(ctx context.Context, playerID string) (int64, error)
}

// SeatSnapshot mirrors one seat's recoverable state (spec.md §6
// "Persisted state (recovery)").
type SeatSnapshot struct {
	Index          int
	Seated         bool
	PlayerID       string
	Name           string
	Stack          int64
	Committed      int64
	RoundBet       int64
	Hole           []card.Card // 0 or 2
	SittingOut     bool
	Folded         bool
	AllIn          bool
	ActedThisRound bool
}

// TableSnapshot is a durable snapshot sufficient to resume an active
// table: table id, seats w/ stacks, phase, hand number, deck contents,
// community, per-seat committed/roundBet/hole, currentActor, deadline,
// pots (spec.md §6).
type TableSnapshot struct {
	TableID      string
	CreatorID    string
	Phase        string
	HandNumber   int
	DealerButton int
	SmallBlind   int64
	BigBlind     int64
	CurrentBet   int64
	MinRaise     int64
	DeckCards    []card.Card // remaining, tail-last
	Community    []card.Card
	Seats        []SeatSnapshot
	CurrentActor int // -1 if none
	DeadlineUnix int64
	Pots         []PotLayerSnapshot
}

// PotLayerSnapshot mirrors one pot layer for recovery/display.
type PotLayerSnapshot struct {
	Amount       int64
	EligibleSeat []int
}

// RecoveryStore persists and restores TableSnapshots (spec.md §6:
// "Written at stable points (end of street, end of hand)").
type RecoveryStore interface {
	SaveSnapshot(ctx context.Context, snap TableSnapshot) error
	LoadSnapshot(ctx context.Context, tableID string) (TableSnapshot, bool, error)
	DeleteSnapshot(ctx context.Context, tableID string) error
	AllTableIDs(ctx context.Context) ([]string, error)
}
