package table

import (
	"context"

	"github.com/vctt94/pokertable/internal/session"
	"github.com/vctt94/pokertable/internal/store"
)

// onJoin seats playerID if there's room and the table is Waiting, per the
// Waiting->Join->Waiting transition of spec.md §4.5. A player may hold at
// most one seat per table (spec.md §9 Open Question, resolved: forbidden).
func (t *Table) onJoin(playerID, name string, buyIn int64) error {
	if t.phase != Waiting {
		return inputErr(CodeWrongPhase, "cannot join table %s outside Waiting (phase=%s)", t.id, t.phase)
	}
	if _, already := t.seatOfPlayer[playerID]; already {
		return inputErr(CodeAlreadySeated, "player %s already seated at table %s", playerID, t.id)
	}
	idx := -1
	for i := range t.seats {
		if !t.seats[i].Seated {
			idx = i
			break
		}
	}
	if idx < 0 {
		return inputErr(CodeTableFull, "table %s has no open seats", t.id)
	}
	if t.balance != nil {
		ok, err := t.balance.Debit(context.Background(), playerID, buyIn)
		if err != nil {
			return stateErr(CodeInvariantViolated, "balance debit failed for %s: %v", playerID, err)
		}
		if !ok {
			return inputErr("insufficient_balance", "player %s cannot afford buy-in %d", playerID, buyIn)
		}
	}
	t.seats[idx] = Seat{Seated: true, PlayerID: playerID, Name: name, Stack: buyIn}
	t.seatOfPlayer[playerID] = idx
	t.publishPublic(eventTableState, t.buildTableStateView())
	return nil
}

// onStart begins the first hand. Creator-only, requires >=2 seats
// (spec.md §4.5: Waiting->Start(by creator, >=2 seats)->Preflop).
func (t *Table) onStart(playerID string) error {
	if playerID != t.creatorID {
		return protocolErr(CodeNotCreator, "only the creator may start table %s", t.id)
	}
	if t.phase != Waiting {
		return inputErr(CodeWrongPhase, "table %s already started (phase=%s)", t.id, t.phase)
	}
	if len(t.fundableSeats()) < 2 {
		return inputErr(CodeNotEnoughSeats, "table %s needs >=2 fundable seats to start", t.id)
	}
	t.beginHand()
	return nil
}

// onLeave removes playerID's seat. Mid-hand it folds first (spec.md §6:
// "leaveTable ... Leave (fold if mid-hand)").
func (t *Table) onLeave(playerID string) error {
	idx, ok := t.seatIndexFor(playerID)
	if !ok {
		return inputErr(CodeSeatNotFound, "player %s is not seated at table %s", playerID, t.id)
	}
	seat := &t.seats[idx]
	if t.isHandInProgress() && seat.HasHole && !seat.Folded {
		seat.Folded = true
		t.appendActionLog(ActionLogEntry{HandNumber: t.handNumber, Seat: idx, Kind: "fold", Phase: t.phase})
		t.checkOnlyOneRemains()
	}
	if t.balance != nil && seat.Stack > 0 {
		// spec.md §7: persistent store failure on a balance credit is
		// retried with bounded backoff, falling back to a reconciliation
		// entry rather than losing the stack or blocking the table.
		store.CreditWithRetry(context.Background(), t.balance, t.reconcil, store.DefaultRetryConfig, playerID, seat.Stack)
	}
	delete(t.seatOfPlayer, playerID)
	t.seats[idx] = Seat{}
	t.publishPublic(eventTableState, t.buildTableStateView())
	if t.allSeatsEmpty() {
		t.phase = Closed
	}
	return nil
}

// onRequestState re-sends sanitized public state plus the requester's own
// hole cards, if any (spec.md §6 requestState).
func (t *Table) onRequestState(playerID string) error {
	t.publishPublic(eventTableState, t.buildTableStateView())
	if idx, ok := t.seatIndexFor(playerID); ok && t.seats[idx].HasHole {
		t.publishPrivateHole(playerID, idx)
	}
	return nil
}

// onReconnect rebinds playerID's seat to sessionID and resends state plus
// private cards (spec.md §4.7). The reconnect-triggered resend is posted
// after anything already queued because it is itself processed through
// the same serial inbox (spec.md §5 ordering guarantee (3)).
func (t *Table) onReconnect(playerID string, sessionID session.ID) error {
	idx, ok := t.seatIndexFor(playerID)
	if !ok {
		return inputErr(CodeSeatNotFound, "player %s is not seated at table %s", playerID, t.id)
	}
	if t.sessions != nil {
		t.sessions.Register(playerID, sessionID)
	}
	t.seats[idx].SittingOut = false
	t.publishPublic(eventTableState, t.buildTableStateView())
	if t.seats[idx].HasHole {
		t.publishPrivateHole(playerID, idx)
	}
	if t.currentActor == idx {
		t.publishYourTurn(idx)
	}
	return nil
}

// onDisconnect marks a seated player sitting-out without folding
// (spec.md §4.7: "Disconnection ... marks the seat sittingOut=true but
// does not fold"). Actions required during sit-out default via the
// scheduler like any other timeout.
func (t *Table) onDisconnect(playerID string) error {
	idx, ok := t.seatIndexFor(playerID)
	if !ok {
		return inputErr(CodeSeatNotFound, "player %s is not seated at table %s", playerID, t.id)
	}
	t.seats[idx].SittingOut = true
	t.publishPublic(eventTableState, t.buildTableStateView())
	return nil
}

func (t *Table) isHandInProgress() bool {
	switch t.phase {
	case Preflop, Flop, Turn, River, Showdown:
		return true
	default:
		return false
	}
}

func (t *Table) allSeatsEmpty() bool {
	for i := range t.seats {
		if t.seats[i].Seated {
			return false
		}
	}
	return true
}
