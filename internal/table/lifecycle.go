package table

import "github.com/vctt94/pokertable/internal/statemachine"

// zeroStackHandLimit resolves spec.md §3's "preserved until explicit leave
// or zero stack for N hands" (N left unspecified): a seat that finishes a
// hand with zero chips is auto-removed once it has started the next hand
// still empty, freeing the seat for a new player without punishing a
// seat that rebuys between hands.
const zeroStackHandLimit = 1

// seatLifecycleActive and seatLifecycleZeroStack are the two states of a
// seat's occupancy lifecycle, driven once per hand boundary (see
// runSeatLifecycle). Grounded on internal/statemachine's generic
// Rob-Pike-style engine, applied here to seat occupancy instead of hand
// phase (which internal/table tracks directly via the command/inbox
// executor, a better fit for that fully event-driven, externally
// triggered transition table).
func seatLifecycleActive(s *Seat, cb statemachine.Callback) statemachine.Fn[Seat] {
	if s.Seated && s.Stack <= 0 {
		s.zeroStackHands++
		if cb != nil {
			cb("active", statemachine.Exited)
		}
		return seatLifecycleZeroStack
	}
	s.zeroStackHands = 0
	return seatLifecycleActive
}

func seatLifecycleZeroStack(s *Seat, cb statemachine.Callback) statemachine.Fn[Seat] {
	if !s.Seated {
		return seatLifecycleActive
	}
	if s.Stack > 0 {
		s.zeroStackHands = 0
		if cb != nil {
			cb("zeroStack", statemachine.Exited)
		}
		return seatLifecycleActive
	}
	s.zeroStackHands++
	return seatLifecycleZeroStack
}

// runSeatLifecycle dispatches every occupied seat's lifecycle machine once
// (called at the start of each new hand, the natural "between hands"
// checkpoint of spec.md §3) and evicts any seat that has now spent
// zeroStackHandLimit consecutive hands at zero chips.
func (t *Table) runSeatLifecycle() {
	for i := range t.seats {
		if !t.seats[i].Seated {
			continue
		}
		m := t.seatLifecycle[i]
		m.Dispatch(func(state string, event statemachine.Event) {
			if t.log != nil {
				t.log.Debugf("table %s: seat %d lifecycle %s (%v)", t.id, i, state, event)
			}
		})
		if t.seats[i].Stack <= 0 && t.seats[i].zeroStackHands >= zeroStackHandLimit {
			t.evictEmptySeat(i)
		}
	}
}

// evictEmptySeat removes a seat whose occupant has run out of chips and
// not rebought, per spec.md §3. No refund is owed: a zero stack means
// nothing remains to return.
func (t *Table) evictEmptySeat(i int) {
	playerID := t.seats[i].PlayerID
	delete(t.seatOfPlayer, playerID)
	t.seats[i] = Seat{}
	t.seatLifecycle[i] = statemachine.New(&t.seats[i], seatLifecycleActive)
	t.appendActionLog(ActionLogEntry{HandNumber: t.handNumber, Seat: i, Kind: "evicted_zero_stack", Phase: t.phase})
	t.publishPublic(eventTableState, t.buildTableStateView())
}
