package table

import (
	"github.com/vctt94/pokertable/internal/betting"
	"github.com/vctt94/pokertable/internal/card"
	"github.com/vctt94/pokertable/internal/pot"
)

// onAction validates and applies a player action via the betting engine
// (C4), per spec.md §4.4, then advances turn/street/hand state per §4.5.
// Rejections never mutate state (spec.md §7).
func (t *Table) onAction(playerID string, kind betting.Kind, amount int64) error {
	idx, ok := t.seatIndexFor(playerID)
	if !ok {
		return inputErr(CodeSeatNotFound, "player %s is not seated at table %s", playerID, t.id)
	}
	if !t.isHandInProgress() {
		return inputErr(CodeWrongPhase, "no hand in progress at table %s", t.id)
	}
	if t.currentActor != idx {
		return protocolErr(CodeNotCurrentActor, "it is not player %s's turn", playerID)
	}

	bseat := betting.Seat{
		Stack: t.seats[idx].Stack, RoundBet: t.seats[idx].RoundBet,
		Folded: t.seats[idx].Folded, AllIn: t.seats[idx].AllIn, ActedThisRound: t.seats[idx].ActedThisRound,
	}
	round := betting.Round{CurrentBet: t.currentBet, MinRaise: t.minRaise, MinBet: t.streetMinBet()}

	res, err := betting.Apply(bseat, round, betting.Action{Kind: kind, Amount: amount})
	if err != nil {
		return inputErr(CodeIllegalAction, "%v", err)
	}

	t.applyBettingResult(idx, res)
	t.sched.Cancel()

	if res.Kind == betting.Fold {
		t.appendActionLog(ActionLogEntry{HandNumber: t.handNumber, Seat: idx, Kind: "fold", Phase: t.phase})
	} else {
		t.appendActionLog(ActionLogEntry{HandNumber: t.handNumber, Seat: idx, Kind: res.Kind.String(), Amount: res.ChipsMoved, Phase: t.phase})
	}
	t.publishPublic(eventActionTaken, t.buildActionTakenView(idx, res))

	if t.checkOnlyOneRemains() {
		return nil
	}
	t.advanceTurnOrStreet()
	return nil
}

// streetMinBet returns minBet for the current street per spec.md §4.4
// ("minRaise ... initialized to big blind preflop, to minBet for later
// streets" — the same value doubles as the street's minimum opening bet).
func (t *Table) streetMinBet() int64 {
	if t.phase == Preflop {
		return t.cfg.BigBlind
	}
	return t.cfg.MinBet
}

// applyBettingResult mutates seat idx and the table's round state per a
// betting.Result, including the full/incomplete raise re-open semantics
// of spec.md §4.4 (P6).
func (t *Table) applyBettingResult(idx int, res betting.Result) {
	s := &t.seats[idx]
	switch res.Kind {
	case betting.Fold:
		s.Folded = true
	default:
		s.Stack -= res.ChipsMoved
		s.Committed += res.ChipsMoved
		s.RoundBet = res.NewRoundBet
		if res.BecomesAllIn {
			s.AllIn = true
		}
	}
	s.ActedThisRound = true

	if res.IsRaise {
		t.currentBet = res.NewCurrentBet
		if res.FullRaise {
			t.minRaise = res.NewMinRaise
			for i := range t.seats {
				if i == idx {
					continue
				}
				if t.seats[i].Seated && !t.seats[i].Folded && !t.seats[i].AllIn && t.seats[i].HasHole {
					t.seats[i].ActedThisRound = false
				}
			}
		}
		// Incomplete all-in raise: minRaise and prior matchers' acted
		// flags are left untouched (spec.md §4.4).
	}
}

// checkOnlyOneRemains implements spec.md §4.5's "only-one-remains ->
// HandComplete": the hand ends immediately and the pot is awarded without
// showdown (spec.md §4.4 condition (a)). Returns true if it fired.
func (t *Table) checkOnlyOneRemains() bool {
	remaining := t.nonFoldedSeats()
	if len(remaining) != 1 {
		return false
	}
	t.sched.Cancel()
	t.awardUncontested(remaining[0])
	return true
}

// awardUncontested gives the entire pot to the lone remaining seat
// without revealing any hands, per spec.md §4.5.
func (t *Table) awardUncontested(winner int) {
	contribs := t.potContributions()
	layers, refundSeat, refundAmount := pot.BuildLayers(contribs)
	if refundSeat >= 0 {
		t.seats[refundSeat].Stack += refundAmount
	}
	var total int64
	for _, l := range layers {
		total += l.Amount
	}
	t.seats[winner].Stack += total

	t.lastResult = &HandResult{
		HandNumber: t.handNumber,
		Community:  append([]card.Card{}, t.community...),
		Winners: []WinnerShare{{
			Seat: winner, Amount: total,
		}},
	}
	t.phase = HandComplete
	t.currentActor = -1
	t.publishPublic(eventHandResult, t.buildHandResultView())
	t.saveSnapshot()
	t.scheduleNextHandDelay()
}

// advanceTurnOrStreet finds the next seat to act, or advances the street
// (or runs showdown on the river) when the round is complete, per
// spec.md §4.4 condition (b) and §4.5's phase table.
func (t *Table) advanceTurnOrStreet() {
	if betting.RoundComplete(t.bettingSeats(), t.currentBet) {
		t.advanceStreet()
		return
	}
	next := t.nextActor(t.currentActor)
	if next < 0 {
		// No one left who owes action (can happen after an all-in call
		// leaves only all-in/folded seats) — treat the round as complete.
		t.advanceStreet()
		return
	}
	t.currentActor = next
	t.promptCurrentActor()
}

// nextActor returns the next seat clockwise from from that still owes
// action this round, or -1 if none remain.
func (t *Table) nextActor(from int) int {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		cand := (from + i) % n
		s := &t.seats[cand]
		if !s.Seated || !s.HasHole || s.Folded || s.AllIn {
			continue
		}
		if !s.ActedThisRound || s.RoundBet != t.currentBet {
			return cand
		}
	}
	return -1
}

func (t *Table) promptCurrentActor() {
	if t.currentActor < 0 {
		return
	}
	t.scheduleTimerFire()
	var deadlineMs int64
	if t.cfg.ActionDeadline > 0 {
		deadlineMs = t.cfg.ActionDeadline.Milliseconds()
	}
	t.publishPublic(eventTurnChanged, TurnChangedView{Seat: t.currentActor, ActionDeadline: deadlineMs})
	t.publishYourTurn(t.currentActor)
}

// onTimerFire dispatches a scheduled timer fire, discarding stale fires
// (a superseded generation) per spec.md §5's linearization rule. Two
// distinct timers share the table's one timer slot: the turn-action
// deadline (handled below) and the post-hand delay, which begins the
// next hand once it expires.
func (t *Table) onTimerFire(gen uint64) {
	if gen != t.sched.CurrentGeneration() {
		return // moot: a real action (or a later timer) already resolved this turn
	}
	if t.phase == HandComplete {
		t.beginHand()
		return
	}
	if t.currentActor < 0 || !t.isHandInProgress() {
		return
	}
	idx := t.currentActor

	kind := betting.Fold
	if t.seats[idx].RoundBet == t.currentBet {
		kind = betting.Check
	}
	// Apply directly rather than through onAction to avoid re-entering
	// the currentActor check with a synthetic "player" — this *is* the
	// current actor, acting via its default.
	bseat := betting.Seat{
		Stack: t.seats[idx].Stack, RoundBet: t.seats[idx].RoundBet,
		Folded: t.seats[idx].Folded, AllIn: t.seats[idx].AllIn, ActedThisRound: t.seats[idx].ActedThisRound,
	}
	round := betting.Round{CurrentBet: t.currentBet, MinRaise: t.minRaise, MinBet: t.streetMinBet()}
	res, err := betting.Apply(bseat, round, betting.Action{Kind: kind})
	if err != nil {
		// Should be unreachable (fold is always legal); defensively fold.
		t.seats[idx].Folded = true
		res = betting.Result{Kind: betting.Fold}
	} else {
		t.applyBettingResult(idx, res)
	}
	t.appendActionLog(ActionLogEntry{HandNumber: t.handNumber, Seat: idx, Kind: "timeout_" + res.Kind.String(), Phase: t.phase})
	t.publishPublic(eventActionTaken, t.buildActionTakenView(idx, res))

	if t.checkOnlyOneRemains() {
		return
	}
	t.advanceTurnOrStreet()
}
