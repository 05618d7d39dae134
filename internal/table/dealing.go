package table

import (
	"github.com/vctt94/pokertable/internal/betting"
	"github.com/vctt94/pokertable/internal/card"
)

// beginHand implements spec.md §4.5's "Begin-hand sequence": select next
// fundable button clockwise; identify blinds; reset hand artifacts;
// shuffle; post blinds; deal hole cards one at a time in button+1 order
// around twice; set currentActor, currentBet, minRaise.
func (t *Table) beginHand() {
	t.runSeatLifecycle()
	fundable := t.fundableSeats()
	if len(fundable) < 2 {
		t.phase = Waiting
		return
	}

	t.dealerButton = t.nextButton(fundable)
	t.handNumber++
	t.community = nil
	t.potLayers = nil
	t.lastResult = nil
	t.deck = t.newDeck()

	for i := range t.seats {
		if t.seats[i].Seated {
			t.seats[i].Committed = 0
			t.seats[i].RoundBet = 0
			t.seats[i].HasHole = false
			t.seats[i].Hole = [2]card.Card{}
			t.seats[i].Folded = false
			t.seats[i].AllIn = t.seats[i].Stack <= 0 && t.seats[i].Seated
			t.seats[i].ActedThisRound = false
		}
	}

	sbIdx, bbIdx := t.blindSeats(fundable)
	t.postBlind(sbIdx, t.cfg.SmallBlind)
	t.postBlind(bbIdx, t.cfg.BigBlind)

	// Deal two hole cards to each fundable seat, one at a time, starting
	// button+1, around twice (spec.md §4.5).
	order := t.clockwiseFundableFrom(t.dealerButton)
	for round := 0; round < 2; round++ {
		for _, idx := range order {
			c, ok := t.deck.Draw()
			if !ok {
				t.abortHandInvariantViolation("deck exhausted while dealing hole cards")
				return
			}
			t.seats[idx].Hole[round] = c
		}
	}
	for _, idx := range order {
		t.seats[idx].HasHole = true
	}

	t.phase = Preflop
	t.currentBet = t.cfg.BigBlind
	t.minRaise = t.cfg.BigBlind

	t.currentActor = t.firstActorPreflop(order, bbIdx)
	t.appendActionLog(ActionLogEntry{HandNumber: t.handNumber, Seat: -1, Kind: "hand_started", Phase: t.phase})
	t.publishPublic(eventHandStarted, t.buildHandStartedView())
	for _, idx := range order {
		t.publishPrivateHole(t.seats[idx].PlayerID, idx)
	}
	t.promptCurrentActor()
	t.saveSnapshot()
}

// nextButton selects the next fundable seat clockwise from the current
// button (or the first fundable seat if no button has been set yet).
func (t *Table) nextButton(fundable []int) int {
	if t.dealerButton < 0 {
		return fundable[0]
	}
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		cand := (t.dealerButton + i) % n
		if t.seats[cand].Fundable() {
			return cand
		}
	}
	return fundable[0]
}

// clockwiseFundableFrom returns fundable seat indices starting at
// button+1 and wrapping around, i.e. the dealing/blind order.
func (t *Table) clockwiseFundableFrom(button int) []int {
	n := len(t.seats)
	var out []int
	for i := 1; i <= n; i++ {
		cand := (button + i) % n
		if t.seats[cand].Fundable() {
			out = append(out, cand)
		}
	}
	return out
}

// blindSeats identifies small and big blind seats per spec.md §4.5: in
// heads-up the button posts small blind; otherwise small blind is the
// next seat clockwise from the button.
func (t *Table) blindSeats(fundable []int) (sb, bb int) {
	order := t.clockwiseFundableFrom(t.dealerButton)
	if len(fundable) == 2 {
		return t.dealerButton, order[0]
	}
	return order[0], order[1]
}

func (t *Table) postBlind(idx int, amount int64) {
	s := &t.seats[idx]
	post := amount
	allIn := false
	if post >= s.Stack {
		post = s.Stack
		allIn = true
	}
	s.Stack -= post
	s.Committed += post
	s.RoundBet += post
	if allIn {
		s.AllIn = true
	}
	t.appendActionLog(ActionLogEntry{HandNumber: t.handNumber, Seat: idx, Kind: "post_blind", Amount: post, Phase: Preflop})
}

// firstActorPreflop is the first fundable non-all-in seat to act: under
// the gun, i.e. the seat after the big blind in dealing order.
func (t *Table) firstActorPreflop(order []int, bbIdx int) int {
	bbPos := -1
	for i, idx := range order {
		if idx == bbIdx {
			bbPos = i
			break
		}
	}
	n := len(order)
	for i := 1; i <= n; i++ {
		cand := order[(bbPos+i)%n]
		if !t.seats[cand].AllIn {
			return cand
		}
	}
	return -1
}

// firstActorPostflop is button+1 among non-folded non-all-in seats.
func (t *Table) firstActorPostflop() int {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		cand := (t.dealerButton + i) % n
		if t.seats[cand].Seated && !t.seats[cand].Folded && !t.seats[cand].AllIn && t.seats[cand].HasHole {
			return cand
		}
	}
	return -1
}

// advanceStreet burns (if applicable) and deals community cards for the
// next phase, per spec.md §4.5's dealing-streets table.
func (t *Table) advanceStreet() {
	t.seats = resetSeatsForStreet(t.seats)
	t.currentBet = 0
	t.minRaise = t.cfg.MinBet

	switch t.phase {
	case Preflop:
		t.burnAndDeal(1, 3)
		t.phase = Flop
	case Flop:
		t.burnAndDeal(1, 1)
		t.phase = Turn
	case Turn:
		t.burnAndDeal(1, 1)
		t.phase = River
	case River:
		t.phase = Showdown
		t.runShowdown()
		return
	}
	t.saveSnapshot()

	if t.remainingActorsCanAct() < 1 {
		// Everyone left is all-in (or folded): no more betting, run the
		// remaining streets out automatically and go to showdown.
		t.currentActor = -1
		t.publishPublic(eventStreetDealt(t.phase), t.buildStreetView())
		t.fastForwardAllInRunout()
		return
	}

	t.currentActor = t.firstActorPostflop()
	t.publishPublic(eventStreetDealt(t.phase), t.buildStreetView())
	t.promptCurrentActor()
}

func (t *Table) burnAndDeal(burn, deal int) {
	for i := 0; i < burn; i++ {
		if !t.deck.Burn() {
			t.abortHandInvariantViolation("deck exhausted on burn")
			return
		}
	}
	for i := 0; i < deal; i++ {
		c, ok := t.deck.Draw()
		if !ok {
			t.abortHandInvariantViolation("deck exhausted dealing community")
			return
		}
		t.community = append(t.community, c)
	}
}

// remainingActorsCanAct counts non-folded, non-all-in seats still dealt
// into the hand.
func (t *Table) remainingActorsCanAct() int {
	n := 0
	for i := range t.seats {
		if t.seats[i].HasHole && !t.seats[i].Folded && !t.seats[i].AllIn {
			n++
		}
	}
	return n
}

// fastForwardAllInRunout deals remaining streets without betting when
// every remaining seat is all-in, then proceeds to showdown.
func (t *Table) fastForwardAllInRunout() {
	for t.phase != River && t.phase != Showdown {
		switch t.phase {
		case Preflop:
			t.burnAndDeal(1, 3)
			t.phase = Flop
		case Flop:
			t.burnAndDeal(1, 1)
			t.phase = Turn
		case Turn:
			t.burnAndDeal(1, 1)
			t.phase = River
		}
		t.publishPublic(eventStreetDealt(t.phase), t.buildStreetView())
		t.saveSnapshot()
	}
	t.phase = Showdown
	t.runShowdown()
}

func resetSeatsForStreet(seats []Seat) []Seat {
	bseats := make([]betting.Seat, len(seats))
	for i, s := range seats {
		bseats[i] = betting.Seat{Stack: s.Stack, RoundBet: s.RoundBet, Folded: s.Folded, AllIn: s.AllIn, ActedThisRound: s.ActedThisRound}
	}
	reset := betting.ResetForNextStreet(bseats)
	out := make([]Seat, len(seats))
	for i, s := range seats {
		out[i] = s
		out[i].RoundBet = reset[i].RoundBet
		out[i].ActedThisRound = reset[i].ActedThisRound
	}
	return out
}

// abortHandInvariantViolation implements spec.md §7's fatal-at-hand-scope
// path: refund committed chips, transition to HandComplete with no
// winners, log with full state, and never panic the executor.
func (t *Table) abortHandInvariantViolation(reason string) {
	t.logSnapshotOnViolation(reason)
	for i := range t.seats {
		if t.seats[i].Seated && t.seats[i].Committed > 0 {
			t.seats[i].Stack += t.seats[i].Committed
			t.seats[i].Committed = 0
		}
	}
	t.phase = HandComplete
	t.lastResult = &HandResult{HandNumber: t.handNumber, Aborted: true, AbortReason: reason}
	t.currentActor = -1
	t.sched.Cancel()
	t.publishPublic(eventHandResult, t.buildHandResultView())
	t.saveSnapshot()
}
