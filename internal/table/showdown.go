package table

import (
	"sort"
	"time"

	"github.com/vctt94/pokertable/internal/card"
	"github.com/vctt94/pokertable/internal/eval"
	"github.com/vctt94/pokertable/internal/pot"
)

// potContributions snapshots every seat that was dealt into the hand for
// the pot engine (C3), per spec.md §4.3's pot-layer invariant.
func (t *Table) potContributions() []pot.Contribution {
	var out []pot.Contribution
	for i := range t.seats {
		if t.seats[i].Seated && t.handActive(i) {
			out = append(out, pot.Contribution{Seat: i, Committed: t.seats[i].Committed, Folded: t.seats[i].Folded})
		}
	}
	return out
}

// runShowdown implements spec.md §4.5 Showdown: reveal non-folded hole
// cards, build pot layers (C3), evaluate each hand (C2), award layer by
// layer splitting ties and distributing odd chips clockwise from the
// button (C3), emit HandResult, transition to HandComplete.
func (t *Table) runShowdown() {
	contribs := t.potContributions()
	layers, refundSeat, refundAmount := pot.BuildLayers(contribs)
	if refundSeat >= 0 {
		t.seats[refundSeat].Stack += refundAmount
	}
	t.potLayers = layers

	results := make(map[int]eval.Result)
	revealed := make(map[int][2]card.Card)
	for i := range t.seats {
		if !t.seats[i].Seated || t.seats[i].Folded || !t.handActive(i) {
			continue
		}
		all := append([]card.Card{t.seats[i].Hole[0], t.seats[i].Hole[1]}, t.community...)
		results[i] = eval.Evaluate7(all)
		revealed[i] = t.seats[i].Hole
	}

	ranks := make(map[int]pot.HandRank, len(results))
	for seat, r := range results {
		ranks[seat] = handRank{r}
	}

	var winners []WinnerShare
	for layerIdx, layer := range layers {
		amounts := pot.Award([]pot.Layer{layer}, ranks, len(t.seats), t.dealerButton)
		for seat, amount := range amounts {
			if amount <= 0 {
				continue
			}
			t.seats[seat].Stack += amount
			r := results[seat]
			winners = append(winners, WinnerShare{
				Seat: seat, Amount: amount, LayerIndex: layerIdx,
				Category: r.Category, Hand: append([]card.Card{}, r.Best[:]...),
			})
		}
	}
	sort.Slice(winners, func(i, j int) bool {
		if winners[i].LayerIndex != winners[j].LayerIndex {
			return winners[i].LayerIndex < winners[j].LayerIndex
		}
		return winners[i].Seat < winners[j].Seat
	})

	t.lastResult = &HandResult{
		HandNumber: t.handNumber,
		Community:  append([]card.Card{}, t.community...),
		Winners:    winners,
		Revealed:   revealed,
	}

	t.phase = HandComplete
	t.currentActor = -1
	t.sched.Cancel()
	t.publishPublic(eventHandResult, t.buildHandResultView())
	t.saveSnapshot()
	t.scheduleNextHandDelay()
}

// handRank adapts an eval.Result to pot.HandRank, so showdown distribution
// runs through the single, pot_test.go-covered pot.Award implementation
// instead of a second copy of the same split/residual logic.
type handRank struct {
	eval.Result
}

func (h handRank) Better(other pot.HandRank) int {
	return eval.Compare(h.Result, other.(handRank).Result)
}

// scheduleNextHandDelay starts the post-hand delay timer (spec.md §4.5:
// a pause so clients can display the result before the next hand begins),
// reusing the scheduler's single-timer-per-table slot.
func (t *Table) scheduleNextHandDelay() {
	delay := t.cfg.PostHandDelay
	if delay <= 0 {
		delay = 10 * time.Second
	}
	t.sched.Schedule(delay, func(gen uint64) {
		select {
		case t.inbox <- command{kind: cmdTimerFire, timerGen: gen}:
		case <-t.done:
		}
	})
}
