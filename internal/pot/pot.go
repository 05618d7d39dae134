// Package pot implements pot-layer construction and award, including side
// pots on all-in and tie splits (C3), per spec.md §4.3.
package pot

import "sort"

// Contribution is one seat's committed chips and fold/elimination status
// for a single hand, as seen by the pot engine.
type Contribution struct {
	Seat      int
	Committed int64
	Folded    bool
}

// Layer is one pot layer: an amount and the seats eligible to win it.
// Spec invariant: ⋃ layers.amount = Σ seats.committed at construction
// time; each eligible seat contributed at least the layer's per-seat cap.
type Layer struct {
	Amount       int64
	EligibleSeat []int
}

// BuildLayers computes pot layers from seat contributions per spec.md
// §4.3: ascending distinct committed-chip caps among non-folded seats,
// refunding any unmatched excess from a lone over-bettor rather than
// forming a pot with it. Returns the layers plus the refund (seat, amount)
// if a lone overbettor exists (amount 0 seat -1 if none).
func BuildLayers(contribs []Contribution) (layers []Layer, refundSeat int, refundAmount int64) {
	refundSeat = -1

	// caps: sorted distinct committed values among non-folded seats.
	capSet := map[int64]bool{}
	for _, c := range contribs {
		if !c.Folded && c.Committed > 0 {
			capSet[c.Committed] = true
		}
	}
	caps := make([]int64, 0, len(capSet))
	for c := range capSet {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })

	// A lone over-bettor: a non-folded seat whose committed exceeds every
	// other non-folded seat's committed. Its excess above the highest
	// committed of any other seat (folded or not) is refunded, never potted.
	if n := len(caps); n >= 1 {
		top := caps[n-1]
		var secondHighestAnyone int64
		for _, c := range contribs {
			if c.Committed > secondHighestAnyone && c.Committed < top {
				secondHighestAnyone = c.Committed
			}
		}
		// Count non-folded seats at the top cap; a "lone" overbettor means
		// exactly one non-folded seat reached `top` while every other
		// contributor (folded or not) is strictly below it.
		var atTop []int
		foldedAtTop := false
		for _, c := range contribs {
			if !c.Folded && c.Committed == top {
				atTop = append(atTop, c.Seat)
			}
			if c.Folded && c.Committed >= top {
				foldedAtTop = true
			}
		}
		if len(atTop) == 1 && !foldedAtTop {
			excess := top - secondHighestAnyone
			if excess > 0 {
				refundSeat = atTop[0]
				refundAmount = excess
				// Cap this seat's contribution at the second-highest value
				// for layer construction purposes.
				caps[n-1] = secondHighestAnyone
				if secondHighestAnyone == 0 {
					caps = caps[:n-1]
				} else {
					// dedupe in case secondHighestAnyone already a cap
					dedup := map[int64]bool{}
					out := caps[:0:0]
					for _, c := range caps {
						if !dedup[c] {
							dedup[c] = true
							out = append(out, c)
						}
					}
					sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
					caps = out
				}
			}
		}
	}

	var prevCap int64
	for _, cap := range caps {
		var amount int64
		var eligible []int
		for _, c := range contribs {
			capped := c.Committed
			if c.Seat == refundSeat {
				capped -= refundAmount
			}
			if capped > cap {
				capped = cap
			}
			if capped > prevCap {
				amount += capped - prevCap
			}
			effectiveCommitted := c.Committed
			if c.Seat == refundSeat {
				effectiveCommitted -= refundAmount
			}
			if effectiveCommitted >= cap && !c.Folded {
				eligible = append(eligible, c.Seat)
			}
		}
		if amount > 0 {
			sort.Ints(eligible)
			layers = append(layers, Layer{Amount: amount, EligibleSeat: eligible})
		}
		prevCap = cap
	}
	return layers, refundSeat, refundAmount
}

// HandRank abstracts a seat's showdown evaluation enough to rank and
// detect ties, without importing internal/eval (kept decoupled so the pot
// engine has no evaluator dependency; internal/table supplies the
// comparator). Better must return exactly 1, 0, or -1.
type HandRank interface {
	// Better reports whether this hand beats other (1), ties (0), or
	// loses to it (-1).
	Better(other HandRank) int
}

// Award splits each layer among its eligible seats' best-ranked hands,
// giving any odd-chip residual one-by-one clockwise starting from the
// seat immediately left of the button, per spec.md §4.3.
func Award(layers []Layer, ranks map[int]HandRank, numSeats, button int) map[int]int64 {
	winnings := make(map[int]int64, len(ranks))
	for _, layer := range layers {
		winners := bestRanked(layer.EligibleSeat, ranks)
		if len(winners) == 0 {
			continue
		}
		share := layer.Amount / int64(len(winners))
		residual := layer.Amount % int64(len(winners))
		for _, seat := range winners {
			winnings[seat] += share
		}
		if residual > 0 {
			order := clockwiseFrom(button, numSeats)
			winnerSet := map[int]bool{}
			for _, w := range winners {
				winnerSet[w] = true
			}
			i := 0
			for residual > 0 {
				seat := order[i%len(order)]
				if winnerSet[seat] {
					winnings[seat]++
					residual--
				}
				i++
				if i > numSeats*2 {
					break // defensive: should be unreachable given winnerSet non-empty
				}
			}
		}
	}
	return winnings
}

// clockwiseFrom returns seat indices in clockwise order starting at the
// seat left of button (button+1 .. button) wrapping modulo numSeats.
func clockwiseFrom(button, numSeats int) []int {
	if numSeats <= 0 {
		return nil
	}
	out := make([]int, numSeats)
	for i := 0; i < numSeats; i++ {
		out[i] = (button + 1 + i) % numSeats
	}
	return out
}

func bestRanked(seats []int, ranks map[int]HandRank) []int {
	var best HandRank
	var winners []int
	for _, s := range seats {
		r, ok := ranks[s]
		if !ok {
			continue
		}
		if best == nil {
			best = r
			winners = []int{s}
			continue
		}
		switch best.Better(r) {
		case -1:
			best = r
			winners = []int{s}
		case 0:
			winners = append(winners, s)
		}
	}
	sort.Ints(winners)
	return winners
}
