package table

import (
	"context"

	"github.com/vctt94/pokertable/internal/card"
	"github.com/vctt94/pokertable/internal/pot"
	"github.com/vctt94/pokertable/internal/statemachine"
	"github.com/vctt94/pokertable/internal/store"
)

// snapshot renders the table's current state as a store.TableSnapshot,
// per spec.md §6's "Persisted state (recovery)" field list.
func (t *Table) snapshot() store.TableSnapshot {
	seats := make([]store.SeatSnapshot, 0, len(t.seats))
	for i := range t.seats {
		s := &t.seats[i]
		if !s.Seated {
			continue
		}
		var hole []card.Card
		if s.HasHole {
			hole = []card.Card{s.Hole[0], s.Hole[1]}
		}
		seats = append(seats, store.SeatSnapshot{
			Index: i, Seated: s.Seated, PlayerID: s.PlayerID, Name: s.Name,
			Stack: s.Stack, Committed: s.Committed, RoundBet: s.RoundBet,
			Hole: hole, SittingOut: s.SittingOut, Folded: s.Folded,
			AllIn: s.AllIn, ActedThisRound: s.ActedThisRound,
		})
	}

	var deckCards []card.Card
	if t.deck != nil {
		deckCards = t.deck.Cards()
	}

	pots := make([]store.PotLayerSnapshot, 0, len(t.potLayers))
	for _, l := range t.potLayers {
		pots = append(pots, store.PotLayerSnapshot{
			Amount: l.Amount, EligibleSeat: append([]int{}, l.EligibleSeat...),
		})
	}

	var deadlineUnix int64
	if dl := t.deadlineAt(); !dl.IsZero() {
		deadlineUnix = dl.Unix()
	}

	return store.TableSnapshot{
		TableID: t.id, CreatorID: t.creatorID, Phase: t.phase.String(),
		HandNumber: t.handNumber, DealerButton: t.dealerButton,
		SmallBlind: t.cfg.SmallBlind, BigBlind: t.cfg.BigBlind,
		CurrentBet: t.currentBet, MinRaise: t.minRaise,
		DeckCards: deckCards, Community: append([]card.Card{}, t.community...),
		Seats: seats, CurrentActor: t.currentActor, DeadlineUnix: deadlineUnix,
		Pots: pots,
	}
}

// saveSnapshot persists the table's current state if a RecoveryStore is
// configured (spec.md §6: "Written at stable points (end of street, end
// of hand)"). Best-effort: a persistence failure here logs and moves on
// rather than delaying play, unlike balance credit/debit which has its
// own retry budget (store.CreditWithRetry).
func (t *Table) saveSnapshot() {
	if t.recovery == nil {
		return
	}
	if err := t.recovery.SaveSnapshot(context.Background(), t.snapshot()); err != nil {
		if t.log != nil {
			t.log.Warnf("table %s: save recovery snapshot failed: %v", t.id, err)
		}
	}
}

// Resume reconstructs a Table from a persisted snapshot, per spec.md §6's
// "durable snapshot sufficient to resume". It starts from New (for the
// usual zero-value seat/seatLifecycle wiring) and then overlays the
// snapshot's seats, deck, street, and hand-progress fields. The action
// deadline is restarted fresh rather than resumed at its original offset:
// by the time a process comes back up and reloads snapshots, the original
// wall-clock deadline has typically already passed.
func Resume(cfg Config, deps Deps, snap store.TableSnapshot) *Table {
	t := New(snap.TableID, snap.CreatorID, cfg, deps)

	t.phase = parsePhase(snap.Phase)
	t.dealerButton = snap.DealerButton
	t.handNumber = snap.HandNumber
	t.currentBet = snap.CurrentBet
	t.minRaise = snap.MinRaise
	t.community = append([]card.Card{}, snap.Community...)
	t.currentActor = snap.CurrentActor

	if len(snap.DeckCards) > 0 {
		t.deck = card.FromCards(snap.DeckCards)
	}

	for _, ss := range snap.Seats {
		if ss.Index < 0 || ss.Index >= len(t.seats) {
			continue
		}
		seat := Seat{
			Seated: ss.Seated, PlayerID: ss.PlayerID, Name: ss.Name,
			Stack: ss.Stack, Committed: ss.Committed, RoundBet: ss.RoundBet,
			SittingOut: ss.SittingOut, Folded: ss.Folded, AllIn: ss.AllIn,
			ActedThisRound: ss.ActedThisRound,
		}
		if len(ss.Hole) == 2 {
			seat.Hole = [2]card.Card{ss.Hole[0], ss.Hole[1]}
			seat.HasHole = true
		}
		t.seats[ss.Index] = seat
		if ss.Seated {
			t.seatOfPlayer[ss.PlayerID] = ss.Index
		}
	}
	for i := range t.seatLifecycle {
		t.seatLifecycle[i] = statemachine.New(&t.seats[i], seatLifecycleActive)
	}

	for _, pl := range snap.Pots {
		t.potLayers = append(t.potLayers, pot.Layer{
			Amount: pl.Amount, EligibleSeat: append([]int{}, pl.EligibleSeat...),
		})
	}

	switch {
	case t.currentActor >= 0 && t.isHandInProgress():
		t.scheduleTimerFire()
	case t.phase == HandComplete:
		t.scheduleNextHandDelay()
	}

	return t
}

func parsePhase(s string) Phase {
	switch s {
	case "waiting":
		return Waiting
	case "preflop":
		return Preflop
	case "flop":
		return Flop
	case "turn":
		return Turn
	case "river":
		return River
	case "showdown":
		return Showdown
	case "handComplete":
		return HandComplete
	case "closed":
		return Closed
	default:
		return Waiting
	}
}
