package table

import (
	"github.com/vctt94/pokertable/internal/betting"
	"github.com/vctt94/pokertable/internal/broadcast"
	"github.com/vctt94/pokertable/internal/card"
	"github.com/vctt94/pokertable/internal/protocol"
)

// Event type aliases keep call sites in handlers.go/dealing.go/action.go
// readable (t.publishPublic(eventTableState, ...)) while staying exactly
// the wire-level OutboundType of spec.md §6.
const (
	eventTableState  = protocol.OutTableState
	eventHandStarted = protocol.OutHandStarted
	eventActionTaken = protocol.OutActionTaken
	eventHandResult  = protocol.OutHandResult
	eventTableEnded  = protocol.OutTableEnded
	eventTurnChanged = protocol.OutTurnChanged
)

// eventStreetDealt is always OutStreetDealt; phase is taken only so call
// sites read naturally (t.publishPublic(eventStreetDealt(t.phase), ...)).
func eventStreetDealt(_ Phase) protocol.OutboundType { return protocol.OutStreetDealt }

// TableStateView is the sanitized snapshot broadcast on every public state
// change (spec.md §6 tableState / §4.8).
type TableStateView struct {
	TableID      string         `json:"tableId"`
	Phase        string         `json:"phase"`
	HandNumber   int            `json:"handNumber"`
	DealerButton int            `json:"dealerButton"`
	CurrentActor int            `json:"currentActor"`
	CurrentBet   int64          `json:"currentBet"`
	MinRaise     int64          `json:"minRaise"`
	Community    []card.Card    `json:"community,omitempty"`
	Seats        []PublicView   `json:"seats"`
	PotLayers    []PotLayerView `json:"potLayers,omitempty"`
}

// HandStartedView is the hand-start payload (spec.md §6 handStarted).
type HandStartedView struct {
	TableStateView
	SmallBlind int64 `json:"smallBlind"`
	BigBlind   int64 `json:"bigBlind"`
}

// StreetView is the street-dealt payload (spec.md §6 streetDealt).
type StreetView struct {
	Phase     string         `json:"phase"`
	Community []card.Card    `json:"community"`
	PotLayers []PotLayerView `json:"potLayers,omitempty"`
}

// ActionTakenView is the actionTaken payload (spec.md §6).
type ActionTakenView struct {
	Seat         int    `json:"seat"`
	Kind         string `json:"kind"`
	Amount       int64  `json:"amount,omitempty"`
	NewStack     int64  `json:"newStack"`
	NewRoundBet  int64  `json:"newRoundBet"`
	BecomesAllIn bool   `json:"becomesAllIn,omitempty"`
	CurrentBet   int64  `json:"currentBet"`
}

// HandResultView is the handResult payload (spec.md §6).
type HandResultView struct {
	HandNumber  int                  `json:"handNumber"`
	Community   []card.Card          `json:"community,omitempty"`
	Winners     []WinnerShare        `json:"winners,omitempty"`
	Revealed    map[int][2]card.Card `json:"revealed,omitempty"`
	Aborted     bool                 `json:"aborted,omitempty"`
	AbortReason string               `json:"abortReason,omitempty"`
	Seats       []PublicView         `json:"seats"`
}

// HoleCardsView is the private holeCards payload (spec.md §6).
type HoleCardsView struct {
	Seat int         `json:"seat"`
	Hole [2]card.Card `json:"hole"`
}

// TurnChangedView is the public turnChanged payload (spec.md §6):
// announces whose turn it is without the private legal-action detail
// that yourTurn carries only to that seat.
type TurnChangedView struct {
	Seat           int   `json:"seat"`
	ActionDeadline int64 `json:"actionDeadlineMs,omitempty"`
}

// YourTurnView is the private yourTurn payload (spec.md §6), including
// enough context for a client to validate an action before sending it.
type YourTurnView struct {
	Seat           int   `json:"seat"`
	CurrentBet     int64 `json:"currentBet"`
	MinRaise       int64 `json:"minRaise"`
	ToCall         int64 `json:"toCall"`
	ActionDeadline int64 `json:"actionDeadlineMs,omitempty"`
}

func (t *Table) seatViews() []PublicView {
	out := make([]PublicView, len(t.seats))
	for i, s := range t.seats {
		out[i] = PublicView{
			Index: i, PlayerID: s.PlayerID, Name: s.Name,
			Stack: s.Stack, Committed: s.Committed, RoundBet: s.RoundBet,
			Seated: s.Seated, SittingOut: s.SittingOut, Folded: s.Folded,
			AllIn: s.AllIn, ActedThisRound: s.ActedThisRound, HasCards: s.HasHole,
		}
	}
	return out
}

func (t *Table) potLayerViews() []PotLayerView {
	out := make([]PotLayerView, len(t.potLayers))
	for i, l := range t.potLayers {
		out[i] = PotLayerView{Amount: l.Amount, EligibleSeat: append([]int{}, l.EligibleSeat...)}
	}
	return out
}

func (t *Table) buildTableStateView() TableStateView {
	return TableStateView{
		TableID: t.id, Phase: t.phase.String(), HandNumber: t.handNumber,
		DealerButton: t.dealerButton, CurrentActor: t.currentActor,
		CurrentBet: t.currentBet, MinRaise: t.minRaise,
		Community: append([]card.Card{}, t.community...),
		Seats:     t.seatViews(), PotLayers: t.potLayerViews(),
	}
}

func (t *Table) buildHandStartedView() HandStartedView {
	return HandStartedView{
		TableStateView: t.buildTableStateView(),
		SmallBlind:     t.cfg.SmallBlind,
		BigBlind:       t.cfg.BigBlind,
	}
}

func (t *Table) buildStreetView() StreetView {
	return StreetView{
		Phase:     t.phase.String(),
		Community: append([]card.Card{}, t.community...),
		PotLayers: t.potLayerViews(),
	}
}

func (t *Table) buildActionTakenView(idx int, res betting.Result) ActionTakenView {
	kind := res.Kind.String()
	return ActionTakenView{
		Seat: idx, Kind: kind, Amount: res.ChipsMoved,
		NewStack: t.seats[idx].Stack, NewRoundBet: t.seats[idx].RoundBet,
		BecomesAllIn: res.BecomesAllIn, CurrentBet: t.currentBet,
	}
}

func (t *Table) buildHandResultView() HandResultView {
	v := HandResultView{HandNumber: t.handNumber, Seats: t.seatViews()}
	if t.lastResult != nil {
		v.Community = t.lastResult.Community
		v.Winners = t.lastResult.Winners
		v.Revealed = t.lastResult.Revealed
		v.Aborted = t.lastResult.Aborted
		v.AbortReason = t.lastResult.AbortReason
	}
	return v
}

func (t *Table) publishPublic(kind protocol.OutboundType, payload any) {
	if t.hub == nil {
		return
	}
	t.hub.PublishPublic(broadcast.Message{Seq: t.nextSeq(), Type: string(kind), Payload: payload})
}

func (t *Table) sessionFor(playerID string) (string, bool) {
	if t.sessions == nil {
		return "", false
	}
	id, ok := t.sessions.Lookup(playerID)
	return string(id), ok
}

func (t *Table) publishPrivateHole(playerID string, idx int) {
	if t.hub == nil {
		return
	}
	sid, ok := t.sessionFor(playerID)
	if !ok {
		return
	}
	t.hub.PublishPrivate(sid, broadcast.Message{
		Seq: t.nextSeq(), Type: string(protocol.OutHoleCards),
		Payload: HoleCardsView{Seat: idx, Hole: t.seats[idx].Hole},
	})
}

func (t *Table) publishYourTurn(idx int) {
	if t.hub == nil {
		return
	}
	sid, ok := t.sessionFor(t.seats[idx].PlayerID)
	if !ok {
		return
	}
	toCall := t.currentBet - t.seats[idx].RoundBet
	if toCall < 0 {
		toCall = 0
	}
	var deadlineMs int64
	if t.cfg.ActionDeadline > 0 {
		deadlineMs = t.cfg.ActionDeadline.Milliseconds()
	}
	t.hub.PublishPrivate(sid, broadcast.Message{
		Seq: t.nextSeq(), Type: string(protocol.OutYourTurn),
		Payload: YourTurnView{
			Seat: idx, CurrentBet: t.currentBet, MinRaise: t.minRaise,
			ToCall: toCall, ActionDeadline: deadlineMs,
		},
	})
}
