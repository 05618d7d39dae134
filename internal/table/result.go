package table

import (
	"github.com/vctt94/pokertable/internal/card"
	"github.com/vctt94/pokertable/internal/eval"
)

// WinnerShare is one seat's award from one pot layer.
type WinnerShare struct {
	Seat       int
	Amount     int64
	Category   eval.Category `json:"category,omitempty"`
	Hand       []card.Card   `json:"hand,omitempty"`
	LayerIndex int           `json:"layerIndex"`
}

// HandResult is the completed-hand artifact of spec.md §3: winners per
// pot layer, each winner's 5-card hand and category, the community
// snapshot, and a timestamp.
type HandResult struct {
	HandNumber int
	Community  []card.Card
	Winners    []WinnerShare
	Revealed   map[int][2]card.Card // non-folded seats' hole cards at showdown

	Aborted     bool
	AbortReason string
}
