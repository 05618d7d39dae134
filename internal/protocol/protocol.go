// Package protocol defines the JSON wire envelopes exchanged with clients
// (spec.md §6) and the per-table sequence numbering scheme (spec.md §9's
// "public events carry a monotonically increasing per-table sequence"),
// grounded on TylerPetri-P2Poker's internal/protocol/lamport.go.
package protocol

import "sync/atomic"

// InboundType enumerates the client->server message types of spec.md §6.
type InboundType string

const (
	InRegister     InboundType = "register"
	InCreateTable  InboundType = "createTable"
	InJoinTable    InboundType = "joinTable"
	InStartTable   InboundType = "startTable"
	InAction       InboundType = "action"
	InLeaveTable   InboundType = "leaveTable"
	InRequestState InboundType = "requestState"
	InReconnect    InboundType = "reconnect"
	InChat         InboundType = "chat"
)

// OutboundType enumerates the server->client message types of spec.md §6.
type OutboundType string

const (
	OutTableState    OutboundType = "tableState"
	OutHandStarted   OutboundType = "handStarted"
	OutStreetDealt   OutboundType = "streetDealt"
	OutTurnChanged   OutboundType = "turnChanged"
	OutActionTaken   OutboundType = "actionTaken"
	OutHandResult    OutboundType = "handResult"
	OutTableEnded    OutboundType = "tableEnded"
	OutError         OutboundType = "error"
	OutHoleCards     OutboundType = "holeCards"     // private
	OutYourTurn      OutboundType = "yourTurn"       // private
)

// Inbound is the envelope for every client->server message. Fields not
// relevant to Type are left zero; handlers validate per-type.
type Inbound struct {
	Type       InboundType `json:"type"`
	TableID    string      `json:"tableId,omitempty"`
	PlayerID   string      `json:"playerId,omitempty"`
	AuthToken  string      `json:"authToken,omitempty"`
	ActionKind string      `json:"kind,omitempty"`
	Amount     int64       `json:"amount,omitempty"`
	Text       string      `json:"text,omitempty"`

	// Name and BuyIn are read only on joinTable: spec.md §6 lists joinTable
	// as carrying only tableId, but a runnable server still needs a
	// display name and a buy-in size from somewhere at seating time, and
	// the spec names no dedicated fields for them. Resolved here (and
	// recorded in DESIGN.md) by carrying both on the same envelope rather
	// than inventing a second message type.
	Name  string `json:"name,omitempty"`
	BuyIn int64  `json:"buyIn,omitempty"`
}

// Outbound is the envelope for every server->client message, public or
// private. Seq is assigned by Sequencer per table; Payload is one of
// internal/table's *View payload structs (views.go), or ErrorView for
// OutError.
type Outbound struct {
	Seq     uint64       `json:"seq"`
	Type    OutboundType `json:"type"`
	TableID string       `json:"tableId,omitempty"`
	Payload any          `json:"payload,omitempty"`
}

// ErrorView is the payload of an outbound OutError event (spec.md §7):
// a stable machine-readable kind/code plus a human message.
type ErrorView struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Sequencer assigns a strictly increasing, gap-free sequence number to
// every outbound event for one table, so clients can detect a dropped
// delivery and fall back to requestState (spec.md §9).
type Sequencer struct {
	n uint64
}

// Next returns the next sequence number, starting at 1.
func (s *Sequencer) Next() uint64 {
	return atomic.AddUint64(&s.n, 1)
}

// Current returns the last assigned sequence number without advancing it.
func (s *Sequencer) Current() uint64 {
	return atomic.LoadUint64(&s.n)
}
