package table

import "fmt"

// Kind classifies an Error per spec.md §7.
type Kind int

const (
	KindInput Kind = iota
	KindState
	KindResource
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindState:
		return "state"
	case KindResource:
		return "resource"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is the typed error surfaced to callers/clients on rejected
// requests (spec.md §7). It satisfies the error interface and carries a
// stable machine-readable Code alongside a human Message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Code, e.Message)
}

func inputErr(code, format string, args ...any) *Error {
	return &Error{Kind: KindInput, Code: code, Message: fmt.Sprintf(format, args...)}
}

func protocolErr(code, format string, args ...any) *Error {
	return &Error{Kind: KindProtocol, Code: code, Message: fmt.Sprintf(format, args...)}
}

func stateErr(code, format string, args ...any) *Error {
	return &Error{Kind: KindState, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Common error codes, stable across versions so clients can switch on them.
const (
	CodeUnknownTable      = "unknown_table"
	CodeNotCurrentActor   = "not_current_actor"
	CodeIllegalAction     = "illegal_action"
	CodeNotCreator        = "not_creator"
	CodeTableFull         = "table_full"
	CodeWrongPhase        = "wrong_phase"
	CodeAlreadySeated     = "already_seated"
	CodeNotEnoughSeats    = "not_enough_seats"
	CodeInvariantViolated = "invariant_violated"
	CodeSeatNotFound      = "seat_not_found"
)
