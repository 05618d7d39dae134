package table

import (
	"context"
	"sort"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"

	"github.com/vctt94/pokertable/internal/betting"
	"github.com/vctt94/pokertable/internal/broadcast"
	"github.com/vctt94/pokertable/internal/card"
	"github.com/vctt94/pokertable/internal/clock"
	"github.com/vctt94/pokertable/internal/pot"
	"github.com/vctt94/pokertable/internal/protocol"
	"github.com/vctt94/pokertable/internal/scheduler"
	"github.com/vctt94/pokertable/internal/session"
	"github.com/vctt94/pokertable/internal/statemachine"
	"github.com/vctt94/pokertable/internal/store"
)

// Table owns one table's entire lifecycle (C5). All mutation happens
// inside run's single goroutine, consuming commands from inbox one at a
// time — the "per-table serial executor" of spec.md §5. Every exported
// Submit* method is safe to call from any goroutine; it only ever
// enqueues a command and waits for a reply.
type Table struct {
	id        string
	creatorID string
	cfg       Config
	log       slog.Logger

	seats         []Seat
	seatOfPlayer  map[string]int
	seatLifecycle []*statemachine.Machine[Seat]

	phase        Phase
	dealerButton int
	currentBet   int64
	minRaise     int64
	deck         *card.Deck
	community    []card.Card
	currentActor int // -1 if none
	handNumber   int
	actionLog    []ActionLogEntry
	potLayers    []pot.Layer
	lastResult   *HandResult

	seq   protocol.Sequencer
	sched *scheduler.Scheduler
	clk   clock.Clock

	hub      *broadcast.Hub
	sessions *session.Registry
	balance  store.BalanceStore
	recovery store.RecoveryStore
	reconcil store.Reconciler
	newDeck  func() *card.Deck

	inbox chan command
	done  chan struct{}
}

// Deps bundles the collaborators a Table needs beyond its own Config.
type Deps struct {
	Clock      clock.Clock
	Hub        *broadcast.Hub
	Sessions   *session.Registry
	Balance    store.BalanceStore
	Recovery   store.RecoveryStore
	Reconciler store.Reconciler
	Log        slog.Logger
	NumSeats   int

	// NewDeck builds a fresh shuffled deck at the start of every hand.
	// Defaults to card.NewShuffled (crypto/rand). Tests substitute a
	// fixed-order deck (fixedDeck in table_test.go) for reproducible deals.
	NewDeck func() *card.Deck
}

// New creates a Table in Waiting phase with numSeats empty seats.
func New(id, creatorID string, cfg Config, deps Deps) *Table {
	n := deps.NumSeats
	if n <= 0 || n > MaxSeats {
		n = MaxSeats
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewReal()
	}
	newDeck := deps.NewDeck
	if newDeck == nil {
		newDeck = card.NewShuffled
	}
	t := &Table{
		id:           id,
		creatorID:    creatorID,
		cfg:          cfg,
		log:          deps.Log,
		seats:        make([]Seat, n),
		seatOfPlayer: make(map[string]int, n),
		phase:        Waiting,
		currentActor: -1,
		dealerButton: -1,
		clk:          clk,
		sched:        scheduler.New(clk),
		hub:          deps.Hub,
		sessions:     deps.Sessions,
		balance:      deps.Balance,
		recovery:     deps.Recovery,
		reconcil:     deps.Reconciler,
		newDeck:      newDeck,
		inbox:        make(chan command, 64),
		done:         make(chan struct{}),
	}
	t.seatLifecycle = make([]*statemachine.Machine[Seat], n)
	for i := range t.seatLifecycle {
		t.seatLifecycle[i] = statemachine.New(&t.seats[i], seatLifecycleActive)
	}
	return t
}

// ID returns the table's 6-hex identity.
func (t *Table) ID() string { return t.id }

// Run consumes commands from the inbox until ctx is cancelled or Close is
// called. It must be started in its own goroutine by the owner (typically
// internal/registry), which is also how C9 achieves one-goroutine-per-
// table concurrency.
func (t *Table) Run(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-t.inbox:
			if !ok {
				return
			}
			t.handle(cmd)
		}
	}
}

// Close stops accepting new commands. Safe to call once.
func (t *Table) Close() { close(t.inbox) }

// Done returns a channel closed when Run returns.
func (t *Table) Done() <-chan struct{} { return t.done }

func (t *Table) submit(cmd command) error {
	reply := make(chan error, 1)
	cmd.reply = reply
	select {
	case t.inbox <- cmd:
	case <-t.done:
		return protocolErr(CodeUnknownTable, "table %s is closed", t.id)
	}
	return <-reply
}

// SubmitJoin seats playerID if room and phase is Waiting (spec.md §4.5).
func (t *Table) SubmitJoin(playerID, name string, buyIn int64) error {
	return t.submit(command{kind: cmdJoin, playerID: playerID, name: name, amount: buyIn})
}

// SubmitStart begins the first hand; creator-only, needs >=2 seats.
func (t *Table) SubmitStart(playerID string) error {
	return t.submit(command{kind: cmdStart, playerID: playerID})
}

// SubmitAction applies a player action via the betting engine (C4).
func (t *Table) SubmitAction(playerID string, kind betting.Kind, amount int64) error {
	return t.submit(command{kind: cmdAction, playerID: playerID, actionKind: kind, amount: amount})
}

// SubmitLeave removes playerID from its seat (folding first if mid-hand).
func (t *Table) SubmitLeave(playerID string) error {
	return t.submit(command{kind: cmdLeave, playerID: playerID})
}

// SubmitRequestState re-sends sanitized state to the requester.
func (t *Table) SubmitRequestState(playerID string) error {
	return t.submit(command{kind: cmdRequestState, playerID: playerID})
}

// SubmitReconnect rebinds a seat to a new session and resends state plus
// that seat's private cards (spec.md §4.7).
func (t *Table) SubmitReconnect(playerID string, sessionID session.ID) error {
	return t.submit(command{kind: cmdReconnect, playerID: playerID, sessionID: sessionID})
}

// SubmitDisconnect marks playerID's seat sitting-out without folding
// (spec.md §4.7).
func (t *Table) SubmitDisconnect(playerID string) error {
	return t.submit(command{kind: cmdDisconnect, playerID: playerID})
}

// Describe returns a sanitized snapshot of the table's current state for
// admin introspection (spec.md §6 "Administrative endpoints ...
// per-table inspection"). Like every Submit* method it is safe to call
// from any goroutine: the snapshot is built inside the table's own
// executor so it never races with a concurrent mutation.
func (t *Table) Describe() (TableStateView, error) {
	reply := make(chan TableStateView, 1)
	select {
	case t.inbox <- command{kind: cmdDescribe, describeReply: reply}:
	case <-t.done:
		return TableStateView{}, protocolErr(CodeUnknownTable, "table %s is closed", t.id)
	}
	select {
	case v := <-reply:
		return v, nil
	case <-t.done:
		return TableStateView{}, protocolErr(CodeUnknownTable, "table %s is closed", t.id)
	}
}

func (t *Table) seatIndexFor(playerID string) (int, bool) {
	idx, ok := t.seatOfPlayer[playerID]
	return idx, ok
}

func (t *Table) nextSeq() uint64 { return t.seq.Next() }

func (t *Table) logSnapshotOnViolation(reason string) {
	if t.log != nil {
		t.log.Errorf("table %s: invariant violation: %s\n%s", t.id, reason, spew.Sdump(t.debugSnapshot()))
	}
}

// debugSnapshot renders enough state for the spew.Sdump log line
// logSnapshotOnViolation emits on invariant violations (spec.md §7).
func (t *Table) debugSnapshot() map[string]any {
	return map[string]any{
		"phase":        t.phase,
		"handNumber":   t.handNumber,
		"dealerButton": t.dealerButton,
		"currentBet":   t.currentBet,
		"minRaise":     t.minRaise,
		"community":    t.community,
		"seats":        t.seats,
	}
}

// appendActionLog appends to the bounded ring (spec.md §3 "action log
// (bounded ring)"), dropping the oldest entry once MaxActionLogLen is hit.
func (t *Table) appendActionLog(e ActionLogEntry) {
	t.actionLog = append(t.actionLog, e)
	max := t.cfg.MaxActionLogLen
	if max <= 0 {
		max = 200
	}
	if len(t.actionLog) > max {
		t.actionLog = t.actionLog[len(t.actionLog)-max:]
	}
}

// fundableSeats returns seat indices eligible to be dealt into a hand.
func (t *Table) fundableSeats() []int {
	var out []int
	for i := range t.seats {
		if t.seats[i].Fundable() {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// nonFoldedSeats returns seat indices still in the current hand.
func (t *Table) nonFoldedSeats() []int {
	var out []int
	for i := range t.seats {
		if t.seats[i].Seated && !t.seats[i].Folded && t.handActive(i) {
			out = append(out, i)
		}
	}
	return out
}

// handActive reports whether seat i was dealt into the current hand (has
// hole cards or folded this hand) — used to distinguish seats that joined
// mid-hand (not dealt in) from active ones.
func (t *Table) handActive(i int) bool {
	return t.seats[i].HasHole || t.seats[i].Folded
}

// bettingSeats returns the betting.Seat view of every seat dealt into the
// current hand. Unseated/not-dealt-in seats are excluded: betting.
// RoundComplete only skips Folded/AllIn seats, so an empty seat included
// here would never be considered "acted" and RoundComplete would never
// report true in any hand smaller than the table's full seat count.
func (t *Table) bettingSeats() []betting.Seat {
	out := make([]betting.Seat, 0, len(t.seats))
	for i, s := range t.seats {
		if !t.handActive(i) {
			continue
		}
		out = append(out, betting.Seat{
			Stack: s.Stack, RoundBet: s.RoundBet, Folded: s.Folded,
			AllIn: s.AllIn, ActedThisRound: s.ActedThisRound,
		})
	}
	return out
}

func (t *Table) deadlineAt() time.Time {
	if t.cfg.ActionDeadline <= 0 {
		return time.Time{}
	}
	return t.clk.Now().Add(t.cfg.ActionDeadline)
}
