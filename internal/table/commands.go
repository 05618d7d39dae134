package table

import (
	"github.com/vctt94/pokertable/internal/betting"
	"github.com/vctt94/pokertable/internal/session"
)

type cmdKind int

const (
	cmdJoin cmdKind = iota
	cmdStart
	cmdAction
	cmdLeave
	cmdRequestState
	cmdReconnect
	cmdDisconnect
	cmdTimerFire
	cmdDescribe
)

type command struct {
	kind cmdKind

	playerID  string
	name      string
	sessionID session.ID

	actionKind betting.Kind
	amount     int64

	timerGen uint64

	reply         chan error
	describeReply chan TableStateView
}

// handle dispatches one command inside the table's single executor
// goroutine (spec.md §5: "no two events for the same table execute
// concurrently"). It never panics on input errors — they become a
// typed error returned via cmd.reply / surfaced as an outbound error
// event (spec.md §7).
func (t *Table) handle(cmd command) {
	var err error
	switch cmd.kind {
	case cmdJoin:
		err = t.onJoin(cmd.playerID, cmd.name, cmd.amount)
	case cmdStart:
		err = t.onStart(cmd.playerID)
	case cmdAction:
		err = t.onAction(cmd.playerID, cmd.actionKind, cmd.amount)
	case cmdLeave:
		err = t.onLeave(cmd.playerID)
	case cmdRequestState:
		err = t.onRequestState(cmd.playerID)
	case cmdReconnect:
		err = t.onReconnect(cmd.playerID, cmd.sessionID)
	case cmdDisconnect:
		err = t.onDisconnect(cmd.playerID)
	case cmdTimerFire:
		t.onTimerFire(cmd.timerGen)
	case cmdDescribe:
		cmd.describeReply <- t.buildTableStateView()
		return
	}
	if cmd.reply != nil {
		cmd.reply <- err
	}
}

// scheduleTimerFire wires the scheduler's fire callback back into this
// table's own inbox, so timer firings are linearized with player actions
// exactly like any other event (spec.md §5 ordering guarantee (2)).
func (t *Table) scheduleTimerFire() {
	if t.cfg.ActionDeadline <= 0 {
		return
	}
	t.sched.Schedule(t.cfg.ActionDeadline, func(gen uint64) {
		select {
		case t.inbox <- command{kind: cmdTimerFire, timerGen: gen}:
		case <-t.done:
		}
	})
}
