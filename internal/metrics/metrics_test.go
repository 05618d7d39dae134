package metrics

import (
	"context"
	"testing"

	"github.com/vctt94/pokertable/internal/broadcast"
	"github.com/vctt94/pokertable/internal/clock"
	"github.com/vctt94/pokertable/internal/registry"
	"github.com/vctt94/pokertable/internal/session"
	"github.com/vctt94/pokertable/internal/table"
)

func TestHealthReportsActiveTableCount(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg := registry.New(ctx)
	c := New(reg, nil)

	if got := c.Health().ActiveTables; got != 0 {
		t.Fatalf("ActiveTables = %d, want 0", got)
	}

	deps := table.Deps{Clock: clock.NewReal(), Hub: broadcast.New(8), Sessions: session.New(nil), NumSeats: 2}
	if _, err := reg.Create("alice", table.DefaultConfig(5, 10), deps); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := c.Health().ActiveTables; got != 1 {
		t.Fatalf("ActiveTables = %d, want 1", got)
	}
}

func TestInspectUnknownTableReturnsFalse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg := registry.New(ctx)
	c := New(reg, nil)

	_, ok, err := c.Inspect("000000")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if ok {
		t.Fatalf("Inspect on unknown table reported ok=true")
	}
}

func TestInspectKnownTableReturnsView(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg := registry.New(ctx)
	c := New(reg, nil)

	deps := table.Deps{Clock: clock.NewReal(), Hub: broadcast.New(8), Sessions: session.New(nil), NumSeats: 2}
	tbl, err := reg.Create("alice", table.DefaultConfig(5, 10), deps)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	view, ok, err := c.Inspect(tbl.ID())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !ok {
		t.Fatalf("Inspect reported ok=false for a live table")
	}
	if view.TableID != tbl.ID() {
		t.Fatalf("view.TableID = %q, want %q", view.TableID, tbl.ID())
	}
	if view.Phase != "waiting" {
		t.Fatalf("view.Phase = %q, want waiting", view.Phase)
	}
}
