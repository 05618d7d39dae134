package registry

import (
	"context"
	"testing"

	"github.com/vctt94/pokertable/internal/broadcast"
	"github.com/vctt94/pokertable/internal/clock"
	"github.com/vctt94/pokertable/internal/session"
	"github.com/vctt94/pokertable/internal/table"
)

func testDeps(t *testing.T) table.Deps {
	t.Helper()
	return table.Deps{
		Clock:    clock.NewReal(),
		Hub:      broadcast.New(16),
		Sessions: session.New(nil),
		NumSeats: 2,
	}
}

func TestCreateAllocatesIDAndStartsExecutor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := New(ctx)

	tbl, err := r.Create("alice", table.DefaultConfig(5, 10), testDeps(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(tbl.ID()) != 6 {
		t.Fatalf("table id = %q, want 6 hex chars", tbl.ID())
	}

	if err := tbl.SubmitJoin("alice", "Alice", 1000); err != nil {
		t.Fatalf("the registry-started executor never picked up a join: %v", err)
	}
}

func TestFindAndDestroy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := New(ctx)

	tbl, err := r.Create("alice", table.DefaultConfig(5, 10), testDeps(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, ok := r.Find(tbl.ID()); !ok {
		t.Fatal("Find did not locate the just-created table")
	}
	if !r.Destroy(tbl.ID()) {
		t.Fatal("Destroy reported false for a live table")
	}
	if _, ok := r.Find(tbl.ID()); ok {
		t.Fatal("Find still locates a destroyed table")
	}
	if r.Destroy(tbl.ID()) {
		t.Fatal("Destroy reported true for an already-destroyed table")
	}

	select {
	case <-tbl.Done():
	default:
		t.Fatal("destroyed table's executor goroutine never stopped")
	}
}

func TestListIsSortedAndCountTracksLiveTables(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := New(ctx)

	for i := 0; i < 5; i++ {
		if _, err := r.Create("alice", table.DefaultConfig(5, 10), testDeps(t)); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}
	if r.Count() != 5 {
		t.Fatalf("Count() = %d, want 5", r.Count())
	}
	ids := r.List()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("List() not sorted: %v", ids)
		}
	}
}

func TestShutdownStopsEveryTableAndWaits(t *testing.T) {
	r := New(context.Background())

	var ids []string
	for i := 0; i < 3; i++ {
		tbl, err := r.Create("alice", table.DefaultConfig(5, 10), testDeps(t))
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		ids = append(ids, tbl.ID())
	}

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	for _, id := range ids {
		if _, ok := r.Find(id); ok {
			t.Fatalf("table %s still registered after Shutdown", id)
		}
	}
}
