package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vctt94/pokertable/internal/card"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegisterVerifyRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Register(ctx, "alice", "token-alice", 1000); err != nil {
		t.Fatalf("Register: %v", err)
	}
	playerID, err := s.Verify(ctx, "token-alice")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if playerID != "alice" {
		t.Fatalf("Verify = %q, want alice", playerID)
	}
	if _, err := s.Verify(ctx, "not-a-token"); err == nil {
		t.Fatal("Verify succeeded for an unknown token")
	}
}

func TestDebitCreditAndBalance(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Register(ctx, "bob", "token-bob", 500); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ok, err := s.Debit(ctx, "bob", 200)
	if err != nil || !ok {
		t.Fatalf("Debit(200) = %v, %v; want true, nil", ok, err)
	}
	bal, err := s.GetBalance(ctx, "bob")
	if err != nil || bal != 300 {
		t.Fatalf("GetBalance = %d, %v; want 300, nil", bal, err)
	}

	ok, err = s.Debit(ctx, "bob", 1000)
	if err != nil {
		t.Fatalf("Debit(1000) unexpected error: %v", err)
	}
	if ok {
		t.Fatal("Debit succeeded for an amount exceeding balance")
	}

	if err := s.Credit(ctx, "bob", 50); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	bal, _ = s.GetBalance(ctx, "bob")
	if bal != 350 {
		t.Fatalf("GetBalance after credit = %d, want 350", bal)
	}
}

func TestSnapshotSaveLoadDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := TableSnapshot{
		TableID: "abc123", CreatorID: "alice", Phase: "preflop",
		HandNumber: 1, DealerButton: 0, SmallBlind: 5, BigBlind: 10,
		Community: []card.Card{},
		Seats: []SeatSnapshot{
			{Index: 0, Seated: true, PlayerID: "alice", Stack: 990},
		},
		CurrentActor: 0,
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	ids, err := s.AllTableIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "abc123" {
		t.Fatalf("AllTableIDs = %v, %v; want [abc123], nil", ids, err)
	}

	loaded, ok, err := s.LoadSnapshot(ctx, "abc123")
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot = %v, %v, %v", loaded, ok, err)
	}
	if loaded.HandNumber != 1 || loaded.Seats[0].PlayerID != "alice" {
		t.Fatalf("LoadSnapshot roundtrip mismatch: %+v", loaded)
	}

	// Overwrite via a second save, verify it updates rather than duplicates.
	snap.HandNumber = 2
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot (update): %v", err)
	}
	loaded, _, _ = s.LoadSnapshot(ctx, "abc123")
	if loaded.HandNumber != 2 {
		t.Fatalf("LoadSnapshot after update = handNumber %d, want 2", loaded.HandNumber)
	}

	if err := s.DeleteSnapshot(ctx, "abc123"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if _, ok, _ := s.LoadSnapshot(ctx, "abc123"); ok {
		t.Fatal("snapshot still present after DeleteSnapshot")
	}
}
