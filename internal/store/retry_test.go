package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyBalanceStore struct {
	failCount int
	credits   []int64
}

func (f *flakyBalanceStore) Debit(context.Context, string, int64) (bool, error) { return true, nil }
func (f *flakyBalanceStore) GetBalance(context.Context, string) (int64, error)  { return 0, nil }
func (f *flakyBalanceStore) Credit(_ context.Context, _ string, amount int64) error {
	if f.failCount > 0 {
		f.failCount--
		return errors.New("transient failure")
	}
	f.credits = append(f.credits, amount)
	return nil
}

func TestCreditWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	bs := &flakyBalanceStore{failCount: 2}
	rec := &MemoryReconciler{}
	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond}

	CreditWithRetry(context.Background(), bs, rec, cfg, "alice", 100)

	if len(bs.credits) != 1 || bs.credits[0] != 100 {
		t.Fatalf("credits = %v, want a single 100", bs.credits)
	}
	if len(rec.Entries()) != 0 {
		t.Fatal("a reconciliation entry was recorded despite eventual success")
	}
}

func TestCreditWithRetryRecordsReconciliationOnExhaustion(t *testing.T) {
	bs := &flakyBalanceStore{failCount: 100}
	rec := &MemoryReconciler{}
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}

	CreditWithRetry(context.Background(), bs, rec, cfg, "bob", 50)

	entries := rec.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].PlayerID != "bob" || entries[0].Amount != 50 || entries[0].Operation != "credit" {
		t.Fatalf("unexpected reconciliation entry: %+v", entries[0])
	}
}

func TestCreditWithRetryStopsOnContextCancellation(t *testing.T) {
	bs := &flakyBalanceStore{failCount: 100}
	rec := &MemoryReconciler{}
	cfg := RetryConfig{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	CreditWithRetry(ctx, bs, rec, cfg, "carol", 25)

	if len(rec.Entries()) != 1 {
		t.Fatalf("len(entries) = %d, want 1 after immediate cancellation", len(rec.Entries()))
	}
}
