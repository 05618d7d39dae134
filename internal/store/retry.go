package store

import (
	"context"
	"time"
)

// RetryConfig bounds the backoff used for persistence operations
// (spec.md §7: "retry with bounded backoff; if exhausted, record a
// reconciliation entry; do not block the next hand").
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryConfig is a conservative default: a handful of short
// retries, never long enough to meaningfully delay the next hand.
var DefaultRetryConfig = RetryConfig{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond}

// ReconciliationEntry records a persistence operation that exhausted its
// retry budget, so an out-of-band process can reconcile it later.
type ReconciliationEntry struct {
	PlayerID  string
	Amount    int64
	Operation string // "credit" or "debit"
	Err       error
	At        time.Time
}

// Reconciler collects ReconciliationEntry records. The in-process default
// simply appends to a slice; production deployments would swap this for a
// durable queue, which is why it's an interface.
type Reconciler interface {
	Record(entry ReconciliationEntry)
}

// MemoryReconciler is an in-process Reconciler suitable for tests and
// single-node deployments where losing the log on crash is acceptable (a
// durable implementation is a deployment concern, not a core one).
type MemoryReconciler struct {
	entries []ReconciliationEntry
}

func (m *MemoryReconciler) Record(entry ReconciliationEntry) {
	m.entries = append(m.entries, entry)
}

func (m *MemoryReconciler) Entries() []ReconciliationEntry {
	out := make([]ReconciliationEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// CreditWithRetry credits playerID with bounded backoff, recording a
// reconciliation entry (never blocking the caller beyond the retry
// budget) if every attempt fails.
func CreditWithRetry(ctx context.Context, bs BalanceStore, rec Reconciler, cfg RetryConfig, playerID string, amount int64) {
	var err error
	delay := cfg.BaseDelay
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err = bs.Credit(ctx, playerID, amount); err == nil {
			return
		}
		select {
		case <-ctx.Done():
			attempt = cfg.MaxAttempts
		case <-time.After(delay):
		}
		delay *= 2
	}
	if err != nil && rec != nil {
		rec.Record(ReconciliationEntry{PlayerID: playerID, Amount: amount, Operation: "credit", Err: err, At: time.Now()})
	}
}
