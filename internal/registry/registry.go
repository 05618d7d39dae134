// Package registry implements the Table Registry (C9): allocates 6-hex
// table ids with bounded collision retry, owns each table's executor
// goroutine, and routes lookups/shutdown across every live table, per
// spec.md §4.9 and §5. Grounded on TylerPetri-P2Poker's
// internal/cluster/manager.go (TableManager) and router.go (id-keyed
// routing), generalized from that pack's gossip-cluster model to a
// single-process in-memory map, and on golang.org/x/sync/errgroup for
// coordinated per-table goroutine shutdown (spec.md §5).
package registry

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vctt94/pokertable/internal/table"
)

// errTooManyCollisions is returned by Create when 6-hex id allocation
// fails to find a free id within maxIDAttempts.
var errTooManyCollisions = errors.New("registry: exhausted id allocation attempts without finding a free 6-hex id")

// maxIDAttempts bounds the collision-retry loop for 6-hex id allocation
// (spec.md §4.9). 2^24 possible ids makes repeated collisions vanishingly
// unlikely; this is a sanity backstop, not a load-bearing limit.
const maxIDAttempts = 64

// entry pairs a live table with the cancel func that stops its executor
// goroutine.
type entry struct {
	tbl    *table.Table
	cancel context.CancelFunc
}

// Registry owns every table in the process. All methods are safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*entry
	group  *errgroup.Group
	ctx    context.Context
}

// New creates an empty Registry bound to ctx: cancelling ctx (or calling
// Shutdown) stops every table's executor goroutine.
func New(ctx context.Context) *Registry {
	g, gctx := errgroup.WithContext(ctx)
	return &Registry{tables: make(map[string]*entry), group: g, ctx: gctx}
}

// Create allocates a fresh 6-hex table id, constructs a table.Table with
// it, starts its executor goroutine, and registers it.
func (r *Registry) Create(creatorID string, cfg table.Config, deps table.Deps) (*table.Table, error) {
	r.mu.Lock()
	id, err := r.allocateIDLocked()
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	tbl := table.New(id, creatorID, cfg, deps)
	tctx, cancel := context.WithCancel(r.ctx)
	r.tables[id] = &entry{tbl: tbl, cancel: cancel}
	r.mu.Unlock()

	r.group.Go(func() error {
		tbl.Run(tctx)
		return nil
	})
	return tbl, nil
}

// Resume registers an already-constructed table.Table (typically built by
// table.Resume from a persisted snapshot) under its own id and starts its
// executor goroutine, per spec.md §6's recovery-on-boot requirement.
// Returns an error if that id is already registered.
func (r *Registry) Resume(tbl *table.Table) error {
	r.mu.Lock()
	id := tbl.ID()
	if _, exists := r.tables[id]; exists {
		r.mu.Unlock()
		return fmt.Errorf("registry: table %s already registered", id)
	}
	tctx, cancel := context.WithCancel(r.ctx)
	r.tables[id] = &entry{tbl: tbl, cancel: cancel}
	r.mu.Unlock()

	r.group.Go(func() error {
		tbl.Run(tctx)
		return nil
	})
	return nil
}

// allocateIDLocked must be called with mu held. It generates random
// 6-hex ids, retrying on collision up to maxIDAttempts.
func (r *Registry) allocateIDLocked() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := randomHexID()
		if err != nil {
			return "", err
		}
		if _, exists := r.tables[id]; !exists {
			return id, nil
		}
	}
	return "", errTooManyCollisions
}

func randomHexID() (string, error) {
	var buf [3]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

// Find returns the table registered under id, if any (spec.md §4.9's
// inbox-per-table routing: callers dispatch an Inbound message by
// looking up its TableID here and calling the matching Submit* method).
func (r *Registry) Find(id string) (*table.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tables[id]
	if !ok {
		return nil, false
	}
	return e.tbl, true
}

// Destroy stops id's executor goroutine and removes it from the
// registry. Returns false if id was not registered.
func (r *Registry) Destroy(id string) bool {
	r.mu.Lock()
	e, ok := r.tables[id]
	if ok {
		delete(r.tables, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.cancel()
	e.tbl.Close()
	return true
}

// List returns every currently registered table id, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tables))
	for id := range r.tables {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of currently registered tables.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Shutdown cancels every table's executor and blocks until all of them
// have returned (spec.md §5 "graceful shutdown fan-in across the Table
// Registry").
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	for id, e := range r.tables {
		e.cancel()
		delete(r.tables, id)
	}
	r.mu.Unlock()
	return r.group.Wait()
}
