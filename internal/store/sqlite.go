package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a reference implementation of BalanceStore, Identity (a
// trivial bearer-token scheme keyed on the players table), and
// RecoveryStore over a single sqlite database, grounded on the teacher's
// pkg/server/internal/db/db.go schema. Production deployments are
// expected to swap these for real identity/billing services (spec.md §6
// says as much); this implementation exists so the server can run
// standalone.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates/opens the sqlite database at path, creating its schema if
// missing.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			auth_token TEXT NOT NULL UNIQUE,
			balance INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			type TEXT NOT NULL,
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS table_snapshots (
			table_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}
	return nil
}

// Verify implements IdentityVerifier with a trivial bearer-token lookup
// against the players table, standing in for the out-of-core identity
// service named in spec.md §6.
func (s *SQLiteStore) Verify(ctx context.Context, authToken string) (string, error) {
	var playerID string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM players WHERE auth_token = ?`, authToken).Scan(&playerID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("store: unknown auth token")
	}
	if err != nil {
		return "", fmt.Errorf("store: verify: %w", err)
	}
	return playerID, nil
}

// Register creates a player row if missing, for local/dev bootstrapping
// (teacher's registration flow is external; we need some way to seed
// players+tokens for tests and the reference deployment).
func (s *SQLiteStore) Register(ctx context.Context, playerID, authToken string, startingBalance int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, auth_token, balance) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET auth_token=excluded.auth_token`,
		playerID, authToken, startingBalance)
	return err
}

func (s *SQLiteStore) GetBalance(ctx context.Context, playerID string) (int64, error) {
	var bal int64
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM players WHERE id = ?`, playerID).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("store: unknown player %q", playerID)
	}
	return bal, err
}

// Debit implements BalanceStore.Debit: ok=false (no error) on insufficient
// funds, matching spec.md §6's "debit(playerId, amount) -> ok|insufficient".
func (s *SQLiteStore) Debit(ctx context.Context, playerID string, amount int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var bal int64
	if err := tx.QueryRowContext(ctx, `SELECT balance FROM players WHERE id = ?`, playerID).Scan(&bal); err != nil {
		return false, fmt.Errorf("store: debit: %w", err)
	}
	if bal < amount {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE players SET balance = balance - ? WHERE id = ?`, amount, playerID); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (player_id, amount, type, description) VALUES (?, ?, 'debit', 'table buy-in')`,
		playerID, amount); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (s *SQLiteStore) Credit(ctx context.Context, playerID string, amount int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE players SET balance = balance + ? WHERE id = ?`, amount, playerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (player_id, amount, type, description) VALUES (?, ?, 'credit', 'table cash-out')`,
		playerID, amount); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap TableSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO table_snapshots (table_id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(table_id) DO UPDATE SET data=excluded.data, updated_at=CURRENT_TIMESTAMP`,
		snap.TableID, string(data))
	return err
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, tableID string) (TableSnapshot, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM table_snapshots WHERE table_id = ?`, tableID).Scan(&data)
	if err == sql.ErrNoRows {
		return TableSnapshot{}, false, nil
	}
	if err != nil {
		return TableSnapshot{}, false, err
	}
	var snap TableSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return TableSnapshot{}, false, fmt.Errorf("store: unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, tableID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM table_snapshots WHERE table_id = ?`, tableID)
	return err
}

func (s *SQLiteStore) AllTableIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT table_id FROM table_snapshots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
