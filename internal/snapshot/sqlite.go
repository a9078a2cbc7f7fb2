// Package snapshot provides durable session snapshot stores.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/bakelab/levain/internal/domain"
	"github.com/bakelab/levain/internal/logger"
)

// Compile-time interface check.
var _ domain.SnapshotStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the session snapshot in a single-row SQLite table.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type SQLiteStore struct {
	mu  sync.Mutex
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteStore opens (creating if needed) the snapshot database.
func NewSQLiteStore(dbPath string, log *logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		payload BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save overwrites the snapshot slot.
func (s *SQLiteStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (slot, payload, saved_at) VALUES (1, ?, unixepoch())
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		payload,
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.log.Debug("snapshot saved (%d bytes)", len(payload))
	return nil
}

// Load reads the snapshot slot. An empty slot or an unparsable payload both
// yield (nil, nil) — the caller sees "no session" either way.
func (s *SQLiteStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM session WHERE slot = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		s.log.Warn("discarding unreadable snapshot: %v", err)
		return nil, nil
	}
	return &snap, nil
}

// Clear erases the snapshot slot.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE slot = 1`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	s.log.Debug("snapshot cleared")
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
