// Package cache provides the in-memory snapshot store backing the page
// handlers and a short-TTL quote cache for the alert checker.
//
// Snapshots are replaced whole by background jobs and read concurrently by
// request handlers; readers always see the last completed snapshot. Each
// write-through persists the snapshot to cache.db so a restart can serve the
// last good data before the first refresh completes.
package cache

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot names used by the market module.
const (
	SnapshotMoneyFlow = "money_flow"
	SnapshotThemes    = "theme_list"
)

type entry struct {
	data      []byte
	updatedAt time.Time
}

// SnapshotStore holds whole-value snapshots keyed by name.
type SnapshotStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	db      *sql.DB // optional persistence; nil disables it
	log     zerolog.Logger
}

// NewSnapshotStore creates a snapshot store. db may be nil (memory-only).
func NewSnapshotStore(db *sql.DB, log zerolog.Logger) *SnapshotStore {
	return &SnapshotStore{
		entries: make(map[string]entry),
		db:      db,
		log:     log.With().Str("component", "snapshot_store").Logger(),
	}
}

// Set replaces the snapshot for name with v. The value is serialized once and
// the whole entry is swapped, so concurrent readers never observe a partial
// update.
func (s *SnapshotStore) Set(name string, v interface{}) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", name, err)
	}

	now := time.Now()

	s.mu.Lock()
	s.entries[name] = entry{data: data, updatedAt: now}
	s.mu.Unlock()

	if s.db != nil {
		_, err := s.db.Exec(
			"INSERT OR REPLACE INTO snapshots (name, data, updated_at) VALUES (?, ?, ?)",
			name, data, now.Unix(),
		)
		if err != nil {
			// Persistence is best-effort; the in-memory copy already serves reads
			s.log.Warn().Err(err).Str("snapshot", name).Msg("Failed to persist snapshot")
		}
	}

	return nil
}

// Get loads the snapshot for name into out and returns its update time.
// Returns false when no snapshot has ever been stored.
func (s *SnapshotStore) Get(name string, out interface{}) (time.Time, bool) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()

	if !ok {
		return time.Time{}, false
	}
	if err := msgpack.Unmarshal(e.data, out); err != nil {
		s.log.Error().Err(err).Str("snapshot", name).Msg("Failed to unmarshal snapshot")
		return time.Time{}, false
	}
	return e.updatedAt, true
}

// Restore loads persisted snapshots from cache.db into memory. Called once at
// startup so a cold process can serve the last good data immediately.
func (s *SnapshotStore) Restore() error {
	if s.db == nil {
		return nil
	}

	rows, err := s.db.Query("SELECT name, data, updated_at FROM snapshots")
	if err != nil {
		return fmt.Errorf("failed to load persisted snapshots: %w", err)
	}
	defer rows.Close()

	restored := 0
	for rows.Next() {
		var name string
		var data []byte
		var updatedAt int64
		if err := rows.Scan(&name, &data, &updatedAt); err != nil {
			return fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		s.mu.Lock()
		s.entries[name] = entry{data: data, updatedAt: time.Unix(updatedAt, 0)}
		s.mu.Unlock()
		restored++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	if restored > 0 {
		s.log.Info().Int("count", restored).Msg("Restored persisted snapshots")
	}
	return nil
}
