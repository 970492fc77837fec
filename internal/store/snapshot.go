// Package store provides a SQLite-backed snapshot of last-known query
// results, so listings remain viewable when the API is unreachable.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pmdash/pmdash/internal/query"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Snapshots persists fetched query results keyed by serialized cache key.
// It implements query.Snapshotter.
type Snapshots struct {
	db  *sql.DB
	log zerolog.Logger
}

// DefaultPath returns the XDG-compliant snapshot database path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "pmdash", "snapshots.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "pmdash", "snapshots.db")
}

// Open opens or creates the snapshot database at the given path.
func Open(dbPath string, log zerolog.Logger) (*Snapshots, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Snapshots{db: db, log: log}, nil
}

// Close closes the snapshot database.
func (s *Snapshots) Close() error {
	return s.db.Close()
}

// Save stores the JSON form of a fetched value. Persistence failures are
// logged, never surfaced: the in-memory cache is the source of truth.
func (s *Snapshots) Save(key query.Key, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot encode failed")
		return
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO snapshots (key, payload, fetched_at)
		VALUES (?, ?, ?)`,
		key.String(), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot write failed")
	}
}

// Invalidate removes every snapshot under the key prefix. A written-over
// snapshot may describe pre-write state, so it cannot be served offline.
func (s *Snapshots) Invalidate(prefix query.Key) {
	p := prefix.String()
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE key = ? OR key LIKE ?`,
		p, p+"\x1f%")
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot invalidate failed")
	}
}

// Load returns the stored payload for a key, missing keys report ok=false.
func (s *Snapshots) Load(key query.Key) (payload []byte, fetchedAt time.Time, ok bool, err error) {
	var raw, at string
	row := s.db.QueryRow(`SELECT payload, fetched_at FROM snapshots WHERE key = ?`, key.String())
	if scanErr := row.Scan(&raw, &at); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, scanErr
	}
	t, _ := time.Parse(time.RFC3339, at)
	return []byte(raw), t, true, nil
}

// LoadInto decodes the stored payload for a key into out.
func (s *Snapshots) LoadInto(key query.Key, out any) (fetchedAt time.Time, ok bool, err error) {
	data, at, ok, err := s.Load(key)
	if err != nil || !ok {
		return at, ok, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return at, false, fmt.Errorf("decoding snapshot: %w", err)
	}
	return at, true, nil
}

// Count returns the number of stored snapshots.
func (s *Snapshots) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n)
	return n, err
}
