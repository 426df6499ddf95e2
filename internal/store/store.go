// Package store persists daemon state in a local SQLite database: the
// mission catalog, the latest feed snapshots for stale-cache fallback, and
// a sync log.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/artemisops/orbitdeck/internal/missions"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Snapshot kinds persisted for cache fallback.
const (
	KindPosition = "position"
	KindCrew     = "crew"
	KindLocation = "location"
)

const schema = `
CREATE TABLE IF NOT EXISTS missions (
	slug        TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	type        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT '',
	launch_date TEXT NOT NULL DEFAULT '',
	site        TEXT NOT NULL DEFAULT '',
	rocket      TEXT NOT NULL DEFAULT '',
	spacecraft  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS snapshots (
	kind       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	fetched_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	ok         INTEGER NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. The schema is idempotent, so reopening an existing database is
// safe.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent pollers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertMissions replaces or inserts catalog rows by slug.
func (s *Store) UpsertMissions(list []missions.Mission) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO missions (slug, name, type, status, launch_date, site, rocket, spacecraft)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			status = excluded.status,
			launch_date = excluded.launch_date,
			site = excluded.site,
			rocket = excluded.rocket,
			spacecraft = excluded.spacecraft`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range list {
		launch := ""
		if !m.LaunchDate.IsZero() {
			launch = m.LaunchDate.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.Exec(m.Slug, m.Name, m.Type, m.Status, launch, m.Site, m.Rocket, m.Spacecraft); err != nil {
			return fmt.Errorf("upsert mission %s: %w", m.Slug, err)
		}
	}

	return tx.Commit()
}

// Missions returns all catalog rows ordered by launch date.
func (s *Store) Missions() ([]missions.Mission, error) {
	rows, err := s.db.Query(`
		SELECT slug, name, type, status, launch_date, site, rocket, spacecraft
		FROM missions ORDER BY launch_date`)
	if err != nil {
		return nil, fmt.Errorf("query missions: %w", err)
	}
	defer rows.Close()

	var out []missions.Mission
	for rows.Next() {
		var m missions.Mission
		var launch string
		if err := rows.Scan(&m.Slug, &m.Name, &m.Type, &m.Status, &launch, &m.Site, &m.Rocket, &m.Spacecraft); err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		if launch != "" {
			if t, err := time.Parse(time.RFC3339, launch); err == nil {
				m.LaunchDate = t
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Mission returns one catalog row by slug.
func (s *Store) Mission(slug string) (missions.Mission, error) {
	var m missions.Mission
	var launch string
	err := s.db.QueryRow(`
		SELECT slug, name, type, status, launch_date, site, rocket, spacecraft
		FROM missions WHERE slug = ?`, slug).
		Scan(&m.Slug, &m.Name, &m.Type, &m.Status, &launch, &m.Site, &m.Rocket, &m.Spacecraft)
	if errors.Is(err, sql.ErrNoRows) {
		return missions.Mission{}, ErrNotFound
	}
	if err != nil {
		return missions.Mission{}, fmt.Errorf("query mission: %w", err)
	}
	if launch != "" {
		if t, err := time.Parse(time.RFC3339, launch); err == nil {
			m.LaunchDate = t
		}
	}
	return m, nil
}

// PutSnapshot stores the JSON encoding of v under kind, replacing any
// previous snapshot of that kind.
func (s *Store) PutSnapshot(kind string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", kind, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO snapshots (kind, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		kind, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store snapshot %s: %w", kind, err)
	}
	return nil
}

// Snapshot decodes the stored snapshot of kind into v. The stale return is
// true when the snapshot is older than ttl; the data is still returned so
// callers can serve it with a staleness marker.
func (s *Store) Snapshot(kind string, ttl time.Duration, v interface{}) (stale bool, err error) {
	var payload string
	var fetchedAt time.Time
	err = s.db.QueryRow(`SELECT payload, fetched_at FROM snapshots WHERE kind = ?`, kind).
		Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query snapshot %s: %w", kind, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", kind, err)
	}
	return ttl > 0 && time.Since(fetchedAt) > ttl, nil
}

// LogSync appends one row to the sync log.
func (s *Store) LogSync(kind string, ok bool, detail string) error {
	okInt := 0
	if ok {
		okInt = 1
	}
	if _, err := s.db.Exec(`INSERT INTO sync_log (kind, ok, detail) VALUES (?, ?, ?)`,
		kind, okInt, detail); err != nil {
		return fmt.Errorf("log sync: %w", err)
	}
	return nil
}

// SyncFailures counts consecutive trailing failures for a kind, used to
// decide when the daemon should alert on a dead feed.
func (s *Store) SyncFailures(kind string) (int, error) {
	rows, err := s.db.Query(`SELECT ok FROM sync_log WHERE kind = ? ORDER BY id DESC LIMIT 50`, kind)
	if err != nil {
		return 0, fmt.Errorf("query sync log: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var ok int
		if err := rows.Scan(&ok); err != nil {
			return 0, fmt.Errorf("scan sync log: %w", err)
		}
		if ok == 1 {
			break
		}
		count++
	}
	return count, rows.Err()
}
