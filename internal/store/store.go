// Package store persists postings, repost history and scoring settings in
// an embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no posting has the requested hash.
var ErrNotFound = errors.New("posting not found")

const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// Store splits access into a single-connection writer and a read pool so
// writes are serialized while the TUI keeps reading.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+pragmas)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS postings (
			hash            TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			company         TEXT NOT NULL DEFAULT '',
			url             TEXT NOT NULL,
			location        TEXT NOT NULL DEFAULT '',
			description     TEXT NOT NULL DEFAULT '',
			source          TEXT NOT NULL DEFAULT '',
			remote          INTEGER,
			salary_min      INTEGER,
			salary_max      INTEGER,
			salary_currency TEXT NOT NULL DEFAULT '',
			posted_at       DATETIME,
			score           REAL NOT NULL DEFAULT 0,
			breakdown       TEXT NOT NULL DEFAULT '{}',
			times_seen      INTEGER NOT NULL DEFAULT 1,
			first_seen      DATETIME NOT NULL,
			last_seen       DATETIME NOT NULL,
			repost_count    INTEGER NOT NULL DEFAULT 0,
			ghost_score     REAL NOT NULL DEFAULT 0,
			ghost_reasons   TEXT NOT NULL DEFAULT '[]',
			hidden          INTEGER NOT NULL DEFAULT 0,
			bookmarked      INTEGER NOT NULL DEFAULT 0,
			notes           TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_postings_score ON postings(score DESC);
		CREATE INDEX IF NOT EXISTS idx_postings_last_seen ON postings(last_seen DESC);
		CREATE INDEX IF NOT EXISTS idx_postings_source ON postings(source);

		CREATE TABLE IF NOT EXISTS repost_history (
			company      TEXT NOT NULL,
			title        TEXT NOT NULL,
			source       TEXT NOT NULL,
			repost_count INTEGER NOT NULL DEFAULT 1,
			first_seen   DATETIME NOT NULL,
			last_seen    DATETIME NOT NULL,
			UNIQUE(company, title, source)
		);

		CREATE TABLE IF NOT EXISTS scoring_config (
			id       INTEGER PRIMARY KEY CHECK (id = 1),
			skills   REAL NOT NULL,
			salary   REAL NOT NULL,
			location REAL NOT NULL,
			company  REAL NOT NULL,
			recency  REAL NOT NULL,
			updated  DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

// LastCycle returns when the last cycle finished persisting, or the zero
// time if none has.
func (s *Store) LastCycle(ctx context.Context) (time.Time, error) {
	var value string
	err := s.readDB.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'last_cycle'").Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading last cycle: %w", err)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing last cycle %q: %w", value, err)
	}
	return t, nil
}

func (s *Store) SetLastCycle(ctx context.Context, t time.Time) error {
	_, err := s.writeDB.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('last_cycle', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, t.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording last cycle: %w", err)
	}
	return nil
}

// NeedsRefresh reports whether no cycle completed within interval.
func (s *Store) NeedsRefresh(ctx context.Context, interval time.Duration) bool {
	last, err := s.LastCycle(ctx)
	if err != nil || last.IsZero() {
		return true
	}
	return time.Since(last) > interval
}

// Stats counts rows and reports the database file size. The WAL file is
// included when present.
func (s *Store) Stats(ctx context.Context, dbPath string) (Stats, error) {
	var st Stats
	err := s.readDB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(hidden), 0),
			COALESCE(SUM(bookmarked), 0),
			COALESCE(SUM(CASE WHEN ghost_score >= 0.5 THEN 1 ELSE 0 END), 0)
		FROM postings
	`).Scan(&st.Postings, &st.Hidden, &st.Bookmarked, &st.Ghosts)
	if err != nil {
		return st, fmt.Errorf("counting postings: %w", err)
	}
	if err := s.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM repost_history").Scan(&st.RepostKeys); err != nil {
		return st, fmt.Errorf("counting repost history: %w", err)
	}

	for _, p := range []string{dbPath, dbPath + "-wal"} {
		if fi, err := os.Stat(p); err == nil {
			st.SizeBytes += fi.Size()
		}
	}

	last, err := s.LastCycle(ctx)
	if err != nil {
		return st, err
	}
	st.LastCycle = last
	return st, nil
}
