package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/score"
)

// TrackRepost records one sighting of the normalized (company, title,
// source) key and returns the updated entry. The count never resets.
func (s *Store) TrackRepost(ctx context.Context, company, title, source string, now time.Time) (RepostEntry, error) {
	return trackRepost(ctx, s.writeDB, company, title, source, now)
}

func trackRepost(ctx context.Context, db execer, company, title, source string, now time.Time) (RepostEntry, error) {
	e := RepostEntry{
		Company: job.Normalize(company),
		Title:   job.Normalize(title),
		Source:  strings.TrimSpace(source),
	}
	now = now.UTC()
	_, err := db.ExecContext(ctx, `
		INSERT INTO repost_history (company, title, source, repost_count, first_seen, last_seen)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(company, title, source) DO UPDATE SET
			repost_count = repost_history.repost_count + 1,
			last_seen    = excluded.last_seen
	`, e.Company, e.Title, e.Source, now, now)
	if err != nil {
		return RepostEntry{}, fmt.Errorf("tracking repost for %s/%s: %w", e.Company, e.Title, err)
	}
	err = db.QueryRowContext(ctx, `
		SELECT repost_count, first_seen, last_seen FROM repost_history
		WHERE company = ? AND title = ? AND source = ?
	`, e.Company, e.Title, e.Source).Scan(&e.RepostCount, &e.FirstSeen, &e.LastSeen)
	if err != nil {
		return RepostEntry{}, fmt.Errorf("reading repost history for %s/%s: %w", e.Company, e.Title, err)
	}
	return e, nil
}

// Observe records a scored posting in one transaction: the repost history
// is bumped, the ghost detector runs against it, and the posting is upserted
// with the resulting ghost fields. Invalid postings are rejected before any
// write with a *job.ValidationError.
func (s *Store) Observe(ctx context.Context, p job.Posting, detector score.GhostDetector, now time.Time) (Observation, error) {
	p.EnsureHash()
	if err := job.Validate(p); err != nil {
		return Observation{}, err
	}

	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return Observation{}, fmt.Errorf("beginning observe: %w", err)
	}
	defer tx.Rollback()

	entry, err := trackRepost(ctx, tx, p.Company, p.Title, p.Source, now)
	if err != nil {
		return Observation{}, err
	}

	ghost := detector.Evaluate(p, entry.History(), now)
	p.GhostScore = ghost.Score
	p.GhostReasons = ghost.Reasons
	p.RepostCount = entry.RepostCount

	outcome, err := upsert(ctx, tx, p, now)
	if err != nil {
		return Observation{}, err
	}
	if err := tx.Commit(); err != nil {
		return Observation{}, fmt.Errorf("committing observe: %w", err)
	}
	return Observation{UpsertOutcome: outcome, Repost: entry, Ghost: ghost}, nil
}
