package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/jobradar/internal/job"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const postingColumns = `hash, title, company, url, location, description, source,
	remote, salary_min, salary_max, salary_currency, posted_at,
	score, breakdown, times_seen, first_seen, last_seen, repost_count,
	ghost_score, ghost_reasons, hidden, bookmarked, notes`

// Upsert inserts p or, when its hash already exists, refreshes the mutable
// fields and bumps times_seen. first_seen and the user flags are preserved.
func (s *Store) Upsert(ctx context.Context, p job.Posting, now time.Time) (UpsertOutcome, error) {
	return upsert(ctx, s.writeDB, p, now)
}

func upsert(ctx context.Context, db execer, p job.Posting, now time.Time) (UpsertOutcome, error) {
	p.EnsureHash()
	if err := job.Validate(p); err != nil {
		return UpsertOutcome{}, err
	}

	breakdown, err := json.Marshal(p.Breakdown)
	if err != nil {
		return UpsertOutcome{}, fmt.Errorf("encoding breakdown: %w", err)
	}
	reasons := p.GhostReasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return UpsertOutcome{}, fmt.Errorf("encoding ghost reasons: %w", err)
	}

	now = now.UTC()
	var (
		timesSeen int
		hidden    bool
	)
	err = db.QueryRowContext(ctx, `
		INSERT INTO postings (`+postingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			title           = excluded.title,
			company         = excluded.company,
			url             = excluded.url,
			location        = excluded.location,
			description     = excluded.description,
			source          = excluded.source,
			remote          = excluded.remote,
			salary_min      = excluded.salary_min,
			salary_max      = excluded.salary_max,
			salary_currency = excluded.salary_currency,
			posted_at       = COALESCE(excluded.posted_at, postings.posted_at),
			score           = excluded.score,
			breakdown       = excluded.breakdown,
			repost_count    = excluded.repost_count,
			ghost_score     = excluded.ghost_score,
			ghost_reasons   = excluded.ghost_reasons,
			last_seen       = excluded.last_seen,
			times_seen      = postings.times_seen + 1
		RETURNING times_seen, hidden
	`,
		p.Hash, p.Title, p.Company, p.URL, p.Location, p.Description, p.Source,
		nullBool(p.Remote), nullInt(p.SalaryMin), nullInt(p.SalaryMax), p.SalaryCurrency, nullTime(p.PostedAt),
		p.Score, string(breakdown), now, now, p.RepostCount,
		p.GhostScore, string(reasonsJSON), p.Hidden, p.Bookmarked, p.Notes,
	).Scan(&timesSeen, &hidden)
	if err != nil {
		return UpsertOutcome{}, fmt.Errorf("upserting posting %s: %w", p.Hash, err)
	}
	return UpsertOutcome{New: timesSeen == 1, TimesSeen: timesSeen, Hidden: hidden}, nil
}

// Get returns the posting with the given hash or ErrNotFound.
func (s *Store) Get(ctx context.Context, hash string) (job.Posting, error) {
	row := s.readDB.QueryRowContext(ctx, "SELECT "+postingColumns+" FROM postings WHERE hash = ?", hash)
	p, err := scanPosting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return job.Posting{}, fmt.Errorf("%s: %w", hash, ErrNotFound)
	}
	return p, err
}

// Resolve expands a unique hash prefix to the full hash.
func (s *Store) Resolve(ctx context.Context, prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("empty hash: %w", ErrNotFound)
	}
	rows, err := s.readDB.QueryContext(ctx, "SELECT hash FROM postings WHERE hash LIKE ? LIMIT 2", prefix+"%")
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", prefix, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return "", fmt.Errorf("scanning hash: %w", err)
		}
		matches = append(matches, h)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", prefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("hash prefix %q is ambiguous", prefix)
	}
}

// List returns postings matching opts. Hidden postings are excluded unless
// IncludeHidden is set.
func (s *Store) List(ctx context.Context, opts QueryOpts) ([]job.Posting, error) {
	var (
		where []string
		args  []any
	)

	if !opts.IncludeHidden {
		where = append(where, "hidden = 0")
	}
	if opts.BookmarkedOnly {
		where = append(where, "bookmarked = 1")
	}
	if !opts.Since.IsZero() {
		where = append(where, "last_seen >= ?")
		args = append(args, opts.Since.UTC())
	}
	if opts.MinScore > 0 {
		where = append(where, "score >= ?")
		args = append(args, opts.MinScore)
	}
	if len(opts.Sources) > 0 {
		placeholders := make([]string, len(opts.Sources))
		for i, src := range opts.Sources {
			placeholders[i] = "?"
			args = append(args, src)
		}
		where = append(where, "source IN ("+strings.Join(placeholders, ",")+")") //nolint:gosec
	}
	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR company LIKE ? OR description LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term, term)
	}

	query := "SELECT " + postingColumns + " FROM postings"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch opts.OrderBy {
	case OrderRecent:
		query += " ORDER BY last_seen DESC, score DESC"
	case OrderGhost:
		query += " ORDER BY ghost_score DESC, score DESC"
	default:
		query += " ORDER BY score DESC, last_seen DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	var postings []job.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// Sources lists the distinct source names present in the store.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.readDB.QueryContext(ctx, "SELECT DISTINCT source FROM postings ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *Store) SetHidden(ctx context.Context, hash string, hidden bool) error {
	return s.updateFlag(ctx, "UPDATE postings SET hidden = ? WHERE hash = ?", hidden, hash)
}

func (s *Store) SetBookmarked(ctx context.Context, hash string, bookmarked bool) error {
	return s.updateFlag(ctx, "UPDATE postings SET bookmarked = ? WHERE hash = ?", bookmarked, hash)
}

func (s *Store) SetNotes(ctx context.Context, hash, notes string) error {
	if err := job.ValidateNotes(notes); err != nil {
		return err
	}
	return s.updateFlag(ctx, "UPDATE postings SET notes = ? WHERE hash = ?", notes, hash)
}

func (s *Store) updateFlag(ctx context.Context, query string, value any, hash string) error {
	res, err := s.writeDB.ExecContext(ctx, query, value, hash)
	if err != nil {
		return fmt.Errorf("updating posting %s: %w", hash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating posting %s: %w", hash, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", hash, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(r rowScanner) (job.Posting, error) {
	var (
		p          job.Posting
		remote     sql.NullBool
		salaryMin  sql.NullInt64
		salaryMax  sql.NullInt64
		postedAt   sql.NullTime
		breakdown  string
		reasons    string
		hidden     bool
		bookmarked bool
	)
	err := r.Scan(
		&p.Hash, &p.Title, &p.Company, &p.URL, &p.Location, &p.Description, &p.Source,
		&remote, &salaryMin, &salaryMax, &p.SalaryCurrency, &postedAt,
		&p.Score, &breakdown, &p.TimesSeen, &p.FirstSeen, &p.LastSeen, &p.RepostCount,
		&p.GhostScore, &reasons, &hidden, &bookmarked, &p.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scanning posting: %w", err)
	}

	if remote.Valid {
		p.Remote = &remote.Bool
	}
	if salaryMin.Valid {
		p.SalaryMin = &salaryMin.Int64
	}
	if salaryMax.Valid {
		p.SalaryMax = &salaryMax.Int64
	}
	if postedAt.Valid {
		p.PostedAt = postedAt.Time
	}
	p.Hidden, p.Bookmarked = hidden, bookmarked

	if err := json.Unmarshal([]byte(breakdown), &p.Breakdown); err != nil {
		return p, fmt.Errorf("decoding breakdown for %s: %w", p.Hash, err)
	}
	if err := json.Unmarshal([]byte(reasons), &p.GhostReasons); err != nil {
		return p, fmt.Errorf("decoding ghost reasons for %s: %w", p.Hash, err)
	}
	return p, nil
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
