package score

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/matheuskafuri/jobradar/internal/job"
)

// Matcher produces the five sub-scores for a posting. The engine trusts the
// values (after clamping) and only applies weighting and caching.
type Matcher interface {
	Match(ctx context.Context, p job.Posting, resumeID string) (job.Breakdown, error)
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(ctx context.Context, p job.Posting, resumeID string) (job.Breakdown, error)

func (f MatcherFunc) Match(ctx context.Context, p job.Posting, resumeID string) (job.Breakdown, error) {
	return f(ctx, p, resumeID)
}

// Result is shared between the cache and callers; treat it as read-only.
type Result struct {
	Score       float64
	Breakdown   job.Breakdown
	ScoredAt    time.Time
	fingerprint uint64
}

// Engine scores postings against the configured weights, consulting the
// cache first.
type Engine struct {
	matcher Matcher
	cache   *Cache

	mu       sync.RWMutex
	weights  Weights
	resumeID string
}

// NewEngine validates w before returning. A nil cache disables memoization.
func NewEngine(m Matcher, c *Cache, w Weights, resumeID string) (*Engine, error) {
	if m == nil {
		return nil, fmt.Errorf("score: matcher is required")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Engine{matcher: m, cache: c, weights: w, resumeID: resumeID}, nil
}

// Score returns the composite score for p. A cached result is returned as is
// unless the posting content changed since it was computed, in which case the
// job's entries are invalidated and the posting rescored.
func (e *Engine) Score(ctx context.Context, p job.Posting) (*Result, error) {
	p.EnsureHash()

	e.mu.RLock()
	w, resumeID := e.weights, e.resumeID
	e.mu.RUnlock()

	key := Key{JobHash: p.Hash, ResumeID: resumeID}
	fp := fingerprint(p)

	if e.cache != nil {
		r, ok, changed := e.cache.lookup(key, func(r *Result) bool { return r.fingerprint == fp })
		if ok {
			return r, nil
		}
		if changed {
			e.cache.InvalidateByJob(p.Hash)
		}
	}

	b, err := e.matcher.Match(ctx, p, resumeID)
	if err != nil {
		return nil, fmt.Errorf("matching %s: %w", p.Hash, err)
	}
	b = job.Breakdown{
		Skills:   clamp01(b.Skills),
		Salary:   clamp01(b.Salary),
		Location: clamp01(b.Location),
		Company:  clamp01(b.Company),
		Recency:  clamp01(b.Recency),
	}

	r := &Result{
		Score:       w.Combine(b),
		Breakdown:   b,
		ScoredAt:    time.Now(),
		fingerprint: fp,
	}
	if e.cache != nil {
		e.cache.Set(key, r)
	}
	return r, nil
}

// Weights returns the active weights.
func (e *Engine) Weights() Weights {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weights
}

// SetWeights validates and installs w. Every cached score was computed with
// the old weights, so the cache is cleared.
func (e *Engine) SetWeights(w Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.weights = w
	e.mu.Unlock()
	if e.cache != nil {
		e.cache.Clear()
	}
	return nil
}

// SetResume switches the resume used for matching. Entries for the new id
// are dropped too because the id may refer to an edited resume.
func (e *Engine) SetResume(resumeID string) {
	e.mu.Lock()
	e.resumeID = resumeID
	e.mu.Unlock()
	e.InvalidateResume(resumeID)
}

// InvalidateResume must be called whenever the resume behind id changes.
func (e *Engine) InvalidateResume(resumeID string) int {
	if e.cache == nil {
		return 0
	}
	return e.cache.InvalidateByResume(resumeID)
}

// InvalidateJob must be called whenever a job's description changes.
func (e *Engine) InvalidateJob(hash string) int {
	if e.cache == nil {
		return 0
	}
	return e.cache.InvalidateByJob(hash)
}

// Cache exposes the engine's cache, possibly nil.
func (e *Engine) Cache() *Cache { return e.cache }

// fingerprint covers the fields matchers read, so content edits that keep the
// hash stable still force a rescore.
func fingerprint(p job.Posting) uint64 {
	h := fnv.New64a()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	write(p.Title)
	write(p.Company)
	write(p.Location)
	write(p.Description)
	write(p.PostedAt.UTC().Format(time.RFC3339))
	if p.Remote != nil {
		write(strconv.FormatBool(*p.Remote))
	}
	if p.SalaryMin != nil {
		write(strconv.FormatInt(*p.SalaryMin, 10))
	}
	write("|")
	if p.SalaryMax != nil {
		write(strconv.FormatInt(*p.SalaryMax, 10))
	}
	return h.Sum64()
}
