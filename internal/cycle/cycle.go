// Package cycle runs one scrape, score and persist pass over every
// configured source.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/retry"
	"github.com/matheuskafuri/jobradar/internal/score"
	"github.com/matheuskafuri/jobradar/internal/source"
	"github.com/matheuskafuri/jobradar/internal/store"
)

// ErrCycleInProgress is returned by Run while another cycle is running.
var ErrCycleInProgress = errors.New("cycle already in progress")

// Stage names used in StageError.
const (
	StageScrape   = "scrape"
	StageValidate = "validate"
	StageScore    = "score"
	StagePersist  = "persist"
	StageNotify   = "notify"
)

const defaultConcurrency = 8

// Notifier delivers alerts for high-scoring postings.
type Notifier interface {
	Notify(ctx context.Context, postings []job.Posting) error
}

// Scorer is satisfied by *score.Engine.
type Scorer interface {
	Score(ctx context.Context, p job.Posting) (*score.Result, error)
}

// Store is the persistence the orchestrator needs; *store.Store satisfies it.
type Store interface {
	Observe(ctx context.Context, p job.Posting, detector score.GhostDetector, now time.Time) (store.Observation, error)
	SetLastCycle(ctx context.Context, t time.Time) error
}

type Options struct {
	Sources            []source.Source
	Engine             Scorer
	Store              Store
	Ghost              score.GhostDetector
	Notifier           Notifier // optional
	Retry              retry.Config
	AlertThreshold     float64
	HighScoreThreshold float64
	Concurrency        int
	Logger             *log.Logger
	Now                func() time.Time
}

// StageError records one failure inside a cycle. Source is empty for
// failures not tied to a single adapter.
type StageError struct {
	Stage   string
	Source  string
	Message string
}

func (e StageError) Error() string {
	if e.Source == "" {
		return e.Stage + ": " + e.Message
	}
	return fmt.Sprintf("%s %s: %s", e.Stage, e.Source, e.Message)
}

type Timings struct {
	Scrape  time.Duration
	Score   time.Duration
	Persist time.Duration
}

// Result aggregates one cycle. Partial failures live in Errors; Run only
// returns an error for cancellation and store faults.
type Result struct {
	ID          uuid.UUID
	StartedAt   time.Time
	Found       int
	New         int
	Updated     int
	HighMatches int
	AlertsSent  int
	Invalid     int
	Ghosts      int
	Errors      []StageError
	Timings     Timings
	PerSource   map[string]int
	Alerts      []job.Posting
}

// Failed reports whether any stage recorded an error.
func (r *Result) Failed() bool { return len(r.Errors) > 0 }

func (r *Result) addError(stage, src string, err error) {
	r.Errors = append(r.Errors, StageError{Stage: stage, Source: src, Message: err.Error()})
}

type Orchestrator struct {
	opts    Options
	logger  *log.Logger
	running sync.Mutex
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("cycle: engine is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("cycle: store is required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Default()
	}
	if opts.Ghost == (score.GhostDetector{}) {
		opts.Ghost = score.DefaultGhostDetector()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{opts: opts, logger: logger.WithPrefix("cycle")}, nil
}

type scraped struct {
	source   string
	postings []job.Posting
	err      error
}

// Run executes one cycle. Only one cycle runs at a time; a concurrent call
// gets ErrCycleInProgress.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	if !o.running.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer o.running.Unlock()

	res := &Result{
		ID:        uuid.New(),
		StartedAt: o.opts.Now(),
		PerSource: make(map[string]int, len(o.opts.Sources)),
	}
	logger := o.logger.With("cycle", res.ID.String()[:8])
	logger.Info("cycle started", "sources", len(o.opts.Sources))

	start := time.Now()
	postings := o.scrape(ctx, res, logger)
	res.Timings.Scrape = time.Since(start)
	logger.Info("scrape finished", "postings", len(postings), "errors", len(res.Errors), "elapsed", res.Timings.Scrape)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	start = time.Now()
	postings = o.score(ctx, res, postings, logger)
	res.Timings.Score = time.Since(start)
	logger.Info("score finished", "postings", len(postings), "elapsed", res.Timings.Score)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	start = time.Now()
	err := o.persist(ctx, res, postings, logger)
	res.Timings.Persist = time.Since(start)
	if err != nil {
		logger.Error("persist failed", "error", err)
		return res, err
	}
	logger.Info("cycle finished",
		"found", res.Found, "new", res.New, "updated", res.Updated,
		"high", res.HighMatches, "alerts", res.AlertsSent, "ghosts", res.Ghosts,
		"errors", len(res.Errors), "elapsed", res.Timings.Persist)
	return res, nil
}

// scrape runs every adapter concurrently. A failing adapter contributes an
// error and no postings; it never cancels its siblings.
func (o *Orchestrator) scrape(ctx context.Context, res *Result, logger *log.Logger) []job.Posting {
	slots := make([]scraped, len(o.opts.Sources))

	var g errgroup.Group
	g.SetLimit(o.opts.Concurrency)
	for i, src := range o.opts.Sources {
		slots[i].source = src.Name()
	}
	for i, src := range o.opts.Sources {
		if err := ctx.Err(); err != nil {
			// never launched
			for j := i; j < len(slots); j++ {
				slots[j].err = err
			}
			break
		}
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				slots[i].err = err
				return nil
			}
			postings, err := retry.Do(ctx, o.opts.Retry, "scrape "+src.Name(), src.Scrape,
				retry.WithLogger(logger.With("source", src.Name())))
			slots[i].postings, slots[i].err = postings, err
			return nil
		})
	}
	_ = g.Wait()

	var (
		valid   []job.Posting
		invalid []StageError
		seen    = make(map[string]bool)
	)
	for _, s := range slots {
		if s.err != nil {
			res.addError(StageScrape, s.source, s.err)
			logger.Warn("source failed", "source", s.source, "error", s.err)
			continue
		}
		res.PerSource[s.source] = len(s.postings)
		for _, p := range s.postings {
			if p.Source == "" {
				p.Source = s.source
			}
			p.EnsureHash()
			if err := job.Validate(p); err != nil {
				res.Invalid++
				invalid = append(invalid, StageError{Stage: StageValidate, Source: s.source, Message: err.Error()})
				logger.Warn("dropping invalid posting", "source", s.source, "url", p.URL, "error", err)
				continue
			}
			// Overlapping sources may return the same posting in one cycle.
			if seen[p.Hash] {
				continue
			}
			seen[p.Hash] = true
			valid = append(valid, p)
		}
	}
	res.Errors = append(res.Errors, invalid...)
	res.Found = len(valid)
	return valid
}

func (o *Orchestrator) score(ctx context.Context, res *Result, postings []job.Posting, logger *log.Logger) []job.Posting {
	scored := postings[:0]
	for _, p := range postings {
		if ctx.Err() != nil {
			break
		}
		r, err := o.opts.Engine.Score(ctx, p)
		if err != nil {
			res.addError(StageScore, p.Source, err)
			logger.Warn("scoring failed", "hash", p.Hash, "error", err)
			continue
		}
		p.Score = r.Score
		p.Breakdown = r.Breakdown
		scored = append(scored, p)
	}
	return scored
}

func (o *Orchestrator) persist(ctx context.Context, res *Result, postings []job.Posting, logger *log.Logger) error {
	now := o.opts.Now()
	var alerts []job.Posting
	for _, p := range postings {
		obs, err := o.opts.Store.Observe(ctx, p, o.opts.Ghost, now)
		if err != nil {
			var ve *job.ValidationError
			if errors.As(err, &ve) {
				res.Invalid++
				res.addError(StagePersist, p.Source, err)
				continue
			}
			return err
		}

		if obs.New {
			res.New++
		} else {
			res.Updated++
		}
		if obs.Ghost.Score >= score.GhostLikelyThreshold {
			res.Ghosts++
		}
		if p.Score >= o.opts.HighScoreThreshold {
			res.HighMatches++
		}
		if obs.New && !obs.Hidden && p.Score >= o.opts.AlertThreshold {
			p.GhostScore, p.GhostReasons = obs.Ghost.Score, obs.Ghost.Reasons
			p.RepostCount, p.TimesSeen = obs.Repost.RepostCount, obs.TimesSeen
			alerts = append(alerts, p)
		}
	}

	if err := o.opts.Store.SetLastCycle(ctx, now); err != nil {
		return err
	}

	res.Alerts = alerts
	if len(alerts) == 0 || o.opts.Notifier == nil {
		return nil
	}
	if err := o.opts.Notifier.Notify(ctx, alerts); err != nil {
		res.addError(StageNotify, "", err)
		logger.Warn("notification failed", "alerts", len(alerts), "error", err)
		return nil
	}
	res.AlertsSent = len(alerts)
	return nil
}
