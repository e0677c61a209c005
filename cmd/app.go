package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matheuskafuri/jobradar/internal/config"
	"github.com/matheuskafuri/jobradar/internal/cycle"
	"github.com/matheuskafuri/jobradar/internal/match"
	"github.com/matheuskafuri/jobradar/internal/notify"
	"github.com/matheuskafuri/jobradar/internal/score"
	"github.com/matheuskafuri/jobradar/internal/source"
	"github.com/matheuskafuri/jobradar/internal/store"
)

// app is everything a command needs, built from config in one place.
type app struct {
	cfg    *config.Config
	dbPath string
	store  *store.Store
	engine *score.Engine
	logger *log.Logger

	// savedWeights is true when the active weights came from the store
	// rather than the config file.
	savedWeights bool
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dbPath := config.DataPath()
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	weights := cfg.Weights()
	saved, ok, err := db.LoadWeights(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("loading weights: %w", err)
	}
	if ok {
		weights = saved
	}

	cache := score.NewCache(cfg.Cache.Capacity, cfg.CacheFreshness())
	engine, err := score.NewEngine(match.New(cfg.MatchPreferences()), cache, weights, cfg.Preferences.ResumeID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("building scoring engine: %w", err)
	}

	return &app{
		cfg:          cfg,
		dbPath:       dbPath,
		store:        db,
		engine:       engine,
		logger:       log.Default(),
		savedWeights: ok,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) orchestrator() (*cycle.Orchestrator, error) {
	sources, err := source.Build(a.cfg.EnabledSources(), config.LoadCredentials())
	if err != nil {
		return nil, fmt.Errorf("building sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, errors.New("no sources enabled; enable one in the config file")
	}

	rc := a.cfg.RetryConfig()
	return cycle.New(cycle.Options{
		Sources:            sources,
		Engine:             a.engine,
		Store:              a.store,
		Ghost:              a.cfg.GhostDetector(),
		Notifier:           a.notifier(),
		Retry:              rc,
		AlertThreshold:     a.cfg.AlertThreshold,
		HighScoreThreshold: a.cfg.HighScoreThreshold,
		Concurrency:        a.cfg.Concurrency,
		Logger:             a.logger,
	})
}

func (a *app) notifier() cycle.Notifier {
	n := notify.Multi{notify.Log{Logger: a.logger.WithPrefix("alert")}}
	if u := a.cfg.Notify.WebhookURL; u != "" {
		n = append(n, notify.NewWebhook(u, a.cfg.RetryConfig(), a.logger))
	}
	return n
}

// resolve expands a hash prefix typed by the user.
func (a *app) resolve(ctx context.Context, prefix string) (string, error) {
	hash, err := a.store.Resolve(ctx, prefix)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("no posting matches %q", prefix)
	}
	return hash, err
}

// parseSince accepts Go durations plus a day suffix, e.g. 7d.
func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func sinceFlag() (time.Time, error) {
	if flagSince == "" {
		return time.Time{}, nil
	}
	d, err := parseSince(flagSince)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since value: %w", err)
	}
	return time.Now().Add(-d), nil
}
