package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matheuskafuri/jobradar/internal/config"
	"github.com/matheuskafuri/jobradar/internal/digest"
	"github.com/matheuskafuri/jobradar/internal/store"
	"github.com/matheuskafuri/jobradar/internal/tui"
	"github.com/matheuskafuri/jobradar/internal/update"
)

const digestWindow = 24 * time.Hour

func runTUI(ctx context.Context, browseMode bool) error {
	// the alt screen owns stderr, so logs go to a file
	closeLog, err := logToFile(config.LogPath())
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// browsing still works without usable sources
	var scanner tui.Scanner
	orch, err := a.orchestrator()
	if err != nil {
		fmt.Printf("  [warn] scanning disabled: %v\n", err)
	} else {
		scanner = orch
	}

	updates := make(chan *update.Result, 1)
	go func() { updates <- update.NewChecker("").Check(ctx, version) }()

	if scanner != nil && (flagRefresh || a.store.NeedsRefresh(ctx, a.cfg.RefreshDuration())) {
		fmt.Println("Scanning sources...")
		res, err := orch.Run(ctx)
		if err != nil {
			return fmt.Errorf("scanning: %w", err)
		}
		for _, e := range res.Errors {
			fmt.Printf("  [warn] %v\n", e)
		}
	}

	since, err := sinceFlag()
	if err != nil {
		return err
	}

	var updateVersion string
	select {
	case r := <-updates:
		if r != nil {
			updateVersion = r.LatestVersion
		}
	case <-time.After(time.Second):
	}

	return tui.Run(tui.RunOpts{
		Store:         a.store,
		Scanner:       scanner,
		Sources:       a.cfg.SourceNames(),
		Since:         since,
		Digest:        digestFunc(a.store),
		HighScore:     a.cfg.HighScoreThreshold,
		BrowseMode:    browseMode,
		UpdateVersion: updateVersion,
	})
}

func digestFunc(db *store.Store) func(context.Context) (*digest.Digest, error) {
	return func(ctx context.Context) (*digest.Digest, error) {
		now := time.Now()
		since := now.Add(-digestWindow)
		recent, err := db.List(ctx, store.QueryOpts{Since: since, IncludeHidden: true, Limit: 1000})
		if err != nil {
			return nil, fmt.Errorf("loading recent postings: %w", err)
		}
		all, err := db.List(ctx, store.QueryOpts{IncludeHidden: true, Limit: 5000})
		if err != nil {
			return nil, fmt.Errorf("loading postings: %w", err)
		}
		d := digest.Build(recent, all, digest.Options{Since: since, Now: now})
		return &d, nil
	}
}

func logToFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	prev := log.Default()
	log.SetDefault(newLogger(f))
	return func() {
		log.SetDefault(prev)
		f.Close()
	}, nil
}
