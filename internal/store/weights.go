package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matheuskafuri/jobradar/internal/score"
)

// SaveWeights validates w and stores it as the active scoring config.
func (s *Store) SaveWeights(ctx context.Context, w score.Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	_, err := s.writeDB.ExecContext(ctx, `
		INSERT INTO scoring_config (id, skills, salary, location, company, recency, updated)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			skills   = excluded.skills,
			salary   = excluded.salary,
			location = excluded.location,
			company  = excluded.company,
			recency  = excluded.recency,
			updated  = excluded.updated
	`, w.Skills, w.Salary, w.Location, w.Company, w.Recency, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving weights: %w", err)
	}
	return nil
}

// LoadWeights returns the stored weights. ok is false when none were saved
// or the saved row no longer validates.
func (s *Store) LoadWeights(ctx context.Context) (w score.Weights, ok bool, err error) {
	err = s.readDB.QueryRowContext(ctx,
		"SELECT skills, salary, location, company, recency FROM scoring_config WHERE id = 1",
	).Scan(&w.Skills, &w.Salary, &w.Location, &w.Company, &w.Recency)
	if errors.Is(err, sql.ErrNoRows) {
		return score.Weights{}, false, nil
	}
	if err != nil {
		return score.Weights{}, false, fmt.Errorf("loading weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		log.Warn("ignoring stored weights", "error", err)
		return score.Weights{}, false, nil
	}
	return w, true, nil
}
