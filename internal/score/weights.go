// Package score combines matcher sub-scores into a composite score, memoizes
// results in a bounded cache, and rates how likely a posting is a ghost.
package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/matheuskafuri/jobradar/internal/job"
)

// ErrInvalidWeights is wrapped by every Validate failure.
var ErrInvalidWeights = errors.New("invalid scoring weights")

// WeightTolerance is how far the weight sum may drift from 1.0.
const WeightTolerance = 0.01

// Weights is the user-editable scoring configuration.
type Weights struct {
	Skills   float64 `yaml:"skills" json:"skills"`
	Salary   float64 `yaml:"salary" json:"salary"`
	Location float64 `yaml:"location" json:"location"`
	Company  float64 `yaml:"company" json:"company"`
	Recency  float64 `yaml:"recency" json:"recency"`
}

// DefaultWeights favours skills match over everything else.
func DefaultWeights() Weights {
	return Weights{
		Skills:   0.40,
		Salary:   0.25,
		Location: 0.20,
		Company:  0.10,
		Recency:  0.05,
	}
}

func (w Weights) named() []struct {
	name  string
	value float64
} {
	return []struct {
		name  string
		value float64
	}{
		{"skills", w.Skills},
		{"salary", w.Salary},
		{"location", w.Location},
		{"company", w.Company},
		{"recency", w.Recency},
	}
}

// Sum adds the five weights.
func (w Weights) Sum() float64 {
	return w.Skills + w.Salary + w.Location + w.Company + w.Recency
}

// Validate requires each weight in [0,1] and a sum of 1.0 ± WeightTolerance.
func (w Weights) Validate() error {
	for _, n := range w.named() {
		if math.IsNaN(n.value) || n.value < 0 {
			return fmt.Errorf("%w: %s weight %.3f is negative", ErrInvalidWeights, n.name, n.value)
		}
		if n.value > 1.0 {
			return fmt.Errorf("%w: %s weight %.3f exceeds 1.0", ErrInvalidWeights, n.name, n.value)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightTolerance+1e-9 {
		return fmt.Errorf("%w: weights sum to %.3f, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// Combine applies the weights to clamped sub-scores. The result is in [0,1].
func (w Weights) Combine(b job.Breakdown) float64 {
	raw := w.Skills*clamp01(b.Skills) +
		w.Salary*clamp01(b.Salary) +
		w.Location*clamp01(b.Location) +
		w.Company*clamp01(b.Company) +
		w.Recency*clamp01(b.Recency)
	return clamp01(raw)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
