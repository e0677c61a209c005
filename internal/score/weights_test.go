package score

import (
	"errors"
	"math"
	"testing"

	"github.com/matheuskafuri/jobradar/internal/job"
)

func TestDefaultWeightsValid(t *testing.T) {
	w := DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Fatalf("default weights rejected: %v", err)
	}
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("default weights sum to %.4f", w.Sum())
	}
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"exact", Weights{0.4, 0.25, 0.2, 0.1, 0.05}, false},
		{"slightly under", Weights{0.399, 0.25, 0.2, 0.1, 0.05}, false},
		{"at upper tolerance", Weights{0.41, 0.25, 0.2, 0.1, 0.05}, false},
		{"sum too high", Weights{0.45, 0.25, 0.2, 0.1, 0.05}, true},
		{"sum too low", Weights{0.3, 0.25, 0.2, 0.1, 0.05}, true},
		{"negative", Weights{0.5, 0.3, 0.2, 0.1, -0.1}, true},
		{"over one", Weights{1.2, -0.2, 0, 0, 0}, true},
		{"nan", Weights{math.NaN(), 0.25, 0.2, 0.1, 0.05}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil && !errors.Is(err, ErrInvalidWeights) {
				t.Errorf("error %v does not wrap ErrInvalidWeights", err)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	w := DefaultWeights()
	got := w.Combine(job.Breakdown{Skills: 1, Salary: 1, Location: 1, Company: 1, Recency: 1})
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("all-ones breakdown = %.4f, want 1.0", got)
	}

	got = w.Combine(job.Breakdown{Skills: 0.5})
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("skills-only breakdown = %.4f, want 0.2", got)
	}
}

func TestCombineClampsSubScores(t *testing.T) {
	w := DefaultWeights()
	got := w.Combine(job.Breakdown{Skills: 3, Salary: -2, Location: math.NaN()})
	if math.Abs(got-0.4) > 1e-9 {
		t.Errorf("clamped combine = %.4f, want 0.4", got)
	}
}
