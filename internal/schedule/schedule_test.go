package schedule

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matheuskafuri/jobradar/internal/cycle"
)

type fakeRunner struct {
	mu    sync.Mutex
	runs  int
	err   error
	onRun func()
}

func (f *fakeRunner) Run(context.Context) (*cycle.Result, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &cycle.Result{New: 1}, nil
}

func quiet() Option { return WithLogger(log.New(io.Discard)) }

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("every so often", &fakeRunner{}, quiet()); err == nil {
		t.Error("expected parse error")
	}
	for _, spec := range []string{"@every 2h", "@hourly", "*/15 * * * *"} {
		if _, err := New(spec, &fakeRunner{}, quiet()); err != nil {
			t.Errorf("New(%q): %v", spec, err)
		}
	}
}

func TestRunImmediatelyThenStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeRunner{onRun: cancel}

	var results []*cycle.Result
	s, err := New("@every 1h", r, quiet(), Immediately(), OnResult(func(res *cycle.Result) {
		results = append(results, res)
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if r.runs != 1 {
		t.Errorf("runs = %d, want 1", r.runs)
	}
	if len(results) != 1 || results[0].New != 1 {
		t.Errorf("results = %v", results)
	}
}

func TestTickSkipsInProgressAndCanceled(t *testing.T) {
	var called bool
	r := &fakeRunner{err: cycle.ErrCycleInProgress}
	s, _ := New("@hourly", r, quiet(), OnResult(func(*cycle.Result) { called = true }))

	s.tick(context.Background())
	if called {
		t.Error("OnResult should not fire for a skipped tick")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.err = errors.New("unused")
	s.tick(ctx)
	if r.runs != 1 {
		t.Errorf("runs = %d, want 1 (canceled tick must not run)", r.runs)
	}
}
