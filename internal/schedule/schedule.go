// Package schedule repeats cycles on a cron schedule for watch mode.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/matheuskafuri/jobradar/internal/cycle"
)

// Runner is satisfied by *cycle.Orchestrator.
type Runner interface {
	Run(ctx context.Context) (*cycle.Result, error)
}

type Scheduler struct {
	spec      string
	schedule  cron.Schedule
	runner    Runner
	logger    *log.Logger
	immediate bool
	onResult  func(*cycle.Result)
}

type Option func(*Scheduler)

// WithLogger routes scheduler and cron logging to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l.WithPrefix("schedule")
		}
	}
}

// Immediately runs one cycle as soon as Run starts, before the first tick.
func Immediately() Option {
	return func(s *Scheduler) { s.immediate = true }
}

// OnResult is called after every completed cycle.
func OnResult(fn func(*cycle.Result)) Option {
	return func(s *Scheduler) { s.onResult = fn }
}

// New parses spec, a standard five-field cron expression or a descriptor
// such as "@every 2h".
func New(spec string, r Runner, opts ...Option) (*Scheduler, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	s := &Scheduler{
		spec:     spec,
		schedule: sched,
		runner:   r,
		logger:   log.Default().WithPrefix("schedule"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run blocks until ctx is done. Ticks that arrive while a cycle is still
// running are skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{s.logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.tick(ctx) }))

	if s.immediate {
		s.tick(ctx)
	}

	c.Start()
	s.logger.Info("watching", "schedule", s.spec)
	if entries := c.Entries(); len(entries) > 0 {
		s.logger.Info("next cycle", "at", entries[0].Next.Format("15:04:05"))
	}

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("stopped")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, cycle.ErrCycleInProgress):
		s.logger.Warn("previous cycle still running, skipping tick")
		return
	case err != nil:
		s.logger.Error("cycle failed", "error", err)
	}
	if res != nil && s.onResult != nil {
		s.onResult(res)
	}
}

// cronLogger adapts charmbracelet/log to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
