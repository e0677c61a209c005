// Package retry runs fallible operations with classification-driven
// exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/charmbracelet/log"
)

// Config is immutable once built; copy it to change a field.
type Config struct {
	MaxAttempts          int
	InitialDelay         time.Duration
	MaxDelay             time.Duration
	BackoffMultiplier    float64
	RetryableStatusCodes map[int]struct{}
}

func defaultStatusCodes() map[int]struct{} {
	return map[int]struct{}{
		408: {}, 429: {}, 500: {}, 502: {}, 503: {}, 504: {},
	}
}

// Default balances latency against resilience for ordinary job boards.
func Default() Config {
	return Config{
		MaxAttempts:          3,
		InitialDelay:         time.Second,
		MaxDelay:             30 * time.Second,
		BackoffMultiplier:    2.0,
		RetryableStatusCodes: defaultStatusCodes(),
	}
}

// Conservative retries more and waits longer, for boards that rate-limit hard.
func Conservative() Config {
	return Config{
		MaxAttempts:          5,
		InitialDelay:         2 * time.Second,
		MaxDelay:             60 * time.Second,
		BackoffMultiplier:    2.0,
		RetryableStatusCodes: defaultStatusCodes(),
	}
}

// Aggressive gives up quickly.
func Aggressive() Config {
	return Config{
		MaxAttempts:          2,
		InitialDelay:         500 * time.Millisecond,
		MaxDelay:             5 * time.Second,
		BackoffMultiplier:    1.5,
		RetryableStatusCodes: defaultStatusCodes(),
	}
}

// Preset resolves a preset by name. An empty name selects Default.
func Preset(name string) (Config, error) {
	switch name {
	case "", "default":
		return Default(), nil
	case "conservative":
		return Conservative(), nil
	case "aggressive":
		return Aggressive(), nil
	default:
		return Config{}, fmt.Errorf("unknown retry preset %q (valid: default, conservative, aggressive)", name)
	}
}

// Delay returns the wait before retry number attempt (0-indexed):
// min(InitialDelay * BackoffMultiplier^attempt, MaxDelay).
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(c.InitialDelay) * math.Pow(c.BackoffMultiplier, float64(attempt))
	if math.IsNaN(d) || math.IsInf(d, 0) || d > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// IsRetryable classifies err. Structured errors decide for themselves; status
// codes are checked against RetryableStatusCodes.
func (c Config) IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var re *Error
	if errors.As(err, &re) {
		if re.StatusCode != 0 && c.RetryableStatusCodes != nil {
			_, ok := c.RetryableStatusCodes[re.StatusCode]
			return ok
		}
		return re.Kind.Retryable()
	}

	var marked interface{ Retryable() bool }
	if errors.As(err, &marked) {
		return marked.Retryable()
	}

	if errors.Is(err, context.DeadlineExceeded) || isConnectionFault(err) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (c Config) attempts() int {
	if c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

type options struct {
	logger *log.Logger
}

// Option customises a single Do call.
type Option func(*options)

// WithLogger routes attempt logging to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Do executes fn until it succeeds, returns a non-retryable error, or
// cfg.MaxAttempts is reached. The last error is returned unchanged.
func Do[T any](ctx context.Context, cfg Config, op string, fn func(context.Context) (T, error), opts ...Option) (T, error) {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	var zero T
	limit := cfg.attempts()

	var lastErr error
	for attempt := 0; attempt < limit; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		start := time.Now()
		v, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("operation succeeded after retry", "op", op, "attempt", attempt+1, "elapsed", time.Since(start))
			} else {
				logger.Debug("operation succeeded", "op", op, "elapsed", time.Since(start))
			}
			return v, nil
		}
		lastErr = err

		if !cfg.IsRetryable(err) {
			logger.Error("operation failed with non-retryable error", "op", op, "attempt", attempt+1, "error", err)
			return zero, err
		}
		if attempt == limit-1 {
			break
		}

		delay := cfg.Delay(attempt)
		logger.Warn("operation failed, retrying", "op", op, "attempt", attempt+1, "max", limit, "delay", delay, "error", err)

		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			logger.Warn("retry aborted", "op", op, "attempt", attempt+1, "error", ctx.Err())
			return zero, lastErr
		}
	}

	logger.Error("operation failed after all attempts", "op", op, "attempts", limit, "error", lastErr)
	return zero, lastErr
}
