// Package retry runs a remote operation with a fixed-delay retry budget.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/lastseal/micro-shopify/internal/logging"
	"github.com/lastseal/micro-shopify/internal/telemetry"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// Sleeper pauses for d, returning early with ctx.Err() if ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Policy describes a retry budget. There is no backoff growth and no jitter.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt. A
	// negative value retries until success or cancellation.
	MaxRetries int
	// Delay is the pause between two attempts.
	Delay time.Duration
	// Retryable filters errors. Nil retries every error.
	Retryable func(error) bool
}

// Unbounded reports whether the policy has no retry cap.
func (p Policy) Unbounded() bool {
	return p.MaxRetries < 0
}

// Executor applies a Policy to operations.
type Executor struct {
	policy  Policy
	logger  shopify.Logger
	sleep   Sleeper
	metrics *telemetry.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger receiving retry warnings.
func WithLogger(logger shopify.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSleeper replaces the sleep between attempts.
func WithSleeper(sleep Sleeper) Option {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithMetrics records every retry.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(e *Executor) {
		e.metrics = metrics
	}
}

// New creates an Executor.
func New(policy Policy, opts ...Option) *Executor {
	executor := &Executor{
		policy: policy,
		logger: shopify.NopLogger{},
		sleep:  Sleep,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Policy returns the executor's policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Do runs fn until it succeeds or the budget is spent. The error of the last
// attempt is returned unchanged so callers can inspect it with errors.As.
// When ctx ends the error wraps both the last failure and ctx.Err().
func Do[T any](ctx context.Context, e *Executor, operation string, fn func(context.Context) (T, error)) (T, error) {
	attempt := 0

	for {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		if ctx.Err() != nil {
			return result, fmt.Errorf("%s interrupted after attempt %d: %w: %w", operation, attempt+1, err, ctx.Err())
		}

		if !e.retryable(err) {
			return result, err
		}

		if !e.policy.Unbounded() && attempt >= e.policy.MaxRetries {
			if attempt > 0 {
				e.logger.Error("Retries exhausted", logging.Fields(ctx, map[string]interface{}{
					"operation":   operation,
					"attempts":    attempt + 1,
					"max_retries": e.policy.MaxRetries,
					"error":       err.Error(),
				}))
			}

			return result, err
		}

		attempt++

		e.logger.Warn("Retrying operation", logging.Fields(ctx, map[string]interface{}{
			"operation":   operation,
			"attempt":     attempt,
			"max_retries": e.policy.MaxRetries,
			"delay":       e.policy.Delay.String(),
			"error":       err.Error(),
		}))
		e.metrics.RecordRetry(operation)

		sleepErr := e.sleep(ctx, e.policy.Delay)
		if sleepErr != nil {
			var zero T

			return zero, fmt.Errorf("%s interrupted after attempt %d: %w: %w", operation, attempt, err, sleepErr)
		}
	}
}

// Run is Do for operations without a result.
func Run(ctx context.Context, e *Executor, operation string, fn func(context.Context) error) error {
	_, err := Do(ctx, e, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})

	return err
}

func (e *Executor) retryable(err error) bool {
	if e.policy.Retryable == nil {
		return true
	}

	return e.policy.Retryable(err)
}
