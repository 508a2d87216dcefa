package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Executor retries a fallible operation under a Policy. Attempts are strictly
// sequential; attempt N+1 never starts before attempt N has returned. Every
// failed attempt is reported as a structured warning on the injected logger,
// and exhaustion as an error event, so intermediate failures stay observable
// without leaking into return values.
type Executor struct {
	policy Policy
	logger zerolog.Logger
}

// NewExecutor builds an executor. Zero policy fields take documented defaults.
func NewExecutor(policy Policy, logger zerolog.Logger) *Executor {
	return &Executor{policy: policy.withDefaults(), logger: logger}
}

// Policy returns the effective policy after defaulting.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Do runs op until it succeeds or the retry budget is spent. With
// MaxRetries = n a persistently failing op is invoked exactly n+1 times, then
// Do returns an *ExhaustedError wrapping the last failure. The wait before
// retry k is InitialDelay * BackoffFactor^(k-1). Backoff sleeps honor ctx;
// cancelling ctx is the only way to abandon the loop early.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	delay := e.policy.InitialDelay
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt > e.policy.MaxRetries {
			e.logger.Error().
				Err(err).
				Int("attempts", attempt).
				Msg("retry: budget exhausted")
			return &ExhaustedError{Attempts: attempt, Err: err}
		}
		e.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("retry: attempt failed, backing off")
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
		delay = time.Duration(float64(delay) * e.policy.BackoffFactor)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
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
