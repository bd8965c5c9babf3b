// Package retry wraps mutating external-tool invocations in bounded
// exponential backoff, separating transient provider failures from fatal
// ones.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// DefaultPolicy matches the provider's observed capacity-release cadence:
// 8 attempts starting at 15s doubles out to a worst case of 1905s spent
// waiting.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 8, BaseDelay: 15 * time.Second}
}

// Delay returns the backoff before the next attempt: base * 2^(attempt-1),
// pure exponential with no jitter. A single logical writer has nobody to
// thunder against.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<(attempt-1))
}

// ExhaustedError is returned when every attempt failed. Err carries the
// last captured failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Executor runs operations under a retry policy.
type Executor struct {
	policy     Policy
	classifier Classifier
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor with the given policy and classifier.
func NewExecutor(policy Policy, classifier Classifier) *Executor {
	return &Executor{
		policy:     policy,
		classifier: classifier,
		sleep:      sleepContext,
	}
}

// WithSleep replaces the sleep function. Tests use this to drive the
// backoff schedule with a simulated clock.
func (e *Executor) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Executor {
	e.sleep = sleep
	return e
}

// WithClassifier returns a copy of the executor using a different
// transient-failure classifier. The apply phase narrows to capacity-only
// this way without rebuilding the executor.
func (e *Executor) WithClassifier(classifier Classifier) *Executor {
	clone := *e
	clone.classifier = classifier
	return &clone
}

// Do runs op until it succeeds, fails fatally, or attempts are exhausted.
// Failures are classified by error text; transient ones sleep
// base*2^(attempt-1) before the next attempt. Cancellation of ctx aborts
// a pending sleep immediately.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !e.classifier.Transient(lastErr.Error()) {
			return lastErr
		}
		if attempt == e.policy.MaxAttempts {
			break
		}

		delay := e.policy.Delay(attempt)
		log.Warn().
			Int("attempt", attempt).
			Int("max_attempts", e.policy.MaxAttempts).
			Dur("delay", delay).
			Err(lastErr).
			Msg("transient failure, backing off")

		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return &ExhaustedError{Attempts: e.policy.MaxAttempts, Err: lastErr}
}

// sleepContext sleeps for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
