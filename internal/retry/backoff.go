package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/stratadb/strata-go/pkg/strata"
)

// jitterFraction is the upper bound of the random fraction added to each
// delay: AddJitter returns a value in [delay, delay*(1+jitterFraction)].
const jitterFraction = 0.3

// ExponentialBackoff implements strata.BackoffStrategy with a geometric
// delay schedule capped at the policy's MaxDelay, plus additive jitter.
type ExponentialBackoff struct {
	policy strata.RetryPolicy

	// randFloat provides random values in [0, 1) for jitter calculation.
	// Tests replace it with a deterministic source.
	randFloat func() float64
}

// BackoffOption is a functional option for configuring ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithRandFloat sets a custom source of random values in [0, 1) used for
// jitter. Intended for deterministic tests.
func WithRandFloat(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.randFloat = f
	}
}

// NewExponentialBackoff creates a backoff schedule from a validated policy.
// Returns an error if the policy violates its invariants.
func NewExponentialBackoff(policy strata.RetryPolicy, opts ...BackoffOption) (*ExponentialBackoff, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	b := &ExponentialBackoff{
		policy:    policy,
		randFloat: rand.Float64,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// NextDelay returns the raw (un-jittered) delay for the given retry, where
// attempt 0 is the first retry: min(InitialDelay * Multiplier^attempt, MaxDelay).
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(b.policy.InitialDelay) * math.Pow(b.policy.Multiplier, float64(attempt))

	if delay > float64(b.policy.MaxDelay) {
		return b.policy.MaxDelay
	}
	return time.Duration(delay)
}

// AddJitter adds a uniformly random increment of up to jitterFraction of the
// delay: the result is in [delay, delay*1.3]. Jitter is drawn fresh on every
// call, never memoized.
func (b *ExponentialBackoff) AddJitter(delay time.Duration) time.Duration {
	return delay + time.Duration(b.randFloat()*jitterFraction*float64(delay))
}

// MaxAttempts returns the total number of invocations before giving up.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.policy.MaxAttempts
}

// Policy returns the policy this schedule was built from.
func (b *ExponentialBackoff) Policy() strata.RetryPolicy {
	return b.policy
}

var _ strata.BackoffStrategy = (*ExponentialBackoff)(nil)
