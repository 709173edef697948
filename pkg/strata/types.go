package strata

import (
	"errors"
	"fmt"
	"time"
)

// RetryPolicy configures the retry engine. The zero value is not usable;
// construct via DefaultRetryPolicy or named fields and call Validate.
// A single policy value may be shared by concurrent executions.
type RetryPolicy struct {
	// MaxAttempts is the total number of invocations (initial attempt
	// included) before retry gives up. Must be at least 1.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the backoff delay. Must be at least InitialDelay.
	MaxDelay time.Duration

	// Multiplier is the geometric growth factor of the backoff schedule.
	// Must be at least 1.
	Multiplier float64
}

// DefaultRetryPolicy returns the policy used when the caller does not
// configure one.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  DefaultRetryMaxAttempts,
		InitialDelay: DefaultRetryInitialDelay,
		MaxDelay:     DefaultRetryMaxDelay,
		Multiplier:   DefaultRetryMultiplier,
	}
}

// Validate checks the RetryPolicy invariants.
// It returns a multi-error if multiple validation failures occur.
func (p RetryPolicy) Validate() error {
	var errs []error

	if p.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("MaxAttempts must be at least 1: %w", ErrInvalidConfig))
	}

	if p.InitialDelay <= 0 {
		errs = append(errs, fmt.Errorf("InitialDelay must be positive: %w", ErrInvalidConfig))
	}

	if p.MaxDelay < p.InitialDelay {
		errs = append(errs, fmt.Errorf("MaxDelay must be at least InitialDelay: %w", ErrInvalidConfig))
	}

	if p.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("Multiplier must be at least 1: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// StreamOptions configures a streaming query iterator. The zero value is not
// usable; construct via DefaultStreamOptions or named fields and call Validate.
type StreamOptions struct {
	// BatchSize is the page size requested per fetch.
	BatchSize int

	// HighWaterMark is the bounded-buffer capacity. The background fetch
	// blocks once this many rows are buffered and unconsumed.
	HighWaterMark int

	// Timeout bounds each buffer-insert on the fetch side and each
	// buffer-remove on the consumer side. Exceeding it is a fatal
	// stream error, never a retry.
	Timeout time.Duration
}

// DefaultStreamOptions returns the options used when the caller does not
// configure any.
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BatchSize:     DefaultStreamBatchSize,
		HighWaterMark: DefaultStreamHighWaterMark,
		Timeout:       DefaultStreamTimeout,
	}
}

// Validate checks the StreamOptions invariants.
// It returns a multi-error if multiple validation failures occur.
func (o StreamOptions) Validate() error {
	var errs []error

	if o.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("BatchSize must be at least 1: %w", ErrInvalidConfig))
	}

	if o.HighWaterMark < 1 {
		errs = append(errs, fmt.Errorf("HighWaterMark must be at least 1: %w", ErrInvalidConfig))
	}

	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("Timeout must be positive: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
