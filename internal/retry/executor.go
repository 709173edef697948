package retry

import (
	"context"
	"time"

	"github.com/stratadb/strata-go/pkg/strata"
)

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// The Executor itself is safe for concurrent use when calling Execute().
// WithLabel() and WithOnRetry() return NEW instances with the field
// configured, so each goroutine can have its own configuration without
// shared state. The original Executor remains unchanged.
type Executor struct {
	classifier strata.ErrorClassifier
	backoff    *ExponentialBackoff
	label      string
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor with the given configuration.
// Panics if classifier or backoff is nil.
func NewExecutor(classifier strata.ErrorClassifier, backoff *ExponentialBackoff) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if backoff == nil {
		panic("backoff cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		backoff:    backoff,
	}
}

// WithLabel returns a new Executor whose exhaustion errors carry the given
// diagnostic label. The receiver is not modified.
func (e *Executor) WithLabel(label string) *Executor {
	clone := *e
	clone.label = label
	return &clone
}

// WithOnRetry returns a new Executor with the specified retry callback.
// The callback observes the zero-indexed retry number, the error that
// triggered the retry, and the jittered delay about to be waited.
// The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs the operation with retry logic.
//
// A success returns immediately. A fatal error propagates unchanged after
// exactly the invocations made so far. A transient error is retried after
// a jittered backoff wait until the policy's MaxAttempts total invocations
// have been made, at which point a connection-kind error embedding
// "Failed after <n> attempts" (and the label, if set) wraps the last failure.
//
// The backoff wait respects context cancellation. An in-flight operation is
// never interrupted; cancellation only prevents further attempts.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	maxAttempts := e.backoff.MaxAttempts()

	for attempt := 1; ; attempt++ {
		lastErr := operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !e.classifier.IsTransient(lastErr) {
			return lastErr
		}

		if attempt >= maxAttempts {
			return e.exhausted(maxAttempts, lastErr)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		// Zero-based delay index: the first retry waits InitialDelay.
		delay := e.backoff.AddJitter(e.backoff.NextDelay(attempt - 1))

		if e.onRetry != nil {
			e.onRetry(attempt-1, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// exhausted synthesizes the terminal failure reported when all attempts are
// used up. The original failure's message is preserved as the wrapped cause.
func (e *Executor) exhausted(maxAttempts int, lastErr error) error {
	if e.label != "" {
		return strata.WrapError(strata.KindConnection, lastErr,
			"Failed after %d attempts (%s)", maxAttempts, e.label)
	}
	return strata.WrapError(strata.KindConnection, lastErr,
		"Failed after %d attempts", maxAttempts)
}

// ExecuteValue runs a value-returning operation under e's retry logic.
func ExecuteValue[T any](ctx context.Context, e *Executor, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// QueryExecutor wraps a query-execution capability so every Execute call is
// retried under e's policy. The streaming iterator never retries a failed
// fetch itself; compose retry here before handing the capability to it.
func (e *Executor) QueryExecutor(inner strata.QueryExecutor) strata.QueryExecutor {
	return strata.QueryFunc(func(ctx context.Context, sql string, params []any) (*strata.QueryResult, error) {
		return ExecuteValue(ctx, e, func(ctx context.Context) (*strata.QueryResult, error) {
			return inner.Execute(ctx, sql, params)
		})
	})
}
