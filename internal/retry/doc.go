// Package retry provides automatic retry logic with bounded, jittered
// exponential backoff for transient failures of the Strata query service.
//
// # Example Usage
//
//	classifier := retry.NewKindClassifier()
//	backoff, _ := retry.NewExponentialBackoff(strata.DefaultRetryPolicy())
//	executor := retry.NewExecutor(classifier, backoff)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pingService(ctx)
//	})
//
// # Error Classification
//
// The strata.ErrorClassifier interface determines which errors are transient
// (retryable) versus fatal (non-retryable). KindClassifier recognizes the
// structured strata error kinds as the primary path and falls back to a
// substring match for unstructured errors that crossed a boundary without
// kind information.
//
// # Backoff
//
// ExponentialBackoff grows the delay geometrically from the policy's
// InitialDelay, capped at MaxDelay, and adds uniform jitter of up to 30%
// on every retry to avoid synchronized retry storms.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() or
// WithLabel() to create independent configurations per goroutine.
package retry
