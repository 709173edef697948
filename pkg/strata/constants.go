package strata

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to reach the database (incl. retry exhaustion)
	ExitAuthError       = 12 // Authentication or permission failure
	ExitQueryError      = 13 // Statement rejected by the server
	ExitStreamError     = 14 // Fatal client-side streaming condition
)

const (
	// DefaultRetryMaxAttempts is the default total number of invocations
	// before retry gives up.
	DefaultRetryMaxAttempts = 3

	// DefaultRetryInitialDelay is the default delay before the first retry.
	DefaultRetryInitialDelay = 1 * time.Second

	// DefaultRetryMaxDelay is the default cap on the backoff delay.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMultiplier is the default geometric growth factor of the
	// backoff schedule.
	DefaultRetryMultiplier = 2.0

	// DefaultStreamBatchSize is the default page size requested per fetch.
	DefaultStreamBatchSize = 100

	// DefaultStreamHighWaterMark is the default bounded-buffer capacity.
	// The background fetch blocks once this many rows are buffered.
	DefaultStreamHighWaterMark = 1000

	// DefaultStreamTimeout bounds buffer-insert and buffer-remove waits.
	DefaultStreamTimeout = 30 * time.Second
)
