package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stratadb/strata-go/internal/logging"
	"github.com/stratadb/strata-go/internal/retry"
	"github.com/stratadb/strata-go/pkg/strata"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns limits concurrent connections so one client cannot
	// exhaust server capacity while streaming.
	DefaultMaxConns = 5

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps connections alive between pages of a
	// long-running stream to avoid reconnection overhead.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger strata.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("server notice: %s", notice.Message)
	}
}

// Connect establishes a connection pool, retrying transient failures under
// the given policy. Parse errors are terminal; refused or timed-out dials
// are retried. A nil logger disables diagnostics.
func Connect(ctx context.Context, connString string, policy strata.RetryPolicy, logger strata.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	backoff, err := retry.NewExponentialBackoff(policy)
	if err != nil {
		return nil, err
	}

	executor := retry.NewExecutor(retry.NewKindClassifier(), backoff).
		WithLabel("connect").
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("connect retry %d in %s: %v", attempt+1, delay, err)
		})

	return retry.ExecuteValue(ctx, executor, func(ctx context.Context) (*pgxpool.Pool, error) {
		poolConfig, err := pgxpool.ParseConfig(connString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig, logger)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, classifyError(err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, classifyError(err)
		}

		return pool, nil
	})
}
