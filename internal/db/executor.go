package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stratadb/strata-go/pkg/strata"
)

// PoolExecutor implements strata.QueryExecutor on top of a pgx connection
// pool. Each Execute materializes one page of rows keyed by column name.
//
// Thread-Safety: safe for concurrent use (pgxpool.Pool is thread-safe).
type PoolExecutor struct {
	pool *pgxpool.Pool
}

// NewPoolExecutor creates a PoolExecutor wrapping the given pool.
func NewPoolExecutor(pool *pgxpool.Pool) *PoolExecutor {
	return &PoolExecutor{pool: pool}
}

// Execute runs sql with positional params and returns all returned rows.
// Driver failures are classified into the strata error taxonomy.
func (p *PoolExecutor) Execute(ctx context.Context, sql string, params []any) (*strata.QueryResult, error) {
	rows, err := p.pool.Query(ctx, sql, params...)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	var out []strata.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, classifyError(err)
		}
		row := make(strata.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(err)
	}

	return &strata.QueryResult{Rows: out}, nil
}

// Close releases the underlying pool.
func (p *PoolExecutor) Close() {
	p.pool.Close()
}

var _ strata.QueryExecutor = (*PoolExecutor)(nil)
