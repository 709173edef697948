package strata

import "context"

// Row is a single result row, keyed by column name.
type Row map[string]any

// QueryResult is the materialized outcome of one query execution.
type QueryResult struct {
	// Rows preserves the order returned by the server.
	Rows []Row
}

// QueryExecutor is the query-execution capability consumed by the client
// runtime. How a request is physically sent (transport, pooling, routing)
// is the implementation's concern; the runtime only requires this contract.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type QueryExecutor interface {
	// Execute runs sql with positional params and returns all rows of the
	// response. Failures should carry a *Error kind where the implementation
	// can classify them; unstructured errors are tolerated.
	Execute(ctx context.Context, sql string, params []any) (*QueryResult, error)
}

// QueryFunc adapts a plain function to the QueryExecutor interface.
type QueryFunc func(ctx context.Context, sql string, params []any) (*QueryResult, error)

// Execute implements QueryExecutor.
func (f QueryFunc) Execute(ctx context.Context, sql string, params []any) (*QueryResult, error) {
	return f(ctx, sql, params)
}
