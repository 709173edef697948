package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stratadb/strata-go/pkg/strata"
)

// classifyError translates driver-level failures into the structured strata
// error taxonomy at the boundary, so the retry engine can classify them by
// kind instead of falling back to message matching. Errors with no known
// mapping pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if kind, ok := kindForSQLState(pgErr.Code); ok {
			return strata.WrapError(kind, err, "%s", pgErr.Message)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return strata.WrapError(strata.KindTimeout, err, "operation deadline exceeded")
	}

	return err
}

// kindForSQLState maps PostgreSQL SQLSTATE codes to strata error kinds.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
func kindForSQLState(code string) (strata.ErrorKind, bool) {
	switch code {
	// query_canceled: the statement exceeded a server-side deadline.
	case "57014":
		return strata.KindTimeout, true

	// invalid_authorization_specification / invalid_password
	case "28000", "28P01":
		return strata.KindAuthentication, true

	// insufficient_privilege
	case "42501":
		return strata.KindPermission, true

	// lock_not_available
	case "55P03":
		return strata.KindResourceLimit, true
	}

	switch {
	// Class 08 - Connection Exception
	case strings.HasPrefix(code, "08"):
		return strata.KindConnection, true

	// Class 40 - Transaction Rollback (serialization failure, deadlock)
	case strings.HasPrefix(code, "40"):
		return strata.KindResourceLimit, true

	// Class 42 - Syntax Error or Access Rule Violation (42501 handled above)
	case strings.HasPrefix(code, "42"):
		return strata.KindInvalidQuery, true

	// Class 22 - Data Exception (bad literals, casts, ranges)
	case strings.HasPrefix(code, "22"):
		return strata.KindInvalidQuery, true

	// Class 53 - Insufficient Resources
	case strings.HasPrefix(code, "53"):
		return strata.KindResourceLimit, true

	// Class 57 - Operator Intervention (admin shutdown, crash shutdown)
	case strings.HasPrefix(code, "57"):
		return strata.KindConnection, true
	}

	return strata.KindUnknown, false
}
