package stream

import (
	"fmt"
	"regexp"
	"strings"
)

// limitClausePattern matches a trailing LIMIT n [OFFSET m] clause,
// case-insensitively, anchored to the end of the statement.
var limitClausePattern = regexp.MustCompile(`(?i)\s+LIMIT\s+\d+(\s+OFFSET\s+\d+)?$`)

// Paginate rewrites baseSQL to fetch one page: any existing trailing
// LIMIT/OFFSET clause is stripped and LIMIT batchSize OFFSET offset is
// appended. Statements without a limit clause are passed through unchanged
// before the append.
func Paginate(baseSQL string, batchSize, offset int) string {
	sql := strings.TrimSpace(baseSQL)
	sql = limitClausePattern.ReplaceAllString(sql, "")
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, batchSize, offset)
}
