// Package stream provides a paginated streaming iterator over large query
// results. A dedicated background goroutine fetches pages through a
// query-execution capability and feeds a bounded buffer that the consumer
// drains lazily, so a result set is never fully resident in memory.
//
// The iterator never retries a failed fetch itself; wrap the capability with
// the retry package before constructing the iterator if retry is desired.
package stream
