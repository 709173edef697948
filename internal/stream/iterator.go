package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stratadb/strata-go/internal/logging"
	"github.com/stratadb/strata-go/pkg/strata"
)

// Iterator is a pull-based, finite, non-restartable sequence of rows fetched
// page by page from a query-execution capability. One background goroutine
// per Iterator is the sole producer for the bounded buffer; the consumer is
// expected to be a single goroutine draining it through Next.
type Iterator struct {
	id      uuid.UUID
	exec    strata.QueryExecutor
	baseSQL string
	params  []any
	opts    strata.StreamOptions
	logger  strata.Logger

	// buf is the bounded buffer between the fetch goroutine (sole producer,
	// sole closer) and the consumer. done is closed by Close to wake both
	// sides.
	buf  chan strata.Row
	done chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once

	// mu guards st. The flags live in one state cell so the fetch goroutine
	// and the consumer always observe a consistent combination.
	mu sync.Mutex
	st streamState
}

// streamState is the mutable state owned by a single Iterator.
type streamState struct {
	offset       int
	ended        bool
	closed       bool
	pendingErr   error
	errDelivered bool
}

// New constructs an Iterator over baseSQL with the given positional params
// and starts its background fetch goroutine. The provided context bounds all
// background fetches; closing the iterator cancels it. A nil logger disables
// logging.
func New(ctx context.Context, exec strata.QueryExecutor, baseSQL string, params []any, opts strata.StreamOptions, logger strata.Logger) (*Iterator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	it := &Iterator{
		id:      uuid.New(),
		exec:    exec,
		baseSQL: baseSQL,
		params:  params,
		opts:    opts,
		logger:  logger,
		buf:     make(chan strata.Row, opts.HighWaterMark),
		done:    make(chan struct{}),
		ctx:     fetchCtx,
		cancel:  cancel,
	}

	logger.Verbose("stream %s: opened (batch=%d, high-water mark=%d)", it.id, opts.BatchSize, opts.HighWaterMark)
	go it.fetchLoop()

	return it, nil
}

// ID returns the stream's correlation ID used in log output.
func (it *Iterator) ID() uuid.UUID {
	return it.id
}

// fetchLoop runs on the dedicated background goroutine. It is the only
// writer of offset/ended and the only party that closes buf.
func (it *Iterator) fetchLoop() {
	defer close(it.buf)

	for {
		it.mu.Lock()
		if it.st.ended || it.st.closed {
			it.mu.Unlock()
			return
		}
		offset := it.st.offset
		it.mu.Unlock()

		sql := Paginate(it.baseSQL, it.opts.BatchSize, offset)
		res, err := it.exec.Execute(it.ctx, sql, it.params)
		if err != nil {
			it.fail(err)
			return
		}

		if len(res.Rows) == 0 {
			it.end()
			return
		}

		it.logger.Verbose("stream %s: fetched %d rows at offset %d", it.id, len(res.Rows), offset)

		for _, row := range res.Rows {
			if !it.push(row) {
				return
			}
		}

		it.mu.Lock()
		it.st.offset += len(res.Rows)
		it.mu.Unlock()

		if len(res.Rows) < it.opts.BatchSize {
			// A short page is treated as exhaustion. This under-reads when
			// the source can return short non-final pages (e.g. filtering
			// applied after the limit); it is an approximation, not a
			// guaranteed exhaustion signal.
			it.end()
			return
		}
	}
}

// push inserts one row into the bounded buffer, waiting up to the configured
// timeout. Returns false when the loop must stop.
func (it *Iterator) push(row strata.Row) bool {
	timer := time.NewTimer(it.opts.Timeout)
	defer timer.Stop()

	select {
	case it.buf <- row:
		return true
	case <-it.done:
		return false
	case <-timer.C:
		it.fail(strata.NewError(strata.KindStream,
			"buffer insert timed out after %s (high-water mark %d reached, consumer stalled)",
			it.opts.Timeout, it.opts.HighWaterMark))
		return false
	}
}

// fail records a terminal stream failure for relay to the consumer.
// Failures observed after the consumer closed the stream are dropped.
func (it *Iterator) fail(err error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.st.closed {
		return
	}
	if it.st.pendingErr == nil {
		it.st.pendingErr = err
	}
	it.logger.Error("stream %s: fetch failed: %v", it.id, err)
}

func (it *Iterator) end() {
	it.mu.Lock()
	it.st.ended = true
	offset := it.st.offset
	it.mu.Unlock()
	it.logger.Verbose("stream %s: exhausted after %d rows", it.id, offset)
}

// poison terminates the stream after a consumer-side failure. The error is
// handed to the caller directly, so it is marked delivered here; every
// subsequent Next reads as exhausted.
func (it *Iterator) poison(err error) {
	it.mu.Lock()
	if it.st.pendingErr == nil {
		it.st.pendingErr = err
	}
	it.st.errDelivered = true
	it.mu.Unlock()

	it.logger.Error("stream %s: %v", it.id, err)
	it.Close()
}

func (it *Iterator) isClosed() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.st.closed
}

// takePendingErr returns the recorded fetch failure exactly once; after it
// has been delivered the stream reads as cleanly exhausted.
func (it *Iterator) takePendingErr() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.st.pendingErr != nil && !it.st.errDelivered {
		it.st.errDelivered = true
		return it.st.pendingErr
	}
	return nil
}

// Next returns the next row in fetch order. The boolean is false when the
// stream is exhausted or closed. A failure recorded by the background fetch
// is returned exactly once, after all rows buffered before it were drained.
// Next never blocks longer than the configured timeout; a remove timeout
// terminates the stream, so no rows can be observed after it.
func (it *Iterator) Next(ctx context.Context) (strata.Row, bool, error) {
	timer := time.NewTimer(it.opts.Timeout)
	defer timer.Stop()

	select {
	case row, ok := <-it.buf:
		if !ok {
			if err := it.takePendingErr(); err != nil {
				return nil, false, err
			}
			return nil, false, nil
		}
		if it.isClosed() {
			// Close raced with this receive; the row is discarded.
			return nil, false, nil
		}
		return row, true, nil
	case <-it.done:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-timer.C:
		err := strata.NewError(strata.KindStream,
			"buffer remove timed out after %s (fetch stalled)", it.opts.Timeout)
		it.poison(err)
		return nil, false, err
	}
}

// ForEach applies fn to every remaining row, stopping on the first error
// from the stream or from fn.
func (it *Iterator) ForEach(ctx context.Context, fn func(strata.Row) error) error {
	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// All collects every remaining row into a slice.
func (it *Iterator) All(ctx context.Context) ([]strata.Row, error) {
	var rows []strata.Row
	err := it.ForEach(ctx, func(row strata.Row) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Close terminates the stream: the background fetch stops at its next
// fetch-or-insert check point, in-flight fetches are cancelled, and buffered
// rows are discarded. Close is idempotent and safe to call concurrently with
// Next.
func (it *Iterator) Close() error {
	it.closeOnce.Do(func() {
		it.mu.Lock()
		it.st.closed = true
		it.mu.Unlock()

		close(it.done)
		it.cancel()

		// Discard whatever the fetch goroutine already buffered.
		for {
			select {
			case _, ok := <-it.buf:
				if !ok {
					return
				}
			default:
				return
			}
		}
	})
	return nil
}
