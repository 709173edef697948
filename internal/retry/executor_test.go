package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stratadb/strata-go/pkg/strata"
)

// mockOperation tracks invocation count and simulates failures.
type mockOperation struct {
	invocations int
	failUntil   int // fail for invocations < failUntil
	err         error
}

func (m *mockOperation) execute(ctx context.Context) error {
	m.invocations++
	if m.invocations < m.failUntil {
		if m.err != nil {
			return m.err
		}
		return strata.NewError(strata.KindConnection, "connection dropped")
	}
	return nil
}

func fastPolicy(maxAttempts int) strata.RetryPolicy {
	return strata.RetryPolicy{
		MaxAttempts:  maxAttempts,
		InitialDelay: 1 * time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func newTestExecutor(t *testing.T, maxAttempts int) *Executor {
	t.Helper()
	backoff, err := NewExponentialBackoff(fastPolicy(maxAttempts))
	if err != nil {
		t.Fatalf("NewExponentialBackoff: %v", err)
	}
	return NewExecutor(NewKindClassifier(), backoff)
}

func TestExecutor_Execute_SuccessOnFirstAttempt(t *testing.T) {
	executor := newTestExecutor(t, 3)
	op := &mockOperation{failUntil: 1}

	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_Execute_SuccessAfterRetries(t *testing.T) {
	executor := newTestExecutor(t, 3)

	// Fail twice with a retryable kind, succeed on the third attempt.
	op := &mockOperation{failUntil: 3}

	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if op.invocations != 3 {
		t.Errorf("Expected 3 invocations, got %d", op.invocations)
	}
}

func TestExecutor_Execute_TerminalErrorNoRetry(t *testing.T) {
	executor := newTestExecutor(t, 3)

	terminal := strata.NewError(strata.KindPermission, "permission denied for table accounts")
	op := &mockOperation{failUntil: 999, err: terminal}

	err := executor.Execute(context.Background(), op.execute)
	if err == nil {
		t.Fatal("Expected terminal error, got nil")
	}
	if !errors.Is(err, terminal) {
		t.Errorf("Expected original terminal error propagated, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation (no retries for terminal error), got %d", op.invocations)
	}
}

func TestExecutor_Execute_ExhaustedAttempts(t *testing.T) {
	executor := newTestExecutor(t, 3)

	transient := strata.NewError(strata.KindTimeout, "statement timeout")
	op := &mockOperation{failUntil: 999, err: transient}

	err := executor.Execute(context.Background(), op.execute)
	if err == nil {
		t.Fatal("Expected error after exhausted attempts, got nil")
	}
	if op.invocations != 3 {
		t.Errorf("Expected exactly 3 invocations, got %d", op.invocations)
	}

	if !strings.Contains(err.Error(), "Failed after 3 attempts") {
		t.Errorf("Expected message to contain %q, got %q", "Failed after 3 attempts", err.Error())
	}

	// The exhaustion failure escalates the kind to connection error while
	// preserving the original message for diagnostics.
	kind, ok := strata.KindOf(err)
	if !ok || kind != strata.KindConnection {
		t.Errorf("Expected connection kind on exhaustion error, got kind=%v ok=%v", kind, ok)
	}
	if !strings.Contains(err.Error(), "statement timeout") {
		t.Errorf("Expected original message preserved, got %q", err.Error())
	}
	if !errors.Is(err, transient) {
		t.Error("Expected original failure reachable via errors.Is")
	}
}

func TestExecutor_Execute_ExhaustedIncludesLabel(t *testing.T) {
	executor := newTestExecutor(t, 2).WithLabel("orders query")

	op := &mockOperation{failUntil: 999, err: strata.NewError(strata.KindConnection, "connection reset")}

	err := executor.Execute(context.Background(), op.execute)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Failed after 2 attempts (orders query)") {
		t.Errorf("Expected label in exhaustion message, got %q", err.Error())
	}
}

func TestExecutor_Execute_UnstructuredTransientRetried(t *testing.T) {
	executor := newTestExecutor(t, 3)

	op := &mockOperation{failUntil: 2, err: errors.New("dial tcp: connection refused")}

	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Errorf("Expected success after retrying unstructured transient error, got %v", err)
	}
	if op.invocations != 2 {
		t.Errorf("Expected 2 invocations, got %d", op.invocations)
	}
}

func TestExecutor_Execute_SingleAttemptPolicy(t *testing.T) {
	executor := newTestExecutor(t, 1)

	op := &mockOperation{failUntil: 999, err: strata.NewError(strata.KindConnection, "refused")}

	err := executor.Execute(context.Background(), op.execute)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation under MaxAttempts=1, got %d", op.invocations)
	}
	if !strings.Contains(err.Error(), "Failed after 1 attempts") {
		t.Errorf("Expected exhaustion message, got %q", err.Error())
	}
}

func TestExecutor_Execute_ContextCancelStopsRetries(t *testing.T) {
	backoff, err := NewExponentialBackoff(strata.RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	})
	if err != nil {
		t.Fatalf("NewExponentialBackoff: %v", err)
	}
	executor := NewExecutor(NewKindClassifier(), backoff)

	ctx, cancel := context.WithCancel(context.Background())
	op := &mockOperation{failUntil: 999}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	execErr := executor.Execute(ctx, op.execute)
	if !errors.Is(execErr, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", execErr)
	}
	if op.invocations != 1 {
		t.Errorf("Expected cancellation to prevent further attempts, got %d invocations", op.invocations)
	}
}

func TestExecutor_Execute_OnRetryCallback(t *testing.T) {
	var attempts []int
	executor := newTestExecutor(t, 3).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	})

	op := &mockOperation{failUntil: 3}
	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 1 {
		t.Errorf("Expected retry callbacks [0 1], got %v", attempts)
	}
}

func TestExecuteValue(t *testing.T) {
	executor := newTestExecutor(t, 3)

	calls := 0
	result, err := ExecuteValue(context.Background(), executor, func(ctx context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, strata.NewError(strata.KindConnection, "refused")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("ExecuteValue: %v", err)
	}
	if result != 42 {
		t.Errorf("Expected 42, got %d", result)
	}
	if calls != 2 {
		t.Errorf("Expected 2 invocations, got %d", calls)
	}
}

func TestExecutor_QueryExecutor_Retries(t *testing.T) {
	executor := newTestExecutor(t, 3)

	calls := 0
	inner := strata.QueryFunc(func(ctx context.Context, sql string, params []any) (*strata.QueryResult, error) {
		calls++
		if calls < 2 {
			return nil, strata.NewError(strata.KindConnection, "connection dropped")
		}
		return &strata.QueryResult{Rows: []strata.Row{{"n": int64(1)}}}, nil
	})

	res, err := executor.QueryExecutor(inner).Execute(context.Background(), "SELECT 1", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Rows) != 1 || calls != 2 {
		t.Errorf("Expected 1 row after 2 calls, got %d rows after %d calls", len(res.Rows), calls)
	}
}
