package strata_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stratadb/strata-go/pkg/strata"
)

func TestError_MessageIncludesKindAndCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	err := strata.WrapError(strata.KindConnection, cause, "connect to shard 3")

	msg := err.Error()
	if want := "connection error: connect to shard 3: dial tcp 10.0.0.1:5432: connection refused"; msg != want {
		t.Errorf("Error() = %q, want %q", msg, want)
	}

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind strata.ErrorKind
		wantOK   bool
	}{
		{"structured", strata.NewError(strata.KindTimeout, "statement timeout"), strata.KindTimeout, true},
		{"wrapped structured", fmt.Errorf("outer: %w", strata.NewError(strata.KindPermission, "denied")), strata.KindPermission, true},
		{"unstructured", errors.New("boom"), strata.KindUnknown, false},
		{"nil chain", fmt.Errorf("outer: %w", errors.New("inner")), strata.KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := strata.KindOf(tt.err)
			if kind != tt.wantKind || ok != tt.wantOK {
				t.Errorf("KindOf(%v) = (%v, %v), want (%v, %v)", tt.err, kind, ok, tt.wantKind, tt.wantOK)
			}
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, strata.ExitSuccess},
		{"general error", errors.New("something went wrong"), strata.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag --foo"), strata.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), strata.ExitUsageError},
		{"invalid config", fmt.Errorf("BatchSize must be at least 1: %w", strata.ErrInvalidConfig), strata.ExitConfigError},
		{"connection kind", strata.NewError(strata.KindConnection, "refused"), strata.ExitConnectionError},
		{"timeout kind", strata.NewError(strata.KindTimeout, "deadline"), strata.ExitConnectionError},
		{"auth kind", strata.NewError(strata.KindAuthentication, "bad password"), strata.ExitAuthError},
		{"permission kind", strata.NewError(strata.KindPermission, "denied"), strata.ExitAuthError},
		{"query kind", strata.NewError(strata.KindInvalidQuery, "syntax error"), strata.ExitQueryError},
		{"stream kind", strata.NewError(strata.KindStream, "buffer overflow"), strata.ExitStreamError},
		{"unstructured connection text", errors.New("dial: connection refused"), strata.ExitConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strata.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
