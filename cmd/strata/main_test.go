package main

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stratadb/strata-go/pkg/strata"
)

// TestPanicExitCode re-executes the test binary with the panic gate set and
// verifies that the recover in main converts the panic into the dedicated
// exit code instead of the runtime's exit status 2.
func TestPanicExitCode(t *testing.T) {
	if os.Getenv("STRATA_TEST_PANIC") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestPanicExitCode")
	cmd.Env = append(os.Environ(), "STRATA_TEST_PANIC=1")
	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected the child process to exit with an error, got %v", err)
	}
	if code := exitErr.ExitCode(); code != strata.ExitPanic {
		t.Errorf("exit code = %d, want %d", code, strata.ExitPanic)
	}
}
