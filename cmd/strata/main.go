package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/stratadb/strata-go/internal/cli"
	"github.com/stratadb/strata-go/pkg/strata"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(strata.ExitPanic)
		}
	}()

	if os.Getenv("STRATA_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(strata.ExitCodeForError(err))
	}
}
