package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// reportError prints err unless the command already rendered it and returns
// the process exit status.
func reportError(w io.Writer, err error) int {
	switch {
	case errors.Is(err, errPrintBlocked):
		// the session output already lists the blocking reasons
	case errors.Is(err, context.Canceled):
	default:
		fmt.Fprintln(w, err)
	}
	return 1
}
