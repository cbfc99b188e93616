// Package main implements the synckit CLI tool.
//
// The synckit tool exercises the synchronization primitives under load and
// reports whether each one kept its guarantees. It is meant for checking a
// build on a new platform or Go release.
//
// Usage:
//
//	synckit stress                          # Run every scenario
//	synckit stress --scenarios mutex,arc    # Run selected scenarios
//	synckit version --require v0.1          # Check the library version
//
// Settings may also come from a YAML file (--config) or SYNCKIT_*
// environment variables, e.g. SYNCKIT_STRESS_THREADS=16.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
