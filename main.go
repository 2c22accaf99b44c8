// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"spektra/cmd"
	"spektra/internal/log"
	"spektra/pkg/build"
)

// main wires build information and signal handling around the command
// line. Every subcommand receives a context that is cancelled on
// SIGINT/SIGTERM so captures, servers and publishers shut down cleanly.
func main() {
	// Release builds set these through ldflags; development builds keep
	// the defaults.
	if err := build.Initialize(); err != nil {
		log.Debugf("Build: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		log.Fatalf("%v", err)
	}
}
