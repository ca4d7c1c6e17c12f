// Command dvmhostd is the trunking core's process entrypoint: it loads
// YAML configuration, wires the lookup table, per-protocol trunking
// controllers, modem transport, FNE transport and REST admin surface
// together, and supervises them until a shutdown signal arrives.
//
// It replaces the teacher's cmd/ysf2dmr/main.go (a single cross-protocol
// gateway process) with one host process per site that can run any
// combination of DMR, P25 and NXDN control channels side by side.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
