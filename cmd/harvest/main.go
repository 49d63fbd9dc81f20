// Command harvest downloads every filter combination of a research-data
// page's CSV exports, plans such runs without a browser, and serves the
// downloaded files over a small read-only API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/use-agent/harvest/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(config.Load())
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "harvest:", err)
		stop()
		os.Exit(1)
	}
}
