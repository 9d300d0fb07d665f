// Command congressmap collects, reconciles and publishes anesthesiology
// congress events.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentstation/congressmap/cmd/congressmap/app"
)

// Set by the release build through -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

const shutdownGrace = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	a, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runErr := a.Execute(ctx, os.Args[1:])

	// the signal context may already be done, so shut down on a fresh one
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := a.Shutdown(sctx); err != nil {
		a.Logger().Error().Err(err).Msg("Shutdown failed")
	}

	if runErr != nil {
		_, _ = os.Stderr.WriteString(runErr.Error() + "\n")
		return 1
	}
	return 0
}
