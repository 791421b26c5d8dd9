// Command jobdispatch-admin runs maintenance tasks against the job dispatch database
// and ref counters.
package main

import (
	"context"
	"os"

	"github.com/target/jobdispatch/internal/bootstrap"
)

func main() {
	logger := bootstrap.InitLogger()
	root := newRootCmd(&rootOptions{
		Logger:     logger,
		Out:        os.Stdout,
		LoadConfig: bootstrap.LoadConfig,
		Open:       openBackend,
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}
