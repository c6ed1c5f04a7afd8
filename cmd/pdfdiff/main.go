// Command pdfdiff compares two versions of a document and writes an
// annotated copy of the new version together with a difference report.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benedoc-inc/pdfdiff/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		slog.Warn("Error loading .env file", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
