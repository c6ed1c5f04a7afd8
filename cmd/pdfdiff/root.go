package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/benedoc-inc/pdfdiff/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfdiff",
	Short: "Compare two versions of a document",
	Long: `pdfdiff aligns two versions of a document page by page, diffs the words
and embedded images of every common page, and writes an annotated copy of the
new version together with a text report of the differences.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every page at debug level")
}

// newLogger builds the command logger from the log settings
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
