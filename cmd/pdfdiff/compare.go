package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/benedoc-inc/pdfdiff/config"
	"github.com/benedoc-inc/pdfdiff/core/compare"
	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/provider/hocr"
	"github.com/benedoc-inc/pdfdiff/provider/memory"
	"github.com/benedoc-inc/pdfdiff/provider/overlay"
	memstore "github.com/benedoc-inc/pdfdiff/storage/memory"
	"github.com/benedoc-inc/pdfdiff/storage/sqlite"
)

var (
	compareOutput    string
	compareReport    string
	compareJSON      string
	compareWorkers   int
	compareThreshold int
	compareCache     string
	compareCachePath string
	compareTitle     string
	compareDryRun    bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Compare two document versions",
	Long: `Compares file1 (the old version) with file2 (the new version).

Inputs are hOCR files (.hocr, .html, .xhtml) or JSON page manifests (.json).
The annotated copy of file2 is written as PDF, with changed words outlined and
pages whose images changed labelled. The report lists every page in order.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVarP(&compareOutput, "output", "o", "", "annotated PDF path (default "+compare.DefaultOutputPDF+")")
	f.StringVarP(&compareReport, "report", "r", "", "text report path (default "+compare.DefaultOutputReport+")")
	f.StringVar(&compareJSON, "json", "", "also write a JSON report to this path")
	f.IntVarP(&compareWorkers, "workers", "w", 0, "pages compared concurrently (default number of CPUs)")
	f.IntVar(&compareThreshold, "threshold", compare.DefaultHashThreshold, "largest perceptual hash distance treated as the same image")
	f.StringVar(&compareCache, "cache", "", "image hash cache: sqlite, memory or none")
	f.StringVar(&compareCachePath, "cache-path", "", "SQLite hash cache path")
	f.StringVar(&compareTitle, "title", "", "title of the annotated PDF")
	f.BoolVar(&compareDryRun, "dry-run", false, "compare and print the report without writing files")
	rootCmd.AddCommand(compareCmd)
}

// openers maps input extensions to document providers
var openers = provider.ByExtension{
	".hocr":  hocr.Opener{},
	".html":  hocr.Opener{},
	".xhtml": hocr.Opener{},
	".json":  memory.Opener{},
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadCompareConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	cache, closeCache, err := openCache(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	opts := cfg.CompareOptions()
	opts.Cache = cache
	opts.Logger = logger

	req := compare.FilesRequest{
		Path1:        args[0],
		Path2:        args[1],
		OutputPDF:    cfg.Output.PDF,
		OutputReport: cfg.Output.Report,
		OutputJSON:   cfg.Output.JSON,
		Opener:       openers,
		Composer:     overlay.NewComposer(cfg.Output.Title),
		Options:      opts,
		DryRun:       compareDryRun,
	}
	if compareDryRun {
		req.Composer = memory.NewComposer()
	}

	res, err := compare.CompareFiles(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if compareDryRun {
		fmt.Fprintln(out, compare.GenerateReport(res.Result))
		fmt.Fprintln(out)
	}
	printSummary(out, res)
	return nil
}

// loadCompareConfig loads the configuration and applies the command flags
// that were set explicitly
func loadCompareConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output.PDF = compareOutput
	}
	if f.Changed("report") {
		cfg.Output.Report = compareReport
	}
	if f.Changed("json") {
		cfg.Output.JSON = compareJSON
	}
	if f.Changed("workers") {
		cfg.Compare.Workers = compareWorkers
	}
	if f.Changed("threshold") {
		cfg.Compare.HashThreshold = compareThreshold
	}
	if f.Changed("cache") {
		cfg.Cache.Backend = compareCache
	}
	if f.Changed("cache-path") {
		cfg.Cache.Path = compareCachePath
	}
	if f.Changed("title") {
		cfg.Output.Title = compareTitle
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCache opens the configured image hash cache. The returned close
// function is never nil.
func openCache(cfg *config.Config, logger *slog.Logger) (compare.HashCache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheSQLite:
		cache, err := sqlite.Open(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open hash cache: %w", err)
		}
		logger.Debug("using hash cache", "path", cache.Path())
		return cache, func() {
			if err := cache.Close(); err != nil {
				logger.Warn("failed to close hash cache", "err", err)
			}
		}, nil
	case config.CacheMemory:
		return memstore.NewHashCache(), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

func printSummary(w io.Writer, res *compare.FilesResult) {
	summary := res.Summary()

	status := color.New(color.FgGreen, color.Bold)
	headline := "No differences found"
	if !summary.Identical() {
		status = color.New(color.FgRed, color.Bold)
		headline = "Differences found"
	}
	if res.Status == compare.StatusPartial {
		status = color.New(color.FgYellow, color.Bold)
		headline = fmt.Sprintf("Comparison incomplete: %d page(s) could not be compared", summary.Failed)
	}

	status.Fprintln(w, headline)
	fmt.Fprintln(w, summary.String())
	fmt.Fprintln(w, res.String())
}
