// Package config loads pdfdiff settings from a TOML file and PDFDIFF_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/benedoc-inc/pdfdiff/core/compare"
	"github.com/benedoc-inc/pdfdiff/types"
)

// Cache backends
const (
	CacheSQLite = "sqlite"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Environment variables overriding file settings
const (
	EnvWorkers       = "PDFDIFF_WORKERS"
	EnvHashThreshold = "PDFDIFF_HASH_THRESHOLD"
	EnvLogLevel      = "PDFDIFF_LOG_LEVEL"
	EnvCachePath     = "PDFDIFF_CACHE_PATH"
	EnvOutputPDF     = "PDFDIFF_OUTPUT_PDF"
	EnvOutputReport  = "PDFDIFF_OUTPUT_REPORT"
)

// Config holds every pdfdiff setting
type Config struct {
	Compare   CompareConfig   `toml:"compare"`
	Highlight HighlightConfig `toml:"highlight"`
	Marker    MarkerConfig    `toml:"marker"`
	Output    OutputConfig    `toml:"output"`
	Cache     CacheConfig     `toml:"cache"`
	Log       LogConfig       `toml:"log"`
}

type CompareConfig struct {
	Workers       int `toml:"workers"`
	HashThreshold int `toml:"hash_threshold"`
}

// ColorConfig is an RGB color with components in [0,1]
type ColorConfig struct {
	R float64 `toml:"r"`
	G float64 `toml:"g"`
	B float64 `toml:"b"`
}

func (c ColorConfig) color() types.Color {
	return types.Color{R: c.R, G: c.G, B: c.B}
}

func colorConfig(c types.Color) ColorConfig {
	return ColorConfig{R: c.R, G: c.G, B: c.B}
}

type HighlightConfig struct {
	Color       ColorConfig `toml:"color"`
	StrokeWidth float64     `toml:"stroke_width"`
}

type MarkerConfig struct {
	Text     string      `toml:"text"`
	X        float64     `toml:"x"`
	Y        float64     `toml:"y"`
	FontSize float64     `toml:"font_size"`
	Color    ColorConfig `toml:"color"`
}

type OutputConfig struct {
	PDF    string `toml:"pdf"`
	Report string `toml:"report"`
	JSON   string `toml:"json"`  // Empty disables the JSON report
	Title  string `toml:"title"` // Title of the annotated PDF
}

type CacheConfig struct {
	Backend string `toml:"backend"` // sqlite, memory or none
	Path    string `toml:"path"`    // SQLite database, defaults to the user cache directory
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	Format string `toml:"format"` // text or json
}

// Default returns the default configuration
func Default() *Config {
	highlight := compare.DefaultHighlightStyle()
	marker := compare.DefaultMarkerStyle()
	return &Config{
		Compare: CompareConfig{
			Workers:       runtime.NumCPU(),
			HashThreshold: compare.DefaultHashThreshold,
		},
		Highlight: HighlightConfig{
			Color:       colorConfig(highlight.Color),
			StrokeWidth: highlight.StrokeWidth,
		},
		Marker: MarkerConfig{
			Text:     marker.Text,
			X:        marker.Position.X,
			Y:        marker.Position.Y,
			FontSize: marker.FontSize,
			Color:    colorConfig(marker.Color),
		},
		Output: OutputConfig{
			PDF:    compare.DefaultOutputPDF,
			Report: compare.DefaultOutputReport,
		},
		Cache: CacheConfig{Backend: CacheSQLite},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// LoadEnv loads variables from .env files into the environment. Without
// arguments it reads ./.env and a missing file is not an error.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && len(files) == 0 && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load builds the configuration from defaults, the TOML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()
		if err := cfg.Decode(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays TOML settings on cfg. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown configuration keys:\n%s", strict.String())
		}
		return err
	}
	return nil
}

// ApplyEnv overrides settings from environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvWorkers, &c.Compare.Workers},
		{EnvHashThreshold, &c.Compare.HashThreshold},
	}
	for _, e := range ints {
		v, ok := lookup(e.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", e.name, v, err)
		}
		*e.dst = n
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{EnvLogLevel, &c.Log.Level},
		{EnvCachePath, &c.Cache.Path},
		{EnvOutputPDF, &c.Output.PDF},
		{EnvOutputReport, &c.Output.Report},
	}
	for _, e := range strs {
		if v, ok := lookup(e.name); ok && v != "" {
			*e.dst = v
		}
	}
	return nil
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Compare.Workers <= 0 {
		errs = append(errs, fmt.Errorf("compare.workers must be positive, got %d", c.Compare.Workers))
	}
	if c.Compare.HashThreshold < 0 {
		errs = append(errs, fmt.Errorf("compare.hash_threshold must not be negative, got %d", c.Compare.HashThreshold))
	}
	if !c.Highlight.Color.color().Valid() {
		errs = append(errs, fmt.Errorf("highlight.color components must lie in [0,1], got %+v", c.Highlight.Color))
	}
	if !(c.Highlight.StrokeWidth >= 0) || math.IsInf(c.Highlight.StrokeWidth, 0) {
		errs = append(errs, fmt.Errorf("highlight.stroke_width must not be negative, got %g", c.Highlight.StrokeWidth))
	}
	if !c.Marker.Color.color().Valid() {
		errs = append(errs, fmt.Errorf("marker.color components must lie in [0,1], got %+v", c.Marker.Color))
	}
	if !(c.Marker.FontSize > 0) {
		errs = append(errs, fmt.Errorf("marker.font_size must be positive, got %g", c.Marker.FontSize))
	}
	if c.Output.PDF == "" || c.Output.Report == "" {
		errs = append(errs, fmt.Errorf("output.pdf and output.report must be set"))
	}
	switch c.Cache.Backend {
	case CacheSQLite, CacheMemory, CacheNone:
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be one of %s, %s, %s, got %q", CacheSQLite, CacheMemory, CacheNone, c.Cache.Backend))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return types.WrapError(types.ErrCodeInvalidInput, "invalid configuration", errors.Join(errs...))
	}
	return nil
}

// LogLevel parses the configured log level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// CompareOptions maps the configuration onto engine options. Hasher, cache
// and logger are left for the caller to set.
func (c *Config) CompareOptions() compare.Options {
	opts := compare.DefaultOptions()
	opts.Workers = c.Compare.Workers
	opts.HashThreshold = c.Compare.HashThreshold
	opts.Highlight = compare.HighlightStyle{
		Color:       c.Highlight.Color.color(),
		StrokeWidth: c.Highlight.StrokeWidth,
	}
	opts.Marker = compare.MarkerStyle{
		Position: types.Point{X: c.Marker.X, Y: c.Marker.Y},
		Text:     c.Marker.Text,
		FontSize: c.Marker.FontSize,
		Color:    c.Marker.Color.color(),
	}
	return opts
}
