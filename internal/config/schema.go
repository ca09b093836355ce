package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config holds labelpack configuration.
// Stored at: ~/.labelpack/config.yaml (or ./config.yaml)
type Config struct {
	// WorkDir is scanned for label PDFs; output is written there too.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir"`
	// OrdersFile is the shipped-orders export (supports ${ENV_VAR} syntax).
	OrdersFile string `mapstructure:"orders_file" yaml:"orders_file"`
	// OutputSuffix marks annotated output so it is never read back as input.
	OutputSuffix string `mapstructure:"output_suffix" yaml:"output_suffix"`
	// LabelCount overrides the label total in page counters (0 = count them).
	LabelCount int    `mapstructure:"label_count" yaml:"label_count"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"` // debug, info, warn, error

	Extract ExtractCfg `mapstructure:"extract" yaml:"extract"`
	Render  RenderCfg  `mapstructure:"render" yaml:"render"`
	Watch   WatchCfg   `mapstructure:"watch" yaml:"watch"`
}

// ExtractCfg configures tracking number extraction.
type ExtractCfg struct {
	Engine        string `mapstructure:"engine" yaml:"engine"`                 // "pdftotext" or "native"
	PdftotextPath string `mapstructure:"pdftotext_path" yaml:"pdftotext_path"` // binary name or path
	Workers       int    `mapstructure:"workers" yaml:"workers"`               // files in parallel (0 = NumCPU)
	Retries       int    `mapstructure:"retries" yaml:"retries"`               // extra attempts when pdftotext fails to start
	SortFragments bool   `mapstructure:"sort_fragments" yaml:"sort_fragments"` // join region words top-to-bottom, left-to-right
}

// RenderCfg configures the annotation overlay.
type RenderCfg struct {
	FontFamily        string  `mapstructure:"font_family" yaml:"font_family"`
	FontSize          float64 `mapstructure:"font_size" yaml:"font_size"`
	Leading           float64 `mapstructure:"leading" yaml:"leading"`
	HighlightOverflow bool    `mapstructure:"highlight_overflow" yaml:"highlight_overflow"` // draw overflowed fields in red
}

// WatchCfg configures the inbox watcher.
type WatchCfg struct {
	// Debounce is how long the work dir must be quiet before a run starts.
	Debounce string `mapstructure:"debounce" yaml:"debounce"`
}

// Extraction engines.
const (
	EnginePdftotext = "pdftotext"
	EngineNative    = "native"
)

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkDir:      ".",
		OrdersFile:   "orders.json",
		OutputSuffix: "+packing",
		LogLevel:     "info",
		Extract: ExtractCfg{
			Engine:        EnginePdftotext,
			PdftotextPath: "pdftotext",
			Retries:       2,
		},
		Render: RenderCfg{
			FontFamily: "Courier",
			FontSize:   10,
			Leading:    12,
		},
		Watch: WatchCfg{
			Debounce: "2s",
		},
	}
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Extract.Engine {
	case EnginePdftotext, EngineNative:
	default:
		return fmt.Errorf("unknown extract.engine %q (want %s or %s)", c.Extract.Engine, EnginePdftotext, EngineNative)
	}
	if c.OutputSuffix == "" {
		return fmt.Errorf("output_suffix must not be empty")
	}
	if c.Render.FontSize <= 0 || c.Render.Leading <= 0 {
		return fmt.Errorf("render.font_size and render.leading must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	return nil
}

// DebounceDuration parses Watch.Debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	if c.Watch.Debounce == "" {
		return 2 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch.debounce: %w", err)
	}
	return d, nil
}

// ParseLevel maps a log level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
