package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/labelpack/internal/annotate"
	"github.com/jackzampolin/labelpack/internal/config"
	"github.com/jackzampolin/labelpack/internal/extract"
	"github.com/jackzampolin/labelpack/internal/home"
	"github.com/jackzampolin/labelpack/internal/label"
	"github.com/jackzampolin/labelpack/internal/output"
	"github.com/jackzampolin/labelpack/internal/pipeline"
	"github.com/jackzampolin/labelpack/internal/render"
	"github.com/jackzampolin/labelpack/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
	workDir      string
	ordersFile   string
)

var rootCmd = &cobra.Command{
	Use:   "labelpack",
	Short: "Annotate shipping labels with packing info from the order export",
	Long: `Labelpack reads printed shipping-label PDFs, finds the tracking number on
each page by position, looks it up in the shipped-orders export and writes one
merged PDF with the packing list, seller account and buyer notes printed on
every label.

Typical flow:
  labelpack flatten export.json      # normalize the marketplace export
  labelpack annotate                 # annotate every label PDF in the work dir
  labelpack watch                    # annotate whenever new labels arrive`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.labelpack/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "labelpack home directory (default: ~/.labelpack)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or text",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&workDir, "work-dir", "d", "", "directory holding label PDFs (overrides config)",
	)
	rootCmd.PersistentFlags().StringVar(
		&ordersFile, "orders", "", "order export file (overrides config)",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		f, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		output.SetFormat(f)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the config file and applies command-line overrides.
// Without --config, ~/.labelpack/config.yaml is used when present.
func loadConfig() (*config.Manager, error) {
	path := cfgFile
	if path == "" {
		h, err := home.New(homeDir)
		if err != nil {
			return nil, err
		}
		if h.ConfigExists() {
			path = h.ConfigPath()
		}
	}

	mgr, err := config.NewManager(path)
	if err != nil {
		return nil, err
	}

	overrides := map[string]string{
		"log_level":   logLevel,
		"work_dir":    workDir,
		"orders_file": ordersFile,
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := mgr.Set(key, value); err != nil {
			return nil, fmt.Errorf("--%s: %w", key, err)
		}
	}
	return mgr, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func newExtractor(cfg *config.Config, logger *slog.Logger) (*extract.Extractor, error) {
	catalog := label.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	var source extract.WordSource
	switch cfg.Extract.Engine {
	case config.EngineNative:
		source = extract.Native{}
	default:
		source = extract.NewPoppler(extract.PopplerConfig{
			Path:    cfg.Extract.PdftotextPath,
			Retries: cfg.Extract.Retries,
			Logger:  logger,
		})
	}

	return extract.New(extract.Config{
		Catalog:       catalog,
		Source:        source,
		Workers:       cfg.Extract.Workers,
		SortFragments: cfg.Extract.SortFragments,
		Logger:        logger,
	}), nil
}

// pipelineOptions are per-command settings layered over the config.
type pipelineOptions struct {
	outputPath string
	labels     int
}

func newPipeline(cfg *config.Config, logger *slog.Logger, opts pipelineOptions) (*pipeline.Pipeline, error) {
	ex, err := newExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}

	labels := cfg.LabelCount
	if opts.labels > 0 {
		labels = opts.labels
	}

	return pipeline.New(pipeline.Config{
		WorkDir:      cfg.WorkDir,
		OrdersFile:   cfg.OrdersFile,
		OutputPath:   opts.outputPath,
		OutputSuffix: cfg.OutputSuffix,
		LabelCount:   labels,
		Extractor:    ex,
		Layout:       annotate.DefaultLayout(),
		Renderer: render.New(render.Config{
			FontFamily:        cfg.Render.FontFamily,
			FontSize:          cfg.Render.FontSize,
			Leading:           cfg.Render.Leading,
			HighlightOverflow: cfg.Render.HighlightOverflow,
			Logger:            logger,
		}),
		Logger: logger,
	}), nil
}

// setup loads config and builds the logger, the common prologue of every
// pipeline command.
func setup() (*config.Manager, *slog.Logger, error) {
	mgr, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return mgr, newLogger(mgr.Get()), nil
}
