// Package pipeline runs a batch: discover label PDFs, extract tracking
// numbers, resolve them against the order export, and write one annotated
// document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/labelpack/internal/annotate"
	"github.com/jackzampolin/labelpack/internal/extract"
	"github.com/jackzampolin/labelpack/internal/orders"
	"github.com/jackzampolin/labelpack/internal/render"
)

// DefaultOutputSuffix marks files written by the pipeline.
const DefaultOutputSuffix = "+packing"

// ErrNoInput is returned when the work directory holds no label PDFs.
var ErrNoInput = errors.New("no label PDFs found")

// Config configures a Pipeline.
type Config struct {
	WorkDir    string // directory scanned for label PDFs
	OrdersFile string // order export (flat or raw payload)

	// OutputPath overrides the generated output file name.
	OutputPath string
	// OutputSuffix marks output files so they are skipped as input (default: +packing).
	OutputSuffix string
	// LabelCount overrides the label total in the page counter. Zero derives it.
	LabelCount int

	Extractor *extract.Extractor // default: extract.New with defaults
	Layout    *annotate.Layout   // default: annotate.DefaultLayout()
	Renderer  *render.Renderer   // default: render.New with defaults

	Logger *slog.Logger
	Now    func() time.Time // default: time.Now
}

// Pipeline runs annotation batches.
type Pipeline struct {
	cfg       Config
	extractor *extract.Extractor
	layout    *annotate.Layout
	renderer  *render.Renderer
	logger    *slog.Logger
	now       func() time.Time
}

// Result summarizes a completed run.
type Result struct {
	RunID      string   `json:"run_id" yaml:"run_id"`
	OutputPath string   `json:"output" yaml:"output"`
	Inputs     []string `json:"inputs" yaml:"inputs"`
	Pages      int      `json:"pages" yaml:"pages"`
	Labels     int      `json:"labels" yaml:"labels"`
	Overflows  int      `json:"overflows" yaml:"overflows"`
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OutputSuffix == "" {
		cfg.OutputSuffix = DefaultOutputSuffix
	}
	p := &Pipeline{
		cfg:       cfg,
		extractor: cfg.Extractor,
		layout:    cfg.Layout,
		renderer:  cfg.Renderer,
		logger:    logger,
		now:       cfg.Now,
	}
	if p.extractor == nil {
		p.extractor = extract.New(extract.Config{Logger: logger})
	}
	if p.layout == nil {
		p.layout = annotate.DefaultLayout()
	}
	if p.renderer == nil {
		p.renderer = render.New(render.Config{Logger: logger})
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Discover lists the label PDFs in the work directory.
func (p *Pipeline) Discover() ([]string, error) {
	files, err := extract.ListInputFiles(p.cfg.WorkDir, p.cfg.OutputSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p.cfg.WorkDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, p.cfg.WorkDir)
	}
	return files, nil
}

// Extract discovers the input files and extracts every page.
func (p *Pipeline) Extract(ctx context.Context) ([]string, []extract.PageResult, error) {
	files, err := p.Discover()
	if err != nil {
		return nil, nil, err
	}
	pages, err := p.extractor.ExtractAll(ctx, files)
	if err != nil {
		return nil, nil, err
	}
	return files, pages, nil
}

// LoadIndex builds the order index from the configured export.
func (p *Pipeline) LoadIndex() (*orders.Index, error) {
	records, err := orders.Load(p.cfg.OrdersFile)
	if err != nil {
		return nil, err
	}
	idx := orders.BuildIndex(records)
	p.logger.Debug("built order index", "orders", idx.Len(), "tracking_numbers", idx.TrackingCount())
	return idx, nil
}

// Run executes one batch. Every fatal condition is detected before the
// output file is written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	logger := p.logger.With("run_id", runID)
	start := time.Now()

	files, pages, err := p.Extract(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("extracted labels", "files", len(files), "pages", len(pages))

	// The index is built only after extraction has finished.
	idx, err := p.LoadIndex()
	if err != nil {
		return nil, err
	}

	labels := p.cfg.LabelCount
	if labels <= 0 {
		labels = CountLabels(pages)
	}

	planned, err := Plan(pages, idx, p.layout, labels)
	if err != nil {
		return nil, err
	}

	overflows := 0
	for _, page := range planned {
		for _, f := range page.Fields {
			if f.Overflow {
				overflows++
				logger.Warn("annotation overflows its space",
					"file", page.SourceFile, "page", page.PageNumber, "type", f.Type, "text", f.Text)
			}
		}
	}

	out := p.cfg.OutputPath
	if out == "" {
		out = filepath.Join(p.cfg.WorkDir, render.OutputName(p.now(), labels, p.cfg.OutputSuffix))
	}
	if err := p.renderer.WriteFile(ctx, out, planned); err != nil {
		return nil, err
	}

	logger.Info("run complete",
		"output", out, "pages", len(planned), "labels", labels, "overflows", overflows,
		"duration", time.Since(start).Round(time.Millisecond))

	return &Result{
		RunID:      runID,
		OutputPath: out,
		Inputs:     files,
		Pages:      len(planned),
		Labels:     labels,
		Overflows:  overflows,
	}, nil
}

func (r *Result) String() string {
	return fmt.Sprintf("wrote %s (%d pages, %d labels, %d overflowed fields)", r.OutputPath, r.Pages, r.Labels, r.Overflows)
}
