package extract

import (
	"context"
	"iter"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/labelpack/internal/label"
)

// PageResult lists the tracking numbers found on one page.
type PageResult struct {
	SourceFile      string                 `json:"source_file" yaml:"source_file"`
	PageNumber      int                    `json:"page" yaml:"page"` // 1-indexed within SourceFile
	TrackingNumbers []label.TrackingNumber `json:"tracking_numbers" yaml:"tracking_numbers"`
}

// Extractor classifies page words into label regions and validates the text
// found in each region.
type Extractor struct {
	catalog       *label.Catalog
	source        WordSource
	workers       int
	sortFragments bool
	logger        *slog.Logger
}

// Config configures an Extractor.
type Config struct {
	Catalog *label.Catalog // default: label.DefaultCatalog()
	Source  WordSource     // default: pdftotext
	Workers int            // files extracted in parallel (default: runtime.NumCPU())

	// SortFragments concatenates the words of a region top-to-bottom, then
	// left-to-right, instead of in the order the text layer lists them.
	SortFragments bool

	Logger *slog.Logger
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = label.DefaultCatalog()
	}
	source := cfg.Source
	if source == nil {
		source = NewPoppler(PopplerConfig{Logger: logger})
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Extractor{
		catalog:       catalog,
		source:        source,
		workers:       workers,
		sortFragments: cfg.SortFragments,
		logger:        logger,
	}
}

// ExtractFile returns one result per page of path, in page order.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]PageResult, error) {
	pages, err := e.source.Words(ctx, path)
	if err != nil {
		return nil, err
	}

	results := make([]PageResult, 0, len(pages))
	for _, page := range pages {
		results = append(results, PageResult{
			SourceFile:      path,
			PageNumber:      page.Number,
			TrackingNumbers: e.Classify(path, page),
		})
	}
	e.logger.Debug("extracted file", "file", path, "pages", len(results))
	return results, nil
}

// ExtractAll extracts files in parallel, bounded by the worker count, and
// returns every page in file order then page order. The first failure
// cancels the remaining work.
func (e *Extractor) ExtractAll(ctx context.Context, files []string) ([]PageResult, error) {
	perFile := make([][]PageResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, path := range files {
		g.Go(func() error {
			pages, err := e.ExtractFile(gctx, path)
			if err != nil {
				return err
			}
			perFile[i] = pages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []PageResult
	for _, pages := range perFile {
		all = append(all, pages...)
	}
	return all, nil
}

// Pages yields page results one file at a time, sequentially. Iteration stops
// at the first error, which is yielded with a zero PageResult.
func (e *Extractor) Pages(ctx context.Context, files []string) iter.Seq2[PageResult, error] {
	return func(yield func(PageResult, error) bool) {
		for _, path := range files {
			pages, err := e.ExtractFile(ctx, path)
			if err != nil {
				yield(PageResult{}, err)
				return
			}
			for _, p := range pages {
				if !yield(p, nil) {
					return
				}
			}
		}
	}
}

// Classify groups the page's words by catalog region and keeps the regions
// whose concatenated text is a valid tracking number. Regions appear in the
// order their first word was listed.
func (e *Extractor) Classify(path string, page PageWords) []label.TrackingNumber {
	var order []label.FieldType
	groups := make(map[label.FieldType][]Token)

	for _, tok := range page.Tokens {
		if tok.Text == "" {
			continue
		}
		t, ok := e.catalog.Lookup(tok.Anchor())
		if !ok {
			continue
		}
		if _, seen := groups[t]; !seen {
			order = append(order, t)
		}
		groups[t] = append(groups[t], tok)
	}

	var found []label.TrackingNumber
	for _, t := range order {
		toks := groups[t]
		if e.sortFragments {
			sort.SliceStable(toks, func(i, j int) bool {
				if toks[i].Y != toks[j].Y {
					return toks[i].Y < toks[j].Y
				}
				return toks[i].X < toks[j].X
			})
		}

		var sb strings.Builder
		for _, tok := range toks {
			sb.WriteString(tok.Text)
		}

		tn, ok := label.Parse(t, sb.String(), path, page.Number)
		if !ok {
			e.logger.Debug("discarding region text", "file", path, "page", page.Number, "type", t, "text", sb.String())
			continue
		}
		found = append(found, tn)
	}
	return found
}
