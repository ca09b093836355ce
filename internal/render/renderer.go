package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/jackzampolin/labelpack/internal/annotate"
)

// Page is one input page together with the annotation fields drawn over it.
type Page struct {
	SourceFile string
	PageNumber int // 1-indexed within SourceFile
	Fields     []annotate.OutputField
}

// Config configures a Renderer.
type Config struct {
	FontFamily string  // core font (default: Courier)
	FontSize   float64 // points (default: 10)
	Leading    float64 // baseline distance between lines (default: 12)

	// HighlightOverflow draws overflowed fields in red.
	HighlightOverflow bool

	Logger *slog.Logger
}

// Renderer composites annotation overlays onto the original label pages.
type Renderer struct {
	fontFamily        string
	fontSize          float64
	leading           float64
	highlightOverflow bool
	compress          bool
	logger            *slog.Logger
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		fontFamily:        cfg.FontFamily,
		fontSize:          cfg.FontSize,
		leading:           cfg.Leading,
		highlightOverflow: cfg.HighlightOverflow,
		compress:          true,
		logger:            logger,
	}
	if r.fontFamily == "" {
		r.fontFamily = "Courier"
	}
	if r.fontSize <= 0 {
		r.fontSize = 10
	}
	if r.leading <= 0 {
		r.leading = 12
	}
	return r
}

// source is an input PDF opened for template import.
type source struct {
	path  string
	data  []byte
	pages []Geometry
}

// pageStream returns page pageNo of the source as a single-page PDF without
// object or xref streams, the only form gofpdi imports reliably. gofpdi keys
// its parsers by stream pointer, so every page gets its own.
func (s *source) pageStream(pageNo int) (*io.ReadSeeker, error) {
	var buf bytes.Buffer
	if err := api.Trim(bytes.NewReader(s.data), &buf, []string{strconv.Itoa(pageNo)}, importConfig()); err != nil {
		return nil, fmt.Errorf("failed to extract page %d of %s: %w", pageNo, s.path, err)
	}
	rs := io.ReadSeeker(bytes.NewReader(buf.Bytes()))
	return &rs, nil
}

// Render produces the merged output document in page order. Nothing is
// written to disk.
func (r *Renderer) Render(ctx context.Context, pages []Page) (data []byte, err error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to render")
	}

	// gofpdi panics on unparseable input.
	defer func() {
		if rec := recover(); rec != nil {
			data = nil
			err = fmt.Errorf("failed to render output: %v", rec)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(r.compress)
	importer := gofpdi.NewImporter()
	sources := make(map[string]*source)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src, ok := sources[page.SourceFile]
		if !ok {
			src, err = openSource(page.SourceFile)
			if err != nil {
				return nil, err
			}
			sources[page.SourceFile] = src
		}
		if page.PageNumber < 1 || page.PageNumber > len(src.pages) {
			return nil, fmt.Errorf("%s has no page %d", page.SourceFile, page.PageNumber)
		}

		geom := src.pages[page.PageNumber-1]
		if err := r.placePage(pdf, importer, src, page.PageNumber, geom); err != nil {
			return nil, err
		}
		r.drawFields(pdf, geom.Normalized(), page.Fields)

		if pdf.Err() {
			return nil, fmt.Errorf("failed to render page %d of %s: %w", page.PageNumber, page.SourceFile, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write output document: %w", err)
	}
	return buf.Bytes(), nil
}

func openSource(path string) (*source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	geoms, err := Probe(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &source{path: path, data: data, pages: geoms}, nil
}

// placePage adds an output page and draws the original page on it at its
// natural size. A half page is promoted to a blank letter page and placed on
// its upper half.
func (r *Renderer) placePage(pdf *fpdf.Fpdf, importer *gofpdi.Importer, src *source, pageNo int, geom Geometry) error {
	stream, err := src.pageStream(pageNo)
	if err != nil {
		return err
	}

	out := geom.Normalized()
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: out.Width, Ht: out.Height})

	tpl := importer.ImportPageFromStream(pdf, stream, 1, "/MediaBox")
	importer.UseImportedTemplate(pdf, tpl, 0, 0, geom.Width, geom.Height)
	return nil
}

var textEncoder = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

// drawFields draws each field with its origin at (x, LetterHeight - y)
// measured from the bottom of the page, rotated about that origin. Lines
// run downwards from the origin baseline.
func (r *Renderer) drawFields(pdf *fpdf.Fpdf, page Geometry, fields []annotate.OutputField) {
	pdf.SetFont(r.fontFamily, "", r.fontSize)

	for _, field := range fields {
		ox := field.Translate.X
		oy := page.Height - (LetterHeight - field.Translate.Y)

		if field.Overflow && r.highlightOverflow {
			pdf.SetTextColor(255, 0, 0)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}

		pdf.TransformBegin()
		if field.Rotate != 0 {
			pdf.TransformRotate(field.Rotate, ox, oy)
		}
		for i, line := range field.Lines() {
			text, err := textEncoder.String(line)
			if err != nil {
				text = line
			}
			pdf.Text(ox, oy+float64(i)*r.leading, text)
		}
		pdf.TransformEnd()
	}
}
