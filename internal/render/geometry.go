// Package render composites annotation overlays onto label pages and writes
// the merged output document.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Page sizes in points.
const (
	LetterWidth      = 612.0
	LetterHeight     = 792.0
	HalfLetterHeight = LetterHeight / 2
)

// Geometry is the size of a page in points.
type Geometry struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// IsHalfPage reports whether the page is a half-height letter page.
func (g Geometry) IsHalfPage() bool {
	return math.Abs(g.Height-HalfLetterHeight) < 0.5
}

// Normalized returns the geometry of the page after half-page promotion.
// Full-size pages are returned unchanged.
func (g Geometry) Normalized() Geometry {
	if g.IsHalfPage() {
		return Geometry{Width: LetterWidth, Height: LetterHeight}
	}
	return g
}

func relaxedConfig() *model.Configuration {
	// Carrier label PDFs are often slightly malformed.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// importConfig writes classic xref tables and no object streams.
func importConfig() *model.Configuration {
	conf := relaxedConfig()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Probe returns the geometry of every page in rs.
func Probe(rs io.ReadSeeker) ([]Geometry, error) {
	dims, err := api.PageDims(rs, relaxedConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	geoms := make([]Geometry, len(dims))
	for i, d := range dims {
		geoms[i] = Geometry{Width: d.Width, Height: d.Height}
	}
	return geoms, nil
}

// ProbeFile returns the geometry of every page in the PDF at path.
func ProbeFile(path string) ([]Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	geoms, err := Probe(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return geoms, nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := api.PageCount(f, relaxedConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to count pages in %s: %w", path, err)
	}
	return n, nil
}
