package render

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/labelpack/internal/annotate"
	"github.com/jackzampolin/labelpack/internal/label"
)

// writeFixture creates a PDF at dir/name with one page per geometry.
func writeFixture(t *testing.T, dir, name string, sizes ...Geometry) string {
	t.Helper()
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetFont("Helvetica", "", 12)
	for i, size := range sizes {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})
		pdf.Text(20, 40, "label "+string(rune('A'+i)))
	}
	path := filepath.Join(dir, name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

var (
	letter = Geometry{Width: LetterWidth, Height: LetterHeight}
	half   = Geometry{Width: LetterWidth, Height: HalfLetterHeight}
	label4 = Geometry{Width: 288, Height: 432}
)

func TestGeometry(t *testing.T) {
	if !half.IsHalfPage() {
		t.Error("expected half letter to be a half page")
	}
	if letter.IsHalfPage() || label4.IsHalfPage() {
		t.Error("expected full pages not to be half pages")
	}
	if got := half.Normalized(); got != letter {
		t.Errorf("half page normalized to %+v, want %+v", got, letter)
	}
	if got := label4.Normalized(); got != label4 {
		t.Errorf("full page changed geometry: %+v", got)
	}
}

func TestProbeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "labels.pdf", letter, half)

	geoms, err := ProbeFile(path)
	if err != nil {
		t.Fatalf("ProbeFile failed: %v", err)
	}
	if len(geoms) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(geoms))
	}
	if geoms[0] != letter || geoms[1] != half {
		t.Errorf("unexpected geometry %+v", geoms)
	}
}

func sampleFields() []annotate.OutputField {
	layout := annotate.DefaultLayout()
	return []annotate.OutputField{
		layout.Format(label.BulkDomesticTop, "1x Widget A1 / 2x Gadget B4 (shelf 3)"),
		layout.Format(label.BulkForeign, "1x Widget Ä"),
		layout.Username("seller1"),
		layout.PageNumber(1, 3, 4),
		layout.CenterLine(),
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "labels-1.pdf", letter, half)
	b := writeFixture(t, dir, "labels-2.pdf", label4)

	pages := []Page{
		{SourceFile: a, PageNumber: 1, Fields: sampleFields()},
		{SourceFile: a, PageNumber: 2, Fields: sampleFields()[:2]},
		{SourceFile: b, PageNumber: 1},
	}

	out := filepath.Join(dir, OutputName(time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC), 4, "+packing"))
	r := New(Config{HighlightOverflow: true})
	if err := r.WriteFile(context.Background(), out, pages); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	geoms, err := ProbeFile(out)
	if err != nil {
		t.Fatalf("ProbeFile failed: %v", err)
	}
	want := []Geometry{letter, letter, label4}
	if len(geoms) != len(want) {
		t.Fatalf("expected %d pages, got %d", len(want), len(geoms))
	}
	for i := range want {
		if geoms[i] != want[i] {
			t.Errorf("page %d: got %+v, want %+v", i+1, geoms[i], want[i])
		}
	}

	// No temporary files are left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temporary file %s", e.Name())
		}
	}
}

func TestWriteFileFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "labels.pdf", letter)
	out := filepath.Join(dir, "out+packing.pdf")
	r := New(Config{})

	tests := []struct {
		name  string
		pages []Page
		want  string
	}{
		{"no pages", nil, "no pages"},
		{"missing page", []Page{{SourceFile: a, PageNumber: 1}, {SourceFile: a, PageNumber: 2}}, "has no page 2"},
		{"missing file", []Page{{SourceFile: filepath.Join(dir, "nope.pdf"), PageNumber: 1}}, "nope.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.WriteFile(context.Background(), out, tt.pages)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
			if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
				t.Error("expected no output file")
			}
		})
	}
}

func TestRenderCancelled(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "labels.pdf", letter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Config{}).Render(ctx, []Page{{SourceFile: a, PageNumber: 1}}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestOutputName(t *testing.T) {
	got := OutputName(time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC), 12, "+packing")
	want := "2024-03-09 1405 (12)+packing.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// templatePlacement matches the matrix an imported page is drawn with.
var templatePlacement = regexp.MustCompile(`([-\d.]+) 0 0 ([-\d.]+) ([-\d.]+) ([-\d.]+) cm\s*/GOFPDITPL\d+ Do`)

// placements returns (scaleX, scaleY, tx, ty) of every imported page in an
// uncompressed output document, in page order.
func placements(t *testing.T, data []byte) [][4]float64 {
	t.Helper()
	var out [][4]float64
	for _, m := range templatePlacement.FindAllSubmatch(data, -1) {
		var p [4]float64
		for i := range p {
			v, err := strconv.ParseFloat(string(m[i+1]), 64)
			if err != nil {
				t.Fatalf("bad matrix value %q: %v", m[i+1], err)
			}
			p[i] = v
		}
		out = append(out, p)
	}
	return out
}

var (
	fullPlacement = [4]float64{1, 1, 0, 0}
	halfPlacement = [4]float64{1, 1, 0, HalfLetterHeight}
)

func TestRenderMixedPageSizes(t *testing.T) {
	dir := t.TempDir()
	letterFirst := writeFixture(t, dir, "letter-half.pdf", letter, half, letter)
	halfFirst := writeFixture(t, dir, "half-letter.pdf", half, letter, half)

	tests := []struct {
		name string
		path string
		want [][4]float64
	}{
		{"letter then half", letterFirst, [][4]float64{fullPlacement, halfPlacement, fullPlacement}},
		{"half then letter", halfFirst, [][4]float64{halfPlacement, fullPlacement, halfPlacement}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Config{})
			r.compress = false

			pages := []Page{
				{SourceFile: tt.path, PageNumber: 1, Fields: sampleFields()},
				{SourceFile: tt.path, PageNumber: 2, Fields: sampleFields()},
				{SourceFile: tt.path, PageNumber: 3},
			}
			data, err := r.Render(context.Background(), pages)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			got := placements(t, data)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d placed pages, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("page %d drawn with %v, want %v", i+1, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRenderObjectStreamInput(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.pdf", letter)
	b := writeFixture(t, dir, "b.pdf", half)

	// The default configuration writes object and xref streams.
	merged := filepath.Join(dir, "merged.pdf")
	if err := api.MergeCreateFile([]string{a, b}, merged, false, nil); err != nil {
		t.Fatalf("failed to merge fixtures: %v", err)
	}

	r := New(Config{})
	r.compress = false
	data, err := r.Render(context.Background(), []Page{
		{SourceFile: merged, PageNumber: 1, Fields: sampleFields()},
		{SourceFile: merged, PageNumber: 2, Fields: sampleFields()},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := placements(t, data)
	want := [][4]float64{fullPlacement, halfPlacement}
	if len(got) != len(want) {
		t.Fatalf("expected %d placed pages, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d drawn with %v, want %v", i+1, got[i], want[i])
		}
	}
}
