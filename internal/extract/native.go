package extract

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// letterHeight is used when a page carries no readable MediaBox.
const letterHeight = 792.0

// Native reads word positions with a pure-Go PDF parser, for hosts without
// poppler. Glyph positions are converted from baseline/bottom-up coordinates
// to the top-left anchors pdftotext reports, so regions measured against
// pdftotext output can be off by a fraction of the font size.
type Native struct{}

// Words parses every page of path.
func (Native) Words(ctx context.Context, path string) (pages []PageWords, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	// The parser panics on some malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = &FileError{Path: path, Err: fmt.Errorf("panic while reading page content: %v", rec)}
		}
	}()

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		pw := PageWords{Number: i, Height: letterHeight}
		if page.V.IsNull() {
			pages = append(pages, pw)
			continue
		}
		if w, h, ok := mediaBox(page.V); ok {
			pw.Width, pw.Height = w, h
		}
		pw.Tokens = groupGlyphs(page.Content().Text, pw.Height)
		pages = append(pages, pw)
	}
	return pages, nil
}

// mediaBox walks up the page tree until it finds a MediaBox.
func mediaBox(v pdf.Value) (width, height float64, ok bool) {
	for depth := 0; v.Kind() == pdf.Dict && depth < 32; depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			width = box.Index(2).Float64() - box.Index(0).Float64()
			height = box.Index(3).Float64() - box.Index(1).Float64()
			return width, height, height > 0
		}
		v = v.Key("Parent")
	}
	return 0, 0, false
}

// groupGlyphs joins glyphs into words. A word ends at whitespace or when the
// next glyph does not continue on the same baseline right after the previous.
func groupGlyphs(glyphs []pdf.Text, pageHeight float64) []Token {
	var (
		tokens []Token
		cur    strings.Builder
		tok    Token
		prev   pdf.Text
		open   bool
	)

	flush := func() {
		if open {
			tok.Text = cur.String()
			tokens = append(tokens, tok)
		}
		cur.Reset()
		open = false
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}

		if open && !continues(prev, g) {
			flush()
		}
		if !open {
			tok = Token{X: g.X, Y: pageHeight - g.Y - g.FontSize}
			open = true
		}
		cur.WriteString(g.S)
		prev = g
	}
	flush()
	return tokens
}

func continues(prev, next pdf.Text) bool {
	tolerance := math.Max(prev.FontSize*0.3, 0.5)
	return math.Abs(next.Y-prev.Y) <= tolerance &&
		math.Abs(next.X-(prev.X+prev.W)) <= tolerance
}
