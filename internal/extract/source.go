// Package extract reads tracking numbers off shipping-label PDFs by the
// position of the text printed on each page.
package extract

import (
	"context"
	"fmt"

	"github.com/jackzampolin/labelpack/internal/label"
)

// Token is one word from a page's text layer, anchored at its top-left corner.
type Token struct {
	Text string
	X    float64
	Y    float64
}

// Anchor returns the point used to classify the token.
func (t Token) Anchor() label.Point {
	return label.Point{X: t.X, Y: t.Y}
}

// PageWords holds the positioned words of one page.
type PageWords struct {
	Number int // 1-indexed
	Width  float64
	Height float64
	Tokens []Token
}

// WordSource produces positioned words for every page of a PDF in one call.
// A failure means the file cannot be read and is fatal for the batch.
type WordSource interface {
	Words(ctx context.Context, path string) ([]PageWords, error)
}

// FileError reports a PDF whose text layer could not be read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
