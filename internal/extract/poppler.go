package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/net/html"
)

// ErrToolFailed marks an extraction tool that started and exited with an
// error. The input is unreadable, so it is never retried.
var ErrToolFailed = errors.New("text extraction tool failed")

// Runner runs an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit is wrapped in ErrToolFailed
// together with whatever the tool wrote to stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s: %v (output: %s)", ErrToolFailed, name, err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return out, nil
}

// Poppler reads word boxes with `pdftotext -bbox`, one process per file.
type Poppler struct {
	path    string
	runner  Runner
	retries int
	logger  *slog.Logger
}

// PopplerConfig configures a Poppler word source.
type PopplerConfig struct {
	Path    string // pdftotext binary (default: pdftotext)
	Runner  Runner // default: ExecRunner
	Retries int    // extra attempts when the process fails to start (default: 0)
	Logger  *slog.Logger
}

// NewPoppler creates a pdftotext-backed word source.
func NewPoppler(cfg PopplerConfig) *Poppler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := cfg.Path
	if path == "" {
		path = "pdftotext"
	}
	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &Poppler{path: path, runner: runner, retries: retries, logger: logger}
}

// Words runs pdftotext once for the whole file and parses its XHTML output.
func (p *Poppler) Words(ctx context.Context, path string) ([]PageWords, error) {
	var out []byte
	err := retry.Do(
		func() error {
			var err error
			out, err = p.runner.Run(ctx, p.path, "-bbox", path, "-")
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.retries+1)),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrToolFailed) && !errors.Is(err, exec.ErrNotFound) && ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("retrying pdftotext", "file", path, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	pages, err := ParseBBoxHTML(bytes.NewReader(out))
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return pages, nil
}

// ParseBBoxHTML parses the XHTML written by `pdftotext -bbox`:
//
//	<doc><page width=".." height=".."><word xMin=".." yMin=".." ...>text</word>...</page></doc>
//
// Words with unreadable coordinates are skipped.
func ParseBBoxHTML(r io.Reader) ([]PageWords, error) {
	z := html.NewTokenizer(r)

	var (
		pages  []PageWords
		inWord bool
		valid  bool
		word   Token
		text   strings.Builder
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return pages, nil
			}
			return nil, fmt.Errorf("failed to parse pdftotext output: %w", z.Err())

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "page":
				attrs := tagAttrs(z, hasAttr)
				w, _ := strconv.ParseFloat(attrs["width"], 64)
				h, _ := strconv.ParseFloat(attrs["height"], 64)
				pages = append(pages, PageWords{Number: len(pages) + 1, Width: w, Height: h})
			case "word":
				attrs := tagAttrs(z, hasAttr)
				x, errX := strconv.ParseFloat(attrs["xmin"], 64)
				y, errY := strconv.ParseFloat(attrs["ymin"], 64)
				word = Token{X: x, Y: y}
				valid = errX == nil && errY == nil
				inWord = true
				text.Reset()
			}

		case html.TextToken:
			if inWord {
				text.Write(z.Text())
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != "word" || !inWord {
				continue
			}
			inWord = false
			word.Text = strings.TrimSpace(text.String())
			if valid && word.Text != "" && len(pages) > 0 {
				last := &pages[len(pages)-1]
				last.Tokens = append(last.Tokens, word)
			}
		}
	}
}

// tagAttrs collects the attributes of the current tag. Keys are lower-cased
// by the tokenizer.
func tagAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := make(map[string]string)
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return attrs
}
