// Package inbox re-runs the pipeline whenever new label PDFs land in the
// work directory.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jackzampolin/labelpack/internal/extract"
)

// RunFunc processes the current contents of the inbox.
type RunFunc func(ctx context.Context) error

// Config configures a Watcher.
type Config struct {
	Dir          string
	OutputSuffix string        // files with this suffix never trigger a run
	Debounce     time.Duration // quiet period before a run (default: 2s)
	Run          RunFunc
	Logger       *slog.Logger
}

// Watcher triggers a run once label PDFs stop changing for the debounce
// period. Runs never overlap.
type Watcher struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Run == nil {
		return nil, fmt.Errorf("inbox: run function is required")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("inbox: directory is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, logger: logger.With("dir", cfg.Dir)}, nil
}

// Watch blocks until ctx is cancelled. A failed run is logged and the
// watcher keeps going.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Dir, err)
	}
	w.logger.Info("watching for label PDFs", "debounce", w.cfg.Debounce)

	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("inbox changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			if err := w.cfg.Run(ctx); err != nil {
				w.logger.Error("run failed", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return extract.IsInputFile(filepath.Base(ev.Name), w.cfg.OutputSuffix)
}
