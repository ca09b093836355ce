package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// OutputName returns the default output file name, stamped with the
// generation time and label count.
func OutputName(now time.Time, labels int, suffix string) string {
	return fmt.Sprintf("%s (%d)%s.pdf", now.Format("2006-01-02 1504"), labels, suffix)
}

// WriteFile renders pages and atomically writes the result to path. The
// written document is read back and must hold exactly one page per input
// page. On failure no file is left at path.
func (r *Renderer) WriteFile(ctx context.Context, path string, pages []Page) error {
	data, err := r.Render(ctx, pages)
	if err != nil {
		return err
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	n, err := PageCount(path)
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	if n != len(pages) {
		_ = os.Remove(path)
		return fmt.Errorf("output %s has %d pages, expected %d", path, n, len(pages))
	}

	r.logger.Info("wrote output", "file", path, "pages", n)
	return nil
}

func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
