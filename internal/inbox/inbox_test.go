package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNew(t *testing.T) {
	if _, err := New(Config{Dir: t.TempDir()}); err == nil {
		t.Error("expected error without run function")
	}
	if _, err := New(Config{Run: func(context.Context) error { return nil }}); err == nil {
		t.Error("expected error without directory")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32

	w, err := New(Config{
		Dir:          dir,
		OutputSuffix: "+packing",
		Debounce:     50 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return errors.New("unresolved tracking number")
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	// Output files and non-PDFs are ignored.
	for _, name := range []string{"out (2)+packing.pdf", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(200 * time.Millisecond)
	if n := runs.Load(); n != 0 {
		t.Fatalf("expected no runs for ignored files, got %d", n)
	}

	if err := os.WriteFile(filepath.Join(dir, "labels-1.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return runs.Load() == 1 })

	// A failed run does not stop the watcher.
	if err := os.WriteFile(filepath.Join(dir, "labels-2.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return runs.Load() == 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
