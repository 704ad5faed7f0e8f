package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sydlexius/quickwebapps/internal/event"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startWatcher(t *testing.T, dir string) (*event.Bus, chan event.Event, context.CancelFunc) {
	t.Helper()

	bus := event.NewBus(testLogger(), 16)
	missing := make(chan event.Event, 16)
	bus.Subscribe(event.IconMissing, func(e event.Event) { missing <- e })
	go bus.Start()

	svc := NewService(dir, bus, testLogger())
	svc.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := svc.Start(ctx); err != nil {
			t.Errorf("watcher: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		bus.Stop()
	})

	// Give the watcher a moment to register before mutating the directory.
	time.Sleep(100 * time.Millisecond)
	return bus, missing, cancel
}

func TestRemovedIconReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "App.svg")
	if err := os.WriteFile(path, []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, missing, _ := startWatcher(t, dir)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-missing:
		if e.Data["path"] != path {
			t.Errorf("reported path %q, want %q", e.Data["path"], path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("removed icon not reported")
	}
}

// An atomic rewrite shows up as a rename-away plus a create; after the
// debounce the file is present again and nothing must be reported.
func TestAtomicRewriteNotReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "App.svg")
	if err := os.WriteFile(path, []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, missing, _ := startWatcher(t, dir)

	tmp := filepath.Join(dir, "App.svg.tmp123")
	if err := os.WriteFile(tmp, []byte("<svg width=\"1\"/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-missing:
		t.Fatalf("atomic rewrite reported as missing: %v", e.Data)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestNonIconFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, missing, _ := startWatcher(t, dir)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-missing:
		t.Fatalf("non-icon removal reported: %v", e.Data)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestStartCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "icons")
	startWatcher(t, dir)

	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("watched directory not created: %v", err)
	}
}
