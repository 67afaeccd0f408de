package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testDelay = 50 * time.Millisecond

func newWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "show.fig")
	if err := os.WriteFile(path, []byte("bpm 120\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(path, testDelay)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, path
}

func waitEvent(t *testing.T, w *Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		return ev, ok
	case <-time.After(timeout):
		return Event{}, false
	}
}

// --- Debounce ---

func TestRapidWritesCoalesce(t *testing.T) {
	w, path := newWatcher(t)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("bpm 90\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ev, ok := waitEvent(t, w, 2*time.Second)
	if !ok {
		t.Fatal("no event after writes")
	}
	if ev.Path != w.Path() {
		t.Errorf("Event.Path = %q, want %q", ev.Path, w.Path())
	}
	if _, ok := waitEvent(t, w, 4*testDelay); ok {
		t.Error("rapid writes produced more than one event")
	}
}

func TestOtherFilesIgnored(t *testing.T) {
	w, path := newWatcher(t)

	other := filepath.Join(filepath.Dir(path), "notes.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := waitEvent(t, w, 4*testDelay); ok {
		t.Error("write to a sibling file produced an event")
	}
}

func TestRenameOverTarget(t *testing.T) {
	w, path := newWatcher(t)

	tmp := filepath.Join(filepath.Dir(path), ".show.fig.tmp")
	if err := os.WriteFile(tmp, []byte("bpm 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	if _, ok := waitEvent(t, w, 2*time.Second); !ok {
		t.Error("atomic save produced no event")
	}
}

// --- Lifecycle ---

func TestCloseTwice(t *testing.T) {
	w, _ := newWatcher(t)
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events channel should be closed")
	}
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "show.fig"), 0)
	if err == nil {
		t.Error("New on a missing directory should fail")
	}
}

func TestDefaultDelay(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "show.fig"), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	if w.delay != DefaultDelay {
		t.Errorf("delay = %v, want %v", w.delay, DefaultDelay)
	}
}
