package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeInfo struct {
	fs.FileInfo
	size    int64
	modTime time.Time
}

func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) ModTime() time.Time { return f.modTime }

// fakeFS lets tests change file metadata without relying on mtime resolution.
type fakeFS struct {
	mu    sync.Mutex
	files map[string]fakeInfo
}

func (f *fakeFS) stat(path string) (fs.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return info, nil
}

func (f *fakeFS) set(path string, size int64, mod time.Time) {
	f.mu.Lock()
	f.files[path] = fakeInfo{size: size, modTime: mod}
	f.mu.Unlock()
}

func (f *fakeFS) remove(path string) {
	f.mu.Lock()
	delete(f.files, path)
	f.mu.Unlock()
}

func newTestWatcher(t *testing.T, handler ChangeHandler) (*Watcher, *fakeFS) {
	t.Helper()
	ffs := &fakeFS{files: map[string]fakeInfo{}}
	w := New(Config{PollInterval: time.Millisecond, Debounce: 10 * time.Millisecond}, nil, handler)
	w.statter = ffs.stat
	return w, ffs
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		ev   EventType
		want string
	}{
		{EventModify, "modify"},
		{EventDelete, "delete"},
		{EventRestore, "restore"},
		{EventType(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	w := New(Config{Debounce: -1}, nil, nil)
	if w.config.PollInterval != DefaultConfig().PollInterval {
		t.Errorf("PollInterval = %v", w.config.PollInterval)
	}
	if w.config.Debounce != 0 {
		t.Errorf("negative debounce should clamp to 0, got %v", w.config.Debounce)
	}
}

func TestAddMissingFile(t *testing.T) {
	w := New(DefaultConfig(), nil, nil)
	err := w.Add(filepath.Join(t.TempDir(), "missing.py"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestAddRealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w := New(DefaultConfig(), nil, nil)
	if err := w.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if files := w.Files(); len(files) != 1 || files[0] != path {
		t.Errorf("Files() = %v", files)
	}
}

func TestPollDetectsChanges(t *testing.T) {
	got := make(chan []Event, 4)
	w, ffs := newTestWatcher(t, func(events []Event) { got <- events })

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ffs.set("a.py", 10, base)
	if err := w.Add("a.py"); err != nil {
		t.Fatal(err)
	}

	if n := w.Poll(); n != 0 {
		t.Errorf("unchanged file reported %d changes", n)
	}

	ffs.set("a.py", 10, base.Add(time.Second))
	if n := w.Poll(); n != 1 {
		t.Fatalf("Poll() = %d, want 1", n)
	}

	select {
	case events := <-got:
		if len(events) != 1 || events[0].Type != EventModify || events[0].Path != "a.py" {
			t.Errorf("unexpected batch: %+v", events)
		}
	case <-time.After(time.Second):
		t.Fatal("no batch emitted")
	}
}

func TestPollDeleteAndRestore(t *testing.T) {
	w, ffs := newTestWatcher(t, nil)
	base := time.Now()
	ffs.set("a.py", 1, base)
	if err := w.Add("a.py"); err != nil {
		t.Fatal(err)
	}

	ffs.remove("a.py")
	if n := w.Poll(); n != 1 {
		t.Errorf("delete: Poll() = %d", n)
	}
	if n := w.Poll(); n != 0 {
		t.Errorf("still missing: Poll() = %d", n)
	}
	ffs.set("a.py", 2, base)
	if n := w.Poll(); n != 1 {
		t.Errorf("restore: Poll() = %d", n)
	}
	w.batch.Cancel()
}

func TestBatchCollapsesPerPath(t *testing.T) {
	got := make(chan []Event, 1)
	b := NewBatchDebouncer(time.Hour, func(events []Event) { got <- events })

	b.Add(Event{Type: EventModify, Path: "b.py"})
	b.Add(Event{Type: EventModify, Path: "a.py"})
	b.Add(Event{Type: EventDelete, Path: "b.py"})
	if n := b.EventCount(); n != 3 {
		t.Errorf("EventCount() = %d", n)
	}
	b.Flush()

	events := <-got
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}
	if events[0].Path != "a.py" || events[1].Path != "b.py" || events[1].Type != EventDelete {
		t.Errorf("unexpected batch: %+v", events)
	}
}

func TestBatchCancel(t *testing.T) {
	called := false
	b := NewBatchDebouncer(time.Hour, func([]Event) { called = true })
	b.Add(Event{Path: "a.py"})
	b.Cancel()
	b.Flush()
	if called {
		t.Error("canceled batch should not be emitted")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	got := make(chan []Event, 4)
	w, ffs := newTestWatcher(t, func(events []Event) { got <- events })
	ffs.set("a.py", 1, time.Unix(0, 0))
	if err := w.Add("a.py"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	ffs.set("a.py", 2, time.Unix(0, 0))
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("change not observed by Run")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
