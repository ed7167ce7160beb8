// Package watcher re-runs a callback when watched files change on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"botlint/internal/slogutil"
)

// EventType represents the type of file change
type EventType int

const (
	EventModify EventType = iota
	EventDelete
	EventRestore
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// Event is one detected change
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// ChangeHandler receives the batch of events collected during one quiet period
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	PollInterval time.Duration
	Debounce     time.Duration
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		PollInterval: 500 * time.Millisecond,
		Debounce:     300 * time.Millisecond,
	}
}

type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

// Watcher polls a fixed set of files
type Watcher struct {
	config  Config
	logger  *slog.Logger
	batch   *BatchDebouncer
	mu      sync.Mutex
	files   map[string]fileState
	statter func(string) (fs.FileInfo, error)
}

// New creates a watcher that hands debounced batches to handler
func New(config Config, logger *slog.Logger, handler ChangeHandler) *Watcher {
	d := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = d.PollInterval
	}
	if config.Debounce < 0 {
		config.Debounce = 0
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Watcher{
		config:  config,
		logger:  logger,
		batch:   NewBatchDebouncer(config.Debounce, handler),
		files:   make(map[string]fileState),
		statter: os.Stat,
	}
}

// Add starts watching path. The file must exist when it is added.
func (w *Watcher) Add(path string) error {
	st, err := w.stat(path)
	if err != nil {
		return err
	}
	if !st.exists {
		return fmt.Errorf("cannot watch %s: %w", path, fs.ErrNotExist)
	}

	w.mu.Lock()
	w.files[path] = st
	w.mu.Unlock()
	return nil
}

// Files returns the watched paths in sorted order
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Run polls until ctx is done. Pending events are dropped on return.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Watching files",
		"files", len(w.Files()),
		"interval", w.config.PollInterval.String())

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.batch.Cancel()
			w.logger.Info("File watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll checks every file once and queues any changes.
func (w *Watcher) Poll() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := 0
	for path, prev := range w.files {
		cur, err := w.stat(path)
		if err != nil {
			w.logger.Warn("Failed to stat watched file", "path", path, "error", err.Error())
			continue
		}

		ev, ok := diff(prev, cur)
		if !ok {
			continue
		}
		w.files[path] = cur
		changed++
		w.logger.Debug("File changed", "path", path, "event", ev.String())
		w.batch.Add(Event{Type: ev, Path: path, Timestamp: time.Now()})
	}
	return changed
}

func (w *Watcher) stat(path string) (fileState, error) {
	info, err := w.statter(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileState{}, nil
	}
	if err != nil {
		return fileState{}, err
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}, nil
}

func diff(prev, cur fileState) (EventType, bool) {
	switch {
	case prev.exists && !cur.exists:
		return EventDelete, true
	case !prev.exists && cur.exists:
		return EventRestore, true
	case !cur.exists:
		return 0, false
	case prev.size != cur.size || !prev.modTime.Equal(cur.modTime):
		return EventModify, true
	}
	return 0, false
}
