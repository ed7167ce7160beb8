package watcher

import (
	"sort"
	"sync"
	"time"
)

// BatchDebouncer holds events until none has arrived for the delay, then
// emits them in path order. A newer event for a path replaces the older one.
type BatchDebouncer struct {
	delay   time.Duration
	emit    func([]Event)
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]Event
	added   int
}

// NewBatchDebouncer creates a debouncer that calls emit with each batch.
func NewBatchDebouncer(delay time.Duration, emit func([]Event)) *BatchDebouncer {
	return &BatchDebouncer{
		delay:   delay,
		emit:    emit,
		pending: make(map[string]Event),
	}
}

// Add queues an event and restarts the quiet period.
func (b *BatchDebouncer) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending[event.Path] = event
	b.added++
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.fire)
}

// EventCount returns how many events were added since the last emit,
// counting repeats for the same path.
func (b *BatchDebouncer) EventCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.added
}

// Flush emits the pending batch now.
func (b *BatchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	b.fire()
}

// Cancel drops the pending batch.
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.pending = make(map[string]Event)
	b.added = 0
}

func (b *BatchDebouncer) fire() {
	b.mu.Lock()
	batch := make([]Event, 0, len(b.pending))
	for _, e := range b.pending {
		batch = append(batch, e)
	}
	b.pending = make(map[string]Event)
	b.added = 0
	b.timer = nil
	b.mu.Unlock()

	if len(batch) == 0 || b.emit == nil {
		return
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	b.emit(batch)
}
