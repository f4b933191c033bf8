package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces events per path and delivers them in one batch once
// no new event arrived for the window, or as soon as maxBatch paths queue up.
// Events for the same path are merged, not replaced.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	onFlush  func([]FileEvent)

	mu      sync.Mutex
	pending map[string]FileEvent
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]FileEvent)) *Debouncer {
	if maxBatch <= 0 {
		maxBatch = 1
	}
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		onFlush:  onFlush,
		pending:  make(map[string]FileEvent),
	}
}

// merge folds next into the event already pending for the same path. A file
// created inside the window stays a create; one created and deleted inside
// the window disappears.
func merge(prev FileEvent, next FileEvent) (FileEvent, bool) {
	switch {
	case prev.Type == EventCreate && next.Type == EventDelete:
		return FileEvent{}, false
	case prev.Type == EventCreate && next.Type == EventModify:
		prev.Timestamp = next.Timestamp
		return prev, true
	default:
		return next, true
	}
}

func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	if prev, ok := d.pending[event.Path]; ok {
		merged, keep := merge(prev, event)
		if keep {
			d.pending[event.Path] = merged
		} else {
			delete(d.pending, event.Path)
		}
	} else {
		d.pending[event.Path] = event
	}

	if len(d.pending) >= d.maxBatch {
		d.deliver(d.takeLocked())
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.Flush)
	d.mu.Unlock()
}

// Flush delivers pending events immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.deliver(d.takeLocked())
}

// Stop flushes what is pending and ignores later events.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.deliver(d.takeLocked())
}

// takeLocked empties the queue and cancels the timer. d.mu must be held.
func (d *Debouncer) takeLocked() []FileEvent {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	events := make([]FileEvent, 0, len(d.pending))
	for _, event := range d.pending {
		events = append(events, event)
	}
	d.pending = make(map[string]FileEvent)
	sortEvents(events)
	return events
}

// deliver releases d.mu and hands events to the callback outside the lock.
func (d *Debouncer) deliver(events []FileEvent) {
	d.mu.Unlock()
	if len(events) > 0 && d.onFlush != nil {
		d.onFlush(events)
	}
}
