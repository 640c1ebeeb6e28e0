package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/blackboard/blackboard/internal/document"
)

// DefaultSaveDelay is how long the debouncer waits for edits to settle.
const DefaultSaveDelay = 1500 * time.Millisecond

const saveTimeout = 10 * time.Second

// Debouncer coalesces bursts of saves into one write after a quiet period.
// Write errors are logged and dropped; the next save retries with the
// newer document.
type Debouncer struct {
	store Store
	delay time.Duration

	mu      sync.Mutex
	pending *document.Document
	timer   *time.Timer
	gen     uint64

	writeMu sync.Mutex
}

func NewDebouncer(store Store, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Debouncer{store: store, delay: delay}
}

// Save schedules doc to be written. A later call replaces the pending
// document and restarts the delay; immediate writes synchronously.
func (d *Debouncer) Save(doc *document.Document, immediate bool) {
	if immediate {
		d.mu.Lock()
		d.pending = doc
		d.mu.Unlock()
		d.Flush()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = doc
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	doc := d.claim()
	defer d.writeMu.Unlock()

	d.write(doc)
}

// claim takes the pending document, invalidates any armed timer and
// acquires writeMu before releasing mu, so a caller that claims after
// this one also waits for its write. Callers hold mu.
func (d *Debouncer) claim() *document.Document {
	doc := d.pending
	d.pending = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.writeMu.Lock()
	d.mu.Unlock()
	return doc
}

// Flush writes the pending document now, after any write already in
// flight. It returns the write error, if any.
func (d *Debouncer) Flush() error {
	d.mu.Lock()
	doc := d.claim()
	defer d.writeMu.Unlock()

	if doc == nil {
		return nil
	}
	return d.write(doc)
}

// Discard drops the pending document without writing it. A write already
// in flight completes first.
func (d *Debouncer) Discard() {
	d.mu.Lock()
	d.claim()
	d.writeMu.Unlock()
}

// Pending reports whether a write is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// write stores doc. Callers hold writeMu.
func (d *Debouncer) write(doc *document.Document) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := d.store.Save(ctx, doc); err != nil {
		slog.Error("save board failed", "error", err)
		return err
	}
	slog.Debug("board saved", "shapes", doc.Count())
	return nil
}
