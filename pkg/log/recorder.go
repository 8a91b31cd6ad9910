package log

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultRecorderCapacity is used when a non-positive capacity is given.
const DefaultRecorderCapacity = 100

// Entry is a recorded log record.
type Entry struct {
	Time    time.Time      `json:"time"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
}

// Recorder is a [slog.Handler] that keeps the most recent records in memory,
// overwriting the oldest once full. It is safe for concurrent use.
type Recorder struct {
	ring  *ring
	level slog.Leveler
	attrs []slog.Attr
	group string
}

type ring struct {
	entries []Entry
	head    int
	size    int
	mu      sync.RWMutex
}

// NewRecorder creates a [Recorder] holding up to capacity records at or
// above level.
func NewRecorder(capacity int, level slog.Leveler) *Recorder {
	if capacity <= 0 {
		capacity = DefaultRecorderCapacity
	}

	return &Recorder{
		ring:  &ring{entries: make([]Entry, capacity)},
		level: level,
	}
}

func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.level.Level()
}

func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	e := Entry{
		Time:    rec.Time,
		Level:   rec.Level.String(),
		Message: rec.Message,
	}

	if len(r.attrs) > 0 || rec.NumAttrs() > 0 {
		e.Attrs = make(map[string]any, len(r.attrs)+rec.NumAttrs())
		for _, a := range r.attrs {
			r.addAttr(e.Attrs, a)
		}

		rec.Attrs(func(a slog.Attr) bool {
			r.addAttr(e.Attrs, a)

			return true
		})
	}

	r.ring.push(e)

	return nil
}

func (r *Recorder) addAttr(dst map[string]any, a slog.Attr) {
	key := a.Key
	if r.group != "" {
		key = r.group + "." + key
	}

	v := a.Value.Resolve()
	if err, ok := v.Any().(error); ok {
		dst[key] = err.Error()

		return
	}

	dst[key] = v.Any()
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *r
	c.attrs = append(slices.Clip(r.attrs), attrs...)

	return &c
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	c := *r
	if c.group == "" {
		c.group = name
	} else {
		c.group += "." + name
	}

	return &c
}

// Entries returns the recorded entries, oldest first.
func (r *Recorder) Entries() []Entry {
	return r.ring.snapshot()
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.ring.mu.RLock()
	defer r.ring.mu.RUnlock()

	return r.ring.size
}

// Clear removes all recorded entries.
func (r *Recorder) Clear() {
	r.ring.mu.Lock()
	defer r.ring.mu.Unlock()

	clear(r.ring.entries)
	r.ring.head = 0
	r.ring.size = 0
}

func (b *ring) push(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = e
	b.head = (b.head + 1) % len(b.entries)

	if b.size < len(b.entries) {
		b.size++
	}
}

func (b *ring) snapshot() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, 0, b.size)
	start := (b.head - b.size + len(b.entries)) % len(b.entries)

	for i := range b.size {
		out = append(out, b.entries[(start+i)%len(b.entries)])
	}

	return out
}
