package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory.
type RingTracer struct {
	mu     sync.Mutex
	buf    []Event
	next   int
	n      int
	level  Level
	out    io.Writer
	format Format
}

// NewRingTracer keeps up to capacity events recorded at level.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// dumpTo makes Close write the retained events to w.
func (t *RingTracer) dumpTo(w io.Writer, format Format) {
	t.out, t.format = w, format
}

func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	t.buf[t.next] = *ev
	t.next = (t.next + 1) % len(t.buf)
	t.n = min(t.n+1, len(t.buf))
	t.mu.Unlock()
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, t.n)
	start := (t.next - t.n + len(t.buf)) % len(t.buf)
	for i := range t.n {
		out = append(out, t.buf[(start+i)%len(t.buf)])
	}
	return out
}

// WriteTo writes the retained events to w in format.
func (t *RingTracer) WriteTo(w io.Writer, format Format) error {
	enc := newEncoder(w, format)
	for _, ev := range t.Snapshot() {
		if err := enc.encode(&ev); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Level() Level { return t.level }

// Close writes the retained events when the ring was built with an output.
func (t *RingTracer) Close() error {
	if t.out == nil {
		return nil
	}
	err := t.WriteTo(t.out, t.format)
	if cerr := closeOutput(t.out); err == nil {
		err = cerr
	}
	t.out = nil
	return err
}
