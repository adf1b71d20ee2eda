package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto    Format = iota
	FormatText           // one indented line per event
	FormatNDJSON         // one JSON object per line
	FormatMsgpack        // a stream of msgpack-encoded Event values
)

// ParseFormat accepts auto, text, ndjson (or json) and msgpack.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected auto|text|ndjson|msgpack)", s)
}

func formatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".ndjson", ".json":
		return FormatNDJSON
	case ".msgpack", ".mpk":
		return FormatMsgpack
	}
	return FormatText
}

// encoder writes events to one output. Text output indents each event by
// the number of its open ancestors, which it tracks from the span IDs.
type encoder struct {
	w      io.Writer
	format Format
	mp     *msgpack.Encoder
	depth  map[uint64]int
	origin time.Time
}

func newEncoder(w io.Writer, format Format) *encoder {
	e := &encoder{w: w, format: format, depth: make(map[uint64]int)}
	if format == FormatMsgpack {
		e.mp = msgpack.NewEncoder(w)
	}
	return e
}

func (e *encoder) encode(ev *Event) error {
	switch e.format {
	case FormatMsgpack:
		return e.mp.Encode(ev)
	case FormatNDJSON:
		return e.json(ev)
	}
	return e.text(ev)
}

type jsonEvent struct {
	Time      string            `json:"time"`
	Seq       uint64            `json:"seq"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	SpanID    uint64            `json:"span_id,omitempty"`
	ParentID  uint64            `json:"parent_id,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	ElapsedNS int64             `json:"elapsed_ns,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func (e *encoder) json(ev *Event) error {
	data, err := json.Marshal(jsonEvent{
		Time:      ev.Time.UTC().Format(time.RFC3339Nano),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		SpanID:    ev.SpanID,
		ParentID:  ev.ParentID,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedNS: int64(ev.Elapsed),
		Attrs:     ev.Attrs,
	})
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(data, '\n'))
	return err
}

// text writes "+1.234ms  call  → name" style lines, with elapsed time,
// detail and attributes on span ends.
func (e *encoder) text(ev *Event) error {
	if e.origin.IsZero() {
		e.origin = ev.Time
	}
	depth := 0
	if ev.ParentID != 0 {
		depth = e.depth[ev.ParentID] + 1
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%+9.3fms %-7s %s", float64(ev.Time.Sub(e.origin).Microseconds())/1000, ev.Scope, strings.Repeat("  ", depth))
	switch ev.Kind {
	case KindSpanBegin:
		e.depth[ev.SpanID] = depth
		sb.WriteString("→ ")
	case KindSpanEnd:
		delete(e.depth, ev.SpanID)
		sb.WriteString("← ")
	default:
		sb.WriteString("• ")
	}
	sb.WriteString(ev.Name)
	if ev.Kind == KindSpanEnd {
		fmt.Fprintf(&sb, " %.3fms", float64(ev.Elapsed.Microseconds())/1000)
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Attrs) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Attrs)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + "=" + ev.Attrs[k])
		}
		sb.WriteString("}")
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(e.w, sb.String())
	return err
}
