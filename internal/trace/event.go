package trace

import "time"

// Kind tells span boundaries from instant events.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope orders events from coarse to fine. Level compares against it.
type Scope uint8

const (
	// ScopeCommand is one CLI command.
	ScopeCommand Scope = iota + 1
	// ScopeSession is one reflection session over a program.
	ScopeSession
	// ScopeCall is a metafunction call or a splice.
	ScopeCall
	// ScopeEval is constant evaluation nested inside a call.
	ScopeEval
)

var scopeNames = [...]string{ScopeCommand: "command", ScopeSession: "session", ScopeCall: "call", ScopeEval: "eval"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Elapsed and Detail are set on span ends only.
type Event struct {
	Time     time.Time         `msgpack:"t"`
	Seq      uint64            `msgpack:"q"`
	Kind     Kind              `msgpack:"k"`
	Scope    Scope             `msgpack:"s"`
	SpanID   uint64            `msgpack:"id"`
	ParentID uint64            `msgpack:"p,omitempty"`
	Name     string            `msgpack:"n"`
	Detail   string            `msgpack:"d,omitempty"`
	Elapsed  time.Duration     `msgpack:"e,omitempty"`
	Attrs    map[string]string `msgpack:"a,omitempty"`
}
