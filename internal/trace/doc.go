// Package trace records what the reflection engine is doing.
//
// Every metafunction call and splice opens a span nested under the span
// of the call that caused it; sessions and CLI commands open coarser ones.
// Tracing never changes evaluation results and write errors are dropped.
//
// Three tracers exist: Nop, a stream that writes each event as it happens,
// and a ring that keeps the most recent events and writes them on Close.
// Level decides which scopes reach a sink:
//
//	span := trace.Begin(t, trace.ScopeCall, "meta:size_of", parent)
//	defer span.Attr("args", "1").End("value")
package trace
