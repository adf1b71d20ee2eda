// Package diag defines the diagnostic model of the reflection core.
//
// A failed metafunction evaluation or splice produces exactly one Diagnostic.
// Producers emit through a Reporter so they never depend on storage or
// formatting; BagReporter collects into a Bag, NopReporter silences probes
// such as can_substitute, and DedupReporter filters repeats when dependent
// splices are re-run. Rendering lives in internal/diagfmt.
//
// Codes are stable numbers grouped by family. The reflection family occupies
// 4000-4099 and renders as REFxxxx.
package diag
