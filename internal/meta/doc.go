// Package meta implements the metafunction table and the engine that
// evaluates metafunction calls during constant evaluation.
//
// Every metafunction has a stable numeric ID, a result kind and an arity
// range. Calls evaluate their arguments lazily from left to right through
// the session's Evaluator; failures surface as *Error values and are
// reported once, at the outermost evaluation boundary.
package meta
