// Package testkit holds invariant checks shared by package tests and the
// self-test command.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"reflex/internal/diag"
	"reflex/internal/source"
)

// CheckDiagnosticSpans verifies the spans of every diagnostic in bag:
//  1. the span is well-formed (End >= Start)
//  2. a primary span names a file of fs and lies inside its content
//  3. a note span inside a known file lies inside its content; notes on
//     synthesized entities may point outside any file
func CheckDiagnosticSpans(bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || fs == nil {
		return fmt.Errorf("nil bag or file set")
	}
	for i, d := range bag.Items() {
		if err := checkSpan(fs, d.Primary, true); err != nil {
			return fmt.Errorf("diagnostic %d (%s): primary: %w", i, d.Code.ID(), err)
		}
		for j, n := range d.Notes {
			if err := checkSpan(fs, n.Span, false); err != nil {
				return fmt.Errorf("diagnostic %d (%s): note %d: %w", i, d.Code.ID(), j, err)
			}
		}
	}
	return nil
}

func checkSpan(fs *source.FileSet, sp source.Span, requireFile bool) error {
	if sp.End < sp.Start {
		return fmt.Errorf("inverted span %v", sp)
	}
	f := fs.Get(sp.File)
	if f == nil {
		if requireFile {
			return fmt.Errorf("span %v names no known file", sp)
		}
		return nil
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content of %s: %d > %d", f.Path, sp.End, lenContent)
	}
	return nil
}
