package meta

import (
	"errors"
	"fmt"

	"reflex/internal/diag"
	"reflex/internal/source"
)

// Error is a failed reflection operation. Code identifies the failure in
// the diagnostic taxonomy; Span is the expression that failed.
type Error struct {
	Code  diag.Code
	Span  source.Span
	Msg   string
	Notes []diag.Note
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

// Is matches another *Error with the same code, so callers can test with
// errors.Is(err, &meta.Error{Code: diag.ReflIncomplete}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Errorf builds an Error for callers outside the engine, such as
// evaluators and splice builders.
func Errorf(code diag.Code, span source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func errorf(code diag.Code, span source.Span, format string, args ...any) *Error {
	return Errorf(code, span, format, args...)
}

// WithNote attaches a secondary location.
func (e *Error) WithNote(sp source.Span, msg string) *Error {
	e.Notes = append(e.Notes, diag.Note{Span: sp, Msg: msg})
	return e
}

// CodeOf returns the diagnostic code carried by err, or ReflNotConstant
// for foreign errors.
func CodeOf(err error) diag.Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return diag.ReflNotConstant
}

// errInapplicable signals that the operand kind is outside an operation's
// domain. The engine turns it into false for total predicates and into a
// kind-mismatch error for everything else.
type errInapplicable struct {
	what string
}

func (e errInapplicable) Error() string { return "operand is " + e.what }
