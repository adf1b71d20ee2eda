package consteval

import (
	"reflex/internal/entity"
	"reflex/internal/refl"
	"reflex/internal/source"
)

// Frame is the activation record of one constant function call.
type Frame struct {
	Fn   entity.DeclID
	Args []refl.Value // one per parameter; reference parameters hold lvalues
	This refl.Ref     // receiver of member calls
	Span source.Span  // call site

	hasThis bool
}

// NewFrame creates a frame for a call of fn at span.
func NewFrame(fn entity.DeclID, args []refl.Value, span source.Span) *Frame {
	return &Frame{Fn: fn, Args: args, Span: span}
}

// WithReceiver binds the object member calls operate on.
func (f *Frame) WithReceiver(r refl.Ref) *Frame {
	f.This = r
	f.hasThis = true
	return f
}

// Receiver returns the bound object, if any.
func (f *Frame) Receiver() (refl.Ref, bool) {
	return f.This, f.hasThis
}
