// Package refl models compile-time constants and the reflections built on
// top of them.
//
// A Value is a constant (integer, boolean, lvalue, pointer, aggregate or
// reflection handle) wrapped in zero or more lifts. A lift turns the value
// below it into a reflection of that value and records the result type the
// value was produced at. Reflections of types, declarations and the other
// entity kinds sit at depth 0 and carry an authoritative tag; reflections
// of objects and values are lifted constants whose kind is derived from the
// depth and the recorded type.
package refl

import (
	"fmt"
	"slices"

	"reflex/internal/entity"
)

// Kind is the classification of a reflection.
type Kind uint8

const (
	KindNull Kind = iota
	KindType
	KindObject
	KindValue
	KindDecl
	KindTemplate
	KindNamespace
	KindBase
	KindSpec
	KindAnnotation
)

var kindNames = [...]string{
	KindNull:       "null",
	KindType:       "type",
	KindObject:     "object",
	KindValue:      "value",
	KindDecl:       "declaration",
	KindTemplate:   "template",
	KindNamespace:  "namespace",
	KindBase:       "base-specifier",
	KindSpec:       "data-member-spec",
	KindAnnotation: "annotation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Kinds lists every reflection kind.
func Kinds() []Kind {
	return []Kind{KindNull, KindType, KindObject, KindValue, KindDecl, KindTemplate, KindNamespace, KindBase, KindSpec, KindAnnotation}
}

// Rep is the representation of the constant below all lifts.
type Rep uint8

const (
	RepAbsent Rep = iota
	RepInt
	RepBool
	RepNullptr
	RepLValue
	RepPointer
	RepAggregate
	RepReflection
)

// Ref designates an object: a declared variable and a path of subobject
// indices (field positions or array elements) below it.
type Ref struct {
	Decl entity.DeclID
	Path []uint32
}

// Value is an immutable constant. The zero Value is absent.
type Value struct {
	rep    Rep
	i      int64
	ref    Ref
	elems  []Value
	tag    Kind
	handle uint32
	lifts  []entity.TypeID
}

// Canonicalizer resolves canonical identities of redeclarable entities.
// *entity.Program implements it.
type Canonicalizer interface {
	Canonical(entity.DeclID) entity.DeclID
	CanonicalTemplate(entity.TemplateID) entity.TemplateID
}

func Int(v int64) Value { return Value{rep: RepInt, i: v} }

func Bool(v bool) Value {
	if v {
		return Value{rep: RepBool, i: 1}
	}
	return Value{rep: RepBool}
}

func Nullptr() Value { return Value{rep: RepNullptr} }

// LValue designates the object r.
func LValue(r Ref) Value {
	return Value{rep: RepLValue, ref: Ref{Decl: r.Decl, Path: slices.Clone(r.Path)}}
}

// Pointer is the address of the object r.
func Pointer(r Ref) Value {
	return Value{rep: RepPointer, ref: Ref{Decl: r.Decl, Path: slices.Clone(r.Path)}}
}

func Aggregate(elems ...Value) Value {
	return Value{rep: RepAggregate, elems: slices.Clone(elems)}
}

func reflection(tag Kind, handle uint32) Value {
	return Value{rep: RepReflection, tag: tag, handle: handle}
}

func MakeNull() Value { return reflection(KindNull, 0) }

func MakeType(t entity.TypeID) Value { return reflection(KindType, uint32(t)) }

func MakeDecl(c Canonicalizer, d entity.DeclID) Value {
	return reflection(KindDecl, uint32(c.Canonical(d)))
}

func MakeTemplate(c Canonicalizer, t entity.TemplateID) Value {
	return reflection(KindTemplate, uint32(c.CanonicalTemplate(t)))
}

func MakeNamespace(c Canonicalizer, ns entity.DeclID) Value {
	return reflection(KindNamespace, uint32(c.Canonical(ns)))
}

func MakeBase(b entity.BaseID) Value { return reflection(KindBase, uint32(b)) }

func MakeSpec(s entity.SpecID) Value { return reflection(KindSpec, uint32(s)) }

func MakeAnnotation(a entity.AnnotID) Value { return reflection(KindAnnotation, uint32(a)) }

// ObjectOf reflects the object r.
func ObjectOf(r Ref) Value { return LValue(r).Lift(entity.NoTypeID) }

// ValueOf reflects the constant v produced at type t.
func ValueOf(v Value, t entity.TypeID) Value { return v.Lift(t) }

// Rep returns the representation below all lifts.
func (v Value) Rep() Rep { return v.rep }

// Depth counts the lifts applied to the constant.
func (v Value) Depth() int { return len(v.lifts) }

// IsAbsent reports the zero Value.
func (v Value) IsAbsent() bool { return v.rep == RepAbsent && len(v.lifts) == 0 }

// IsReflection reports whether v has reflection type.
func (v Value) IsReflection() bool { return len(v.lifts) > 0 || v.rep == RepReflection }

// Lift wraps v in one more level of reflection. resultType may be
// entity.NoTypeID when the lifted constant designates an object.
func (v Value) Lift(resultType entity.TypeID) Value {
	out := v
	out.lifts = make([]entity.TypeID, len(v.lifts), len(v.lifts)+1)
	copy(out.lifts, v.lifts)
	out.lifts = append(out.lifts, resultType)
	return out
}

// Lower removes one level of reflection. It panics at depth 0.
func (v Value) Lower() Value {
	if len(v.lifts) == 0 {
		panic("refl: Lower at depth 0")
	}
	out := v
	out.lifts = slices.Clone(v.lifts[:len(v.lifts)-1])
	if len(out.lifts) == 0 {
		out.lifts = nil
	}
	return out
}

// LowerAll removes every lift.
func (v Value) LowerAll() Value {
	out := v
	out.lifts = nil
	return out
}

// LiftType returns the result type recorded by the outermost lift.
func (v Value) LiftType() entity.TypeID {
	if len(v.lifts) == 0 {
		return entity.NoTypeID
	}
	return v.lifts[len(v.lifts)-1]
}

// InnermostLiftType returns the result type recorded by the first lift.
func (v Value) InnermostLiftType() entity.TypeID {
	if len(v.lifts) == 0 {
		return entity.NoTypeID
	}
	return v.lifts[0]
}

// ClassifyAt returns the kind v has when viewed at the given lift depth.
// depth must not exceed v.Depth(); at depth 0 v must be a reflection handle.
func (v Value) ClassifyAt(depth int) Kind {
	switch {
	case depth < 0 || depth > len(v.lifts):
		panic(fmt.Sprintf("refl: ClassifyAt(%d) on a value of depth %d", depth, len(v.lifts)))
	case depth == 0:
		if v.rep != RepReflection {
			panic("refl: ClassifyAt(0) on a non-reflection constant")
		}
		return v.tag
	case depth == 1:
		if !v.lifts[0].IsValid() || v.rep == RepLValue {
			return KindObject
		}
		return KindValue
	default:
		return KindValue
	}
}

// Kind classifies v at its own depth.
func (v Value) Kind() Kind {
	if !v.IsReflection() {
		panic("refl: Kind of a non-reflection constant")
	}
	return v.ClassifyAt(len(v.lifts))
}

// Is reports whether v is a reflection of kind k.
func (v Value) Is(k Kind) bool {
	return v.IsReflection() && v.Kind() == k
}

func (v Value) mustTag(k Kind) uint32 {
	if len(v.lifts) != 0 || v.rep != RepReflection || v.tag != k {
		panic(fmt.Sprintf("refl: %s accessor on %s", k, v.describe()))
	}
	return v.handle
}

func (v Value) describe() string {
	if v.IsReflection() {
		return v.Kind().String() + " reflection"
	}
	return fmt.Sprintf("constant rep=%d", v.rep)
}

func (v Value) Type() entity.TypeID               { return entity.TypeID(v.mustTag(KindType)) }
func (v Value) Decl() entity.DeclID               { return entity.DeclID(v.mustTag(KindDecl)) }
func (v Value) Template() entity.TemplateID       { return entity.TemplateID(v.mustTag(KindTemplate)) }
func (v Value) Namespace() entity.DeclID          { return entity.DeclID(v.mustTag(KindNamespace)) }
func (v Value) Base() entity.BaseID               { return entity.BaseID(v.mustTag(KindBase)) }
func (v Value) Spec() entity.SpecID               { return entity.SpecID(v.mustTag(KindSpec)) }
func (v Value) Annotation() entity.AnnotID        { return entity.AnnotID(v.mustTag(KindAnnotation)) }
func (v Value) Handle() (tag Kind, handle uint32) { return v.tag, v.handle }

// AsInt returns the integer value of an int or bool constant.
func (v Value) AsInt() (int64, bool) {
	if len(v.lifts) != 0 || (v.rep != RepInt && v.rep != RepBool) {
		return 0, false
	}
	return v.i, true
}

// AsBool returns the truth value of a bool or int constant.
func (v Value) AsBool() (bool, bool) {
	i, ok := v.AsInt()
	return i != 0, ok
}

// AsRef returns the designated object of an lvalue or pointer constant.
func (v Value) AsRef() (Ref, bool) {
	if len(v.lifts) != 0 || (v.rep != RepLValue && v.rep != RepPointer) {
		return Ref{}, false
	}
	return Ref{Decl: v.ref.Decl, Path: slices.Clone(v.ref.Path)}, true
}

// Elems returns the elements of an aggregate constant.
func (v Value) Elems() ([]Value, bool) {
	if len(v.lifts) != 0 || v.rep != RepAggregate {
		return nil, false
	}
	return slices.Clone(v.elems), true
}

// String builds the constant of a NUL-terminated character array.
func String(s string) Value {
	elems := make([]Value, 0, len(s)+1)
	for i := 0; i < len(s); i++ {
		elems = append(elems, Int(int64(s[i])))
	}
	elems = append(elems, Int(0))
	return Value{rep: RepAggregate, elems: elems}
}

// AsString decodes a character array, stopping at the first NUL.
func (v Value) AsString() (string, bool) {
	if len(v.lifts) != 0 || v.rep != RepAggregate {
		return "", false
	}
	buf := make([]byte, 0, len(v.elems))
	for _, e := range v.elems {
		c, ok := e.AsInt()
		if !ok || c < 0 || c > 0xff {
			return "", false
		}
		if c == 0 {
			break
		}
		buf = append(buf, byte(c))
	}
	return string(buf), true
}
