package entity

import "fmt"

// Kind enumerates the type constructors known to the entity model.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindChar
	KindInt
	KindUint
	KindFloat
	KindNullptr
	KindInfo
	KindPointer
	KindLValueRef
	KindRValueRef
	KindArray
	KindFunction
	KindRecord
	KindEnum
	KindAlias
	KindTemplateParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindNullptr:
		return "nullptr_t"
	case KindInfo:
		return "info"
	case KindPointer:
		return "pointer"
	case KindLValueRef:
		return "lvalue-reference"
	case KindRValueRef:
		return "rvalue-reference"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "alias"
	case KindTemplateParam:
		return "template-parameter"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width is the bit width of arithmetic types.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Quals are cv-qualifiers. On function types they qualify the implicit
// object parameter.
type Quals uint8

const (
	QualConst Quals = 1 << iota
	QualVolatile
)

// RefQual is the ref-qualifier of a member function type.
type RefQual uint8

const (
	RefNone RefQual = iota
	RefLValue
	RefRValue
)

// Type is a compact structural descriptor.
type Type struct {
	Kind    Kind
	Elem    TypeID // pointee, referent, element or function result
	Count   uint32 // array length or template parameter index
	Width   Width
	Quals   Quals
	Decl    DeclID // record, enum and alias types
	Payload uint32 // function signature slot
}

func MakeInt(width Width) Type   { return Type{Kind: KindInt, Width: width} }
func MakeUint(width Width) Type  { return Type{Kind: KindUint, Width: width} }
func MakeFloat(width Width) Type { return Type{Kind: KindFloat, Width: width} }

func MakePointer(elem TypeID) Type   { return Type{Kind: KindPointer, Elem: elem} }
func MakeLValueRef(elem TypeID) Type { return Type{Kind: KindLValueRef, Elem: elem} }
func MakeRValueRef(elem TypeID) Type { return Type{Kind: KindRValueRef, Elem: elem} }

func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeTemplateParam describes the index-th parameter of the enclosing template.
func MakeTemplateParam(index uint32) Type {
	return Type{Kind: KindTemplateParam, Count: index}
}

// FnInfo is the signature of a function type.
type FnInfo struct {
	Params   []TypeID
	Result   TypeID
	Variadic bool
	Noexcept bool
	Quals    Quals
	Ref      RefQual
}
