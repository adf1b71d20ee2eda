package entity

import "reflex/internal/source"

// DeclKind classifies declarations.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclNamespace
	DeclNamespaceAlias
	DeclClass
	DeclEnum
	DeclEnumerator
	DeclVariable
	DeclField
	DeclFunction
	DeclParam
	DeclTypeAlias
	DeclTemplate
	DeclBinding
	DeclAccessSpec
	DeclStaticAssert
	DeclUsing
)

func (k DeclKind) String() string {
	switch k {
	case DeclNamespace:
		return "namespace"
	case DeclNamespaceAlias:
		return "namespace-alias"
	case DeclClass:
		return "class"
	case DeclEnum:
		return "enum"
	case DeclEnumerator:
		return "enumerator"
	case DeclVariable:
		return "variable"
	case DeclField:
		return "field"
	case DeclFunction:
		return "function"
	case DeclParam:
		return "parameter"
	case DeclTypeAlias:
		return "type-alias"
	case DeclTemplate:
		return "template"
	case DeclBinding:
		return "structured-binding"
	case DeclAccessSpec:
		return "access-specifier"
	case DeclStaticAssert:
		return "static-assert"
	case DeclUsing:
		return "using"
	default:
		return "invalid"
	}
}

// MethodKind refines DeclFunction.
type MethodKind uint8

const (
	MethodOrdinary MethodKind = iota
	MethodConstructor
	MethodDestructor
	MethodConversion
	MethodOperator
	MethodLiteralOperator
)

// OperatorKind identifies overloaded operators. Values are ordinals exposed
// by operator_of and must stay stable.
type OperatorKind uint8

const (
	OpNone OperatorKind = iota
	OpNew
	OpDelete
	OpArrayNew
	OpArrayDelete
	OpCoAwait
	OpCall
	OpSubscript
	OpArrow
	OpArrowStar
	OpTilde
	OpExclamation
	OpPlus
	OpMinus
	OpStar
	OpSlash
	OpPercent
	OpCaret
	OpAmpersand
	OpPipe
	OpEquals
	OpPlusEquals
	OpMinusEquals
	OpStarEquals
	OpSlashEquals
	OpPercentEquals
	OpCaretEquals
	OpAmpersandEquals
	OpPipeEquals
	OpEqualsEquals
	OpExclamationEquals
	OpLess
	OpGreater
	OpLessEquals
	OpGreaterEquals
	OpSpaceship
	OpAmpersandAmpersand
	OpPipePipe
	OpLessLess
	OpGreaterGreater
	OpLessLessEquals
	OpGreaterGreaterEquals
	OpPlusPlus
	OpMinusMinus
	OpComma
)

// ClassKey distinguishes struct, class and union.
type ClassKey uint8

const (
	KeyStruct ClassKey = iota
	KeyClass
	KeyUnion
)

// Access is a member access level. AccessNone is used for non-members.
type Access uint8

const (
	AccessNone Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "none"
	}
}

// DeclFlags encode boolean properties of declarations.
type DeclFlags uint32

const (
	FlagVirtual DeclFlags = 1 << iota
	FlagPure
	FlagOverride
	FlagFinal
	FlagDeleted
	FlagDefaulted
	FlagExplicit
	FlagNoexcept
	FlagStatic
	FlagMutable
	FlagThreadLocal
	FlagImplicit
	FlagInjected
	FlagAccessWritten
	FlagComplete
	FlagConstexpr
	FlagBitField
	FlagNoUniqueAddress
	FlagDefaultArg
	FlagExplicitObject
	FlagScopedEnum
	FlagAnonymous
	FlagModuleLinkage
	FlagSpecialization
	FlagUserDeclared
	FlagStaticObject
)

// Linkage of a declared name.
type Linkage uint8

const (
	LinkageNone Linkage = iota
	LinkageInternal
	LinkageModule
	LinkageExternal
)

// StorageDuration of an object.
type StorageDuration uint8

const (
	StorageNone StorageDuration = iota
	StorageStatic
	StorageThread
	StorageAutomatic
)

// Decl is one declaration. Fields not meaningful for a kind stay zero.
type Decl struct {
	Kind       DeclKind
	Name       source.StringID
	Parent     DeclID
	Span       source.Span
	Access     Access
	Flags      DeclFlags
	Type       TypeID // declared type; for classes/enums/aliases the named type
	Underlying TypeID // enum underlying type, alias target
	Method     MethodKind
	Operator   OperatorKind
	Key        ClassKey
	BitWidth   uint32
	Align      uint32 // alignment override, 0 when absent
	Init       ExprID // initializer, default member initializer, enumerator value or default argument
	Body       ExprID // function body: the returned expression
	Target     DeclID // namespace alias and using targets
	Canonical  DeclID
	Template   TemplateID    // DeclTemplate: the template; specializations: their template
	Args       []TemplateArg // template arguments of a specialization
	Children   []DeclID
	Params     []DeclID
	Bases      []BaseID
	Annots     []AnnotID
	index      int // position inside the parent's Children
}

// Has reports whether all flags in f are set.
func (d *Decl) Has(f DeclFlags) bool {
	return d != nil && d.Flags&f == f
}

// IsMember reports whether d is declared directly inside a class.
func (p *Program) IsMember(d *Decl) bool {
	if d == nil || !d.Parent.IsValid() {
		return false
	}
	parent := p.Decl(d.Parent)
	return parent != nil && parent.Kind == DeclClass
}

// Base is a base-class specifier.
type Base struct {
	Derived DeclID
	Type    TypeID
	Access  Access
	Virtual bool
	Written bool // access was spelled out
	Span    source.Span
	Index   int
}

// Annotation is a constant attached to a declaration.
type Annotation struct {
	Target DeclID
	Type   TypeID
	Value  ExprID
	Span   source.Span
}

// MemberSpec is an intermediate description of a member to be created by
// CompleteClass. It is never a member by itself.
type MemberSpec struct {
	Type            TypeID
	Name            source.StringID // NoStringID when unnamed
	Align           uint32          // 0 when absent
	HasAlign        bool
	Width           uint32
	HasWidth        bool
	NoUniqueAddress bool
}
