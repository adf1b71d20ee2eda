package meta

// ID is the numeric identity of a metafunction. IDs are embedded in
// compiled library code, so existing values never change: new operations
// are appended before idCount.
type ID uint32

const (
	GetBeginEnumeratorDeclOf ID = iota
	GetNextEnumeratorDeclOf
	GetIthBaseOf
	GetIthTemplateArgumentOf
	GetBeginMemberDeclOf
	GetNextMemberDeclOf
	IdentifierOf
	HasIdentifier
	SourceLocationOf
	OperatorOf
	TypeOf
	ParentOf
	Dealias
	ObjectOf
	ValueOf
	TemplateOf
	ReturnTypeOf
	IsPublic
	IsProtected
	IsPrivate
	IsAccessSpecified
	IsAccessible
	IsVirtual
	IsPureVirtual
	IsOverride
	IsFinal
	IsDeleted
	IsDefaulted
	IsUserProvided
	IsExplicit
	IsNoexcept
	IsBitField
	IsEnumerator
	IsConst
	IsVolatile
	IsMutableMember
	IsLvalueReferenceQualified
	IsRvalueReferenceQualified
	HasStaticStorageDuration
	HasThreadStorageDuration
	HasAutomaticStorageDuration
	HasInternalLinkage
	HasModuleLinkage
	HasExternalLinkage
	HasLinkage
	IsClassMember
	IsNamespaceMember
	IsNonstaticDataMember
	IsStaticMember
	IsBase
	IsDataMemberSpec
	IsNamespace
	IsFunction
	IsVariable
	IsType
	IsTypeAlias
	IsNamespaceAlias
	IsCompleteType
	HasCompleteDefinition
	IsEnumerableType
	IsTemplate
	IsFunctionTemplate
	IsVariableTemplate
	IsClassTemplate
	IsAliasTemplate
	IsConversionFunctionTemplate
	IsOperatorFunctionTemplate
	IsLiteralOperatorTemplate
	IsConstructorTemplate
	IsConcept
	IsStructuredBinding
	IsValue
	IsObject
	HasTemplateArguments
	HasDefaultMemberInitializer
	IsConversionFunction
	IsOperatorFunction
	IsLiteralOperator
	IsSpecialMemberFunction
	IsConstructor
	IsDefaultConstructor
	IsCopyConstructor
	IsMoveConstructor
	IsAssignment
	IsCopyAssignment
	IsMoveAssignment
	IsDestructor
	GetIthParameterOf
	HasEllipsisParameter
	HasDefaultArgument
	IsExplicitObjectParameter
	IsFunctionParameter
	CanSubstitute
	Substitute
	Extract
	ReflectResult
	ReflectInvoke
	DataMemberSpec
	DefineClass
	OffsetOf
	SizeOf
	BitOffsetOf
	BitSizeOf
	AlignmentOf
	DefineStaticString
	DefineStaticArray
	GetBeginAnnotationOf
	GetNextAnnotationOf
	IsAnnotation
	IsUserDeclared

	idCount
)
