package meta

// vacuousFalse lists the predicates that answer false, rather than fail,
// when handed a reflection outside their domain. can_substitute is
// absent: it rejects operands it cannot judge. A bad context argument to
// is_accessible is still an error.
var vacuousFalse = [...]ID{
	HasIdentifier,
	IsPublic,
	IsProtected,
	IsPrivate,
	IsAccessSpecified,
	IsAccessible,
	IsVirtual,
	IsPureVirtual,
	IsOverride,
	IsFinal,
	IsDeleted,
	IsDefaulted,
	IsUserProvided,
	IsExplicit,
	IsNoexcept,
	IsBitField,
	IsEnumerator,
	IsConst,
	IsVolatile,
	IsMutableMember,
	IsLvalueReferenceQualified,
	IsRvalueReferenceQualified,
	HasStaticStorageDuration,
	HasThreadStorageDuration,
	HasAutomaticStorageDuration,
	HasInternalLinkage,
	HasModuleLinkage,
	HasExternalLinkage,
	HasLinkage,
	IsClassMember,
	IsNamespaceMember,
	IsNonstaticDataMember,
	IsStaticMember,
	IsBase,
	IsDataMemberSpec,
	IsNamespace,
	IsFunction,
	IsVariable,
	IsType,
	IsTypeAlias,
	IsNamespaceAlias,
	IsCompleteType,
	HasCompleteDefinition,
	IsEnumerableType,
	IsTemplate,
	IsFunctionTemplate,
	IsVariableTemplate,
	IsClassTemplate,
	IsAliasTemplate,
	IsConversionFunctionTemplate,
	IsOperatorFunctionTemplate,
	IsLiteralOperatorTemplate,
	IsConstructorTemplate,
	IsConcept,
	IsStructuredBinding,
	IsValue,
	IsObject,
	HasTemplateArguments,
	HasDefaultMemberInitializer,
	IsConversionFunction,
	IsOperatorFunction,
	IsLiteralOperator,
	IsSpecialMemberFunction,
	IsConstructor,
	IsDefaultConstructor,
	IsCopyConstructor,
	IsMoveConstructor,
	IsAssignment,
	IsCopyAssignment,
	IsMoveAssignment,
	IsDestructor,
	HasEllipsisParameter,
	HasDefaultArgument,
	IsExplicitObjectParameter,
	IsFunctionParameter,
	IsAnnotation,
	IsUserDeclared,
}

var vacuous [idCount]bool

func initVacuous() {
	for _, id := range vacuousFalse {
		vacuous[id] = true
	}
}

// IsVacuousFalse reports whether id answers false for inapplicable
// operands.
func IsVacuousFalse(id ID) bool {
	return int(id) < len(vacuous) && vacuous[id]
}
