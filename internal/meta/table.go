package meta

import "fmt"

// Variadic marks an entry without an upper arity bound.
const Variadic = -1

// Entry describes one metafunction.
type Entry struct {
	ID      ID
	Name    string
	Result  ResultKind
	MinArgs int
	MaxArgs int

	impl func(c *call) (Result, error)
}

// Accepts reports whether n arguments satisfy the entry's arity.
func (e *Entry) Accepts(n int) bool {
	return n >= e.MinArgs && (e.MaxArgs == Variadic || n <= e.MaxArgs)
}

var (
	table  []Entry
	byName map[string]ID
)

func init() {
	table = catalogue()
	byName = make(map[string]ID, len(table))
	for i := range table {
		if table[i].ID != ID(i) {
			panic(fmt.Sprintf("meta: entry %q has ID %d at position %d", table[i].Name, table[i].ID, i))
		}
		if _, dup := byName[table[i].Name]; dup {
			panic(fmt.Sprintf("meta: duplicate entry %q", table[i].Name))
		}
		byName[table[i].Name] = table[i].ID
	}
	if len(table) != int(idCount) {
		panic(fmt.Sprintf("meta: table has %d entries, want %d", len(table), idCount))
	}
	initVacuous()
}

// Lookup finds an entry by ID.
func Lookup(id ID) (*Entry, bool) {
	if int(id) >= len(table) {
		return nil, false
	}
	return &table[id], true
}

// LookupName finds an entry by its source name.
func LookupName(name string) (*Entry, bool) {
	id, ok := byName[name]
	if !ok {
		return nil, false
	}
	return &table[id], true
}

// Entries returns a copy of the table in ID order.
func Entries() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}

// catalogue lists every metafunction in ID order. Entries are only ever
// appended.
func catalogue() []Entry {
	return []Entry{
		{ID: GetBeginEnumeratorDeclOf, Name: "get_begin_enumerator_decl_of", Result: ResultReflection, MinArgs: 2, MaxArgs: 2, impl: opBeginEnumerator},
		{ID: GetNextEnumeratorDeclOf, Name: "get_next_enumerator_decl_of", Result: ResultReflection, MinArgs: 2, MaxArgs: 2, impl: opNextEnumerator},
		{ID: GetIthBaseOf, Name: "get_ith_base_of", Result: ResultReflection, MinArgs: 3, MaxArgs: 3, impl: opIthBase},
		{ID: GetIthTemplateArgumentOf, Name: "get_ith_template_argument_of", Result: ResultReflection, MinArgs: 3, MaxArgs: 3, impl: opIthTemplateArgument},
		{ID: GetBeginMemberDeclOf, Name: "get_begin_member_decl_of", Result: ResultReflection, MinArgs: 2, MaxArgs: 2, impl: opBeginMember},
		{ID: GetNextMemberDeclOf, Name: "get_next_member_decl_of", Result: ResultReflection, MinArgs: 2, MaxArgs: 2, impl: opNextMember},
		{ID: IdentifierOf, Name: "identifier_of", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opIdentifierOf},
		{ID: HasIdentifier, Name: "has_identifier", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasIdentifier},
		{ID: SourceLocationOf, Name: "source_location_of", Result: ResultSourceLocation, MinArgs: 1, MaxArgs: 1, impl: opSourceLocationOf},
		{ID: OperatorOf, Name: "operator_of", Result: ResultSize, MinArgs: 1, MaxArgs: 1, impl: opOperatorOf},
		{ID: TypeOf, Name: "type_of", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opTypeOf},
		{ID: ParentOf, Name: "parent_of", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opParentOf},
		{ID: Dealias, Name: "dealias", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opDealias},
		{ID: ObjectOf, Name: "object_of", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opObjectOf},
		{ID: ValueOf, Name: "value_of", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opValueOf},
		{ID: TemplateOf, Name: "template_of", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opTemplateOf},
		{ID: ReturnTypeOf, Name: "return_type_of", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opReturnTypeOf},
		{ID: IsPublic, Name: "is_public", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsPublic},
		{ID: IsProtected, Name: "is_protected", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsProtected},
		{ID: IsPrivate, Name: "is_private", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsPrivate},
		{ID: IsAccessSpecified, Name: "is_access_specified", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsAccessSpecified},
		{ID: IsAccessible, Name: "is_accessible", Result: ResultBool, MinArgs: 1, MaxArgs: 2, impl: opIsAccessible},
		{ID: IsVirtual, Name: "is_virtual", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsVirtual},
		{ID: IsPureVirtual, Name: "is_pure_virtual", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsPureVirtual},
		{ID: IsOverride, Name: "is_override", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsOverride},
		{ID: IsFinal, Name: "is_final", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsFinal},
		{ID: IsDeleted, Name: "is_deleted", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsDeleted},
		{ID: IsDefaulted, Name: "is_defaulted", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsDefaulted},
		{ID: IsUserProvided, Name: "is_user_provided", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsUserProvided},
		{ID: IsExplicit, Name: "is_explicit", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsExplicit},
		{ID: IsNoexcept, Name: "is_noexcept", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsNoexcept},
		{ID: IsBitField, Name: "is_bit_field", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsBitField},
		{ID: IsEnumerator, Name: "is_enumerator", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsEnumerator},
		{ID: IsConst, Name: "is_const", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsConst},
		{ID: IsVolatile, Name: "is_volatile", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsVolatile},
		{ID: IsMutableMember, Name: "is_mutable_member", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsMutableMember},
		{ID: IsLvalueReferenceQualified, Name: "is_lvalue_reference_qualified", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsLvalueReferenceQualified},
		{ID: IsRvalueReferenceQualified, Name: "is_rvalue_reference_qualified", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsRvalueReferenceQualified},
		{ID: HasStaticStorageDuration, Name: "has_static_storage_duration", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasStaticStorageDuration},
		{ID: HasThreadStorageDuration, Name: "has_thread_storage_duration", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasThreadStorageDuration},
		{ID: HasAutomaticStorageDuration, Name: "has_automatic_storage_duration", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasAutomaticStorageDuration},
		{ID: HasInternalLinkage, Name: "has_internal_linkage", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasInternalLinkage},
		{ID: HasModuleLinkage, Name: "has_module_linkage", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasModuleLinkage},
		{ID: HasExternalLinkage, Name: "has_external_linkage", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasExternalLinkage},
		{ID: HasLinkage, Name: "has_linkage", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasLinkage},
		{ID: IsClassMember, Name: "is_class_member", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsClassMember},
		{ID: IsNamespaceMember, Name: "is_namespace_member", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsNamespaceMember},
		{ID: IsNonstaticDataMember, Name: "is_nonstatic_data_member", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsNonstaticDataMember},
		{ID: IsStaticMember, Name: "is_static_member", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsStaticMember},
		{ID: IsBase, Name: "is_base", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsBase},
		{ID: IsDataMemberSpec, Name: "is_data_member_spec", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsDataMemberSpec},
		{ID: IsNamespace, Name: "is_namespace", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsNamespace},
		{ID: IsFunction, Name: "is_function", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsFunction},
		{ID: IsVariable, Name: "is_variable", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsVariable},
		{ID: IsType, Name: "is_type", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsType},
		{ID: IsTypeAlias, Name: "is_type_alias", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsTypeAlias},
		{ID: IsNamespaceAlias, Name: "is_namespace_alias", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsNamespaceAlias},
		{ID: IsCompleteType, Name: "is_complete_type", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsCompleteType},
		{ID: HasCompleteDefinition, Name: "has_complete_definition", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasCompleteDefinition},
		{ID: IsEnumerableType, Name: "is_enumerable_type", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsEnumerableType},
		{ID: IsTemplate, Name: "is_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsTemplate},
		{ID: IsFunctionTemplate, Name: "is_function_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsFunctionTemplate},
		{ID: IsVariableTemplate, Name: "is_variable_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsVariableTemplate},
		{ID: IsClassTemplate, Name: "is_class_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsClassTemplate},
		{ID: IsAliasTemplate, Name: "is_alias_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsAliasTemplate},
		{ID: IsConversionFunctionTemplate, Name: "is_conversion_function_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsConversionFunctionTemplate},
		{ID: IsOperatorFunctionTemplate, Name: "is_operator_function_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsOperatorFunctionTemplate},
		{ID: IsLiteralOperatorTemplate, Name: "is_literal_operator_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsLiteralOperatorTemplate},
		{ID: IsConstructorTemplate, Name: "is_constructor_template", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsConstructorTemplate},
		{ID: IsConcept, Name: "is_concept", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsConcept},
		{ID: IsStructuredBinding, Name: "is_structured_binding", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsStructuredBinding},
		{ID: IsValue, Name: "is_value", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsValue},
		{ID: IsObject, Name: "is_object", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsObject},
		{ID: HasTemplateArguments, Name: "has_template_arguments", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasTemplateArguments},
		{ID: HasDefaultMemberInitializer, Name: "has_default_member_initializer", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasDefaultMemberInitializer},
		{ID: IsConversionFunction, Name: "is_conversion_function", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsConversionFunction},
		{ID: IsOperatorFunction, Name: "is_operator_function", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsOperatorFunction},
		{ID: IsLiteralOperator, Name: "is_literal_operator", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsLiteralOperator},
		{ID: IsSpecialMemberFunction, Name: "is_special_member_function", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsSpecialMemberFunction},
		{ID: IsConstructor, Name: "is_constructor", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsConstructor},
		{ID: IsDefaultConstructor, Name: "is_default_constructor", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsDefaultConstructor},
		{ID: IsCopyConstructor, Name: "is_copy_constructor", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsCopyConstructor},
		{ID: IsMoveConstructor, Name: "is_move_constructor", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsMoveConstructor},
		{ID: IsAssignment, Name: "is_assignment", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsAssignment},
		{ID: IsCopyAssignment, Name: "is_copy_assignment", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsCopyAssignment},
		{ID: IsMoveAssignment, Name: "is_move_assignment", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsMoveAssignment},
		{ID: IsDestructor, Name: "is_destructor", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsDestructor},
		{ID: GetIthParameterOf, Name: "get_ith_parameter_of", Result: ResultReflection, MinArgs: 3, MaxArgs: 3, impl: opIthParameter},
		{ID: HasEllipsisParameter, Name: "has_ellipsis_parameter", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasEllipsisParameter},
		{ID: HasDefaultArgument, Name: "has_default_argument", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opHasDefaultArgument},
		{ID: IsExplicitObjectParameter, Name: "is_explicit_object_parameter", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsExplicitObjectParameter},
		{ID: IsFunctionParameter, Name: "is_function_parameter", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsFunctionParameter},
		{ID: CanSubstitute, Name: "can_substitute", Result: ResultBool, MinArgs: 1, MaxArgs: Variadic, impl: opCanSubstitute},
		{ID: Substitute, Name: "substitute", Result: ResultReflection, MinArgs: 1, MaxArgs: Variadic, impl: opSubstitute},
		{ID: Extract, Name: "extract", Result: ResultSpliceFromArgument, MinArgs: 2, MaxArgs: 2, impl: opExtract},
		{ID: ReflectResult, Name: "reflect_result", Result: ResultReflection, MinArgs: 2, MaxArgs: 2, impl: opReflectResult},
		{ID: ReflectInvoke, Name: "reflect_invoke", Result: ResultReflection, MinArgs: 2, MaxArgs: Variadic, impl: opReflectInvoke},
		{ID: DataMemberSpec, Name: "data_member_spec", Result: ResultReflection, MinArgs: 8, MaxArgs: 8, impl: opDataMemberSpec},
		{ID: DefineClass, Name: "define_class", Result: ResultReflection, MinArgs: 1, MaxArgs: Variadic, impl: opDefineClass},
		{ID: OffsetOf, Name: "offset_of", Result: ResultSize, MinArgs: 1, MaxArgs: 1, impl: opOffsetOf},
		{ID: SizeOf, Name: "size_of", Result: ResultSize, MinArgs: 1, MaxArgs: 1, impl: opSizeOf},
		{ID: BitOffsetOf, Name: "bit_offset_of", Result: ResultSize, MinArgs: 1, MaxArgs: 1, impl: opBitOffsetOf},
		{ID: BitSizeOf, Name: "bit_size_of", Result: ResultSize, MinArgs: 1, MaxArgs: 1, impl: opBitSizeOf},
		{ID: AlignmentOf, Name: "alignment_of", Result: ResultSize, MinArgs: 1, MaxArgs: 1, impl: opAlignmentOf},
		{ID: DefineStaticString, Name: "define_static_string", Result: ResultReflection, MinArgs: 1, MaxArgs: 1, impl: opDefineStaticString},
		{ID: DefineStaticArray, Name: "define_static_array", Result: ResultReflection, MinArgs: 1, MaxArgs: Variadic, impl: opDefineStaticArray},
		{ID: GetBeginAnnotationOf, Name: "get_begin_annotation_of", Result: ResultReflection, MinArgs: 2, MaxArgs: 2, impl: opBeginAnnotation},
		{ID: GetNextAnnotationOf, Name: "get_next_annotation_of", Result: ResultReflection, MinArgs: 2, MaxArgs: 2, impl: opNextAnnotation},
		{ID: IsAnnotation, Name: "is_annotation", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsAnnotation},
		{ID: IsUserDeclared, Name: "is_user_declared", Result: ResultBool, MinArgs: 1, MaxArgs: 1, impl: opIsUserDeclared},
	}
}
