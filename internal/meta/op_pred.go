package meta

import (
	"reflex/internal/entity"
	"reflex/internal/refl"
)

// predicate evaluates the single reflection operand and applies test.
// test returns inapplicable(r) for operands outside its domain.
func (c *call) predicate(test func(r refl.Value) (bool, error)) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	ok, err := test(r)
	if err != nil {
		return Result{}, err
	}
	return boolResult(ok), nil
}

// declFlag tests flag on Decl reflections of the given kinds.
func (c *call) declFlag(flag entity.DeclFlags, kinds ...entity.DeclKind) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		d, _, ok := c.s.declWith(r, kinds...)
		if !ok {
			return false, inapplicable(r)
		}
		return d.Has(flag), nil
	})
}

// isKind tests the reflection kind only.
func (c *call) isKind(k refl.Kind) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		return r.Kind() == k, nil
	})
}

// isDeclKind tests for a Decl reflection of kind k.
func (c *call) isDeclKind(k entity.DeclKind) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		_, _, ok := c.s.declWith(r, k)
		return ok, nil
	})
}

// member returns the declaration of a class member named by r.
func (s *Session) member(r refl.Value) (*entity.Decl, bool) {
	d, ok := s.declOf(r)
	if !ok {
		return nil, false
	}
	decl := s.Program.MustDecl(d)
	return decl, s.Program.IsMember(decl)
}

func (c *call) access(want entity.Access) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		if r.Depth() == 0 && r.Kind() == refl.KindBase {
			return c.prog().Base(r.Base()).Access == want, nil
		}
		d, ok := c.s.member(r)
		if !ok {
			return false, inapplicable(r)
		}
		return d.Access == want, nil
	})
}

func opIsPublic(c *call) (Result, error)    { return c.access(entity.AccessPublic) }
func opIsProtected(c *call) (Result, error) { return c.access(entity.AccessProtected) }
func opIsPrivate(c *call) (Result, error)   { return c.access(entity.AccessPrivate) }

func opIsAccessSpecified(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		if r.Depth() == 0 && r.Kind() == refl.KindBase {
			return c.prog().Base(r.Base()).Written, nil
		}
		d, ok := c.s.member(r)
		if !ok {
			return false, inapplicable(r)
		}
		return d.Has(entity.FlagAccessWritten), nil
	})
}

func opIsAccessible(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	from := c.s.Context
	if c.n() > 1 {
		ctx, err := c.reflection(1)
		if err != nil {
			return Result{}, err
		}
		d, ok := c.s.declOf(ctx)
		if !ok {
			return Result{}, c.mismatch(1, ctx, "a class, namespace or function")
		}
		from = d
	}
	p := c.prog()
	if r.Depth() == 0 && r.Kind() == refl.KindBase {
		b := p.Base(r.Base())
		return boolResult(p.IsAccessible(b.Access, b.Derived, from)), nil
	}
	d, ok := c.s.declOf(r)
	if !ok {
		return Result{}, inapplicable(r)
	}
	decl := p.MustDecl(d)
	if !p.IsMember(decl) {
		return boolResult(true), nil
	}
	return boolResult(p.IsAccessible(decl.Access, decl.Parent, from)), nil
}

func opIsVirtual(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		if r.Depth() == 0 && r.Kind() == refl.KindBase {
			return c.prog().Base(r.Base()).Virtual, nil
		}
		fn, _, ok := c.s.function(r)
		if !ok {
			return false, inapplicable(r)
		}
		return fn.Has(entity.FlagVirtual) || fn.Has(entity.FlagOverride), nil
	})
}

func opIsPureVirtual(c *call) (Result, error) {
	return c.declFlag(entity.FlagPure, entity.DeclFunction)
}
func opIsOverride(c *call) (Result, error) {
	return c.declFlag(entity.FlagOverride, entity.DeclFunction)
}

func opIsFinal(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		if fn, _, ok := c.s.function(r); ok {
			return fn.Has(entity.FlagFinal), nil
		}
		if t, ok := typeOperand(r); ok {
			if cls := c.prog().Decl(c.prog().ClassOf(t)); cls != nil {
				return cls.Has(entity.FlagFinal), nil
			}
		}
		return false, inapplicable(r)
	})
}

func opIsDeleted(c *call) (Result, error) { return c.declFlag(entity.FlagDeleted, entity.DeclFunction) }
func opIsDefaulted(c *call) (Result, error) {
	return c.declFlag(entity.FlagDefaulted, entity.DeclFunction)
}

func opIsUserProvided(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		fn, id, ok := c.s.function(r)
		if !ok {
			return false, inapplicable(r)
		}
		first := c.prog().MustDecl(c.prog().Canonical(id))
		return fn.Has(entity.FlagUserDeclared) && !first.Has(entity.FlagDefaulted) && !first.Has(entity.FlagDeleted), nil
	})
}

func opIsUserDeclared(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		d, ok := c.s.declOf(r)
		if !ok {
			return false, inapplicable(r)
		}
		return c.prog().MustDecl(d).Has(entity.FlagUserDeclared), nil
	})
}

func opIsExplicit(c *call) (Result, error) {
	return c.declFlag(entity.FlagExplicit, entity.DeclFunction)
}

func opIsNoexcept(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		if fn, _, ok := c.s.function(r); ok && fn.Has(entity.FlagNoexcept) {
			return true, nil
		}
		info, ok := c.s.signature(r)
		if !ok {
			return false, inapplicable(r)
		}
		return info.Noexcept, nil
	})
}

func opIsBitField(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		if r.Depth() == 0 && r.Kind() == refl.KindSpec {
			return c.prog().Spec(r.Spec()).HasWidth, nil
		}
		d, _, ok := c.s.declWith(r, entity.DeclField)
		if !ok {
			return false, inapplicable(r)
		}
		return d.Has(entity.FlagBitField), nil
	})
}

func opIsEnumerator(c *call) (Result, error) { return c.isDeclKind(entity.DeclEnumerator) }

// quals returns the cv-qualifiers relevant to r: those of a type, of a
// variable's declared type, or of a member function's object parameter.
func (s *Session) quals(r refl.Value) (entity.Quals, bool) {
	p := s.Program
	if info, ok := s.signature(r); ok {
		return info.Quals, true
	}
	var t entity.TypeID
	if tt, ok := typeOperand(r); ok {
		t = tt
	} else if d, _, ok := s.declWith(r, entity.DeclVariable, entity.DeclField, entity.DeclParam, entity.DeclBinding); ok {
		t = d.Type
	} else {
		return 0, false
	}
	tt, ok := p.Types.Lookup(p.Dealias(t))
	if !ok {
		return 0, false
	}
	return tt.Quals, true
}

func (c *call) qualified(q entity.Quals) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		got, ok := c.s.quals(r)
		if !ok {
			return false, inapplicable(r)
		}
		return got&q != 0, nil
	})
}

func opIsConst(c *call) (Result, error)    { return c.qualified(entity.QualConst) }
func opIsVolatile(c *call) (Result, error) { return c.qualified(entity.QualVolatile) }

func opIsMutableMember(c *call) (Result, error) {
	return c.declFlag(entity.FlagMutable, entity.DeclField)
}

func (c *call) refQualified(want entity.RefQual) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		info, ok := c.s.signature(r)
		if !ok {
			return false, inapplicable(r)
		}
		return info.Ref == want, nil
	})
}

func opIsLvalueReferenceQualified(c *call) (Result, error) { return c.refQualified(entity.RefLValue) }
func opIsRvalueReferenceQualified(c *call) (Result, error) { return c.refQualified(entity.RefRValue) }

func (c *call) storage(want entity.StorageDuration) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		p := c.prog()
		if r.Kind() == refl.KindObject {
			ref, _ := r.LowerAll().AsRef()
			return p.StorageDuration(ref.Decl) == want, nil
		}
		if _, id, ok := c.s.declWith(r, entity.DeclVariable, entity.DeclParam, entity.DeclBinding); ok {
			return p.StorageDuration(id) == want, nil
		}
		return false, inapplicable(r)
	})
}

func opHasStaticStorageDuration(c *call) (Result, error) { return c.storage(entity.StorageStatic) }
func opHasThreadStorageDuration(c *call) (Result, error) { return c.storage(entity.StorageThread) }
func opHasAutomaticStorageDuration(c *call) (Result, error) {
	return c.storage(entity.StorageAutomatic)
}

func (c *call) linkage(test func(entity.Linkage) bool) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		d, ok := c.s.declOf(r)
		if !ok {
			return false, inapplicable(r)
		}
		return test(c.prog().Linkage(d)), nil
	})
}

func opHasInternalLinkage(c *call) (Result, error) {
	return c.linkage(func(l entity.Linkage) bool { return l == entity.LinkageInternal })
}

func opHasModuleLinkage(c *call) (Result, error) {
	return c.linkage(func(l entity.Linkage) bool { return l == entity.LinkageModule })
}

func opHasExternalLinkage(c *call) (Result, error) {
	return c.linkage(func(l entity.Linkage) bool { return l == entity.LinkageExternal })
}

func opHasLinkage(c *call) (Result, error) {
	return c.linkage(func(l entity.Linkage) bool { return l != entity.LinkageNone })
}

func opIsClassMember(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		_, ok := c.s.member(r)
		return ok, nil
	})
}

func opIsNamespaceMember(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		d, ok := c.s.declOf(r)
		if !ok {
			return false, nil
		}
		parent := c.prog().Decl(c.prog().MustDecl(d).Parent)
		return parent != nil && parent.Kind == entity.DeclNamespace, nil
	})
}

func opIsNonstaticDataMember(c *call) (Result, error) { return c.isDeclKind(entity.DeclField) }

func opIsStaticMember(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		d, ok := c.s.member(r)
		if !ok {
			return false, nil
		}
		switch d.Kind {
		case entity.DeclVariable, entity.DeclFunction:
			return d.Has(entity.FlagStatic), nil
		}
		return false, nil
	})
}

func opIsBase(c *call) (Result, error)              { return c.isKind(refl.KindBase) }
func opIsDataMemberSpec(c *call) (Result, error)    { return c.isKind(refl.KindSpec) }
func opIsNamespace(c *call) (Result, error)         { return c.isKind(refl.KindNamespace) }
func opIsFunction(c *call) (Result, error)          { return c.isDeclKind(entity.DeclFunction) }
func opIsVariable(c *call) (Result, error)          { return c.isDeclKind(entity.DeclVariable) }
func opIsType(c *call) (Result, error)              { return c.isKind(refl.KindType) }
func opIsTemplate(c *call) (Result, error)          { return c.isKind(refl.KindTemplate) }
func opIsValue(c *call) (Result, error)             { return c.isKind(refl.KindValue) }
func opIsObject(c *call) (Result, error)            { return c.isKind(refl.KindObject) }
func opIsAnnotation(c *call) (Result, error)        { return c.isKind(refl.KindAnnotation) }
func opIsStructuredBinding(c *call) (Result, error) { return c.isDeclKind(entity.DeclBinding) }
func opIsFunctionParameter(c *call) (Result, error) { return c.isDeclKind(entity.DeclParam) }

func opIsTypeAlias(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		t, ok := typeOperand(r)
		if !ok {
			return false, nil
		}
		tt, ok := c.prog().Types.Lookup(t)
		return ok && tt.Kind == entity.KindAlias, nil
	})
}

func opIsNamespaceAlias(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		if r.Depth() != 0 || r.Kind() != refl.KindNamespace {
			return false, nil
		}
		return c.prog().MustDecl(r.Namespace()).Kind == entity.DeclNamespaceAlias, nil
	})
}

func opIsCompleteType(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		t, ok := typeOperand(r)
		if !ok {
			return false, inapplicable(r)
		}
		return c.prog().IsComplete(t), nil
	})
}

func opHasCompleteDefinition(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		p := c.prog()
		if t, ok := typeOperand(r); ok {
			tt, ok := p.Types.Lookup(p.Types.Unqualified(p.Dealias(t)))
			if !ok || (tt.Kind != entity.KindRecord && tt.Kind != entity.KindEnum) {
				return false, nil
			}
			return p.IsComplete(t), nil
		}
		if fn, _, ok := c.s.function(r); ok {
			return fn.Body.IsValid() || fn.Has(entity.FlagDefaulted) || fn.Has(entity.FlagDeleted), nil
		}
		if v, _, ok := c.s.declWith(r, entity.DeclVariable); ok {
			return v.Init.IsValid(), nil
		}
		return false, inapplicable(r)
	})
}

func opIsEnumerableType(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		t, ok := typeOperand(r)
		if !ok {
			return false, inapplicable(r)
		}
		p := c.prog()
		tt, ok := p.Types.Lookup(p.Types.Unqualified(p.Dealias(t)))
		if !ok {
			return false, nil
		}
		switch tt.Kind {
		case entity.KindEnum:
			return true, nil
		case entity.KindRecord:
			return p.IsComplete(t), nil
		}
		return false, nil
	})
}

func (c *call) templateKind(k entity.TemplateKind) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		t, ok := c.s.template(r)
		return ok && t.Kind == k, nil
	})
}

func opIsFunctionTemplate(c *call) (Result, error) { return c.templateKind(entity.TemplateFunction) }
func opIsVariableTemplate(c *call) (Result, error) { return c.templateKind(entity.TemplateVariable) }
func opIsClassTemplate(c *call) (Result, error)    { return c.templateKind(entity.TemplateClass) }
func opIsAliasTemplate(c *call) (Result, error)    { return c.templateKind(entity.TemplateAlias) }
func opIsConcept(c *call) (Result, error)          { return c.templateKind(entity.TemplateConcept) }

// patternMethod tests the method kind of a function template's pattern.
func (c *call) patternMethod(m entity.MethodKind) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		t, ok := c.s.template(r)
		if !ok || t.Kind != entity.TemplateFunction {
			return false, nil
		}
		return c.prog().MustDecl(t.Pattern).Method == m, nil
	})
}

func opIsConversionFunctionTemplate(c *call) (Result, error) {
	return c.patternMethod(entity.MethodConversion)
}

func opIsOperatorFunctionTemplate(c *call) (Result, error) {
	return c.patternMethod(entity.MethodOperator)
}

func opIsLiteralOperatorTemplate(c *call) (Result, error) {
	return c.patternMethod(entity.MethodLiteralOperator)
}

func opIsConstructorTemplate(c *call) (Result, error) {
	return c.patternMethod(entity.MethodConstructor)
}

func opHasTemplateArguments(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		_, _, ok := c.s.specialization(r)
		return ok, nil
	})
}

func opHasDefaultMemberInitializer(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		d, _, ok := c.s.declWith(r, entity.DeclField)
		return ok && d.Init.IsValid(), nil
	})
}

func (c *call) method(test func(fn *entity.Decl, id entity.DeclID) bool) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		fn, id, ok := c.s.function(r)
		if !ok {
			return false, inapplicable(r)
		}
		return test(fn, id), nil
	})
}

func methodIs(m entity.MethodKind) func(*entity.Decl, entity.DeclID) bool {
	return func(fn *entity.Decl, _ entity.DeclID) bool { return fn.Method == m }
}

func opIsConversionFunction(c *call) (Result, error) {
	return c.method(methodIs(entity.MethodConversion))
}
func opIsOperatorFunction(c *call) (Result, error) { return c.method(methodIs(entity.MethodOperator)) }
func opIsLiteralOperator(c *call) (Result, error) {
	return c.method(methodIs(entity.MethodLiteralOperator))
}
func opIsConstructor(c *call) (Result, error) { return c.method(methodIs(entity.MethodConstructor)) }
func opIsDestructor(c *call) (Result, error)  { return c.method(methodIs(entity.MethodDestructor)) }

func (c *call) special(test func(*entity.Program, entity.DeclID) bool) (Result, error) {
	return c.method(func(_ *entity.Decl, id entity.DeclID) bool { return test(c.prog(), id) })
}

func opIsSpecialMemberFunction(c *call) (Result, error) {
	return c.special((*entity.Program).IsSpecialMember)
}

func opIsDefaultConstructor(c *call) (Result, error) {
	return c.special((*entity.Program).IsDefaultConstructor)
}

func opIsCopyConstructor(c *call) (Result, error) {
	return c.special((*entity.Program).IsCopyConstructor)
}

func opIsMoveConstructor(c *call) (Result, error) {
	return c.special((*entity.Program).IsMoveConstructor)
}

func opIsAssignment(c *call) (Result, error) { return c.special((*entity.Program).IsAssignment) }
func opIsCopyAssignment(c *call) (Result, error) {
	return c.special((*entity.Program).IsCopyAssignment)
}
func opIsMoveAssignment(c *call) (Result, error) {
	return c.special((*entity.Program).IsMoveAssignment)
}

func opHasEllipsisParameter(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		info, ok := c.s.signature(r)
		if !ok {
			return false, inapplicable(r)
		}
		return info.Variadic, nil
	})
}

func opHasDefaultArgument(c *call) (Result, error) {
	return c.predicate(func(r refl.Value) (bool, error) {
		d, _, ok := c.s.declWith(r, entity.DeclParam)
		if !ok {
			return false, inapplicable(r)
		}
		return d.Has(entity.FlagDefaultArg) || d.Init.IsValid(), nil
	})
}

func opIsExplicitObjectParameter(c *call) (Result, error) {
	return c.declFlag(entity.FlagExplicitObject, entity.DeclParam)
}
