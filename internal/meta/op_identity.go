package meta

import (
	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/refl"
	"reflex/internal/source"
)

// identifier returns the name a reflection was declared with. Anonymous
// entities, specializations and functions named by operators or class
// names have none.
func (s *Session) identifier(r refl.Value) (string, bool) {
	d, ok := s.declOf(r)
	if !ok {
		return "", false
	}
	p := s.Program
	decl := p.MustDecl(d)
	if decl.Has(entity.FlagSpecialization) || decl.Has(entity.FlagAnonymous) {
		return "", false
	}
	if decl.Kind == entity.DeclFunction {
		switch decl.Method {
		case entity.MethodConstructor, entity.MethodDestructor, entity.MethodConversion, entity.MethodOperator:
			return "", false
		}
	}
	if r.Kind() == refl.KindType {
		if tt, ok := p.Types.Lookup(r.Type()); ok && tt.Quals != 0 {
			return "", false
		}
	}
	name := p.Name(d)
	return name, name != ""
}

func opIdentifierOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	name, ok := c.s.identifier(r)
	if !ok {
		return Result{}, errorf(diag.ReflNoIdentifier, c.argSpan(0), "identifier_of: %s has no identifier", describe(r))
	}
	obj := c.s.StaticString(name)
	return reflResult(refl.ObjectOf(refl.Ref{Decl: obj})), nil
}

func opHasIdentifier(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	_, ok := c.s.identifier(r)
	return boolResult(ok), nil
}

func opSourceLocationOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	var span source.Span
	switch {
	case r.Depth() > 0:
	case r.Kind() == refl.KindBase:
		span = p.Base(r.Base()).Span
	case r.Kind() == refl.KindAnnotation:
		span = p.Annotation(r.Annotation()).Span
	default:
		if d, ok := c.s.declOf(r); ok {
			span = p.MustDecl(d).Span
		}
	}
	loc := p.Files.Locate(span)
	file := c.s.StaticString(loc.File)
	return locResult(loc, refl.Pointer(refl.Ref{Decl: file, Path: []uint32{0}})), nil
}

func opOperatorOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	fn, _, ok := c.s.function(r)
	if !ok {
		tmpl, isTmpl := c.s.template(r)
		if !isTmpl || tmpl.Kind != entity.TemplateFunction {
			return Result{}, inapplicable(r)
		}
		fn = p.MustDecl(tmpl.Pattern)
	}
	if fn.Method != entity.MethodOperator || fn.Operator == entity.OpNone {
		return Result{}, errorf(diag.ReflNotAnOperator, c.argSpan(0), "operator_of: %s is not an operator function", describe(r))
	}
	return sizeResult(int64(fn.Operator)), nil
}

func opTypeOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	switch r.Kind() {
	case refl.KindDecl:
		if t, ok := c.s.typeOfDecl(p.MustDecl(r.Decl())); ok {
			return reflResult(refl.MakeType(t)), nil
		}
	case refl.KindObject:
		if t := r.LiftType(); t.IsValid() {
			return reflResult(refl.MakeType(t)), nil
		}
		ref, _ := r.LowerAll().AsRef()
		if t := c.s.ObjectType(ref); t.IsValid() {
			return reflResult(refl.MakeType(t)), nil
		}
	case refl.KindValue:
		return reflResult(refl.MakeType(r.LiftType())), nil
	case refl.KindBase:
		return reflResult(refl.MakeType(p.Base(r.Base()).Type)), nil
	case refl.KindSpec:
		return reflResult(refl.MakeType(p.Spec(r.Spec()).Type)), nil
	case refl.KindAnnotation:
		return reflResult(refl.MakeType(p.Annotation(r.Annotation()).Type)), nil
	}
	return Result{}, inapplicable(r)
}

func opParentOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	if r.Depth() == 0 && r.Kind() == refl.KindBase {
		return reflResult(refl.MakeType(p.MustDecl(p.Base(r.Base()).Derived).Type)), nil
	}
	d, ok := c.s.declOf(r)
	if !ok {
		return Result{}, inapplicable(r)
	}
	parent, ok := c.s.parentScope(d)
	if !ok {
		return Result{}, c.fail(diag.ReflKindMismatch, "the global namespace has no parent")
	}
	return reflResult(parent), nil
}

func opDealias(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	if t, ok := typeOperand(r); ok {
		return reflResult(refl.MakeType(p.Dealias(t))), nil
	}
	if r.Depth() == 0 && r.Kind() == refl.KindNamespace {
		if d := p.MustDecl(r.Namespace()); d.Kind == entity.DeclNamespaceAlias {
			target := d.Target
			for td := p.MustDecl(target); td.Kind == entity.DeclNamespaceAlias; td = p.MustDecl(target) {
				target = td.Target
			}
			return reflResult(refl.MakeNamespace(p, target)), nil
		}
	}
	return reflResult(r), nil
}

// objectRef resolves the object a reflection designates: an Object
// reflection, or a variable (following references to their referent).
func (c *call) objectRef(r refl.Value) (refl.Ref, bool, error) {
	if r.Kind() == refl.KindObject {
		ref, ok := r.LowerAll().AsRef()
		return ref, ok, nil
	}
	d, id, ok := c.s.declWith(r, entity.DeclVariable, entity.DeclBinding)
	if !ok {
		return refl.Ref{}, false, nil
	}
	p := c.prog()
	if !p.IsReference(d.Type) {
		return refl.Ref{Decl: id}, true, nil
	}
	if !d.Init.IsValid() {
		return refl.Ref{}, false, c.fail(diag.ReflNotConstant, "reference %q is not bound", p.Name(id))
	}
	v, err := c.s.Evaluate(d.Init, false)
	if err != nil {
		return refl.Ref{}, false, err
	}
	ref, ok := v.AsRef()
	if !ok {
		return refl.Ref{}, false, c.fail(diag.ReflNotConstant, "reference %q does not designate an object", p.Name(id))
	}
	return ref, true, nil
}

func opObjectOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	ref, ok, err := c.objectRef(r)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, inapplicable(r)
	}
	return reflResult(refl.ObjectOf(ref)), nil
}

func opValueOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	switch r.Kind() {
	case refl.KindValue:
		return reflResult(r), nil
	case refl.KindAnnotation:
		an := p.Annotation(r.Annotation())
		v, err := c.s.Evaluate(an.Value, true)
		if err != nil {
			return Result{}, err
		}
		return reflResult(c.s.valueAt(v, an.Type)), nil
	case refl.KindDecl:
		if d := p.MustDecl(r.Decl()); d.Kind == entity.DeclEnumerator {
			v, err := c.s.ReadObject(refl.Ref{Decl: r.Decl()}, c.argSpan(0))
			if err != nil {
				return Result{}, err
			}
			return reflResult(refl.ValueOf(v, p.MustDecl(d.Parent).Type)), nil
		}
	}
	ref, ok, err := c.objectRef(r)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, inapplicable(r)
	}
	v, err := c.s.ReadObject(ref, c.argSpan(0))
	if err != nil {
		return Result{}, err
	}
	return reflResult(c.s.valueAt(v, c.s.ObjectType(ref))), nil
}

// valueAt reflects the constant v read at type t, dropping references and
// cv-qualifiers from t.
func (s *Session) valueAt(v refl.Value, t entity.TypeID) refl.Value {
	p := s.Program
	t = p.Types.Unqualified(p.StripRef(t))
	if v.IsReflection() {
		return v.Lift(p.Types.Builtins().Info)
	}
	return refl.ValueOf(v, t)
}

func opTemplateOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	if _, ok := c.s.declOf(r); !ok {
		return Result{}, inapplicable(r)
	}
	tmpl, _, ok := c.s.specialization(r)
	if !ok {
		return Result{}, errorf(diag.ReflNotSpecialization, c.argSpan(0), "template_of: %s is not a template specialization", describe(r))
	}
	return reflResult(refl.MakeTemplate(c.prog(), tmpl)), nil
}

func opReturnTypeOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	info, ok := c.s.signature(r)
	if !ok {
		return Result{}, inapplicable(r)
	}
	return reflResult(refl.MakeType(info.Result)), nil
}

// signature returns the function type behind a function declaration or a
// function type reflection.
func (s *Session) signature(r refl.Value) (entity.FnInfo, bool) {
	p := s.Program
	if fn, _, ok := s.function(r); ok {
		return p.Types.FnInfo(fn.Type)
	}
	if t, ok := typeOperand(r); ok {
		return p.Types.FnInfo(p.Types.Unqualified(p.Dealias(t)))
	}
	return entity.FnInfo{}, false
}
