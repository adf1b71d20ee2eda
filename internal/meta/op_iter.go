package meta

import (
	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/refl"
)

// Iteration follows a begin/next protocol: each step returns the next
// element, or the trailing sentinel argument once the sequence is
// exhausted. The sentinel is only evaluated in that case.

func opBeginEnumerator(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	enum, err := c.enumOf(r)
	if err != nil {
		return Result{}, err
	}
	if first := c.prog().NextEnumerator(enum, entity.NoDeclID); first.IsValid() {
		return reflResult(refl.MakeDecl(c.prog(), first)), nil
	}
	return c.sentinel()
}

func (c *call) enumOf(r refl.Value) (entity.DeclID, error) {
	t, ok := typeOperand(r)
	if !ok {
		return entity.NoDeclID, c.mismatch(0, r, "an enumeration type")
	}
	p := c.prog()
	tt, ok := p.Types.Lookup(p.Types.Unqualified(p.Dealias(t)))
	if !ok || tt.Kind != entity.KindEnum {
		return entity.NoDeclID, c.mismatch(0, r, "an enumeration type")
	}
	return tt.Decl, nil
}

func opNextEnumerator(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	d, id, ok := c.s.declWith(r, entity.DeclEnumerator)
	if !ok {
		return Result{}, c.mismatch(0, r, "an enumerator")
	}
	if next := c.prog().NextEnumerator(d.Parent, id); next.IsValid() {
		return reflResult(refl.MakeDecl(c.prog(), next)), nil
	}
	return c.sentinel()
}

// completeClass resolves a reflection of a complete class type.
func (c *call) completeClass(i int, r refl.Value) (entity.DeclID, error) {
	t, ok := typeOperand(r)
	p := c.prog()
	if !ok || !p.ClassOf(t).IsValid() {
		return entity.NoDeclID, c.mismatch(i, r, "a class type")
	}
	if !p.IsComplete(t) {
		return entity.NoDeclID, errorf(diag.ReflIncomplete, c.argSpan(i), "%s: class %s is incomplete", c.entry.Name, p.Name(p.ClassOf(t)))
	}
	return p.ClassOf(t), nil
}

func opIthBase(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	class, err := c.completeClass(0, r)
	if err != nil {
		return Result{}, err
	}
	i, err := c.index(1)
	if err != nil {
		return Result{}, err
	}
	bases := c.prog().MustDecl(class).Bases
	if i < len(bases) {
		return reflResult(refl.MakeBase(bases[i])), nil
	}
	return c.sentinel()
}

func opIthTemplateArgument(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	_, args, ok := c.s.specialization(r)
	if !ok {
		return Result{}, errorf(diag.ReflNotSpecialization, c.argSpan(0), "%s: %s is not a template specialization", c.entry.Name, describe(r))
	}
	i, err := c.index(1)
	if err != nil {
		return Result{}, err
	}
	if i >= len(args) {
		return c.sentinel()
	}
	v, err := c.s.reflectArg(args[i])
	if err != nil {
		return Result{}, err
	}
	return reflResult(v), nil
}

// reflectArg reflects one template argument.
func (s *Session) reflectArg(a entity.TemplateArg) (refl.Value, error) {
	p := s.Program
	switch a.Kind {
	case entity.ArgType:
		return refl.MakeType(a.Type), nil
	case entity.ArgDecl:
		return refl.MakeDecl(p, a.Decl), nil
	case entity.ArgTemplate:
		return refl.MakeTemplate(p, a.Template), nil
	case entity.ArgValue:
		v, err := s.Evaluate(a.Value, true)
		if err != nil {
			return refl.Value{}, err
		}
		if v.IsReflection() {
			return v.Lift(p.Types.Builtins().Info), nil
		}
		return refl.ValueOf(v, a.Type), nil
	}
	return refl.MakeNull(), nil
}

// memberScope resolves the scope whose members are iterated: a complete
// class, an enumeration or a namespace.
func (c *call) memberScope(r refl.Value) (entity.DeclID, error) {
	p := c.prog()
	if r.IsReflection() && r.Depth() == 0 && r.Kind() == refl.KindNamespace {
		ns := r.Namespace()
		if d := p.MustDecl(ns); d.Kind == entity.DeclNamespaceAlias {
			return d.Target, nil
		}
		return ns, nil
	}
	if t, ok := typeOperand(r); ok {
		if tt, ok := p.Types.Lookup(p.Types.Unqualified(p.Dealias(t))); ok && tt.Kind == entity.KindEnum {
			return tt.Decl, nil
		}
	}
	return c.completeClass(0, r)
}

func opBeginMember(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	scope, err := c.memberScope(r)
	if err != nil {
		return Result{}, err
	}
	if first := c.prog().NextMember(scope, entity.NoDeclID); first.IsValid() {
		return reflResult(c.s.reflectDecl(first)), nil
	}
	return c.sentinel()
}

func opNextMember(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	d, ok := c.s.declOf(r)
	if !ok {
		return Result{}, c.mismatch(0, r, "a member")
	}
	p := c.prog()
	d = p.Canonical(d)
	parent := p.MustDecl(d).Parent
	if !parent.IsValid() {
		return Result{}, c.mismatch(0, r, "a member")
	}
	if next := p.NextMember(parent, d); next.IsValid() {
		return reflResult(c.s.reflectDecl(next)), nil
	}
	return c.sentinel()
}

func opIthParameter(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	fn, _, ok := c.s.function(r)
	if !ok {
		return Result{}, c.mismatch(0, r, "a function")
	}
	i, err := c.index(1)
	if err != nil {
		return Result{}, err
	}
	if i < len(fn.Params) {
		return reflResult(refl.MakeDecl(c.prog(), fn.Params[i])), nil
	}
	return c.sentinel()
}

func opBeginAnnotation(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	d, ok := c.s.declOf(r)
	if !ok {
		return Result{}, c.mismatch(0, r, "a declaration")
	}
	if annots := c.prog().MustDecl(d).Annots; len(annots) > 0 {
		return reflResult(refl.MakeAnnotation(annots[0])), nil
	}
	return c.sentinel()
}

func opNextAnnotation(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	if !r.Is(refl.KindAnnotation) || r.Depth() != 0 {
		return Result{}, c.mismatch(0, r, "an annotation")
	}
	p := c.prog()
	cur := r.Annotation()
	annots := p.MustDecl(p.Annotation(cur).Target).Annots
	for i, a := range annots {
		if a == cur && i+1 < len(annots) {
			return reflResult(refl.MakeAnnotation(annots[i+1])), nil
		}
	}
	return c.sentinel()
}
