package meta

import (
	"errors"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/refl"
	"reflex/internal/source"
)

// TemplateArg converts a reflection into a template argument. Types,
// declarations, values, objects and class or alias templates qualify.
func (s *Session) TemplateArg(v refl.Value, span source.Span) (entity.TemplateArg, error) {
	p := s.Program
	switch v.Kind() {
	case refl.KindType:
		return entity.TemplateArg{Kind: entity.ArgType, Type: v.Type()}, nil
	case refl.KindDecl:
		return entity.TemplateArg{Kind: entity.ArgDecl, Decl: v.Decl()}, nil
	case refl.KindTemplate:
		t := p.Template(v.Template())
		if t == nil || (t.Kind != entity.TemplateClass && t.Kind != entity.TemplateAlias) {
			return entity.TemplateArg{}, errorf(diag.ReflTemplateArgIneligible, span, "only class and alias templates can be template arguments")
		}
		return entity.TemplateArg{Kind: entity.ArgTemplate, Template: v.Template()}, nil
	case refl.KindValue:
		t := v.LiftType()
		return entity.TemplateArg{
			Kind:  entity.ArgValue,
			Type:  t,
			Value: s.Materialize(v.Lower(), t),
			Key:   string(refl.ProfileOf(v, p)),
		}, nil
	case refl.KindObject:
		ref, _ := v.LowerAll().AsRef()
		t := p.Types.LValueRef(s.ObjectType(ref))
		return entity.TemplateArg{
			Kind:  entity.ArgValue,
			Type:  t,
			Value: s.Constant(refl.LValue(ref), t),
			Key:   string(refl.ProfileOf(v, p)),
		}, nil
	}
	return entity.TemplateArg{}, errorf(diag.ReflTemplateArgIneligible, span, "%s cannot be a template argument", describe(v))
}

// substitution evaluates the template operand and the argument list.
func (c *call) substitution() (entity.TemplateID, []entity.TemplateArg, error) {
	r, err := c.reflection(0)
	if err != nil {
		return entity.NoTemplateID, nil, err
	}
	if r.Depth() != 0 || r.Kind() != refl.KindTemplate {
		return entity.NoTemplateID, nil, c.mismatch(0, r, "a template")
	}
	args := make([]entity.TemplateArg, 0, c.n()-1)
	for i := 1; i < c.n(); i++ {
		v, err := c.reflection(i)
		if err != nil {
			return entity.NoTemplateID, nil, err
		}
		a, err := c.s.TemplateArg(v, c.argSpan(i))
		if err != nil {
			return entity.NoTemplateID, nil, err
		}
		args = append(args, a)
	}
	return r.Template(), args, nil
}

func opCanSubstitute(c *call) (Result, error) {
	tmpl, args, err := c.substitution()
	if err != nil {
		return Result{}, err
	}
	return boolResult(c.prog().CheckArgs(tmpl, args) == nil), nil
}

func opSubstitute(c *call) (Result, error) {
	tmpl, args, err := c.substitution()
	if err != nil {
		return Result{}, err
	}
	v, err := c.s.Substitute(tmpl, args)
	if err != nil {
		return Result{}, errorf(diag.ReflSubstitutionFailed, c.span, "substitute: %v", err).
			WithNote(c.prog().MustDecl(c.prog().TemplateDecl(tmpl)).Span, "template declared here")
	}
	return reflResult(v), nil
}

// Substitute instantiates tmpl with args and reflects the result. Concepts
// yield their satisfaction as a bool value.
func (s *Session) Substitute(tmpl entity.TemplateID, args []entity.TemplateArg) (refl.Value, error) {
	p := s.Program
	inst, err := p.Instantiate(tmpl, args)
	if err != nil {
		return refl.Value{}, err
	}
	switch p.Template(tmpl).Kind {
	case entity.TemplateConcept:
		return refl.ValueOf(refl.Bool(inst.Satisfied), p.Types.Builtins().Bool), nil
	case entity.TemplateClass, entity.TemplateAlias:
		return refl.MakeType(inst.Type), nil
	case entity.TemplateFunction, entity.TemplateVariable:
		return refl.MakeDecl(p, inst.Decl), nil
	}
	return refl.Value{}, errors.New("unsupported template kind")
}
