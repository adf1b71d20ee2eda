package meta

import (
	"reflex/internal/entity"
	"reflex/internal/refl"
)

// declOf returns the declaration a depth-0 reflection names. Types name
// their class, enum or alias declaration; templates their holder.
func (s *Session) declOf(v refl.Value) (entity.DeclID, bool) {
	if !v.IsReflection() || v.Depth() != 0 {
		return entity.NoDeclID, false
	}
	p := s.Program
	switch v.Kind() {
	case refl.KindDecl:
		return v.Decl(), true
	case refl.KindNamespace:
		return v.Namespace(), true
	case refl.KindTemplate:
		d := p.TemplateDecl(v.Template())
		return d, d.IsValid()
	case refl.KindType:
		d := p.TypeDecl(v.Type())
		return d, d.IsValid()
	}
	return entity.NoDeclID, false
}

// reflectDecl reflects d the way member iteration presents it.
func (s *Session) reflectDecl(d entity.DeclID) refl.Value {
	p := s.Program
	decl := p.MustDecl(d)
	switch decl.Kind {
	case entity.DeclClass, entity.DeclEnum, entity.DeclTypeAlias:
		return refl.MakeType(decl.Type)
	case entity.DeclTemplate:
		return refl.MakeTemplate(p, decl.Template)
	case entity.DeclNamespace, entity.DeclNamespaceAlias:
		return refl.MakeNamespace(p, d)
	}
	return refl.MakeDecl(p, d)
}

// declWith returns the declaration behind a Decl reflection when its kind
// is one of kinds.
func (s *Session) declWith(v refl.Value, kinds ...entity.DeclKind) (*entity.Decl, entity.DeclID, bool) {
	if !v.IsReflection() || v.Depth() != 0 || v.Kind() != refl.KindDecl {
		return nil, entity.NoDeclID, false
	}
	d := s.Program.Decl(v.Decl())
	if d == nil {
		return nil, entity.NoDeclID, false
	}
	for _, k := range kinds {
		if d.Kind == k {
			return d, v.Decl(), true
		}
	}
	return nil, entity.NoDeclID, false
}

func (s *Session) function(v refl.Value) (*entity.Decl, entity.DeclID, bool) {
	return s.declWith(v, entity.DeclFunction)
}

// typeOperand returns the type a depth-0 Type reflection names.
func typeOperand(v refl.Value) (entity.TypeID, bool) {
	if !v.IsReflection() || v.Depth() != 0 || v.Kind() != refl.KindType {
		return entity.NoTypeID, false
	}
	return v.Type(), true
}

func (s *Session) template(v refl.Value) (*entity.Template, bool) {
	if !v.IsReflection() || v.Depth() != 0 || v.Kind() != refl.KindTemplate {
		return nil, false
	}
	t := s.Program.Template(v.Template())
	return t, t != nil
}

// parentScope reflects the scope enclosing d.
func (s *Session) parentScope(d entity.DeclID) (refl.Value, bool) {
	p := s.Program
	decl := p.Decl(d)
	if decl == nil || !decl.Parent.IsValid() {
		return refl.Value{}, false
	}
	return s.reflectDecl(decl.Parent), true
}

// typeOfDecl returns the declared type of value-like declarations.
func (s *Session) typeOfDecl(d *entity.Decl) (entity.TypeID, bool) {
	switch d.Kind {
	case entity.DeclVariable, entity.DeclField, entity.DeclParam, entity.DeclFunction, entity.DeclBinding:
		return d.Type, d.Type.IsValid()
	case entity.DeclEnumerator:
		return s.Program.MustDecl(d.Parent).Type, true
	}
	return entity.NoTypeID, false
}

// specialization returns the template and arguments of a Type or Decl
// reflection naming a specialization.
func (s *Session) specialization(v refl.Value) (entity.TemplateID, []entity.TemplateArg, bool) {
	d, ok := s.declOf(v)
	if !ok {
		return entity.NoTemplateID, nil, false
	}
	return s.Program.SpecializationOf(d)
}

func typeName(p *entity.Program, t entity.TypeID) string { return p.TypeString(t) }
