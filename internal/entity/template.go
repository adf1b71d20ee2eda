package entity

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TemplateKind identifies what a template produces.
type TemplateKind uint8

const (
	TemplateClass TemplateKind = iota + 1
	TemplateAlias
	TemplateFunction
	TemplateVariable
	TemplateConcept
)

func (k TemplateKind) String() string {
	switch k {
	case TemplateClass:
		return "class template"
	case TemplateAlias:
		return "alias template"
	case TemplateFunction:
		return "function template"
	case TemplateVariable:
		return "variable template"
	case TemplateConcept:
		return "concept"
	default:
		return "template"
	}
}

// ParamKind classifies template parameters.
type ParamKind uint8

const (
	ParamType ParamKind = iota
	ParamValue
	ParamTemplate
)

// TemplateParam describes one template parameter. A Pack parameter must be
// last and absorbs the remaining arguments.
type TemplateParam struct {
	Kind ParamKind
	Name string
	Type TypeID // ParamValue: declared type
	Pack bool
}

// Constraint decides whether args satisfy a concept or a requires-clause.
type Constraint func(p *Program, args []TemplateArg) bool

// Template is a class, alias, function or variable template, or a concept.
type Template struct {
	Kind       TemplateKind
	Decl       DeclID // holder declaration in the enclosing context
	Pattern    DeclID // templated declaration; NoDeclID for concepts
	Params     []TemplateParam
	Constraint Constraint
	Canonical  TemplateID

	specs map[string]Instance
}

// ArgKind classifies template arguments.
type ArgKind uint8

const (
	ArgType ArgKind = iota + 1
	ArgValue
	ArgDecl
	ArgTemplate
)

// TemplateArg is one template argument. Value arguments carry a
// synthesized constant expression and a Key that identifies the value
// structurally; arguments with equal keys name the same specialization.
type TemplateArg struct {
	Kind     ArgKind
	Type     TypeID
	Value    ExprID
	Key      string
	Decl     DeclID
	Template TemplateID
}

// Instance is the result of instantiating a template.
type Instance struct {
	Decl      DeclID // class/function/variable specialization
	Type      TypeID // class specialization type or alias target
	Satisfied bool   // concepts
}

var (
	ErrNotTemplate      = errors.New("not a template")
	ErrArgCount         = errors.New("wrong number of template arguments")
	ErrArgKind          = errors.New("template argument does not match parameter")
	ErrUnsatisfied      = errors.New("constraints not satisfied")
	ErrAlreadyComplete  = errors.New("class is already complete")
	ErrNotClass         = errors.New("not a class type")
	ErrInvalidMember    = errors.New("invalid member description")
	ErrDependentPattern = errors.New("template pattern depends on an unknown parameter")
)

// ArgError wraps a failure with the position of the offending template
// argument or member description.
type ArgError struct {
	Index int
	Err   error
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("argument %d: %v", e.Index, e.Err)
}

func (e *ArgError) Unwrap() error { return e.Err }

// AddTemplate declares a template named name in parent. The returned
// pattern is the templated declaration (a class, alias, function or
// variable depending on kind); its types may refer to the parameters
// through MakeTemplateParam. Concepts have no pattern.
func (p *Program) AddTemplate(parent DeclID, name string, kind TemplateKind, params []TemplateParam) (TemplateID, DeclID) {
	id := TemplateID(arenaIndex(len(p.templates), "templates"))
	holder := p.newDecl(p.memberDecl(Decl{
		Kind:     DeclTemplate,
		Name:     p.Strings.Intern(name),
		Parent:   parent,
		Template: id,
		Flags:    FlagUserDeclared,
	}, AccessNone), true)

	var pattern DeclID
	switch kind {
	case TemplateClass:
		pattern = p.addClass(parent, name, KeyStruct, false)
	case TemplateAlias:
		pattern = p.newDecl(Decl{Kind: DeclTypeAlias, Name: p.Strings.Intern(name), Parent: parent}, false)
		p.decls[pattern].Type = p.Types.Intern(Type{Kind: KindAlias, Decl: pattern})
	case TemplateFunction:
		pattern = p.newDecl(Decl{Kind: DeclFunction, Name: p.Strings.Intern(name), Parent: parent}, false)
	case TemplateVariable:
		pattern = p.newDecl(Decl{Kind: DeclVariable, Name: p.Strings.Intern(name), Parent: parent}, false)
	}
	if pd := p.Decl(pattern); pd != nil {
		pd.Template = id
		pd.Access = p.decls[holder].Access
		pd.Flags |= FlagUserDeclared
	}
	p.templates = append(p.templates, Template{
		Kind:      kind,
		Decl:      holder,
		Pattern:   pattern,
		Params:    slices.Clone(params),
		Canonical: id,
		specs:     make(map[string]Instance),
	})
	return id, pattern
}

// RedeclareTemplate records a redeclaration of t sharing its identity.
func (p *Program) RedeclareTemplate(t TemplateID) TemplateID {
	orig := p.Template(t)
	id := TemplateID(arenaIndex(len(p.templates), "templates"))
	holder := p.Redeclare(orig.Decl)
	p.decls[holder].Template = id
	cp := *orig
	cp.Decl = holder
	cp.Canonical = orig.Canonical
	cp.specs = nil
	p.templates = append(p.templates, cp)
	return id
}

// TemplateDecl returns the holder declaration of t.
func (p *Program) TemplateDecl(t TemplateID) DeclID {
	if tmpl := p.Template(t); tmpl != nil {
		return tmpl.Decl
	}
	return NoDeclID
}

// TemplateName returns the name of t.
func (p *Program) TemplateName(t TemplateID) string {
	return p.Name(p.TemplateDecl(t))
}

// SpecializationOf returns the template and arguments d was instantiated
// from. ok is false for declarations that are not specializations.
func (p *Program) SpecializationOf(d DeclID) (TemplateID, []TemplateArg, bool) {
	decl := p.Decl(d)
	if decl == nil || !decl.Has(FlagSpecialization) {
		return NoTemplateID, nil, false
	}
	return decl.Template, decl.Args, true
}

// canonicalArgs replaces type arguments and the types of value arguments
// by their alias-free forms, so arguments naming the same type share a key.
func (p *Program) canonicalArgs(args []TemplateArg) []TemplateArg {
	out := make([]TemplateArg, len(args))
	for i, a := range args {
		if a.Kind == ArgType || a.Kind == ArgValue {
			a.Type = p.CanonicalType(a.Type)
		}
		out[i] = a
	}
	return out
}

// ArgsKey builds the deduplication key of an argument list.
func ArgsKey(args []TemplateArg) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte('#')
		}
		switch a.Kind {
		case ArgType:
			sb.WriteByte('T')
			sb.WriteString(strconv.FormatUint(uint64(a.Type), 10))
		case ArgValue:
			sb.WriteByte('V')
			sb.WriteString(strconv.FormatUint(uint64(a.Type), 10))
			sb.WriteByte(':')
			sb.WriteString(a.Key)
		case ArgDecl:
			sb.WriteByte('D')
			sb.WriteString(strconv.FormatUint(uint64(a.Decl), 10))
		case ArgTemplate:
			sb.WriteByte('X')
			sb.WriteString(strconv.FormatUint(uint64(a.Template), 10))
		}
	}
	return sb.String()
}

// CheckArgs validates args against t without instantiating anything.
func (p *Program) CheckArgs(t TemplateID, args []TemplateArg) error {
	tmpl := p.Template(t)
	if tmpl == nil {
		return ErrNotTemplate
	}
	params := tmpl.Params
	pack := len(params) > 0 && params[len(params)-1].Pack
	if len(args) < len(params)-btoi(pack) || (!pack && len(args) > len(params)) {
		return fmt.Errorf("%w: %s expects %d, got %d", ErrArgCount, p.TemplateName(t), len(params), len(args))
	}
	for i, a := range args {
		param := params[min(i, len(params)-1)]
		if err := p.checkArg(param, a); err != nil {
			return &ArgError{Index: i, Err: err}
		}
	}
	if tmpl.Constraint != nil && tmpl.Kind != TemplateConcept && !tmpl.Constraint(p, args) {
		return fmt.Errorf("%w for %s", ErrUnsatisfied, p.TemplateName(t))
	}
	return nil
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (p *Program) checkArg(param TemplateParam, a TemplateArg) error {
	switch param.Kind {
	case ParamType:
		if a.Kind != ArgType || !a.Type.IsValid() {
			return ErrArgKind
		}
	case ParamValue:
		switch a.Kind {
		case ArgValue:
			if param.Type.IsValid() && !p.IsConvertible(a.Type, param.Type) {
				return fmt.Errorf("%w: value of incompatible type", ErrArgKind)
			}
		case ArgDecl:
			d := p.Decl(a.Decl)
			if d == nil {
				return ErrArgKind
			}
			switch d.Kind {
			case DeclVariable, DeclFunction, DeclEnumerator:
			default:
				return fmt.Errorf("%w: %s cannot be a value argument", ErrArgKind, d.Kind)
			}
		default:
			return ErrArgKind
		}
	case ParamTemplate:
		tmpl := p.Template(a.Template)
		if a.Kind != ArgTemplate || tmpl == nil || (tmpl.Kind != TemplateClass && tmpl.Kind != TemplateAlias) {
			return ErrArgKind
		}
	}
	return nil
}

// Instantiate checks args and returns the specialization of t. Equal
// argument lists yield the same specialization.
func (p *Program) Instantiate(t TemplateID, args []TemplateArg) (Instance, error) {
	if err := p.CheckArgs(t, args); err != nil {
		return Instance{}, err
	}
	args = p.canonicalArgs(args)
	canon := p.Template(p.CanonicalTemplate(t))
	if canon.Kind == TemplateConcept {
		return Instance{Satisfied: canon.Constraint == nil || canon.Constraint(p, args)}, nil
	}
	key := ArgsKey(args)
	if inst, ok := canon.specs[key]; ok {
		return inst, nil
	}
	s := substitution{p: p, args: args}
	pattern := p.MustDecl(canon.Pattern)
	var inst Instance
	switch canon.Kind {
	case TemplateAlias:
		inst.Type = s.typ(pattern.Underlying)
	case TemplateClass:
		inst.Decl = s.class(canon.Pattern, p.CanonicalTemplate(t))
		inst.Type = p.decls[inst.Decl].Type
	case TemplateFunction, TemplateVariable:
		inst.Decl = s.clone(canon.Pattern, pattern.Parent, false)
		d := &p.decls[inst.Decl]
		d.Flags |= FlagSpecialization
		d.Template = p.CanonicalTemplate(t)
		d.Args = slices.Clone(args)
		inst.Type = d.Type
	}
	canon = p.Template(p.CanonicalTemplate(t))
	canon.specs[key] = inst
	return inst, nil
}

type substitution struct {
	p    *Program
	args []TemplateArg
}

func (s substitution) typ(t TypeID) TypeID {
	p := s.p
	tt, ok := p.Types.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case KindTemplateParam:
		if int(tt.Count) < len(s.args) && s.args[tt.Count].Kind == ArgType {
			return p.Types.Qualified(s.args[tt.Count].Type, tt.Quals)
		}
		return t
	case KindPointer, KindLValueRef, KindRValueRef, KindArray:
		elem := s.typ(tt.Elem)
		if elem == tt.Elem {
			return t
		}
		tt.Elem = elem
		return p.Types.Intern(tt)
	case KindFunction:
		info, _ := p.Types.FnInfo(t)
		out := info
		out.Params = make([]TypeID, len(info.Params))
		for i, param := range info.Params {
			out.Params[i] = s.typ(param)
		}
		out.Result = s.typ(info.Result)
		return p.Types.Function(out)
	}
	return t
}

// valueArgs maps each value parameter position to its argument expression.
func (s substitution) valueArgs() []ExprID {
	out := make([]ExprID, len(s.args))
	for i, a := range s.args {
		switch a.Kind {
		case ArgValue:
			out[i] = a.Value
		case ArgDecl:
			out[i] = s.p.DeclRef(a.Decl)
		}
	}
	return out
}

func (s substitution) expr(e ExprID) ExprID {
	if !e.IsValid() {
		return e
	}
	return s.p.SubstituteExpr(e, s.valueArgs())
}

// clone copies a declaration with its parameters, substituting types and
// value-dependent expressions.
func (s substitution) clone(src, parent DeclID, attached bool) DeclID {
	p := s.p
	d := *p.MustDecl(src)
	d.Canonical = NoDeclID
	d.Parent = parent
	d.Children = nil
	d.Params = nil
	d.Bases = nil
	d.Annots = nil
	d.Type = s.typ(d.Type)
	d.Underlying = s.typ(d.Underlying)
	d.Init = s.expr(d.Init)
	d.Body = s.expr(d.Body)
	id := p.newDecl(d, attached)
	for _, param := range p.MustDecl(src).Params {
		pd := p.MustDecl(param)
		np := p.AddParam(id, p.Name(param), s.typ(pd.Type))
		p.decls[np].Flags = pd.Flags
		p.decls[np].Init = s.expr(pd.Init)
	}
	for _, a := range p.MustDecl(src).Annots {
		an := p.Annotation(a)
		p.Annotate(id, s.typ(an.Type), s.expr(an.Value))
	}
	return id
}

func (s substitution) class(pattern DeclID, tmpl TemplateID) DeclID {
	p := s.p
	pd := p.MustDecl(pattern)
	id := p.newDecl(Decl{
		Kind:     DeclClass,
		Name:     pd.Name,
		Parent:   pd.Parent,
		Span:     pd.Span,
		Access:   pd.Access,
		Key:      pd.Key,
		Flags:    (pd.Flags &^ FlagComplete) | FlagSpecialization,
		Align:    pd.Align,
		Template: tmpl,
		Args:     slices.Clone(s.args),
	}, false)
	p.decls[id].Type = p.Types.Intern(Type{Kind: KindRecord, Decl: id})
	for _, b := range pd.Bases {
		base := p.Base(b)
		p.AddBase(id, s.typ(base.Type), base.Access, base.Virtual)
	}
	for _, a := range pd.Annots {
		an := p.Annotation(a)
		p.Annotate(id, s.typ(an.Type), s.expr(an.Value))
	}
	for _, child := range pd.Children {
		cd := p.MustDecl(child)
		if cd.Has(FlagInjected) {
			p.newDecl(Decl{
				Kind:   DeclClass,
				Name:   cd.Name,
				Parent: id,
				Key:    cd.Key,
				Flags:  cd.Flags,
				Type:   p.decls[id].Type,
				Target: id,
				Access: cd.Access,
			}, true)
			continue
		}
		s.clone(child, id, true)
	}
	if pd.Has(FlagComplete) {
		p.decls[id].Flags |= FlagComplete
	}
	return id
}
