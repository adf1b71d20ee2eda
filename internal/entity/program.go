package entity

import (
	"fmt"

	"fortio.org/safecast"

	"reflex/internal/source"
)

// Program is the in-memory entity model of one compilation. All handles
// issued by a Program are indices into its arenas; index 0 is reserved.
type Program struct {
	Files   *source.FileSet
	Strings *source.Interner
	Types   *Types
	Exprs   *Exprs

	decls     []Decl
	bases     []Base
	templates []Template
	annots    []Annotation
	specs     []MemberSpec
	global    DeclID
	statics   map[string]DeclID
	access    map[DeclID]Access // current access of classes with a written specifier
}

// NewProgram creates a program with an empty global namespace.
func NewProgram() *Program {
	p := &Program{
		Files:     source.NewFileSet(),
		Strings:   source.NewInterner(),
		Types:     NewTypes(),
		Exprs:     newExprs(),
		decls:     make([]Decl, 1, 128),
		bases:     make([]Base, 1, 16),
		templates: make([]Template, 1, 16),
		annots:    make([]Annotation, 1, 8),
		specs:     make([]MemberSpec, 1, 8),
	}
	p.global = p.newDecl(Decl{Kind: DeclNamespace, Flags: FlagComplete}, false)
	p.statics = make(map[string]DeclID)
	p.access = make(map[DeclID]Access)
	return p
}

func arenaIndex(n int, what string) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", what, err))
	}
	return v
}

// Global returns the global namespace.
func (p *Program) Global() DeclID { return p.global }

// Decl returns the declaration for id or nil.
func (p *Program) Decl(id DeclID) *Decl {
	if !id.IsValid() || int(id) >= len(p.decls) {
		return nil
	}
	return &p.decls[id]
}

// MustDecl panics on an invalid id.
func (p *Program) MustDecl(id DeclID) *Decl {
	d := p.Decl(id)
	if d == nil {
		panic("entity: invalid DeclID")
	}
	return d
}

// Base returns the base specifier for id or nil.
func (p *Program) Base(id BaseID) *Base {
	if !id.IsValid() || int(id) >= len(p.bases) {
		return nil
	}
	return &p.bases[id]
}

// Template returns the template for id or nil.
func (p *Program) Template(id TemplateID) *Template {
	if !id.IsValid() || int(id) >= len(p.templates) {
		return nil
	}
	return &p.templates[id]
}

// Annotation returns the annotation for id or nil.
func (p *Program) Annotation(id AnnotID) *Annotation {
	if !id.IsValid() || int(id) >= len(p.annots) {
		return nil
	}
	return &p.annots[id]
}

// Spec returns the member description for id or nil.
func (p *Program) Spec(id SpecID) *MemberSpec {
	if !id.IsValid() || int(id) >= len(p.specs) {
		return nil
	}
	return &p.specs[id]
}

// AddSpec stores a member description owned by the program.
func (p *Program) AddSpec(spec MemberSpec) SpecID {
	id := SpecID(arenaIndex(len(p.specs), "specs"))
	p.specs = append(p.specs, spec)
	return id
}

// Name returns the spelling of d's identifier ("" when unnamed).
func (p *Program) Name(d DeclID) string {
	decl := p.Decl(d)
	if decl == nil {
		return ""
	}
	s, _ := p.Strings.Lookup(decl.Name)
	return s
}

// newDecl stores d. attached declarations are appended to the parent's
// children; templated patterns and specializations are not.
func (p *Program) newDecl(d Decl, attached bool) DeclID {
	id := DeclID(arenaIndex(len(p.decls), "decls"))
	if !d.Canonical.IsValid() {
		d.Canonical = id
	}
	d.index = -1
	p.decls = append(p.decls, d)
	if attached && d.Parent.IsValid() {
		parent := p.MustDecl(d.Parent)
		p.decls[id].index = len(parent.Children)
		parent.Children = append(parent.Children, id)
	}
	return id
}

// Canonical returns the first-seen declaration of d's entity.
func (p *Program) Canonical(d DeclID) DeclID {
	decl := p.Decl(d)
	if decl == nil {
		return d
	}
	return decl.Canonical
}

// CanonicalTemplate returns the first-seen declaration of the template.
func (p *Program) CanonicalTemplate(t TemplateID) TemplateID {
	tmpl := p.Template(t)
	if tmpl == nil || !tmpl.Canonical.IsValid() {
		return t
	}
	return tmpl.Canonical
}
