package entity

// DefineStatic returns the static-storage object named name, creating it
// from t and init on first use. Later calls with the same name return the
// original object unchanged.
func (p *Program) DefineStatic(name string, t TypeID, init ExprID) DeclID {
	if id, ok := p.statics[name]; ok {
		return id
	}
	id := p.newDecl(Decl{
		Kind:   DeclVariable,
		Name:   p.Strings.Intern(name),
		Parent: p.global,
		Type:   p.Types.Qualified(t, QualConst),
		Init:   init,
		Flags:  FlagStaticObject | FlagImplicit | FlagConstexpr | FlagComplete,
	}, true)
	p.statics[name] = id
	return id
}

// Static returns the synthesized object named name, if it exists.
func (p *Program) Static(name string) (DeclID, bool) {
	id, ok := p.statics[name]
	return id, ok
}

// StaticObjects returns the number of synthesized static objects.
func (p *Program) StaticObjects() int { return len(p.statics) }
