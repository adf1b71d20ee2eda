package entity

import "reflex/internal/source"

// Declaration builders stand in for the front end. Each one records the new
// declaration in its parent's context in source order.

// AddNamespace declares a namespace. An empty name declares an anonymous one.
func (p *Program) AddNamespace(parent DeclID, name string) DeclID {
	d := Decl{Kind: DeclNamespace, Name: p.Strings.Intern(name), Parent: parent, Flags: FlagComplete | FlagUserDeclared}
	if name == "" {
		d.Flags |= FlagAnonymous
	}
	return p.newDecl(d, true)
}

// AddNamespaceAlias declares name as an alias of the namespace target.
func (p *Program) AddNamespaceAlias(parent DeclID, name string, target DeclID) DeclID {
	return p.newDecl(Decl{
		Kind:   DeclNamespaceAlias,
		Name:   p.Strings.Intern(name),
		Parent: parent,
		Target: target,
		Flags:  FlagUserDeclared,
	}, true)
}

// AddClass declares an incomplete class, struct or union together with its
// injected class name.
func (p *Program) AddClass(parent DeclID, name string, key ClassKey) DeclID {
	return p.addClass(parent, name, key, true)
}

func (p *Program) addClass(parent DeclID, name string, key ClassKey, attached bool) DeclID {
	d := Decl{Kind: DeclClass, Name: p.Strings.Intern(name), Parent: parent, Key: key, Flags: FlagUserDeclared}
	if name == "" {
		d.Flags |= FlagAnonymous
	}
	d.Access = p.defaultAccessIn(parent)
	id := p.newDecl(d, attached)
	p.decls[id].Type = p.Types.Intern(Type{Kind: KindRecord, Decl: id})
	if name != "" {
		p.newDecl(Decl{
			Kind:   DeclClass,
			Name:   d.Name,
			Parent: id,
			Key:    key,
			Flags:  FlagInjected | FlagImplicit,
			Type:   p.decls[id].Type,
			Target: id,
			Access: AccessPublic,
		}, true)
	}
	return id
}

// Complete marks a class as defined.
func (p *Program) Complete(class DeclID) {
	p.MustDecl(class).Flags |= FlagComplete
}

// AddAccessSpec writes an access specifier; members declared after it get
// that access unless given one explicitly.
func (p *Program) AddAccessSpec(class DeclID, access Access) DeclID {
	p.access[class] = access
	return p.newDecl(Decl{Kind: DeclAccessSpec, Parent: class, Access: access}, true)
}

func (p *Program) defaultAccessIn(parent DeclID) Access {
	pd := p.Decl(parent)
	if pd == nil || pd.Kind != DeclClass {
		return AccessNone
	}
	if a, ok := p.access[parent]; ok {
		return a
	}
	if pd.Key == KeyClass {
		return AccessPrivate
	}
	return AccessPublic
}

// memberDecl fills in the access of a class member.
func (p *Program) memberDecl(d Decl, access Access) Decl {
	if pd := p.Decl(d.Parent); pd == nil || pd.Kind != DeclClass {
		return d
	}
	_, written := p.access[d.Parent]
	switch {
	case access != AccessNone:
		d.Access = access
		d.Flags |= FlagAccessWritten
	case written:
		d.Access = p.defaultAccessIn(d.Parent)
		d.Flags |= FlagAccessWritten
	default:
		d.Access = p.defaultAccessIn(d.Parent)
	}
	return d
}

// AddField declares a non-static data member.
func (p *Program) AddField(class DeclID, name string, t TypeID, access Access) DeclID {
	d := Decl{Kind: DeclField, Name: p.Strings.Intern(name), Parent: class, Type: t, Flags: FlagUserDeclared}
	return p.newDecl(p.memberDecl(d, access), true)
}

// AddBitField declares a bit-field. A zero width requires an empty name.
func (p *Program) AddBitField(class DeclID, name string, t TypeID, width uint32, access Access) DeclID {
	d := Decl{
		Kind:     DeclField,
		Name:     p.Strings.Intern(name),
		Parent:   class,
		Type:     t,
		BitWidth: width,
		Flags:    FlagUserDeclared | FlagBitField,
	}
	if name == "" {
		d.Flags |= FlagAnonymous
	}
	return p.newDecl(p.memberDecl(d, access), true)
}

// AddVariable declares a variable. Inside a class it is a static data member.
func (p *Program) AddVariable(parent DeclID, name string, t TypeID, init ExprID) DeclID {
	d := Decl{Kind: DeclVariable, Name: p.Strings.Intern(name), Parent: parent, Type: t, Init: init, Flags: FlagUserDeclared}
	if pd := p.Decl(parent); pd != nil && pd.Kind == DeclClass {
		d.Flags |= FlagStatic
	}
	return p.newDecl(p.memberDecl(d, AccessNone), true)
}

// AddFunction declares a non-member function of type sig.
func (p *Program) AddFunction(parent DeclID, name string, sig TypeID) DeclID {
	return p.newDecl(Decl{
		Kind:   DeclFunction,
		Name:   p.Strings.Intern(name),
		Parent: parent,
		Type:   sig,
		Flags:  FlagUserDeclared,
	}, true)
}

// AddMethod declares a member function. Constructors, destructors and
// conversion functions are declared with an empty name.
func (p *Program) AddMethod(class DeclID, name string, kind MethodKind, sig TypeID, access Access) DeclID {
	d := Decl{
		Kind:   DeclFunction,
		Name:   p.Strings.Intern(name),
		Parent: class,
		Type:   sig,
		Method: kind,
		Flags:  FlagUserDeclared,
	}
	return p.newDecl(p.memberDecl(d, access), true)
}

// AddOperator declares an overloaded operator function.
func (p *Program) AddOperator(parent DeclID, op OperatorKind, sig TypeID, access Access) DeclID {
	d := Decl{
		Kind:     DeclFunction,
		Parent:   parent,
		Type:     sig,
		Method:   MethodOperator,
		Operator: op,
		Flags:    FlagUserDeclared,
	}
	return p.newDecl(p.memberDecl(d, access), true)
}

// AddParam appends a parameter to fn. Parameters are not context members.
func (p *Program) AddParam(fn DeclID, name string, t TypeID) DeclID {
	id := p.newDecl(Decl{Kind: DeclParam, Name: p.Strings.Intern(name), Parent: fn, Type: t, Flags: FlagUserDeclared}, false)
	f := p.MustDecl(fn)
	p.decls[id].index = len(f.Params)
	f.Params = append(f.Params, id)
	return id
}

// AddEnum declares a complete enumeration with the given underlying type.
func (p *Program) AddEnum(parent DeclID, name string, underlying TypeID, scoped bool) DeclID {
	d := Decl{
		Kind:       DeclEnum,
		Name:       p.Strings.Intern(name),
		Parent:     parent,
		Underlying: underlying,
		Flags:      FlagUserDeclared | FlagComplete,
	}
	if scoped {
		d.Flags |= FlagScopedEnum
	}
	if name == "" {
		d.Flags |= FlagAnonymous
	}
	id := p.newDecl(p.memberDecl(d, AccessNone), true)
	p.decls[id].Type = p.Types.Intern(Type{Kind: KindEnum, Decl: id})
	return id
}

// AddEnumerator appends an enumerator with an explicit value.
func (p *Program) AddEnumerator(enum DeclID, name string, value int64) DeclID {
	e := p.MustDecl(enum)
	init := p.IntLit(e.Type, value)
	return p.newDecl(Decl{
		Kind:   DeclEnumerator,
		Name:   p.Strings.Intern(name),
		Parent: enum,
		Type:   e.Type,
		Init:   init,
		Access: e.Access,
		Flags:  FlagUserDeclared,
	}, true)
}

// AddTypeAlias declares name as an alias of target.
func (p *Program) AddTypeAlias(parent DeclID, name string, target TypeID) DeclID {
	d := Decl{Kind: DeclTypeAlias, Name: p.Strings.Intern(name), Parent: parent, Underlying: target, Flags: FlagUserDeclared}
	id := p.newDecl(p.memberDecl(d, AccessNone), true)
	p.decls[id].Type = p.Types.Intern(Type{Kind: KindAlias, Decl: id})
	return id
}

// AddBinding declares a structured binding.
func (p *Program) AddBinding(parent DeclID, name string, t TypeID) DeclID {
	return p.newDecl(Decl{Kind: DeclBinding, Name: p.Strings.Intern(name), Parent: parent, Type: t, Flags: FlagUserDeclared}, true)
}

// AddStaticAssert records a static assertion. It introduces no name.
func (p *Program) AddStaticAssert(parent DeclID) DeclID {
	return p.newDecl(Decl{Kind: DeclStaticAssert, Parent: parent}, true)
}

// AddUsing records a using-declaration of target.
func (p *Program) AddUsing(parent DeclID, target DeclID) DeclID {
	return p.newDecl(Decl{Kind: DeclUsing, Parent: parent, Target: target, Name: p.MustDecl(target).Name}, true)
}

// Redeclare records a redeclaration of d in the same context. The new
// declaration shares d's canonical identity.
func (p *Program) Redeclare(d DeclID) DeclID {
	orig := *p.MustDecl(d)
	re := Decl{
		Kind:       orig.Kind,
		Name:       orig.Name,
		Parent:     orig.Parent,
		Access:     orig.Access,
		Flags:      orig.Flags &^ FlagComplete,
		Type:       orig.Type,
		Underlying: orig.Underlying,
		Method:     orig.Method,
		Operator:   orig.Operator,
		Key:        orig.Key,
		Template:   orig.Template,
		Canonical:  orig.Canonical,
	}
	return p.newDecl(re, true)
}

// AddBase appends a base-class specifier to derived.
func (p *Program) AddBase(derived DeclID, t TypeID, access Access, virtual bool) BaseID {
	d := p.MustDecl(derived)
	written := access != AccessNone
	if !written {
		access = AccessPublic
		if d.Key == KeyClass {
			access = AccessPrivate
		}
	}
	id := BaseID(arenaIndex(len(p.bases), "bases"))
	p.bases = append(p.bases, Base{
		Derived: derived,
		Type:    t,
		Access:  access,
		Virtual: virtual,
		Written: written,
		Index:   len(d.Bases),
	})
	d.Bases = append(d.Bases, id)
	return id
}

// Annotate attaches a constant of type t to target.
func (p *Program) Annotate(target DeclID, t TypeID, value ExprID) AnnotID {
	d := p.MustDecl(target)
	id := AnnotID(arenaIndex(len(p.annots), "annotations"))
	p.annots = append(p.annots, Annotation{Target: target, Type: t, Value: value})
	d.Annots = append(d.Annots, id)
	return id
}

// SetSpan records the source range of d.
func (p *Program) SetSpan(d DeclID, sp source.Span) {
	p.MustDecl(d).Span = sp
}

// SetBaseSpan records the source range of a base specifier.
func (p *Program) SetBaseSpan(b BaseID, sp source.Span) {
	if base := p.Base(b); base != nil {
		base.Span = sp
	}
}
