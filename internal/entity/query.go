package entity

// Dealias strips alias types, keeping cv-qualifiers written on the alias use.
func (p *Program) Dealias(t TypeID) TypeID {
	for range 64 {
		tt, ok := p.Types.Lookup(t)
		if !ok || tt.Kind != KindAlias {
			return t
		}
		d := p.Decl(tt.Decl)
		if d == nil {
			return t
		}
		t = p.Types.Qualified(d.Underlying, tt.Quals)
	}
	return t
}

// CanonicalType strips every alias in t, including aliases under pointers,
// references, arrays and function signatures.
func (p *Program) CanonicalType(t TypeID) TypeID {
	t = p.Dealias(t)
	tt, ok := p.Types.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case KindPointer, KindLValueRef, KindRValueRef, KindArray:
		elem := p.CanonicalType(tt.Elem)
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
			out.Params[i] = p.CanonicalType(param)
		}
		out.Result = p.CanonicalType(info.Result)
		return p.Types.Function(out)
	}
	return t
}

// TypeDecl returns the declaration naming a record, enum or alias type.
func (p *Program) TypeDecl(t TypeID) DeclID {
	tt, ok := p.Types.Lookup(p.Types.Unqualified(t))
	if !ok {
		return NoDeclID
	}
	switch tt.Kind {
	case KindRecord, KindEnum, KindAlias:
		return tt.Decl
	}
	return NoDeclID
}

// ClassOf returns the class declaration of t after dealiasing.
func (p *Program) ClassOf(t TypeID) DeclID {
	tt, ok := p.Types.Lookup(p.Dealias(t))
	if !ok || tt.Kind != KindRecord {
		return NoDeclID
	}
	return tt.Decl
}

// IsComplete reports whether t is a complete type.
func (p *Program) IsComplete(t TypeID) bool {
	tt, ok := p.Types.Lookup(p.Dealias(t))
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindVoid, KindTemplateParam:
		return false
	case KindRecord:
		return p.Decl(tt.Decl).Has(FlagComplete)
	case KindArray:
		return tt.Count > 0 && p.IsComplete(tt.Elem)
	}
	return true
}

// IsIntegral reports whether t is bool, char, an integer or an enumeration.
func (p *Program) IsIntegral(t TypeID) bool {
	tt, ok := p.Types.Lookup(p.Dealias(t))
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindBool, KindChar, KindInt, KindUint, KindEnum:
		return true
	}
	return false
}

// IsIdentityMember reports whether d introduces a new entity into its
// context. Synthetic and injected declarations, access specifiers, static
// assertions, using-declarations and redeclarations do not.
func (p *Program) IsIdentityMember(d DeclID) bool {
	decl := p.Decl(d)
	if decl == nil {
		return false
	}
	if decl.Flags&(FlagImplicit|FlagInjected) != 0 || decl.Canonical != d {
		return false
	}
	switch decl.Kind {
	case DeclAccessSpec, DeclStaticAssert, DeclUsing, DeclParam, DeclInvalid:
		return false
	}
	return true
}

// NextMember returns the identity member of ctx following after, or the
// first one when after is NoDeclID. The result is NoDeclID on exhaustion.
func (p *Program) NextMember(ctx, after DeclID) DeclID {
	c := p.Decl(ctx)
	if c == nil {
		return NoDeclID
	}
	start := 0
	if after.IsValid() {
		a := p.Decl(after)
		if a == nil || a.Parent != ctx || a.index < 0 || a.index >= len(c.Children) || c.Children[a.index] != after {
			return NoDeclID
		}
		start = a.index + 1
	}
	for _, child := range c.Children[start:] {
		if p.IsIdentityMember(child) {
			return child
		}
	}
	return NoDeclID
}

// Members lists the identity members of ctx in declaration order.
func (p *Program) Members(ctx DeclID) []DeclID {
	var out []DeclID
	for m := p.NextMember(ctx, NoDeclID); m.IsValid(); m = p.NextMember(ctx, m) {
		out = append(out, m)
	}
	return out
}

// Fields lists the non-static data members of class in declaration order.
func (p *Program) Fields(class DeclID) []DeclID {
	c := p.Decl(class)
	if c == nil {
		return nil
	}
	var out []DeclID
	for _, m := range c.Children {
		if d := p.Decl(m); d.Kind == DeclField && m == d.Canonical {
			out = append(out, m)
		}
	}
	return out
}

// NextEnumerator returns the enumerator of enum following after.
func (p *Program) NextEnumerator(enum, after DeclID) DeclID {
	for m := p.NextMember(enum, after); m.IsValid(); m = p.NextMember(enum, m) {
		if p.MustDecl(m).Kind == DeclEnumerator {
			return m
		}
	}
	return NoDeclID
}

// EnclosingFunction returns the nearest function containing d.
func (p *Program) EnclosingFunction(d DeclID) DeclID {
	for cur := p.Decl(d); cur != nil; cur = p.Decl(cur.Parent) {
		if pd := p.Decl(cur.Parent); pd != nil && pd.Kind == DeclFunction {
			return cur.Parent
		}
	}
	return NoDeclID
}

func (p *Program) inAnonymousNamespace(d DeclID) bool {
	for cur := p.Decl(d); cur != nil; cur = p.Decl(cur.Parent) {
		if cur.Kind == DeclNamespace && cur.Has(FlagAnonymous) {
			return true
		}
	}
	return false
}

// Linkage computes the linkage of the name declared by d.
func (p *Program) Linkage(d DeclID) Linkage {
	decl := p.Decl(d)
	if decl == nil {
		return LinkageNone
	}
	kind := decl.Kind
	if kind == DeclTemplate {
		if t := p.Template(decl.Template); t != nil {
			if pat := p.Decl(t.Pattern); pat != nil {
				kind = pat.Kind
			} else {
				kind = DeclFunction
			}
		}
	}
	switch kind {
	case DeclParam, DeclField, DeclAccessSpec, DeclStaticAssert, DeclUsing, DeclTypeAlias, DeclNamespaceAlias, DeclInvalid:
		return LinkageNone
	}
	if p.EnclosingFunction(d).IsValid() {
		return LinkageNone
	}
	if kind == DeclEnumerator {
		return p.Linkage(decl.Parent)
	}
	if pd := p.Decl(decl.Parent); pd != nil && pd.Kind == DeclClass {
		return p.Linkage(decl.Parent)
	}
	if decl.Has(FlagAnonymous) && kind != DeclNamespace {
		return LinkageNone
	}
	if p.inAnonymousNamespace(d) || decl.Has(FlagStatic) {
		return LinkageInternal
	}
	if kind == DeclVariable && !decl.Has(FlagStaticObject) {
		if tt, ok := p.Types.Lookup(decl.Type); ok && tt.Quals&QualConst != 0 {
			return LinkageInternal
		}
	}
	if decl.Has(FlagModuleLinkage) {
		return LinkageModule
	}
	return LinkageExternal
}

// StorageDuration returns the storage duration of variables, parameters,
// bindings and static objects.
func (p *Program) StorageDuration(d DeclID) StorageDuration {
	decl := p.Decl(d)
	if decl == nil {
		return StorageNone
	}
	switch decl.Kind {
	case DeclParam:
		return StorageAutomatic
	case DeclVariable, DeclBinding:
	default:
		return StorageNone
	}
	switch {
	case decl.Has(FlagThreadLocal):
		return StorageThread
	case decl.Has(FlagStatic), decl.Has(FlagStaticObject):
		return StorageStatic
	case p.EnclosingFunction(d).IsValid():
		return StorageAutomatic
	}
	return StorageStatic
}

// IsDerivedFrom reports whether class derived has base among its direct or
// indirect bases.
func (p *Program) IsDerivedFrom(derived, base DeclID) bool {
	d := p.Decl(derived)
	if d == nil || !base.IsValid() {
		return false
	}
	for _, b := range d.Bases {
		bc := p.ClassOf(p.Base(b).Type)
		if bc == base || p.IsDerivedFrom(bc, base) {
			return true
		}
	}
	return false
}

// encloses reports whether outer is ctx or one of its enclosing contexts.
func (p *Program) encloses(outer, ctx DeclID) bool {
	for cur := ctx; cur.IsValid(); {
		if cur == outer {
			return true
		}
		d := p.Decl(cur)
		if d == nil {
			return false
		}
		cur = d.Parent
	}
	return false
}

// IsAccessible reports whether a member of owner with the given access can
// be named from the context from.
func (p *Program) IsAccessible(access Access, owner, from DeclID) bool {
	switch access {
	case AccessNone, AccessPublic:
		return true
	case AccessPrivate:
		return p.encloses(owner, from)
	case AccessProtected:
		if p.encloses(owner, from) {
			return true
		}
		for cur := from; cur.IsValid(); cur = p.MustDecl(cur).Parent {
			if c := p.Decl(cur); c.Kind == DeclClass && p.IsDerivedFrom(cur, owner) {
				return true
			}
		}
	}
	return false
}

// IsConvertible reports whether a value of type from may bind to a
// parameter of type to: identical types modulo references and
// cv-qualifiers, derived-to-base for classes, and integral conversions.
func (p *Program) IsConvertible(from, to TypeID) bool {
	from, to = p.Types.Unqualified(p.stripRef(from)), p.Types.Unqualified(p.stripRef(to))
	from, to = p.Dealias(from), p.Dealias(to)
	if from == to {
		return true
	}
	if p.IsIntegral(from) && p.IsIntegral(to) {
		return true
	}
	fc, tc := p.ClassOf(from), p.ClassOf(to)
	if fc.IsValid() && tc.IsValid() {
		return p.IsDerivedFrom(fc, tc)
	}
	ft, ok1 := p.Types.Lookup(from)
	tt, ok2 := p.Types.Lookup(to)
	if ok1 && ok2 && ft.Kind == KindPointer && tt.Kind == KindPointer {
		fe, te := p.Types.Unqualified(ft.Elem), p.Types.Unqualified(tt.Elem)
		if fe == te {
			return true
		}
		if fc, tc := p.ClassOf(fe), p.ClassOf(te); fc.IsValid() && tc.IsValid() {
			return p.IsDerivedFrom(fc, tc)
		}
	}
	if ok1 && ok2 && ft.Kind == KindNullptr && tt.Kind == KindPointer {
		return true
	}
	return false
}

func (p *Program) stripRef(t TypeID) TypeID {
	tt, ok := p.Types.Lookup(t)
	if ok && (tt.Kind == KindLValueRef || tt.Kind == KindRValueRef) {
		return tt.Elem
	}
	return t
}

// StripRef removes one level of reference from t.
func (p *Program) StripRef(t TypeID) TypeID { return p.stripRef(t) }

// IsReference reports whether t is an lvalue or rvalue reference type.
func (p *Program) IsReference(t TypeID) bool {
	tt, ok := p.Types.Lookup(t)
	return ok && (tt.Kind == KindLValueRef || tt.Kind == KindRValueRef)
}

// IsSpecialMember reports whether fn is a constructor, destructor or a copy
// or move assignment operator.
func (p *Program) IsSpecialMember(fn DeclID) bool {
	d := p.Decl(fn)
	if d == nil || d.Kind != DeclFunction {
		return false
	}
	switch d.Method {
	case MethodConstructor, MethodDestructor:
		return true
	}
	return p.IsCopyAssignment(fn) || p.IsMoveAssignment(fn)
}

func (p *Program) constructorParam(fn DeclID) (TypeID, bool) {
	d := p.Decl(fn)
	if d == nil || d.Kind != DeclFunction {
		return NoTypeID, false
	}
	info, ok := p.Types.FnInfo(d.Type)
	if !ok || len(info.Params) != 1 {
		return NoTypeID, false
	}
	return info.Params[0], true
}

func (p *Program) refToOwnClass(fn DeclID, t TypeID, kind Kind) bool {
	tt, ok := p.Types.Lookup(t)
	if !ok || tt.Kind != kind {
		return false
	}
	return p.ClassOf(p.Types.Unqualified(tt.Elem)) == p.MustDecl(fn).Parent
}

// IsDefaultConstructor reports a constructor callable without arguments.
func (p *Program) IsDefaultConstructor(fn DeclID) bool {
	d := p.Decl(fn)
	if d == nil || d.Kind != DeclFunction || d.Method != MethodConstructor {
		return false
	}
	for _, param := range d.Params {
		if !p.MustDecl(param).Has(FlagDefaultArg) {
			return false
		}
	}
	info, _ := p.Types.FnInfo(d.Type)
	return len(d.Params) > 0 || len(info.Params) == 0
}

// IsCopyConstructor reports a constructor taking a const lvalue reference
// to its own class.
func (p *Program) IsCopyConstructor(fn DeclID) bool {
	t, ok := p.constructorParam(fn)
	return ok && p.MustDecl(fn).Method == MethodConstructor && p.refToOwnClass(fn, t, KindLValueRef)
}

// IsMoveConstructor reports a constructor taking an rvalue reference to its
// own class.
func (p *Program) IsMoveConstructor(fn DeclID) bool {
	t, ok := p.constructorParam(fn)
	return ok && p.MustDecl(fn).Method == MethodConstructor && p.refToOwnClass(fn, t, KindRValueRef)
}

// IsAssignment reports an operator= member.
func (p *Program) IsAssignment(fn DeclID) bool {
	d := p.Decl(fn)
	return d != nil && d.Kind == DeclFunction && d.Method == MethodOperator && d.Operator == OpEquals && p.IsMember(d)
}

// IsCopyAssignment reports operator= taking an lvalue reference to its class.
func (p *Program) IsCopyAssignment(fn DeclID) bool {
	t, ok := p.constructorParam(fn)
	return ok && p.IsAssignment(fn) && p.refToOwnClass(fn, t, KindLValueRef)
}

// IsMoveAssignment reports operator= taking an rvalue reference to its class.
func (p *Program) IsMoveAssignment(fn DeclID) bool {
	t, ok := p.constructorParam(fn)
	return ok && p.IsAssignment(fn) && p.refToOwnClass(fn, t, KindRValueRef)
}
