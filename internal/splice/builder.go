// Package splice builds the syntax a front end produces for reflection
// constructs: the reflect operator, metafunction calls and splices of
// reflections back into types, expressions, namespaces and template names.
package splice

import (
	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/meta"
	"reflex/internal/refl"
	"reflex/internal/source"
	"reflex/internal/trace"
)

// Position is the syntactic position a splice appears in.
type Position uint8

const (
	PosType Position = iota
	PosExpr
	PosNamespace
	PosTemplateName
)

func (p Position) String() string {
	switch p {
	case PosType:
		return "type"
	case PosExpr:
		return "expression"
	case PosNamespace:
		return "namespace"
	case PosTemplateName:
		return "template-name"
	}
	return "unknown"
}

// Category is the value category of a spliced expression.
type Category uint8

const (
	PRValue Category = iota
	LValue
)

func (c Category) String() string {
	if c == LValue {
		return "lvalue"
	}
	return "prvalue"
}

// Node is what a builder hands back to the front end. Which fields are
// meaningful depends on Position; a Dependent node carries only Expr, a
// placeholder to be resolved once template arguments are known.
type Node struct {
	Position  Position
	Expr      entity.ExprID
	Type      entity.TypeID
	Category  Category
	Namespace entity.DeclID
	Template  entity.TemplateID
	Dependent bool
}

// pending is a splice deferred because its operand was value-dependent.
type pending struct {
	pos      Position
	operand  entity.ExprID
	tmplArgs []entity.ExprID
	span     source.Span
}

// Builder constructs reflection syntax against one session.
type Builder struct {
	s       *meta.Session
	p       *entity.Program
	pending map[entity.ExprID]pending
}

// New returns a builder over s.
func New(s *meta.Session) *Builder {
	return &Builder{s: s, p: s.Program, pending: make(map[entity.ExprID]pending)}
}

// Pending is the number of unresolved dependent splices.
func (b *Builder) Pending() int { return len(b.pending) }

func (b *Builder) report(err *meta.Error) error {
	return b.s.Report(err, err.Span)
}

// BuildReflectOperator builds ^operand. Declarations that name types,
// templates or namespaces are reflected as those entities.
func (b *Builder) BuildReflectOperator(op entity.ReflOperand, span source.Span) (entity.ExprID, error) {
	p := b.p
	switch op.Kind {
	case entity.ReflOperandNull:
	case entity.ReflOperandType:
		if _, ok := p.Types.Lookup(op.Type); !ok || !op.Type.IsValid() {
			return entity.NoExprID, b.report(meta.Errorf(diag.ReflBadArgument, span, "reflect operator names no type"))
		}
	case entity.ReflOperandTemplate:
		if p.Template(op.Template) == nil {
			return entity.NoExprID, b.report(meta.Errorf(diag.ReflBadArgument, span, "reflect operator names no template"))
		}
	case entity.ReflOperandDecl, entity.ReflOperandNamespace:
		d := p.Decl(op.Decl)
		if d == nil {
			return entity.NoExprID, b.report(meta.Errorf(diag.ReflBadArgument, span, "reflect operator names no declaration"))
		}
		switch d.Kind {
		case entity.DeclClass, entity.DeclEnum, entity.DeclTypeAlias:
			op = entity.ReflOperand{Kind: entity.ReflOperandType, Type: d.Type}
		case entity.DeclTemplate:
			op = entity.ReflOperand{Kind: entity.ReflOperandTemplate, Template: d.Template}
		case entity.DeclNamespace, entity.DeclNamespaceAlias:
			op = entity.ReflOperand{Kind: entity.ReflOperandNamespace, Decl: op.Decl}
		default:
			if op.Kind == entity.ReflOperandNamespace {
				return entity.NoExprID, b.report(meta.Errorf(diag.ReflBadArgument, span, "%q is not a namespace", p.Name(op.Decl)))
			}
		}
	default:
		return entity.NoExprID, b.report(meta.Errorf(diag.ReflBadArgument, span, "unknown reflect operand"))
	}
	return p.WithSpan(p.Reflect(op), span), nil
}

// BuildMetafunctionCall builds a call of metafunction id. The node's type
// comes from the entry's result kind; splice-from-argument calls take the
// type their first argument reflects, checked here unless that argument
// is value-dependent.
func (b *Builder) BuildMetafunctionCall(id meta.ID, args []entity.ExprID, span source.Span) (Node, error) {
	entry, ok := meta.Lookup(id)
	if !ok {
		return Node{}, b.report(meta.Errorf(diag.ReflUnknownMetafunction, span, "no metafunction with ID %d", id))
	}
	if !entry.Accepts(len(args)) {
		return Node{}, b.report(meta.Errorf(diag.ReflArgCount, span, "%s does not take %d arguments", entry.Name, len(args)))
	}
	dep := false
	for _, a := range args {
		if b.dependent(a) {
			dep = true
			break
		}
	}
	t := b.s.ResultType(entry)
	if entry.Result == meta.ResultSpliceFromArgument {
		if b.dependent(args[0]) {
			t = entity.NoTypeID
		} else {
			v, err := b.s.Evaluate(args[0], true)
			if err != nil {
				return Node{}, err
			}
			if !v.Is(refl.KindType) || v.Depth() != 0 {
				return Node{}, b.report(meta.Errorf(diag.ReflNotAType, b.spanOf(args[0], span), "%s: first argument must reflect a type", entry.Name))
			}
			t = v.Type()
		}
	}
	expr := b.p.WithSpan(b.p.MetaCall(uint32(id), t, args...), span)
	return Node{Position: PosExpr, Expr: expr, Type: t, Category: category(b.p, t), Dependent: dep}, nil
}

func category(p *entity.Program, t entity.TypeID) Category {
	if t.IsValid() && p.IsReference(t) {
		return LValue
	}
	return PRValue
}

func (b *Builder) spanOf(expr entity.ExprID, fallback source.Span) source.Span {
	if e := b.p.Exprs.Get(expr); e != nil && e.Span != (source.Span{}) {
		return e.Span
	}
	return fallback
}

// dependent reports whether expr refers to a template parameter, directly
// or through a reflected dependent type.
func (b *Builder) dependent(expr entity.ExprID) bool {
	e := b.p.Exprs.Get(expr)
	if e == nil {
		return false
	}
	switch e.Kind {
	case entity.ExprTemplateParam:
		return true
	case entity.ExprReflect:
		return e.Operand.Kind == entity.ReflOperandType && b.dependentType(e.Operand.Type)
	}
	if e.L.IsValid() && b.dependent(e.L) {
		return true
	}
	if e.R.IsValid() && b.dependent(e.R) {
		return true
	}
	for _, a := range e.Args {
		if b.dependent(a) {
			return true
		}
	}
	return false
}

func (b *Builder) dependentType(t entity.TypeID) bool {
	for range 64 {
		tt, ok := b.p.Types.Lookup(t)
		if !ok {
			return false
		}
		switch tt.Kind {
		case entity.KindTemplateParam:
			return true
		case entity.KindPointer, entity.KindLValueRef, entity.KindRValueRef, entity.KindArray:
			t = tt.Elem
		default:
			return false
		}
	}
	return false
}

// BuildSplice splices the reflection operand evaluates to into position
// pos. tmplArgs are reflections of template arguments for a template
// operand. A value-dependent operand yields a Dependent placeholder that
// Resolve re-runs later.
func (b *Builder) BuildSplice(pos Position, operand entity.ExprID, tmplArgs []entity.ExprID, span source.Span) (Node, error) {
	dep := b.dependent(operand)
	for _, a := range tmplArgs {
		dep = dep || b.dependent(a)
	}
	if dep {
		ph := b.p.WithSpan(b.p.Exprs.New(entity.Expr{Kind: entity.ExprSplice, L: operand, Args: tmplArgs}), span)
		b.pending[ph] = pending{pos: pos, operand: operand, tmplArgs: tmplArgs, span: span}
		return Node{Position: pos, Expr: ph, Dependent: true}, nil
	}

	sp := b.s.BeginSpan(trace.ScopeCall, "splice:"+pos.String())
	n, err := b.splice(pos, operand, tmplArgs, span)
	if err != nil {
		b.s.EndSpan(sp.Attr("code", meta.CodeOf(err).ID()), "error")
		return Node{}, err
	}
	b.s.EndSpan(sp, pos.String())
	return n, nil
}

// Resolve re-runs the dependent splice behind placeholder with the
// template parameters bound to args. The result may still be dependent
// when args leave parameters unbound.
func (b *Builder) Resolve(placeholder Node, args []entity.ExprID) (Node, error) {
	pd, ok := b.pending[placeholder.Expr]
	if !placeholder.Dependent || !ok {
		return placeholder, nil
	}
	operand := b.p.SubstituteExpr(pd.operand, args)
	dep := b.dependent(operand)
	tmplArgs := make([]entity.ExprID, len(pd.tmplArgs))
	for i, a := range pd.tmplArgs {
		tmplArgs[i] = b.p.SubstituteExpr(a, args)
		dep = dep || b.dependent(tmplArgs[i])
	}
	if dep {
		return placeholder, nil
	}
	delete(b.pending, placeholder.Expr)
	return b.BuildSplice(pd.pos, operand, tmplArgs, pd.span)
}

func (b *Builder) splice(pos Position, operand entity.ExprID, tmplArgs []entity.ExprID, span source.Span) (Node, error) {
	r, err := b.s.Evaluate(operand, true)
	if err != nil {
		return Node{}, err
	}
	if !r.IsReflection() {
		return Node{}, b.report(meta.Errorf(diag.ReflNotConstant, span, "splice operand is not a reflection"))
	}
	switch r.Kind() {
	case refl.KindNull, refl.KindBase, refl.KindSpec, refl.KindAnnotation:
		return Node{}, b.forbidden(pos, r, span)
	}
	if len(tmplArgs) > 0 && r.Kind() != refl.KindTemplate {
		return Node{}, b.report(meta.Errorf(diag.ReflSplicePosition, span, "template arguments given for a %s reflection", r.Kind()))
	}
	switch pos {
	case PosType:
		return b.spliceType(r, tmplArgs, span)
	case PosExpr:
		return b.spliceExpr(r, tmplArgs, span)
	case PosNamespace:
		if r.Kind() == refl.KindNamespace {
			return Node{Position: pos, Namespace: r.Namespace()}, nil
		}
	case PosTemplateName:
		if r.Kind() == refl.KindTemplate && len(tmplArgs) == 0 {
			return Node{Position: pos, Template: r.Template()}, nil
		}
	}
	return Node{}, b.forbidden(pos, r, span)
}

func (b *Builder) forbidden(pos Position, r refl.Value, span source.Span) error {
	return b.report(meta.Errorf(diag.ReflSplicePosition, span, "%s cannot be spliced as a %s", describe(r), pos))
}

func describe(r refl.Value) string {
	if r.Depth() > 1 {
		return "a nested reflection"
	}
	return "a " + r.Kind().String() + " reflection"
}

func (b *Builder) spliceType(r refl.Value, tmplArgs []entity.ExprID, span source.Span) (Node, error) {
	switch r.Kind() {
	case refl.KindType:
		return Node{Position: PosType, Type: r.Type()}, nil
	case refl.KindTemplate:
		t := b.p.Template(r.Template())
		if t.Kind != entity.TemplateClass && t.Kind != entity.TemplateAlias {
			break
		}
		inst, err := b.specialize(r.Template(), tmplArgs, span)
		if err != nil {
			return Node{}, err
		}
		return Node{Position: PosType, Type: inst.Type()}, nil
	}
	return Node{}, b.forbidden(PosType, r, span)
}

func (b *Builder) spliceExpr(r refl.Value, tmplArgs []entity.ExprID, span source.Span) (Node, error) {
	p, s := b.p, b.s
	switch r.Kind() {
	case refl.KindObject:
		ref, _ := r.LowerAll().AsRef()
		t := s.ObjectType(ref)
		if lt := r.LiftType(); lt.IsValid() {
			t = lt
		}
		return Node{Position: PosExpr, Expr: p.WithSpan(s.Constant(refl.LValue(ref), t), span), Type: t, Category: LValue}, nil
	case refl.KindValue:
		t := r.LiftType()
		return Node{Position: PosExpr, Expr: p.WithSpan(s.Materialize(r.Lower(), t), span), Type: t, Category: PRValue}, nil
	case refl.KindDecl:
		return b.declExpr(r.Decl(), span)
	case refl.KindTemplate:
		t := p.Template(r.Template())
		if t.Kind == entity.TemplateClass || t.Kind == entity.TemplateAlias {
			break
		}
		inst, err := b.specialize(r.Template(), tmplArgs, span)
		if err != nil {
			return Node{}, err
		}
		if inst.Is(refl.KindValue) {
			return b.spliceExpr(inst, nil, span)
		}
		return b.declExpr(inst.Decl(), span)
	}
	return Node{}, b.forbidden(PosExpr, r, span)
}

// declExpr names declaration d as an expression.
func (b *Builder) declExpr(d entity.DeclID, span source.Span) (Node, error) {
	p := b.p
	decl := p.MustDecl(d)
	switch decl.Kind {
	case entity.DeclVariable, entity.DeclBinding, entity.DeclParam:
		return Node{Position: PosExpr, Expr: p.WithSpan(p.DeclRef(d), span), Type: p.StripRef(decl.Type), Category: LValue}, nil
	case entity.DeclEnumerator:
		return Node{Position: PosExpr, Expr: p.WithSpan(p.DeclRef(d), span), Type: p.MustDecl(decl.Parent).Type, Category: PRValue}, nil
	case entity.DeclField:
		return Node{}, b.nonStatic(d, span)
	case entity.DeclFunction:
		if p.IsMember(decl) && !decl.Has(entity.FlagStatic) && decl.Method != entity.MethodConstructor {
			return Node{}, b.nonStatic(d, span)
		}
		return Node{Position: PosExpr, Expr: p.WithSpan(p.DeclRef(d), span), Type: decl.Type, Category: LValue}, nil
	}
	return Node{}, b.report(meta.Errorf(diag.ReflSplicePosition, span, "%s %q cannot be spliced as an expression", decl.Kind, p.Name(d)))
}

func (b *Builder) nonStatic(d entity.DeclID, span source.Span) error {
	return b.report(meta.Errorf(diag.ReflSpliceNonStaticMember, span, "splice of non-static member %q needs an object", b.p.Name(d)).
		WithNote(b.p.MustDecl(d).Span, "member declared here"))
}

// specialize evaluates the template argument reflections and substitutes
// them into tmpl.
func (b *Builder) specialize(tmpl entity.TemplateID, tmplArgs []entity.ExprID, span source.Span) (refl.Value, error) {
	args := make([]entity.TemplateArg, 0, len(tmplArgs))
	for _, a := range tmplArgs {
		v, err := b.s.Evaluate(a, true)
		if err != nil {
			return refl.Value{}, err
		}
		if !v.IsReflection() {
			return refl.Value{}, b.report(meta.Errorf(diag.ReflNotConstant, b.spanOf(a, span), "template argument is not a reflection"))
		}
		ta, err := b.s.TemplateArg(v, b.spanOf(a, span))
		if err != nil {
			return refl.Value{}, b.s.Report(err, span)
		}
		args = append(args, ta)
	}
	v, err := b.s.Substitute(tmpl, args)
	if err != nil {
		return refl.Value{}, b.report(meta.Errorf(diag.ReflSubstitutionFailed, span, "%s: %v", b.p.TemplateName(tmpl), err))
	}
	return v, nil
}
