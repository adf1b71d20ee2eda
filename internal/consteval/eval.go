package consteval

import (
	"slices"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/meta"
	"reflex/internal/refl"
	"reflex/internal/source"
	"reflex/internal/trace"
)

// Evaluator evaluates entity expressions to constants. It is installed as
// the session's meta.Evaluator and re-enters the session for metafunction
// calls and function bodies, so nesting is bounded by the session depth.
type Evaluator struct {
	s      *meta.Session
	prog   *entity.Program
	frames []*Frame
}

// New creates an evaluator for s and installs it.
func New(s *meta.Session) *Evaluator {
	ev := &Evaluator{s: s, prog: s.Program}
	s.Eval = ev
	return ev
}

// NewSession creates a session over prog with an evaluator installed.
func NewSession(prog *entity.Program, opts meta.Options) (*meta.Session, *Evaluator) {
	s := meta.NewSession(prog, opts)
	return s, New(s)
}

// Run evaluates expr as a top-level constant expression. Failures are
// reported once through the session reporter.
func (ev *Evaluator) Run(expr entity.ExprID) (refl.Value, error) {
	return ev.s.Evaluate(expr, true)
}

// Evaluate implements meta.Evaluator.
func (ev *Evaluator) Evaluate(expr entity.ExprID, asPRValue bool) (refl.Value, error) {
	return ev.eval(expr, asPRValue)
}

func notConstant(span source.Span, format string, args ...any) *meta.Error {
	return meta.Errorf(diag.ReflNotConstant, span, format, args...)
}

func (ev *Evaluator) frame() *Frame {
	if len(ev.frames) == 0 {
		return nil
	}
	return ev.frames[len(ev.frames)-1]
}

func (ev *Evaluator) eval(id entity.ExprID, asPRValue bool) (refl.Value, error) {
	p := ev.prog
	e := p.Exprs.Get(id)
	if e == nil {
		return refl.Value{}, notConstant(source.Span{}, "missing expression")
	}
	switch e.Kind {
	case entity.ExprIntLit:
		return refl.Int(e.Int), nil
	case entity.ExprBoolLit:
		return refl.Bool(e.Bool), nil
	case entity.ExprNullptr:
		return refl.Nullptr(), nil
	case entity.ExprStringLit:
		if asPRValue {
			return refl.String(e.Text), nil
		}
		return refl.LValue(refl.Ref{Decl: ev.s.StaticString(e.Text)}), nil
	case entity.ExprReflect:
		return ev.reflect(e.Operand), nil
	case entity.ExprDeclRef:
		return ev.declRef(e.Decl, asPRValue, e.Span)
	case entity.ExprParamRef:
		return ev.param(int(e.Index), asPRValue, e.Span)
	case entity.ExprThis:
		f := ev.frame()
		if f == nil {
			return refl.Value{}, notConstant(e.Span, "this used outside a member function")
		}
		ref, ok := f.Receiver()
		if !ok {
			return refl.Value{}, notConstant(e.Span, "this used in a function without an object")
		}
		if asPRValue {
			return refl.Pointer(ref), nil
		}
		return refl.LValue(ref), nil
	case entity.ExprMember:
		return ev.member(e, asPRValue)
	case entity.ExprBinary:
		return ev.binary(e)
	case entity.ExprCall:
		return ev.call(e, asPRValue)
	case entity.ExprMetaCall:
		return ev.metaCall(e, asPRValue)
	case entity.ExprInitList:
		return ev.initList(e)
	case entity.ExprTemplateParam:
		return refl.Value{}, meta.Errorf(diag.ReflDependentSplice, e.Span, "expression depends on template parameter %d", e.Index)
	case entity.ExprAddrOf:
		v, err := ev.eval(e.L, false)
		if err != nil {
			return refl.Value{}, err
		}
		ref, ok := v.AsRef()
		if !ok {
			return refl.Value{}, notConstant(e.Span, "cannot take the address of a temporary")
		}
		return refl.Pointer(ref), nil
	case entity.ExprLift:
		return ev.lift(e)
	case entity.ExprSplice:
		return ev.splice(e, asPRValue)
	case entity.ExprConstant:
		v, ok := ev.s.ConstantAt(e.Index)
		if !ok {
			return refl.Value{}, notConstant(e.Span, "constant slot %d is empty", e.Index)
		}
		return ev.settle(v, asPRValue, e.Span)
	}
	return refl.Value{}, notConstant(e.Span, "expression is not a constant expression")
}

// settle reads through an lvalue when a prvalue is wanted.
func (ev *Evaluator) settle(v refl.Value, asPRValue bool, span source.Span) (refl.Value, error) {
	if !asPRValue || v.Depth() != 0 || v.Rep() != refl.RepLValue {
		return v, nil
	}
	ref, _ := v.AsRef()
	if d := ev.prog.Decl(ref.Decl); d != nil && d.Kind == entity.DeclFunction {
		return refl.Pointer(ref), nil
	}
	return ev.s.ReadObject(ref, span)
}

func (ev *Evaluator) reflect(op entity.ReflOperand) refl.Value {
	p := ev.prog
	switch op.Kind {
	case entity.ReflOperandType:
		return refl.MakeType(op.Type)
	case entity.ReflOperandDecl:
		return refl.MakeDecl(p, op.Decl)
	case entity.ReflOperandTemplate:
		return refl.MakeTemplate(p, op.Template)
	case entity.ReflOperandNamespace:
		return refl.MakeNamespace(p, op.Decl)
	}
	return refl.MakeNull()
}

func (ev *Evaluator) declRef(id entity.DeclID, asPRValue bool, span source.Span) (refl.Value, error) {
	p := ev.prog
	d := p.Decl(id)
	if d == nil {
		return refl.Value{}, notConstant(span, "reference to an unknown declaration")
	}
	switch d.Kind {
	case entity.DeclFunction:
		if asPRValue {
			return refl.Pointer(refl.Ref{Decl: id}), nil
		}
		return refl.LValue(refl.Ref{Decl: id}), nil
	case entity.DeclEnumerator:
		return ev.s.ReadObject(refl.Ref{Decl: id}, span)
	case entity.DeclVariable, entity.DeclBinding:
		if asPRValue {
			return ev.s.ReadObject(refl.Ref{Decl: id}, span)
		}
		if !p.IsReference(d.Type) {
			return refl.LValue(refl.Ref{Decl: id}), nil
		}
		if !d.Init.IsValid() {
			return refl.Value{}, notConstant(span, "reference %q is not bound", p.Name(id))
		}
		return ev.s.Evaluate(d.Init, false)
	case entity.DeclParam:
		f := ev.frame()
		if f == nil || f.Fn != d.Parent {
			return refl.Value{}, notConstant(span, "parameter %q used outside its function", p.Name(id))
		}
		return ev.param(slices.Index(p.MustDecl(d.Parent).Params, id), asPRValue, span)
	case entity.DeclField:
		// Implicit member access inside a member function.
		if f := ev.frame(); f != nil {
			if ref, ok := f.Receiver(); ok && ev.s.ObjectType(ref).IsValid() {
				return ev.memberOf(refl.LValue(ref), id, asPRValue, span)
			}
		}
		return refl.Value{}, notConstant(span, "field %q used without an object", p.Name(id))
	}
	return refl.Value{}, notConstant(span, "%s %q is not a value", d.Kind, p.Name(id))
}

func (ev *Evaluator) param(index int, asPRValue bool, span source.Span) (refl.Value, error) {
	f := ev.frame()
	if f == nil || index < 0 || index >= len(f.Args) {
		return refl.Value{}, notConstant(span, "parameter %d used outside a function call", index)
	}
	return ev.settle(f.Args[index], asPRValue, span)
}

func (ev *Evaluator) member(e *entity.Expr, asPRValue bool) (refl.Value, error) {
	base, err := ev.eval(e.L, false)
	if err != nil {
		return refl.Value{}, err
	}
	return ev.memberOf(base, e.Decl, asPRValue, e.Span)
}

func (ev *Evaluator) memberOf(base refl.Value, field entity.DeclID, asPRValue bool, span source.Span) (refl.Value, error) {
	p := ev.prog
	fd := p.Decl(field)
	if fd == nil || fd.Kind != entity.DeclField {
		return refl.Value{}, notConstant(span, "member access to a non-field")
	}
	idx := slices.Index(p.Fields(fd.Parent), p.Canonical(field))
	if idx < 0 {
		return refl.Value{}, notConstant(span, "field %q is not part of its class", p.Name(field))
	}
	if ref, ok := base.AsRef(); ok {
		ref.Path = append(ref.Path, uint32(idx))
		return ev.settle(refl.LValue(ref), asPRValue, span)
	}
	elems, ok := base.Elems()
	if !ok || idx >= len(elems) {
		return refl.Value{}, notConstant(span, "member access on a non-object")
	}
	return elems[idx], nil
}

func (ev *Evaluator) binary(e *entity.Expr) (refl.Value, error) {
	if e.Op == entity.BinAnd || e.Op == entity.BinOr {
		l, err := ev.truth(e.L)
		if err != nil {
			return refl.Value{}, err
		}
		if (e.Op == entity.BinAnd && !l) || (e.Op == entity.BinOr && l) {
			return refl.Bool(l), nil
		}
		r, err := ev.truth(e.R)
		if err != nil {
			return refl.Value{}, err
		}
		return refl.Bool(r), nil
	}
	l, err := ev.eval(e.L, true)
	if err != nil {
		return refl.Value{}, err
	}
	r, err := ev.eval(e.R, true)
	if err != nil {
		return refl.Value{}, err
	}
	if e.Op == entity.BinEq || e.Op == entity.BinNe {
		eq := refl.Equal(l, r, ev.prog)
		if a, ok := l.AsInt(); ok {
			if b, ok := r.AsInt(); ok {
				eq = a == b
			}
		}
		return refl.Bool(eq == (e.Op == entity.BinEq)), nil
	}
	a, aok := l.AsInt()
	b, bok := r.AsInt()
	if !aok || !bok {
		return refl.Value{}, notConstant(e.Span, "operands are not integers")
	}
	var (
		res int64
		ok  = true
	)
	switch e.Op {
	case entity.BinAdd:
		res, ok = AddInt64Checked(a, b)
	case entity.BinSub:
		res, ok = SubInt64Checked(a, b)
	case entity.BinMul:
		res, ok = MulInt64Checked(a, b)
	case entity.BinDiv, entity.BinRem:
		if b == 0 {
			return refl.Value{}, notConstant(e.Span, "division by zero")
		}
		if b == -1 && a == -1<<63 {
			ok = false
			break
		}
		if e.Op == entity.BinDiv {
			res = a / b
		} else {
			res = a % b
		}
	case entity.BinLt:
		return refl.Bool(a < b), nil
	case entity.BinLe:
		return refl.Bool(a <= b), nil
	case entity.BinGt:
		return refl.Bool(a > b), nil
	case entity.BinGe:
		return refl.Bool(a >= b), nil
	default:
		return refl.Value{}, notConstant(e.Span, "unsupported operator")
	}
	if !ok || !fits(ev.prog, e.Type, res) {
		return refl.Value{}, notConstant(e.Span, "arithmetic overflow in constant expression")
	}
	return refl.Int(res), nil
}

func (ev *Evaluator) truth(id entity.ExprID) (bool, error) {
	v, err := ev.eval(id, true)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, notConstant(ev.prog.Exprs.Get(id).Span, "operand is not a boolean")
	}
	return b, nil
}

func (ev *Evaluator) call(e *entity.Expr, asPRValue bool) (refl.Value, error) {
	p := ev.prog
	fn := p.Decl(e.Decl)
	if fn == nil || fn.Kind != entity.DeclFunction {
		return refl.Value{}, notConstant(e.Span, "call of a non-function")
	}
	if !fn.Body.IsValid() {
		return refl.Value{}, notConstant(e.Span, "%q is not usable in constant expressions", p.Name(e.Decl)).
			WithNote(fn.Span, "declared here")
	}
	info, _ := p.Types.FnInfo(fn.Type)
	if len(e.Args) > len(fn.Params) && !info.Variadic {
		return refl.Value{}, notConstant(e.Span, "too many arguments in call to %q", p.Name(e.Decl))
	}

	frame := NewFrame(e.Decl, make([]refl.Value, len(fn.Params)), e.Span)
	if e.L.IsValid() {
		recv, err := ev.eval(e.L, false)
		if err != nil {
			return refl.Value{}, err
		}
		ref, ok := recv.AsRef()
		if !ok {
			return refl.Value{}, notConstant(e.Span, "member call on a temporary")
		}
		frame.WithReceiver(ref)
	}
	for i, param := range fn.Params {
		pd := p.MustDecl(param)
		arg := pd.Init
		if i < len(e.Args) {
			arg = e.Args[i]
		}
		if !arg.IsValid() {
			return refl.Value{}, notConstant(e.Span, "missing argument %d in call to %q", i, p.Name(e.Decl))
		}
		byRef := p.IsReference(pd.Type)
		v, err := ev.eval(arg, !byRef)
		if err != nil {
			return refl.Value{}, err
		}
		if _, ok := v.AsRef(); byRef && !ok {
			return refl.Value{}, notConstant(e.Span, "argument %d of %q does not designate an object", i, p.Name(e.Decl))
		}
		frame.Args[i] = v
	}

	sp := ev.s.BeginSpan(trace.ScopeEval, "call:"+p.QualifiedName(e.Decl))
	retRef := p.IsReference(info.Result)
	ev.frames = append(ev.frames, frame)
	v, err := ev.s.Evaluate(fn.Body, !retRef)
	ev.frames = ev.frames[:len(ev.frames)-1]
	if err != nil {
		ev.s.EndSpan(sp, "error")
		return refl.Value{}, err
	}
	ev.s.EndSpan(sp, "ok")
	if retRef {
		return ev.settle(v, asPRValue, e.Span)
	}
	return v, nil
}

func (ev *Evaluator) metaCall(e *entity.Expr, asPRValue bool) (refl.Value, error) {
	res, err := ev.s.Call(meta.ID(e.Index), e.Args, e.Span)
	if err != nil {
		return refl.Value{}, err
	}
	if res.Kind == meta.ResultSpliceFromArgument {
		return ev.settle(res.Value, asPRValue, e.Span)
	}
	return res.Value, nil
}

func (ev *Evaluator) initList(e *entity.Expr) (refl.Value, error) {
	p := ev.prog
	elems := make([]refl.Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := ev.eval(a, true)
		if err != nil {
			return refl.Value{}, err
		}
		elems = append(elems, v)
	}
	tt, ok := p.Types.Lookup(p.Types.Unqualified(p.Dealias(e.Type)))
	if !ok {
		return refl.Aggregate(elems...), nil
	}
	switch tt.Kind {
	case entity.KindRecord:
		fields := p.Fields(tt.Decl)
		if len(elems) > len(fields) {
			return refl.Value{}, notConstant(e.Span, "too many initializers for %s", p.TypeString(e.Type))
		}
		for _, f := range fields[len(elems):] {
			fd := p.MustDecl(f)
			if fd.Init.IsValid() {
				v, err := ev.eval(fd.Init, true)
				if err != nil {
					return refl.Value{}, err
				}
				elems = append(elems, v)
				continue
			}
			elems = append(elems, ev.zero(fd.Type))
		}
	case entity.KindArray:
		if len(elems) > int(tt.Count) {
			return refl.Value{}, notConstant(e.Span, "too many initializers for %s", p.TypeString(e.Type))
		}
		for len(elems) < int(tt.Count) {
			elems = append(elems, ev.zero(tt.Elem))
		}
	}
	return refl.Aggregate(elems...), nil
}

// zero is the value-initialized constant of t.
func (ev *Evaluator) zero(t entity.TypeID) refl.Value {
	p := ev.prog
	tt, ok := p.Types.Lookup(p.Types.Unqualified(p.Dealias(t)))
	if !ok {
		return refl.Value{}
	}
	switch tt.Kind {
	case entity.KindBool:
		return refl.Bool(false)
	case entity.KindPointer, entity.KindNullptr:
		return refl.Nullptr()
	case entity.KindInfo:
		return refl.MakeNull()
	case entity.KindArray:
		elems := make([]refl.Value, tt.Count)
		for i := range elems {
			elems[i] = ev.zero(tt.Elem)
		}
		return refl.Aggregate(elems...)
	case entity.KindRecord:
		fields := p.Fields(tt.Decl)
		elems := make([]refl.Value, len(fields))
		for i, f := range fields {
			elems[i] = ev.zero(p.MustDecl(f).Type)
		}
		return refl.Aggregate(elems...)
	}
	return refl.Int(0)
}

func (ev *Evaluator) lift(e *entity.Expr) (refl.Value, error) {
	if !e.Result.IsValid() {
		v, err := ev.eval(e.L, false)
		if err != nil {
			return refl.Value{}, err
		}
		ref, ok := v.AsRef()
		if !ok {
			return refl.Value{}, notConstant(e.Span, "operand does not designate an object")
		}
		return refl.ObjectOf(ref), nil
	}
	v, err := ev.eval(e.L, true)
	if err != nil {
		return refl.Value{}, err
	}
	return v.Lift(e.Result), nil
}

// splice evaluates an expression splice whose operand was not known when
// the expression was built.
func (ev *Evaluator) splice(e *entity.Expr, asPRValue bool) (refl.Value, error) {
	r, err := ev.eval(e.L, true)
	if err != nil {
		return refl.Value{}, err
	}
	if !r.IsReflection() {
		return refl.Value{}, meta.Errorf(diag.ReflBadArgument, e.Span, "splice operand is not a reflection")
	}
	switch r.Kind() {
	case refl.KindValue:
		return r.Lower(), nil
	case refl.KindObject:
		return ev.settle(r.Lower(), asPRValue, e.Span)
	case refl.KindDecl:
		d := ev.prog.MustDecl(r.Decl())
		switch d.Kind {
		case entity.DeclVariable, entity.DeclBinding, entity.DeclEnumerator, entity.DeclFunction:
			return ev.declRef(r.Decl(), asPRValue, e.Span)
		case entity.DeclField:
			return refl.Value{}, meta.Errorf(diag.ReflSpliceNonStaticMember, e.Span,
				"splice of non-static member %q needs an object", ev.prog.Name(r.Decl()))
		}
	}
	return refl.Value{}, meta.Errorf(diag.ReflSplicePosition, e.Span, "%s reflection cannot be spliced as an expression", r.Kind())
}
