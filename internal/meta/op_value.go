package meta

import (
	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/refl"
)

func opExtract(c *call) (Result, error) {
	t, err := c.typeArg(0)
	if err != nil {
		return Result{}, err
	}
	r, err := c.reflection(1)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	wantRef := p.IsReference(t)
	notConvertible := func(from entity.TypeID) error {
		return errorf(diag.ReflKindMismatch, c.argSpan(1), "extract: %s of type %s cannot be read as %s",
			describe(r), typeName(p, from), typeName(p, t))
	}

	if fn, id, ok := c.s.function(r); ok {
		tt, _ := p.Types.Lookup(p.Types.Unqualified(p.Dealias(t)))
		switch {
		case tt.Kind == entity.KindPointer && p.Dealias(tt.Elem) == p.Dealias(fn.Type):
			return valueResult(refl.Pointer(refl.Ref{Decl: id})), nil
		case wantRef && p.Dealias(p.StripRef(t)) == p.Dealias(fn.Type):
			return valueResult(refl.LValue(refl.Ref{Decl: id})), nil
		}
		return Result{}, notConvertible(fn.Type)
	}

	if r.Kind() == refl.KindValue {
		if wantRef || !p.IsConvertible(r.LiftType(), t) {
			return Result{}, notConvertible(r.LiftType())
		}
		return valueResult(r.Lower()), nil
	}

	if d, id, ok := c.s.declWith(r, entity.DeclEnumerator); ok {
		et := p.MustDecl(d.Parent).Type
		if wantRef || !p.IsConvertible(et, t) {
			return Result{}, notConvertible(et)
		}
		v, err := c.s.ReadObject(refl.Ref{Decl: id}, c.argSpan(1))
		if err != nil {
			return Result{}, err
		}
		return valueResult(v), nil
	}

	ref, ok, err := c.objectRef(r)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, c.mismatch(1, r, "a value, object, variable or function")
	}
	ot := c.s.ObjectType(ref)
	if !p.IsConvertible(ot, t) {
		return Result{}, notConvertible(ot)
	}
	if wantRef {
		return valueResult(refl.LValue(ref)), nil
	}
	v, err := c.s.ReadObject(ref, c.argSpan(1))
	if err != nil {
		return Result{}, err
	}
	return valueResult(v), nil
}

func opReflectResult(c *call) (Result, error) {
	t, err := c.typeArg(0)
	if err != nil {
		return Result{}, err
	}
	if c.prog().IsReference(t) {
		v, err := c.glvalue(1)
		if err != nil {
			return Result{}, err
		}
		ref, ok := v.AsRef()
		if !ok {
			return Result{}, errorf(diag.ReflBadArgument, c.argSpan(1), "reflect_result: argument does not designate an object")
		}
		return reflResult(refl.ObjectOf(ref)), nil
	}
	v, err := c.value(1)
	if err != nil {
		return Result{}, err
	}
	return reflResult(c.s.valueAt(v, t)), nil
}

func opReflectInvoke(c *call) (Result, error) {
	target, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	nTmpl, err := c.index(1)
	if err != nil {
		return Result{}, err
	}
	if 2+nTmpl > c.n() {
		return Result{}, c.fail(diag.ReflInvokeFailed, "%d template arguments requested but only %d arguments given", nTmpl, c.n()-2)
	}
	tmplArgs := make([]entity.TemplateArg, 0, nTmpl)
	for i := 2; i < 2+nTmpl; i++ {
		v, err := c.reflection(i)
		if err != nil {
			return Result{}, err
		}
		a, err := c.s.TemplateArg(v, c.argSpan(i))
		if err != nil {
			return Result{}, err
		}
		tmplArgs = append(tmplArgs, a)
	}
	fnID, err := c.callee(target, tmplArgs)
	if err != nil {
		return Result{}, err
	}

	p := c.prog()
	fn := p.MustDecl(fnID)
	info, _ := p.Types.FnInfo(fn.Type)
	if !fn.Body.IsValid() {
		return Result{}, c.fail(diag.ReflInvokeFailed, "%q has no definition usable in constant evaluation", p.Name(fnID)).
			WithNote(fn.Span, "declared here")
	}
	if p.Dealias(info.Result) == p.Types.Builtins().Void {
		return Result{}, c.fail(diag.ReflInvokeFailed, "%q returns void", p.Name(fnID))
	}

	next := 2 + nTmpl
	receiver := entity.NoExprID
	if p.IsMember(fn) && !fn.Has(entity.FlagStatic) && fn.Method != entity.MethodConstructor {
		if next >= c.n() {
			return Result{}, c.fail(diag.ReflInvokeFailed, "non-static member %q needs an object argument", p.Name(fnID))
		}
		obj, err := c.reflection(next)
		if err != nil {
			return Result{}, err
		}
		ref, ok, err := c.objectRef(obj)
		if err != nil {
			return Result{}, err
		}
		if !ok || !p.IsConvertible(c.s.ObjectType(ref), p.MustDecl(fn.Parent).Type) {
			return Result{}, errorf(diag.ReflInvokeFailed, c.argSpan(next), "reflect_invoke: %s is not an object of class %s", describe(obj), p.Name(fn.Parent))
		}
		receiver = c.s.Constant(refl.LValue(ref), c.s.ObjectType(ref))
		next++
	}

	nargs := c.n() - next
	required := 0
	for i, param := range fn.Params {
		if pd := p.MustDecl(param); !pd.Has(entity.FlagDefaultArg) && !pd.Init.IsValid() {
			required = i + 1
		}
	}
	if nargs < required || (nargs > len(fn.Params) && !info.Variadic) {
		return Result{}, c.fail(diag.ReflInvokeFailed, "%q takes %d arguments, got %d", p.Name(fnID), len(fn.Params), nargs)
	}
	args := make([]entity.ExprID, 0, nargs)
	for i := next; i < c.n(); i++ {
		v, err := c.reflection(i)
		if err != nil {
			return Result{}, err
		}
		e, err := c.argument(i, v, fn, i-next)
		if err != nil {
			return Result{}, err
		}
		args = append(args, e)
	}

	call := p.WithSpan(p.Call(fnID, receiver, args...), c.span)
	if p.IsReference(info.Result) {
		v, err := c.s.Evaluate(call, false)
		if err != nil {
			return Result{}, err
		}
		ref, ok := v.AsRef()
		if !ok {
			return Result{}, c.fail(diag.ReflInvokeFailed, "%q did not return an object", p.Name(fnID))
		}
		return reflResult(refl.ObjectOf(ref)), nil
	}
	v, err := c.s.Evaluate(call, true)
	if err != nil {
		return Result{}, err
	}
	return reflResult(c.s.valueAt(v, info.Result)), nil
}

// callee resolves the function reflect_invoke calls.
func (c *call) callee(target refl.Value, tmplArgs []entity.TemplateArg) (entity.DeclID, error) {
	p := c.prog()
	if _, id, ok := c.s.function(target); ok {
		if len(tmplArgs) > 0 {
			return entity.NoDeclID, c.fail(diag.ReflInvokeFailed, "template arguments given for non-template %q", p.Name(id))
		}
		return id, nil
	}
	if t, ok := c.s.template(target); ok && t.Kind == entity.TemplateFunction {
		inst, err := p.Instantiate(target.Template(), tmplArgs)
		if err != nil {
			return entity.NoDeclID, c.fail(diag.ReflInvokeFailed, "%v", err)
		}
		return inst.Decl, nil
	}
	if target.Kind() == refl.KindValue && target.Depth() == 1 {
		if ref, ok := target.Lower().AsRef(); ok {
			if d := p.Decl(ref.Decl); d != nil && d.Kind == entity.DeclFunction && len(ref.Path) == 0 {
				return ref.Decl, nil
			}
		}
	}
	return entity.NoDeclID, c.mismatch(0, target, "a function, function template or function pointer value")
}

// argument turns reflection v into the expression passed for parameter
// index of fn.
func (c *call) argument(i int, v refl.Value, fn *entity.Decl, index int) (entity.ExprID, error) {
	p := c.prog()
	paramType := entity.NoTypeID
	if index < len(fn.Params) {
		paramType = p.MustDecl(fn.Params[index]).Type
	}
	check := func(from entity.TypeID) error {
		if paramType.IsValid() && !p.IsConvertible(from, paramType) {
			return errorf(diag.ReflInvokeFailed, c.argSpan(i), "reflect_invoke: argument of type %s does not match parameter of type %s",
				typeName(p, from), typeName(p, paramType))
		}
		return nil
	}
	if v.Kind() == refl.KindValue {
		if err := check(v.LiftType()); err != nil {
			return entity.NoExprID, err
		}
		return c.s.Materialize(v.Lower(), v.LiftType()), nil
	}
	ref, ok, err := c.objectRef(v)
	if err != nil {
		return entity.NoExprID, err
	}
	if !ok {
		return entity.NoExprID, errorf(diag.ReflInvokeFailed, c.argSpan(i), "reflect_invoke: %s is not a value or object", describe(v))
	}
	ot := c.s.ObjectType(ref)
	if err := check(ot); err != nil {
		return entity.NoExprID, err
	}
	return c.s.Constant(refl.LValue(ref), ot), nil
}
