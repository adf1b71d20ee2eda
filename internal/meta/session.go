package meta

import (
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/layout"
	"reflex/internal/refl"
	"reflex/internal/source"
	"reflex/internal/trace"
)

// DefaultMaxDepth bounds nested evaluations when Options leaves it unset.
const DefaultMaxDepth = 512

// Evaluator is the constant evaluator the engine calls back into to
// evaluate metafunction arguments. It may re-enter the engine.
type Evaluator interface {
	Evaluate(expr entity.ExprID, asPRValue bool) (refl.Value, error)
}

// Options configure a Session.
type Options struct {
	Target   layout.Target
	MaxDepth int
	Reporter diag.Reporter
	Tracer   trace.Tracer
	// Context is the declaration access checks are made from. Defaults
	// to the global namespace.
	Context entity.DeclID
}

// Session is the state shared by one compilation's reflection machinery.
// It is not safe for concurrent use.
type Session struct {
	Program  *entity.Program
	Layout   *layout.LayoutEngine
	Eval     Evaluator
	Reporter diag.Reporter
	Tracer   trace.Tracer
	Context  entity.DeclID
	MaxDepth int

	depth     int
	spans     []uint64
	constants []refl.Value
	srcLoc    entity.TypeID
}

// NewSession binds a session to prog. The caller installs an Evaluator
// before evaluating anything.
func NewSession(prog *entity.Program, opts Options) *Session {
	if opts.Target.Triple == "" {
		opts.Target = layout.X86_64LinuxGNU()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	if !opts.Context.IsValid() {
		opts.Context = prog.Global()
	}
	return &Session{
		Program:  prog,
		Layout:   layout.New(opts.Target, prog),
		Reporter: opts.Reporter,
		Tracer:   opts.Tracer,
		Context:  opts.Context,
		MaxDepth: opts.MaxDepth,
	}
}

// Depth is the current evaluation nesting.
func (s *Session) Depth() int { return s.depth }

// Enter opens one level of nested evaluation.
func (s *Session) Enter(span source.Span) error {
	if s.depth >= s.MaxDepth {
		return errorf(diag.ReflDepthExceeded, span, "evaluation exceeds the nesting limit of %d", s.MaxDepth)
	}
	s.depth++
	return nil
}

// Leave closes the level opened by Enter.
func (s *Session) Leave() {
	if s.depth > 0 {
		s.depth--
	}
}

func (s *Session) parentSpan() uint64 {
	for i := len(s.spans) - 1; i >= 0; i-- {
		if s.spans[i] != 0 {
			return s.spans[i]
		}
	}
	return 0
}

// Evaluate evaluates expr through the installed Evaluator. A failure is
// reported only when no other evaluation encloses this one.
func (s *Session) Evaluate(expr entity.ExprID, asPRValue bool) (refl.Value, error) {
	span := s.exprSpan(expr)
	if s.Eval == nil {
		return refl.Value{}, s.fail(errorf(diag.ReflNotConstant, span, "no constant evaluator installed"), span)
	}
	if err := s.Enter(span); err != nil {
		return refl.Value{}, s.fail(err, span)
	}
	v, err := s.Eval.Evaluate(expr, asPRValue)
	s.Leave()
	if err != nil {
		return refl.Value{}, s.fail(err, span)
	}
	return v, nil
}

// Call runs the metafunction id on the given argument expressions.
func (s *Session) Call(id ID, args []entity.ExprID, span source.Span) (Result, error) {
	entry, ok := Lookup(id)
	if !ok {
		return Result{}, s.fail(errorf(diag.ReflUnknownMetafunction, span, "no metafunction with ID %d", id), span)
	}
	if !entry.Accepts(len(args)) {
		return Result{}, s.fail(arityError(entry, len(args), span), span)
	}
	if err := s.Enter(span); err != nil {
		return Result{}, s.fail(err, span)
	}
	sp := s.BeginSpan(trace.ScopeCall, "meta:"+entry.Name)
	res, err := s.dispatch(entry, args, span)
	s.Leave()
	if err != nil {
		s.EndSpan(sp.Attr("code", CodeOf(err).ID()), "error")
		return Result{}, s.fail(err, span)
	}
	s.EndSpan(sp.Attr("args", strconv.Itoa(len(args))), entry.Result.String())
	return res, nil
}

// BeginSpan opens a trace span nested under the innermost open one.
func (s *Session) BeginSpan(scope trace.Scope, name string) *trace.Span {
	sp := trace.Begin(s.Tracer, scope, name, s.parentSpan())
	s.spans = append(s.spans, sp.ID())
	return sp
}

// EndSpan closes sp, which must be the innermost open span.
func (s *Session) EndSpan(sp *trace.Span, detail string) {
	if n := len(s.spans); n > 0 {
		s.spans = s.spans[:n-1]
	}
	sp.End(detail)
}

// CallName is Call addressed by source name.
func (s *Session) CallName(name string, args []entity.ExprID, span source.Span) (Result, error) {
	entry, ok := LookupName(name)
	if !ok {
		return Result{}, s.fail(errorf(diag.ReflUnknownMetafunction, span, "no metafunction named %q", name), span)
	}
	return s.Call(entry.ID, args, span)
}

func arityError(e *Entry, n int, span source.Span) *Error {
	switch {
	case e.MaxArgs == Variadic:
		return errorf(diag.ReflArgCount, span, "%s expects at least %d arguments, got %d", e.Name, e.MinArgs, n)
	case e.MinArgs == e.MaxArgs:
		return errorf(diag.ReflArgCount, span, "%s expects %d arguments, got %d", e.Name, e.MinArgs, n)
	default:
		return errorf(diag.ReflArgCount, span, "%s expects %d to %d arguments, got %d", e.Name, e.MinArgs, e.MaxArgs, n)
	}
}

func (s *Session) dispatch(entry *Entry, args []entity.ExprID, span source.Span) (Result, error) {
	c := &call{s: s, entry: entry, args: args, span: span}
	res, err := entry.impl(c)
	var inapp errInapplicable
	if errors.As(err, &inapp) {
		if IsVacuousFalse(entry.ID) {
			return boolResult(false), nil
		}
		return Result{}, errorf(diag.ReflKindMismatch, span, "%s does not apply to %s", entry.Name, inapp.what)
	}
	if err != nil {
		return Result{}, err
	}
	res.Kind = entry.Result
	return res, nil
}

// Report surfaces err as a diagnostic unless an enclosing evaluation is
// still running. Front-end builders use it for failures they detect
// themselves.
func (s *Session) Report(err error, span source.Span) error { return s.fail(err, span) }

// fail reports err when the session is back at the outermost boundary and
// returns it unchanged.
func (s *Session) fail(err error, span source.Span) error {
	if s.depth > 0 || err == nil {
		return err
	}
	var e *Error
	if !errors.As(err, &e) {
		e = errorf(diag.ReflNotConstant, span, "%v", err)
	}
	if e.Span == (source.Span{}) {
		e.Span = span
	}
	b := diag.ReportError(s.Reporter, e.Code, e.Span, e.Msg)
	for _, n := range e.Notes {
		b.WithNote(n.Span, n.Msg)
	}
	b.Emit()
	return err
}

func (s *Session) exprSpan(expr entity.ExprID) source.Span {
	if e := s.Program.Exprs.Get(expr); e != nil {
		return e.Span
	}
	return source.Span{}
}

// Constant stores v in the constant pool and returns an expression of type
// t that evaluates to it.
func (s *Session) Constant(v refl.Value, t entity.TypeID) entity.ExprID {
	slot, err := safecast.Conv[uint32](len(s.constants))
	if err != nil {
		panic(fmt.Errorf("meta: constant pool overflow: %w", err))
	}
	s.constants = append(s.constants, v)
	return s.Program.Constant(slot, t)
}

// ConstantAt returns the pooled value at slot.
func (s *Session) ConstantAt(slot uint32) (refl.Value, bool) {
	if int(slot) >= len(s.constants) {
		return refl.Value{}, false
	}
	return s.constants[slot], true
}

// Materialize turns a constant of type t back into an expression.
// Integers, booleans and null pointers get literal spellings; everything
// else goes through the constant pool.
func (s *Session) Materialize(v refl.Value, t entity.TypeID) entity.ExprID {
	p := s.Program
	if v.Depth() == 0 {
		switch v.Rep() {
		case refl.RepInt:
			if p.IsIntegral(t) {
				i, _ := v.AsInt()
				return p.IntLit(t, i)
			}
		case refl.RepBool:
			b, _ := v.AsBool()
			return p.BoolLit(b)
		case refl.RepNullptr:
			return p.NullptrLit()
		}
	}
	if v.IsReflection() {
		t = p.Types.Builtins().Info
	}
	return s.Constant(v, t)
}

// usableInConstant reports whether the value of d may be read during
// constant evaluation.
func usableInConstant(p *entity.Program, d *entity.Decl) bool {
	if d.Kind == entity.DeclEnumerator {
		return true
	}
	if d.Has(entity.FlagConstexpr) || d.Has(entity.FlagStaticObject) {
		return true
	}
	tt, ok := p.Types.Lookup(d.Type)
	return ok && tt.Quals&entity.QualConst != 0
}

// ReadObject reads the value of the object r designates.
func (s *Session) ReadObject(r refl.Ref, span source.Span) (refl.Value, error) {
	p := s.Program
	d := p.Decl(r.Decl)
	if d == nil {
		return refl.Value{}, errorf(diag.ReflNotConstant, span, "reference to an unknown object")
	}
	switch d.Kind {
	case entity.DeclVariable, entity.DeclEnumerator, entity.DeclBinding:
	default:
		return refl.Value{}, errorf(diag.ReflNotConstant, span, "%s %q is not an object", d.Kind, p.Name(r.Decl))
	}
	if !usableInConstant(p, d) {
		return refl.Value{}, errorf(diag.ReflNotConstant, span, "%q is not usable in constant expressions", p.Name(r.Decl)).
			WithNote(d.Span, "declared here")
	}
	if !d.Init.IsValid() {
		return refl.Value{}, errorf(diag.ReflNotConstant, span, "%q has no initializer", p.Name(r.Decl))
	}
	v, err := s.Evaluate(d.Init, !p.IsReference(d.Type))
	if err != nil {
		return refl.Value{}, err
	}
	if p.IsReference(d.Type) {
		ref, ok := v.AsRef()
		if !ok {
			return refl.Value{}, errorf(diag.ReflNotConstant, span, "reference %q is not bound to an object", p.Name(r.Decl))
		}
		ref.Path = append(ref.Path, r.Path...)
		return s.ReadObject(ref, span)
	}
	for _, idx := range r.Path {
		elems, ok := v.Elems()
		if !ok || int(idx) >= len(elems) {
			return refl.Value{}, errorf(diag.ReflNotConstant, span, "subobject %d of %q is out of range", idx, p.Name(r.Decl))
		}
		v = elems[idx]
	}
	return v, nil
}

// ObjectType returns the type of the object r designates.
func (s *Session) ObjectType(r refl.Ref) entity.TypeID {
	p := s.Program
	d := p.Decl(r.Decl)
	if d == nil {
		return entity.NoTypeID
	}
	t := d.Type
	if d.Kind == entity.DeclEnumerator {
		t = p.MustDecl(d.Parent).Type
	}
	t = p.StripRef(t)
	for _, idx := range r.Path {
		tt, ok := p.Types.Lookup(p.Types.Unqualified(p.Dealias(t)))
		if !ok {
			return entity.NoTypeID
		}
		switch tt.Kind {
		case entity.KindArray:
			t = tt.Elem
		case entity.KindRecord:
			fields := p.Fields(tt.Decl)
			if int(idx) >= len(fields) {
				return entity.NoTypeID
			}
			t = p.MustDecl(fields[idx]).Type
		default:
			return entity.NoTypeID
		}
	}
	return t
}

// SourceLocationType is the class source_location_of results have.
func (s *Session) SourceLocationType() entity.TypeID {
	if s.srcLoc.IsValid() {
		return s.srcLoc
	}
	p := s.Program
	b := p.Types.Builtins()
	cls := p.AddClass(p.Global(), "source_location", entity.KeyStruct)
	p.MustDecl(cls).Flags |= entity.FlagImplicit
	p.AddField(cls, "line", b.Uint, entity.AccessNone)
	p.AddField(cls, "column", b.Uint, entity.AccessNone)
	p.AddField(cls, "file_name", p.Types.Pointer(p.Types.Qualified(b.Char, entity.QualConst)), entity.AccessNone)
	p.Complete(cls)
	s.srcLoc = p.MustDecl(cls).Type
	return s.srcLoc
}

// ResultType is the static type of a call to entry. Splice-from-argument
// entries have no static type; the caller derives it from the first
// argument.
func (s *Session) ResultType(entry *Entry) entity.TypeID {
	b := s.Program.Types.Builtins()
	switch entry.Result {
	case ResultBool:
		return b.Bool
	case ResultReflection:
		return b.Info
	case ResultSize:
		return b.Size
	case ResultSourceLocation:
		return s.SourceLocationType()
	}
	return entity.NoTypeID
}

func (s *Session) String() string {
	return fmt.Sprintf("meta.Session{depth=%d constants=%d}", s.depth, len(s.constants))
}
