package splice_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reflex/internal/consteval"
	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/meta"
	"reflex/internal/refl"
	"reflex/internal/source"
	"reflex/internal/splice"
	"reflex/internal/trace"
)

type fixture struct {
	p   *entity.Program
	s   *meta.Session
	ev  *consteval.Evaluator
	bag *diag.Bag
	b   *splice.Builder
	ty  entity.Builtins
}

func newFixture(t *testing.T, tracer trace.Tracer) *fixture {
	t.Helper()
	p := entity.NewProgram()
	bag := diag.NewBag(32)
	s, ev := consteval.NewSession(p, meta.Options{Reporter: diag.BagReporter{Bag: bag}, Tracer: tracer})
	return &fixture{p: p, s: s, ev: ev, bag: bag, b: splice.New(s), ty: p.Types.Builtins()}
}

func (f *fixture) reflect(t *testing.T, op entity.ReflOperand) entity.ExprID {
	t.Helper()
	e, err := f.b.BuildReflectOperator(op, source.Span{})
	require.NoError(t, err)
	return e
}

func (f *fixture) typ(t *testing.T, ty entity.TypeID) entity.ExprID {
	return f.reflect(t, entity.ReflOperand{Kind: entity.ReflOperandType, Type: ty})
}

func (f *fixture) decl(t *testing.T, d entity.DeclID) entity.ExprID {
	return f.reflect(t, entity.ReflOperand{Kind: entity.ReflOperandDecl, Decl: d})
}

func (f *fixture) box(t *testing.T) entity.TemplateID {
	p := f.p
	tmpl, pattern := p.AddTemplate(p.Global(), "Box", entity.TemplateClass, []entity.TemplateParam{{Kind: entity.ParamType, Name: "T"}})
	p.AddField(pattern, "value", p.Types.Intern(entity.MakeTemplateParam(0)), entity.AccessNone)
	p.Complete(pattern)
	return tmpl
}

func TestReflectOperatorNormalizesDeclarations(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	cls := p.AddClass(p.Global(), "S", entity.KeyStruct)
	p.Complete(cls)
	ns := p.AddNamespace(p.Global(), "lib")
	tmpl := f.box(t)

	v, err := f.ev.Run(f.decl(t, cls))
	require.NoError(t, err)
	require.True(t, v.Is(refl.KindType))
	require.Equal(t, p.MustDecl(cls).Type, v.Type())

	v, err = f.ev.Run(f.decl(t, ns))
	require.NoError(t, err)
	require.True(t, v.Is(refl.KindNamespace))

	v, err = f.ev.Run(f.decl(t, p.TemplateDecl(tmpl)))
	require.NoError(t, err)
	require.True(t, refl.Equal(v, refl.MakeTemplate(p, tmpl), p))

	_, err = f.b.BuildReflectOperator(entity.ReflOperand{Kind: entity.ReflOperandDecl, Decl: entity.DeclID(9999)}, source.Span{})
	require.Equal(t, diag.ReflBadArgument, meta.CodeOf(err))
	require.Equal(t, 1, f.bag.Len())
}

func TestMetafunctionCallTypes(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p

	n, err := f.b.BuildMetafunctionCall(meta.IsType, []entity.ExprID{f.typ(t, f.ty.Int)}, source.Span{})
	require.NoError(t, err)
	require.Equal(t, f.ty.Bool, n.Type)
	require.False(t, n.Dependent)
	v, err := f.ev.Run(n.Expr)
	require.NoError(t, err)
	got, _ := v.AsBool()
	require.True(t, got)

	n, err = f.b.BuildMetafunctionCall(meta.SizeOf, []entity.ExprID{f.typ(t, f.ty.Long)}, source.Span{})
	require.NoError(t, err)
	require.Equal(t, f.ty.Size, n.Type)

	lifted := p.Lift(p.IntLit(f.ty.Int, 9), f.ty.Int)
	n, err = f.b.BuildMetafunctionCall(meta.Extract, []entity.ExprID{f.typ(t, f.ty.Int), lifted}, source.Span{})
	require.NoError(t, err)
	require.Equal(t, f.ty.Int, n.Type)
	require.Equal(t, splice.PRValue, n.Category)
	v, err = f.ev.Run(n.Expr)
	require.NoError(t, err)
	i, _ := v.AsInt()
	require.Equal(t, int64(9), i)

	n, err = f.b.BuildMetafunctionCall(meta.Extract, []entity.ExprID{f.typ(t, p.Types.LValueRef(f.ty.Int)), lifted}, source.Span{})
	require.NoError(t, err)
	require.Equal(t, splice.LValue, n.Category)
}

func TestSpliceFromArgumentRequiresType(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	ns := p.AddNamespace(p.Global(), "lib")
	args := []entity.ExprID{f.decl(t, ns), p.Lift(p.IntLit(f.ty.Int, 1), f.ty.Int)}
	_, err := f.b.BuildMetafunctionCall(meta.Extract, args, source.Span{})
	require.Equal(t, diag.ReflNotAType, meta.CodeOf(err))
	require.Equal(t, 1, f.bag.Len())

	dep := []entity.ExprID{p.TemplateParamRef(0, f.ty.Info), p.Lift(p.IntLit(f.ty.Int, 1), f.ty.Int)}
	n, err := f.b.BuildMetafunctionCall(meta.Extract, dep, source.Span{})
	require.NoError(t, err)
	require.True(t, n.Dependent)
	require.False(t, n.Type.IsValid())
}

func TestMetafunctionCallValidation(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.b.BuildMetafunctionCall(meta.ID(5000), nil, source.Span{})
	require.Equal(t, diag.ReflUnknownMetafunction, meta.CodeOf(err))
	_, err = f.b.BuildMetafunctionCall(meta.TypeOf, nil, source.Span{})
	require.Equal(t, diag.ReflArgCount, meta.CodeOf(err))
	require.Equal(t, 2, f.bag.Len())
}

func TestTypeSplice(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	n, err := f.b.BuildSplice(splice.PosType, f.typ(t, f.ty.Char), nil, source.Span{})
	require.NoError(t, err)
	require.Equal(t, f.ty.Char, n.Type)

	tmpl := f.box(t)
	boxRefl := f.reflect(t, entity.ReflOperand{Kind: entity.ReflOperandTemplate, Template: tmpl})
	first, err := f.b.BuildSplice(splice.PosType, boxRefl, []entity.ExprID{f.typ(t, f.ty.Int)}, source.Span{})
	require.NoError(t, err)
	second, err := f.b.BuildSplice(splice.PosType, boxRefl, []entity.ExprID{f.typ(t, f.ty.Int)}, source.Span{})
	require.NoError(t, err)
	require.Equal(t, first.Type, second.Type)
	require.True(t, p.IsComplete(first.Type))

	_, err = f.b.BuildSplice(splice.PosType, boxRefl, nil, source.Span{})
	require.Equal(t, diag.ReflSubstitutionFailed, meta.CodeOf(err))
}

func TestExpressionSpliceCategories(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	g := p.AddVariable(p.Global(), "g", f.ty.Int, p.IntLit(f.ty.Int, 5))
	p.MustDecl(g).Flags |= entity.FlagConstexpr
	enum := p.AddEnum(p.Global(), "E", f.ty.Int, true)
	red := p.AddEnumerator(enum, "red", 2)
	sig := p.Types.Function(entity.FnInfo{Result: f.ty.Int})
	fn := p.AddFunction(p.Global(), "seven", sig)
	p.MustDecl(fn).Body = p.IntLit(f.ty.Int, 7)

	cases := []struct {
		name    string
		operand entity.ExprID
		cat     splice.Category
		typ     entity.TypeID
		want    int64
	}{
		{"value", p.Lift(p.IntLit(f.ty.Int, 42), f.ty.Int), splice.PRValue, f.ty.Int, 42},
		{"object", p.Lift(p.DeclRef(g), entity.NoTypeID), splice.LValue, f.ty.Int, 5},
		{"variable", f.decl(t, g), splice.LValue, f.ty.Int, 5},
		{"enumerator", f.decl(t, red), splice.PRValue, p.MustDecl(enum).Type, 2},
	}
	for _, tc := range cases {
		n, err := f.b.BuildSplice(splice.PosExpr, tc.operand, nil, source.Span{})
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.cat, n.Category, tc.name)
		require.Equal(t, tc.typ, n.Type, tc.name)
		v, err := f.ev.Run(n.Expr)
		require.NoError(t, err, tc.name)
		got, ok := v.AsInt()
		require.True(t, ok, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}

	n, err := f.b.BuildSplice(splice.PosExpr, f.decl(t, fn), nil, source.Span{})
	require.NoError(t, err)
	require.Equal(t, splice.LValue, n.Category)
	v, err := f.ev.Run(p.Call(fn, entity.NoExprID))
	require.NoError(t, err)
	seven, _ := v.AsInt()
	require.Equal(t, int64(7), seven)
	require.Zero(t, f.bag.Len())
}

func TestNonStaticMemberSplice(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	cls := p.AddClass(p.Global(), "S", entity.KeyStruct)
	m := p.AddField(cls, "m", f.ty.Int, entity.AccessNone)
	p.Complete(cls)
	_, err := f.b.BuildSplice(splice.PosExpr, f.decl(t, m), nil, source.Span{})
	require.Equal(t, diag.ReflSpliceNonStaticMember, meta.CodeOf(err))
	require.Equal(t, 1, f.bag.Len())
	require.Len(t, f.bag.Items()[0].Notes, 1)
}

func TestForbiddenKindsInEveryPosition(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	base := p.AddClass(p.Global(), "B", entity.KeyStruct)
	p.Complete(base)
	derived := p.AddClass(p.Global(), "D", entity.KeyStruct)
	bs := p.AddBase(derived, p.MustDecl(base).Type, entity.AccessPublic, false)
	p.Complete(derived)
	v := p.AddVariable(p.Global(), "v", f.ty.Int, p.IntLit(f.ty.Int, 1))
	an := p.Annotate(v, f.ty.Int, p.IntLit(f.ty.Int, 2))
	spec := p.AddSpec(entity.MemberSpec{Type: f.ty.Int, Name: p.Strings.Intern("q")})

	forbidden := []refl.Value{
		refl.MakeNull(),
		refl.MakeBase(bs),
		refl.MakeSpec(spec),
		refl.MakeAnnotation(an),
	}
	positions := []splice.Position{splice.PosType, splice.PosExpr, splice.PosNamespace, splice.PosTemplateName}
	for _, r := range forbidden {
		for _, pos := range positions {
			_, err := f.b.BuildSplice(pos, f.s.Materialize(r, f.ty.Info), nil, source.Span{})
			require.Equal(t, diag.ReflSplicePosition, meta.CodeOf(err), "%s as %s", r.Kind(), pos)
		}
	}
	require.Equal(t, len(forbidden)*len(positions), f.bag.Len())
}

func TestNamespaceAndTemplateNameSplices(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	ns := p.AddNamespace(p.Global(), "lib")
	tmpl := f.box(t)

	n, err := f.b.BuildSplice(splice.PosNamespace, f.decl(t, ns), nil, source.Span{})
	require.NoError(t, err)
	require.Equal(t, ns, n.Namespace)

	tr := f.reflect(t, entity.ReflOperand{Kind: entity.ReflOperandTemplate, Template: tmpl})
	n, err = f.b.BuildSplice(splice.PosTemplateName, tr, nil, source.Span{})
	require.NoError(t, err)
	require.Equal(t, p.CanonicalTemplate(tmpl), n.Template)

	_, err = f.b.BuildSplice(splice.PosNamespace, f.typ(t, f.ty.Int), nil, source.Span{})
	require.Equal(t, diag.ReflSplicePosition, meta.CodeOf(err))
	_, err = f.b.BuildSplice(splice.PosType, f.decl(t, ns), nil, source.Span{})
	require.Equal(t, diag.ReflSplicePosition, meta.CodeOf(err))
}

func TestDependentSpliceResolvesLater(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	operand := p.TemplateParamRef(0, f.ty.Info)
	n, err := f.b.BuildSplice(splice.PosType, operand, nil, source.Span{})
	require.NoError(t, err)
	require.True(t, n.Dependent)
	require.Equal(t, 1, f.b.Pending())
	require.Zero(t, f.bag.Len())

	same, err := f.b.Resolve(n, nil)
	require.NoError(t, err)
	require.True(t, same.Dependent)
	require.Equal(t, 1, f.b.Pending())

	got, err := f.b.Resolve(n, []entity.ExprID{f.typ(t, f.ty.Double)})
	require.NoError(t, err)
	require.False(t, got.Dependent)
	require.Equal(t, f.ty.Double, got.Type)
	require.Zero(t, f.b.Pending())
}

func TestDependentReflectedType(t *testing.T) {
	f := newFixture(t, nil)
	p := f.p
	param := p.Types.Pointer(p.Types.Intern(entity.MakeTemplateParam(0)))
	call := p.MetaCall(uint32(meta.Dealias), f.ty.Info, f.typ(t, param))
	n, err := f.b.BuildSplice(splice.PosType, call, nil, source.Span{})
	require.NoError(t, err)
	require.True(t, n.Dependent)
}

func TestSpliceTraceNestsMetafunctionCalls(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	f := newFixture(t, ring)
	p := f.p
	call := p.MetaCall(uint32(meta.Dealias), f.ty.Info, f.typ(t, f.ty.Int))
	_, err := f.b.BuildSplice(splice.PosType, call, nil, source.Span{})
	require.NoError(t, err)

	var spliceID, parent uint64
	for _, ev := range ring.Snapshot() {
		if ev.Kind != trace.KindSpanBegin {
			continue
		}
		switch ev.Name {
		case "splice:type":
			spliceID = ev.SpanID
		case "meta:dealias":
			parent = ev.ParentID
		}
	}
	require.NotZero(t, spliceID)
	require.Equal(t, spliceID, parent)
}
