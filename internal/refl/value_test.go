package refl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reflex/internal/entity"
	"reflex/internal/refl"
)

func fixture(t *testing.T) (*entity.Program, map[refl.Kind]refl.Value) {
	t.Helper()
	p := entity.NewProgram()
	b := p.Types.Builtins()
	ns := p.AddNamespace(p.Global(), "n")
	s := p.AddClass(ns, "S", entity.KeyStruct)
	p.Complete(s)
	d := p.AddClass(ns, "D", entity.KeyStruct)
	base := p.AddBase(d, p.MustDecl(s).Type, entity.AccessPublic, false)
	p.Complete(d)
	v := p.AddVariable(ns, "v", b.Int, p.IntLit(b.Int, 7))
	tmpl, _ := p.AddTemplate(ns, "Box", entity.TemplateClass, []entity.TemplateParam{{Kind: entity.ParamType}})
	spec := p.AddSpec(entity.MemberSpec{Type: b.Int, Name: p.Strings.Intern("x")})
	annot := p.Annotate(v, b.Int, p.IntLit(b.Int, 1))

	return p, map[refl.Kind]refl.Value{
		refl.KindNull:       refl.MakeNull(),
		refl.KindType:       refl.MakeType(b.Int),
		refl.KindDecl:       refl.MakeDecl(p, v),
		refl.KindTemplate:   refl.MakeTemplate(p, tmpl),
		refl.KindNamespace:  refl.MakeNamespace(p, ns),
		refl.KindBase:       refl.MakeBase(base),
		refl.KindSpec:       refl.MakeSpec(spec),
		refl.KindAnnotation: refl.MakeAnnotation(annot),
	}
}

func TestClassifyAtZeroReturnsConstructingTag(t *testing.T) {
	_, values := fixture(t)
	for kind, v := range values {
		require.Equal(t, kind, v.ClassifyAt(0), kind.String())
		require.Equal(t, kind, v.Kind(), kind.String())
		require.Equal(t, 0, v.Depth())
	}
}

func TestLowerLiftRoundTrip(t *testing.T) {
	p, values := fixture(t)
	info := p.Types.Builtins().Info
	for kind, v := range values {
		lifted := v.Lift(info)
		require.Equal(t, 1, lifted.Depth())
		require.Equal(t, v, lifted.Lower(), kind.String())
		twice := lifted.Lift(info)
		require.Equal(t, v, twice.Lower().Lower(), kind.String())
	}

	constant := refl.Int(42)
	require.Equal(t, constant, constant.Lift(p.Types.Builtins().Int).Lower())
}

func TestLowerAtDepthZeroPanics(t *testing.T) {
	require.Panics(t, func() { refl.MakeType(1).Lower() })
}

func TestAccessorOnMismatchedTagPanics(t *testing.T) {
	_, values := fixture(t)
	require.Panics(t, func() { values[refl.KindType].Decl() })
	require.Panics(t, func() { values[refl.KindDecl].Lift(entity.NoTypeID).Decl() })
}

func TestObjectValueClassification(t *testing.T) {
	p, _ := fixture(t)
	b := p.Types.Builtins()
	v := p.Members(p.Members(p.Global())[0])[2]

	obj := refl.ObjectOf(refl.Ref{Decl: v})
	require.Equal(t, refl.KindObject, obj.Kind())

	typedLValue := refl.LValue(refl.Ref{Decl: v}).Lift(b.Int)
	require.Equal(t, refl.KindObject, typedLValue.Kind())

	val := refl.ValueOf(refl.Int(7), b.Int)
	require.Equal(t, refl.KindValue, val.Kind())

	ptr := refl.Pointer(refl.Ref{Decl: v}).Lift(p.Types.Pointer(b.Int))
	require.Equal(t, refl.KindValue, ptr.Kind())

	// A reflection of a reflection is a value.
	nested := refl.MakeType(b.Int).Lift(b.Info)
	require.Equal(t, refl.KindValue, nested.Kind())
	require.Equal(t, refl.KindValue, obj.Lift(b.Info).Kind())
}

func TestProfileIgnoresLiftDepth(t *testing.T) {
	p, values := fixture(t)
	info := p.Types.Builtins().Info
	for kind, v := range values {
		want := refl.ProfileOf(v, p)
		require.Equal(t, want, refl.ProfileOf(v.Lift(info), p), kind.String())
		require.Equal(t, want, refl.ProfileOf(v.Lift(info).Lift(info), p), kind.String())
	}

	b := p.Types.Builtins()
	one := refl.ValueOf(refl.Int(1), b.Int)
	require.Equal(t, refl.ProfileOf(one, p), refl.ProfileOf(one.Lift(info), p))
	require.NotEqual(t, refl.ProfileOf(one, p), refl.ProfileOf(refl.ValueOf(refl.Int(1), b.Long), p))
}

func TestProfileOfAggregateKeepsElementTypes(t *testing.T) {
	p := entity.NewProgram()
	b := p.Types.Builtins()
	asInt := refl.Aggregate(refl.ValueOf(refl.Int(1), b.Int))
	asLong := refl.Aggregate(refl.ValueOf(refl.Int(1), b.Long))
	bare := refl.Aggregate(refl.Int(1))
	require.NotEqual(t, refl.ProfileOf(asInt, p), refl.ProfileOf(asLong, p))
	require.NotEqual(t, refl.ProfileOf(asInt, p), refl.ProfileOf(bare, p))

	info := b.Info
	relifted := refl.Aggregate(refl.ValueOf(refl.Int(1), b.Int).Lift(info))
	require.Equal(t, refl.ProfileOf(asInt, p), refl.ProfileOf(relifted, p))
}

func TestProfileUsesCanonicalIdentity(t *testing.T) {
	p := entity.NewProgram()
	first := p.AddClass(p.Global(), "C", entity.KeyStruct)
	again := p.Redeclare(first)
	require.NotEqual(t, first, again)
	require.True(t, refl.Equal(refl.MakeDecl(p, first), refl.MakeDecl(p, again), p))
}

func TestProfileOfSpecIsStructural(t *testing.T) {
	p := entity.NewProgram()
	b := p.Types.Builtins()
	a := p.AddSpec(entity.MemberSpec{Type: b.Int, Name: p.Strings.Intern("x")})
	c := p.AddSpec(entity.MemberSpec{Type: b.Int, Name: p.Strings.Intern("x")})
	d := p.AddSpec(entity.MemberSpec{Type: b.Int, Name: p.Strings.Intern("x"), HasWidth: true, Width: 3})
	require.True(t, refl.Equal(refl.MakeSpec(a), refl.MakeSpec(c), p))
	require.False(t, refl.Equal(refl.MakeSpec(a), refl.MakeSpec(d), p))
	require.Len(t, refl.ProfileOf(refl.MakeSpec(a), p).Digest(), 64)
}

func TestStringRoundTrip(t *testing.T) {
	s, ok := refl.String("hello").AsString()
	require.True(t, ok)
	require.Equal(t, "hello", s)
	_, ok = refl.Int(3).AsString()
	require.False(t, ok)
}
