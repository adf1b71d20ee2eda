package meta_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/meta"
	"reflex/internal/refl"
	"reflex/internal/source"
)

func TestEnumeratorIterationIsRestartable(t *testing.T) {
	e := newEnv(t)
	p := e.p
	enum := p.AddEnum(p.Global(), "Color", e.b.Int, true)
	var want []entity.DeclID
	for i, name := range []string{"red", "green", "blue"} {
		want = append(want, p.AddEnumerator(enum, name, int64(i)))
	}
	et := e.typ(p.MustDecl(enum).Type)

	for range 2 {
		var got []entity.DeclID
		cur := e.must(meta.GetBeginEnumeratorDeclOf, et, e.null())
		for !cur.Is(refl.KindNull) {
			got = append(got, cur.Decl())
			cur = e.must(meta.GetNextEnumeratorDeclOf, e.r(cur), e.null())
		}
		require.Equal(t, want, got)
	}

	v := e.must(meta.ValueOf, e.decl(want[2]))
	require.True(t, v.Is(refl.KindValue))
	n, _ := v.Lower().AsInt()
	require.Equal(t, int64(2), n)
}

func TestSentinelEvaluatedOnlyWhenExhausted(t *testing.T) {
	e := newEnv(t)
	p := e.p
	enum := p.AddEnum(p.Global(), "One", e.b.Int, false)
	only := p.AddEnumerator(enum, "only", 1)
	bad := p.TemplateParamRef(0, e.b.Info)

	first := e.must(meta.GetBeginEnumeratorDeclOf, e.typ(p.MustDecl(enum).Type), bad)
	require.Equal(t, only, first.Decl())

	_, err := e.call(meta.GetNextEnumeratorDeclOf, e.r(first), bad)
	require.Error(t, err)
	require.Equal(t, diag.ReflDependentSplice, meta.CodeOf(err))
}

func TestMemberIterationAndDefaultInitializer(t *testing.T) {
	e := newEnv(t)
	p := e.p
	s := p.AddClass(p.Global(), "S", entity.KeyStruct)
	a := p.AddField(s, "a", e.b.Int, entity.AccessNone)
	b := p.AddField(s, "b", e.b.Int, entity.AccessNone)
	p.MustDecl(b).Init = p.IntLit(e.b.Int, 3)
	p.Complete(s)

	members := e.members(e.typ(p.MustDecl(s).Type))
	require.Len(t, members, 2)
	require.Equal(t, a, members[0].Decl())
	require.Equal(t, b, members[1].Decl())

	require.False(t, e.flag(meta.HasDefaultMemberInitializer, e.decl(a)))
	require.True(t, e.flag(meta.HasDefaultMemberInitializer, e.decl(b)))
	require.True(t, e.flag(meta.IsNonstaticDataMember, e.decl(a)))
	require.True(t, e.flag(meta.IsPublic, e.decl(a)))
	require.False(t, e.flag(meta.IsAccessSpecified, e.decl(a)))
}

func TestIncompleteClassMembersFail(t *testing.T) {
	e := newEnv(t)
	fwd := e.p.AddClass(e.p.Global(), "Fwd", entity.KeyStruct)
	_, err := e.call(meta.GetBeginMemberDeclOf, e.typ(e.p.MustDecl(fwd).Type), e.null())
	require.Equal(t, diag.ReflIncomplete, meta.CodeOf(err))
}

func TestDefineClassLayout(t *testing.T) {
	e := newEnv(t)
	p := e.p
	cls := p.AddClass(p.Global(), "Pair", entity.KeyStruct)
	ct := p.MustDecl(cls).Type
	require.False(t, e.flag(meta.IsCompleteType, e.typ(ct)))

	sa := e.spec(e.b.Int, "a")
	sb := e.spec(e.b.Int, "b")
	got := e.must(meta.DefineClass, e.typ(ct), e.r(sa), e.r(sb))
	require.True(t, refl.Equal(got, refl.MakeType(ct), p))
	require.True(t, e.flag(meta.IsCompleteType, e.typ(ct)))

	members := e.members(e.typ(ct))
	require.Len(t, members, 2)
	require.Equal(t, int64(8), e.num(meta.SizeOf, e.typ(ct)))
	require.Equal(t, int64(4), e.num(meta.AlignmentOf, e.typ(ct)))
	require.Equal(t, int64(0), e.num(meta.OffsetOf, e.r(members[0])))
	require.Equal(t, int64(4), e.num(meta.OffsetOf, e.r(members[1])))
	require.Equal(t, int64(32), e.num(meta.BitSizeOf, e.r(members[1])))
	require.Equal(t, int64(0), e.num(meta.BitOffsetOf, e.r(members[1])))

	name := e.must(meta.IdentifierOf, e.r(members[1]))
	require.Equal(t, "b", e.readString(name))

	_, err := e.call(meta.DefineClass, e.typ(ct), e.r(sa))
	require.Equal(t, diag.ReflAlreadyComplete, meta.CodeOf(err))
	require.Len(t, e.members(e.typ(ct)), 2)
}

func TestDefineClassBitFields(t *testing.T) {
	e := newEnv(t)
	p := e.p
	cls := p.AddClass(p.Global(), "Flags", entity.KeyStruct)
	ct := p.MustDecl(cls).Type
	bits := e.must(meta.DataMemberSpec,
		e.typ(e.b.Uint),
		p.BoolLit(true), p.StringLit("low"),
		p.BoolLit(false), e.size(0),
		p.BoolLit(true), e.size(3),
		p.BoolLit(false))
	more := e.must(meta.DataMemberSpec,
		e.typ(e.b.Uint),
		p.BoolLit(true), p.StringLit("high"),
		p.BoolLit(false), e.size(0),
		p.BoolLit(true), e.size(5),
		p.BoolLit(false))
	require.True(t, e.flag(meta.IsBitField, e.r(bits)))
	e.must(meta.DefineClass, e.typ(ct), e.r(bits), e.r(more))

	members := e.members(e.typ(ct))
	require.Len(t, members, 2)
	require.True(t, e.flag(meta.IsBitField, e.r(members[1])))
	require.Equal(t, int64(3), e.num(meta.BitSizeOf, e.r(members[0])))
	require.Equal(t, int64(0), e.num(meta.OffsetOf, e.r(members[1])))
	require.Equal(t, int64(3), e.num(meta.BitOffsetOf, e.r(members[1])))

	_, err := e.call(meta.AlignmentOf, e.r(members[0]))
	require.Equal(t, diag.ReflBitFieldAlignment, meta.CodeOf(err))
	_, err = e.call(meta.SizeOf, e.r(members[0]))
	require.Equal(t, diag.ReflKindMismatch, meta.CodeOf(err))
}

func TestDataMemberSpecValidation(t *testing.T) {
	e := newEnv(t)
	p := e.p
	ok := e.spec(e.b.Int, "x")
	require.True(t, e.flag(meta.IsDataMemberSpec, e.r(ok)))

	_, err := e.call(meta.DataMemberSpec,
		e.typ(e.b.Int),
		p.BoolLit(true), p.StringLit("x"),
		p.BoolLit(false), e.size(0),
		p.BoolLit(true), e.size(0),
		p.BoolLit(false))
	require.Equal(t, diag.ReflBadMemberSpec, meta.CodeOf(err))

	_, err = e.call(meta.DataMemberSpec,
		e.typ(e.b.Int),
		p.BoolLit(true), p.StringLit("class"),
		p.BoolLit(false), e.size(0),
		p.BoolLit(false), e.size(0),
		p.BoolLit(false))
	require.Equal(t, diag.ReflInvalidIdentifier, meta.CodeOf(err))

	fwd := p.AddClass(p.Global(), "Fwd", entity.KeyStruct)
	_, err = e.call(meta.DataMemberSpec,
		e.typ(p.MustDecl(fwd).Type),
		p.BoolLit(true), p.StringLit("f"),
		p.BoolLit(false), e.size(0),
		p.BoolLit(false), e.size(0),
		p.BoolLit(false))
	require.Equal(t, diag.ReflIncomplete, meta.CodeOf(err))
}

func TestValidIdentifier(t *testing.T) {
	for name, want := range map[string]bool{
		"x":      true,
		"_tmp9":  true,
		"größe":  true,
		"9lives": false,
		"":       false,
		"a-b":    false,
		"int":    false,
	} {
		require.Equal(t, want, meta.ValidIdentifier(name), name)
	}
}

func TestBaseSpecifierReflection(t *testing.T) {
	e := newEnv(t)
	p := e.p
	base := p.AddClass(p.Global(), "B", entity.KeyStruct)
	p.AddField(base, "x", e.b.Int, entity.AccessNone)
	p.Complete(base)
	derived := p.AddClass(p.Global(), "D", entity.KeyClass)
	p.AddBase(derived, p.MustDecl(base).Type, entity.AccessNone, true)
	p.Complete(derived)
	dt := e.typ(p.MustDecl(derived).Type)

	bs := e.must(meta.GetIthBaseOf, dt, e.size(0), e.null())
	require.True(t, bs.Is(refl.KindBase))
	require.True(t, e.flag(meta.IsBase, e.r(bs)))
	require.False(t, e.flag(meta.IsType, e.r(bs)))
	require.True(t, e.flag(meta.IsPrivate, e.r(bs)))
	require.False(t, e.flag(meta.IsAccessSpecified, e.r(bs)))
	require.True(t, e.flag(meta.IsVirtual, e.r(bs)))

	ty := e.must(meta.TypeOf, e.r(bs))
	require.Equal(t, p.MustDecl(base).Type, ty.Type())
	parent := e.must(meta.ParentOf, e.r(bs))
	require.Equal(t, p.MustDecl(derived).Type, parent.Type())

	end := e.must(meta.GetIthBaseOf, dt, e.size(1), e.null())
	require.True(t, end.Is(refl.KindNull))
}

func TestSizeOfCountsPadding(t *testing.T) {
	e := newEnv(t)
	p := e.p
	s := p.AddClass(p.Global(), "S", entity.KeyStruct)
	p.AddField(s, "c", e.b.Char, entity.AccessNone)
	p.AddField(s, "i", e.b.Int, entity.AccessNone)
	p.Complete(s)
	st := e.typ(p.MustDecl(s).Type)

	var fields int64
	for _, m := range e.members(st) {
		fields += e.num(meta.SizeOf, e.r(e.must(meta.TypeOf, e.r(m))))
	}
	require.Equal(t, int64(5), fields)
	require.Equal(t, int64(8), e.num(meta.SizeOf, st))
}

func TestSubstituteDeduplicates(t *testing.T) {
	e := newEnv(t)
	p := e.p
	tmpl, pattern := p.AddTemplate(p.Global(), "Box", entity.TemplateClass, []entity.TemplateParam{{Kind: entity.ParamType, Name: "T"}})
	p.AddField(pattern, "value", p.Types.Intern(entity.MakeTemplateParam(0)), entity.AccessNone)
	p.Complete(pattern)
	tr := e.r(refl.MakeTemplate(p, tmpl))

	first := e.must(meta.Substitute, tr, e.typ(e.b.Int))
	second := e.must(meta.Substitute, tr, e.typ(e.b.Int))
	require.Equal(t, refl.ProfileOf(first, p), refl.ProfileOf(second, p))
	other := e.must(meta.Substitute, tr, e.typ(e.b.Char))
	require.False(t, refl.Equal(first, other, p))

	require.True(t, e.flag(meta.HasTemplateArguments, e.r(first)))
	require.True(t, refl.Equal(e.must(meta.TemplateOf, e.r(first)), refl.MakeTemplate(p, tmpl), p))
	arg := e.must(meta.GetIthTemplateArgumentOf, e.r(first), e.size(0), e.null())
	require.Equal(t, e.b.Int, arg.Type())
	require.Equal(t, int64(4), e.num(meta.SizeOf, e.r(first)))

	require.True(t, e.flag(meta.CanSubstitute, tr, e.typ(e.b.Int)))
	require.False(t, e.flag(meta.CanSubstitute, tr))
	_, err := e.call(meta.Substitute, tr)
	require.Equal(t, diag.ReflSubstitutionFailed, meta.CodeOf(err))
}

func TestSubstituteSeesThroughAliases(t *testing.T) {
	e := newEnv(t)
	p := e.p
	tmpl, pattern := p.AddTemplate(p.Global(), "Box", entity.TemplateClass, []entity.TemplateParam{{Kind: entity.ParamType, Name: "T"}})
	p.AddField(pattern, "value", p.Types.Intern(entity.MakeTemplateParam(0)), entity.AccessNone)
	p.Complete(pattern)
	myInt := p.MustDecl(p.AddTypeAlias(p.Global(), "MyInt", e.b.Int)).Type
	tr := e.r(refl.MakeTemplate(p, tmpl))

	plain := e.must(meta.Substitute, tr, e.typ(e.b.Int))
	aliased := e.must(meta.Substitute, tr, e.typ(myInt))
	require.Equal(t, refl.ProfileOf(plain, p), refl.ProfileOf(aliased, p))
	require.True(t, refl.Equal(plain, aliased, p))

	ptrs := e.must(meta.Substitute, tr, e.typ(p.Types.Pointer(myInt)))
	require.True(t, refl.Equal(ptrs, e.must(meta.Substitute, tr, e.typ(p.Types.Pointer(e.b.Int))), p))
}

func TestSubstituteValueArgumentsByProfile(t *testing.T) {
	e := newEnv(t)
	p := e.p
	tmpl, pattern := p.AddTemplate(p.Global(), "Fixed", entity.TemplateClass, []entity.TemplateParam{{Kind: entity.ParamValue, Name: "N", Type: e.b.Int}})
	p.Complete(pattern)
	tr := e.r(refl.MakeTemplate(p, tmpl))

	three := refl.ValueOf(refl.Int(3), e.b.Int)
	a := e.must(meta.Substitute, tr, e.r(three))
	b := e.must(meta.Substitute, tr, e.r(refl.ValueOf(refl.Int(3), e.b.Int)))
	require.True(t, refl.Equal(a, b, p))

	arg := e.must(meta.GetIthTemplateArgumentOf, e.r(a), e.size(0), e.null())
	require.True(t, refl.Equal(arg, three, p))
}

func TestIsAccessibleFromContext(t *testing.T) {
	e := newEnv(t)
	p := e.p
	cls := p.AddClass(p.Global(), "Secret", entity.KeyClass)
	hidden := p.AddField(cls, "hidden", e.b.Int, entity.AccessNone)
	p.Complete(cls)

	require.True(t, e.flag(meta.IsPrivate, e.decl(hidden)))
	require.False(t, e.flag(meta.IsAccessible, e.decl(hidden)))
	require.True(t, e.flag(meta.IsAccessible, e.decl(hidden), e.typ(p.MustDecl(cls).Type)))

	require.False(t, e.flag(meta.IsAccessible, e.r(refl.ValueOf(refl.Int(1), e.b.Int))))
	require.False(t, e.flag(meta.IsAccessible, e.r(refl.MakeNull())))

	_, err := e.call(meta.IsAccessible, e.decl(hidden), e.r(refl.ValueOf(refl.Int(1), e.b.Int)))
	require.Equal(t, diag.ReflKindMismatch, meta.CodeOf(err))
}

func TestSourceLocationOf(t *testing.T) {
	e := newEnv(t)
	p := e.p
	file := p.Files.AddVirtual("main.cpp", []byte("int x;\n  int y;\n"))
	y := p.AddVariable(p.Global(), "y", e.b.Int, entity.NoExprID)
	p.SetSpan(y, source.Span{File: file, Start: 9, End: 14})

	res, err := e.call(meta.SourceLocationOf, e.decl(y))
	require.NoError(t, err)
	require.Equal(t, meta.ResultSourceLocation, res.Kind)
	require.Equal(t, uint32(2), res.Loc.Line)
	require.Equal(t, uint32(3), res.Loc.Column)
	require.Equal(t, "main.cpp", res.Loc.File)

	elems, ok := res.Value.Elems()
	require.True(t, ok)
	require.Len(t, elems, 3)
	line, _ := elems[0].AsInt()
	require.Equal(t, int64(2), line)
	require.True(t, e.s.SourceLocationType().IsValid())
}

func TestExtractAndReflectInvoke(t *testing.T) {
	e := newEnv(t)
	p := e.p
	sig := p.Types.Function(entity.FnInfo{Params: []entity.TypeID{e.b.Int}, Result: e.b.Int})
	sq := p.AddFunction(p.Global(), "square", sig)
	p.AddParam(sq, "x", e.b.Int)
	p.MustDecl(sq).Body = p.Binary(entity.BinMul, e.b.Int, p.ParamRef(0, e.b.Int), p.ParamRef(0, e.b.Int))

	out := e.must(meta.ReflectInvoke, e.decl(sq), e.size(0), e.r(refl.ValueOf(refl.Int(5), e.b.Int)))
	require.True(t, out.Is(refl.KindValue))
	n, _ := out.Lower().AsInt()
	require.Equal(t, int64(25), n)

	res, err := e.call(meta.Extract, e.typ(e.b.Int), e.r(out))
	require.NoError(t, err)
	require.Equal(t, meta.ResultSpliceFromArgument, res.Kind)
	n, _ = res.Value.AsInt()
	require.Equal(t, int64(25), n)

	_, err = e.call(meta.ReflectInvoke, e.decl(sq), e.size(0))
	require.Equal(t, diag.ReflInvokeFailed, meta.CodeOf(err))
}

func TestObjectOfAgreesWithReflectResult(t *testing.T) {
	e := newEnv(t)
	p := e.p
	g := e.constVar("g", e.b.Int, p.IntLit(e.b.Int, 11))

	obj := e.must(meta.ObjectOf, e.decl(g))
	require.True(t, obj.Is(refl.KindObject))
	viaResult := e.must(meta.ReflectResult, e.typ(p.Types.LValueRef(e.b.Int)), p.DeclRef(g))
	require.True(t, refl.Equal(obj, viaResult, p))

	val := e.must(meta.ValueOf, e.r(obj))
	require.True(t, refl.Equal(val, refl.ValueOf(refl.Int(11), e.b.Int), p))
	require.Equal(t, int64(4), e.num(meta.SizeOf, e.r(obj)))
	require.True(t, e.flag(meta.HasStaticStorageDuration, e.r(obj)))
}

func TestDefineStaticStringAndArray(t *testing.T) {
	e := newEnv(t)
	p := e.p
	first := e.must(meta.DefineStaticString, p.StringLit("hello"))
	second := e.must(meta.DefineStaticString, p.StringLit("hello"))
	require.True(t, refl.Equal(first, second, p))
	require.Equal(t, "hello", e.readString(first))

	arr := e.must(meta.DefineStaticArray, e.typ(e.b.Int), p.IntLit(e.b.Int, 1), p.IntLit(e.b.Int, 2))
	require.True(t, arr.Is(refl.KindObject))
	again := e.must(meta.DefineStaticArray, e.typ(e.b.Int), p.IntLit(e.b.Int, 1), p.IntLit(e.b.Int, 2))
	require.True(t, refl.Equal(arr, again, p))
	require.Equal(t, int64(8), e.num(meta.SizeOf, e.r(arr)))
}

func TestStaticObjectsReuseWithoutNewExpressions(t *testing.T) {
	e := newEnv(t)
	p := e.p
	str := e.s.StaticString("cached")
	n := p.Exprs.Len()
	require.Equal(t, str, e.s.StaticString("cached"))
	require.Equal(t, n, p.Exprs.Len())

	values := []refl.Value{refl.ValueOf(refl.Int(1), e.b.Int), refl.ValueOf(refl.Int(2), e.b.Int)}
	arr, err := e.s.StaticArray(e.b.Int, values)
	require.NoError(t, err)
	n, objects := p.Exprs.Len(), p.StaticObjects()
	again, err := e.s.StaticArray(e.b.Int, values)
	require.NoError(t, err)
	require.Equal(t, arr, again)
	require.Equal(t, n, p.Exprs.Len())
	require.Equal(t, objects, p.StaticObjects())
}

func TestIdentifierOfRejectsAnonymous(t *testing.T) {
	e := newEnv(t)
	anon := e.p.AddClass(e.p.Global(), "", entity.KeyStruct)
	e.p.Complete(anon)
	at := e.typ(e.p.MustDecl(anon).Type)
	require.False(t, e.flag(meta.HasIdentifier, at))
	_, err := e.call(meta.IdentifierOf, at)
	require.Equal(t, diag.ReflNoIdentifier, meta.CodeOf(err))
}

func TestDealiasFollowsChains(t *testing.T) {
	e := newEnv(t)
	p := e.p
	inner := p.AddTypeAlias(p.Global(), "Inner", e.b.Long)
	outer := p.AddTypeAlias(p.Global(), "Outer", p.MustDecl(inner).Type)
	got := e.must(meta.Dealias, e.typ(p.MustDecl(outer).Type))
	require.Equal(t, e.b.Long, got.Type())
	require.True(t, e.flag(meta.IsTypeAlias, e.typ(p.MustDecl(outer).Type)))
}

func TestAnnotationIteration(t *testing.T) {
	e := newEnv(t)
	p := e.p
	x := p.AddVariable(p.Global(), "x", e.b.Int, p.IntLit(e.b.Int, 0))
	first := p.Annotate(x, e.b.Int, p.IntLit(e.b.Int, 7))
	second := p.Annotate(x, e.b.Int, p.IntLit(e.b.Int, 9))
	bare := p.AddVariable(p.Global(), "y", e.b.Int, p.IntLit(e.b.Int, 0))

	var got []entity.AnnotID
	cur := e.must(meta.GetBeginAnnotationOf, e.decl(x), e.null())
	for !cur.Is(refl.KindNull) {
		require.True(t, e.flag(meta.IsAnnotation, e.r(cur)))
		got = append(got, cur.Annotation())
		cur = e.must(meta.GetNextAnnotationOf, e.r(cur), e.null())
	}
	require.Equal(t, []entity.AnnotID{first, second}, got)

	a := refl.MakeAnnotation(second)
	require.Equal(t, e.b.Int, e.must(meta.TypeOf, e.r(a)).Type())
	v := e.must(meta.ValueOf, e.r(a))
	require.True(t, v.Is(refl.KindValue))
	n, ok := v.Lower().AsInt()
	require.True(t, ok)
	require.Equal(t, int64(9), n)

	require.True(t, e.must(meta.GetBeginAnnotationOf, e.decl(bare), e.null()).Is(refl.KindNull))
	require.False(t, e.flag(meta.IsAnnotation, e.decl(x)))
}
