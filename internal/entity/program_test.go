package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMembersSkipNonIdentityDeclarations(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	s := p.AddClass(p.Global(), "S", KeyStruct)
	a := p.AddField(s, "a", b.Int, AccessNone)
	p.AddAccessSpec(s, AccessPrivate)
	p.AddStaticAssert(s)
	f := p.AddMethod(s, "f", MethodOrdinary, p.Types.Function(FnInfo{Result: b.Void}), AccessNone)
	p.Redeclare(f)
	p.AddUsing(s, a)
	c := p.AddField(s, "c", b.Int, AccessNone)
	p.Complete(s)

	require.Equal(t, []DeclID{a, f, c}, p.Members(s))
	require.Equal(t, AccessPublic, p.MustDecl(a).Access)
	require.False(t, p.MustDecl(a).Has(FlagAccessWritten))
	require.Equal(t, AccessPrivate, p.MustDecl(c).Access)
	require.True(t, p.MustDecl(c).Has(FlagAccessWritten))
}

func TestNextMemberIsRestartable(t *testing.T) {
	p := NewProgram()
	ns := p.AddNamespace(p.Global(), "n")
	var want []DeclID
	for _, name := range []string{"x", "y", "z"} {
		want = append(want, p.AddVariable(ns, name, p.Types.Builtins().Int, NoExprID))
	}
	for range 3 {
		require.Equal(t, want, p.Members(ns))
	}
	require.Equal(t, NoDeclID, p.NextMember(ns, want[2]))
}

func TestInstantiateDeduplicates(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	tmpl, pattern := p.AddTemplate(p.Global(), "Box", TemplateClass, []TemplateParam{{Kind: ParamType, Name: "T"}})
	p.AddField(pattern, "value", p.Types.Intern(MakeTemplateParam(0)), AccessNone)
	p.Complete(pattern)

	args := []TemplateArg{{Kind: ArgType, Type: b.Int}}
	first, err := p.Instantiate(tmpl, args)
	require.NoError(t, err)
	second, err := p.Instantiate(tmpl, []TemplateArg{{Kind: ArgType, Type: b.Int}})
	require.NoError(t, err)
	require.Equal(t, first, second)

	fields := p.Fields(first.Decl)
	require.Len(t, fields, 1)
	require.Equal(t, b.Int, p.MustDecl(fields[0]).Type)
	require.True(t, p.IsComplete(first.Type))

	got, gotArgs, ok := p.SpecializationOf(first.Decl)
	require.True(t, ok)
	require.Equal(t, tmpl, got)
	require.Equal(t, args, gotArgs)

	other, err := p.Instantiate(tmpl, []TemplateArg{{Kind: ArgType, Type: b.Char}})
	require.NoError(t, err)
	require.NotEqual(t, first.Decl, other.Decl)
}

func TestInstantiateSeesThroughAliases(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	tmpl, pattern := p.AddTemplate(p.Global(), "Box", TemplateClass, []TemplateParam{{Kind: ParamType, Name: "T"}})
	p.AddField(pattern, "value", p.Types.Intern(MakeTemplateParam(0)), AccessNone)
	p.Complete(pattern)
	myInt := p.MustDecl(p.AddTypeAlias(p.Global(), "MyInt", b.Int)).Type
	require.Equal(t, b.Int, p.CanonicalType(myInt))
	require.Equal(t, p.Types.Pointer(b.Int), p.CanonicalType(p.Types.Pointer(myInt)))

	plain, err := p.Instantiate(tmpl, []TemplateArg{{Kind: ArgType, Type: b.Int}})
	require.NoError(t, err)
	aliased, err := p.Instantiate(tmpl, []TemplateArg{{Kind: ArgType, Type: myInt}})
	require.NoError(t, err)
	require.Equal(t, plain, aliased)

	_, args, ok := p.SpecializationOf(aliased.Decl)
	require.True(t, ok)
	require.Equal(t, b.Int, args[0].Type)
}

func TestCheckArgsRejectsMismatch(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	tmpl, _ := p.AddTemplate(p.Global(), "Fixed", TemplateClass, []TemplateParam{{Kind: ParamValue, Name: "N", Type: b.Int}})

	err := p.CheckArgs(tmpl, []TemplateArg{{Kind: ArgType, Type: b.Int}})
	var argErr *ArgError
	require.ErrorAs(t, err, &argErr)
	require.Equal(t, 0, argErr.Index)
	require.ErrorIs(t, err, ErrArgKind)

	err = p.CheckArgs(tmpl, nil)
	require.ErrorIs(t, err, ErrArgCount)

	require.NoError(t, p.CheckArgs(tmpl, []TemplateArg{{Kind: ArgValue, Type: b.Int, Value: p.IntLit(b.Int, 4), Key: "4"}}))
}

func TestConceptSatisfaction(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	tmpl, pattern := p.AddTemplate(p.Global(), "Integral", TemplateConcept, []TemplateParam{{Kind: ParamType, Name: "T"}})
	require.Equal(t, NoDeclID, pattern)
	p.Template(tmpl).Constraint = func(p *Program, args []TemplateArg) bool {
		return p.IsIntegral(args[0].Type)
	}
	inst, err := p.Instantiate(tmpl, []TemplateArg{{Kind: ArgType, Type: b.Int}})
	require.NoError(t, err)
	require.True(t, inst.Satisfied)
	inst, err = p.Instantiate(tmpl, []TemplateArg{{Kind: ArgType, Type: b.Double}})
	require.NoError(t, err)
	require.False(t, inst.Satisfied)
}

func TestCompleteClassIsDurable(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	c := p.AddClass(p.Global(), "C", KeyStruct)
	x := p.AddSpec(MemberSpec{Type: b.Int, Name: p.Strings.Intern("x")})
	pad := p.AddSpec(MemberSpec{Type: b.Int, HasWidth: true})

	require.NoError(t, p.CompleteClass(c, []SpecID{x, pad}))
	fields := p.Fields(c)
	require.Len(t, fields, 2)
	require.Equal(t, "x", p.Name(fields[0]))
	require.True(t, p.MustDecl(fields[1]).Has(FlagBitField))
	require.Equal(t, "", p.Name(fields[1]))

	err := p.CompleteClass(c, []SpecID{x})
	require.ErrorIs(t, err, ErrAlreadyComplete)
	require.Len(t, p.Fields(c), 2)
}

func TestCompleteClassLeavesClassUntouchedOnFailure(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	c := p.AddClass(p.Global(), "C", KeyStruct)
	good := p.AddSpec(MemberSpec{Type: b.Int, Name: p.Strings.Intern("a")})
	bad := p.AddSpec(MemberSpec{Type: b.Double, Name: p.Strings.Intern("b"), HasWidth: true, Width: 3})

	err := p.CompleteClass(c, []SpecID{good, bad})
	require.True(t, errors.Is(err, ErrInvalidMember))
	require.Empty(t, p.Fields(c))
	require.False(t, p.IsComplete(p.MustDecl(c).Type))
}

func TestLinkageAndStorage(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	g := p.AddVariable(p.Global(), "g", b.Int, NoExprID)
	anon := p.AddNamespace(p.Global(), "")
	hidden := p.AddVariable(anon, "h", b.Int, NoExprID)
	fn := p.AddFunction(p.Global(), "f", p.Types.Function(FnInfo{Result: b.Void, Params: []TypeID{b.Int}}))
	param := p.AddParam(fn, "n", b.Int)
	local := p.AddVariable(fn, "l", b.Int, NoExprID)
	tls := p.AddVariable(p.Global(), "t", b.Int, NoExprID)
	p.MustDecl(tls).Flags |= FlagThreadLocal

	require.Equal(t, LinkageExternal, p.Linkage(g))
	require.Equal(t, LinkageInternal, p.Linkage(hidden))
	require.Equal(t, LinkageNone, p.Linkage(local))
	require.Equal(t, LinkageNone, p.Linkage(param))

	require.Equal(t, StorageStatic, p.StorageDuration(g))
	require.Equal(t, StorageAutomatic, p.StorageDuration(local))
	require.Equal(t, StorageAutomatic, p.StorageDuration(param))
	require.Equal(t, StorageThread, p.StorageDuration(tls))
	require.Equal(t, StorageNone, p.StorageDuration(fn))
}

func TestAccessibility(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	base := p.AddClass(p.Global(), "Base", KeyClass)
	secret := p.AddField(base, "secret", b.Int, AccessNone)
	shared := p.AddField(base, "shared", b.Int, AccessProtected)
	p.Complete(base)
	derived := p.AddClass(p.Global(), "Derived", KeyStruct)
	p.AddBase(derived, p.MustDecl(base).Type, AccessPublic, false)
	p.Complete(derived)

	sd := p.MustDecl(secret)
	require.Equal(t, AccessPrivate, sd.Access)
	require.False(t, p.IsAccessible(sd.Access, base, p.Global()))
	require.True(t, p.IsAccessible(sd.Access, base, base))
	require.False(t, p.IsAccessible(sd.Access, base, derived))
	require.True(t, p.IsAccessible(p.MustDecl(shared).Access, base, derived))
	require.False(t, p.IsAccessible(p.MustDecl(shared).Access, base, p.Global()))
	require.True(t, p.IsDerivedFrom(derived, base))
	require.True(t, p.IsConvertible(p.MustDecl(derived).Type, p.MustDecl(base).Type))
}

func TestDefineStaticIsStable(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	first := p.DefineStatic("s1", b.Int, p.IntLit(b.Int, 1))
	again := p.DefineStatic("s1", b.Int, p.IntLit(b.Int, 1))
	require.Equal(t, first, again)
	require.Equal(t, 1, p.StaticObjects())
	found, ok := p.Static("s1")
	require.True(t, ok)
	require.Equal(t, first, found)
	_, ok = p.Static("s2")
	require.False(t, ok)
	require.Empty(t, p.Members(p.Global()))
	require.Equal(t, StorageStatic, p.StorageDuration(first))
}

func TestSubstituteExprReplacesParameters(t *testing.T) {
	p := NewProgram()
	b := p.Types.Builtins()
	sum := p.Binary(BinAdd, b.Int, p.TemplateParamRef(0, b.Int), p.IntLit(b.Int, 1))
	lit := p.IntLit(b.Int, 41)
	out := p.SubstituteExpr(sum, []ExprID{lit})
	require.NotEqual(t, sum, out)
	require.Equal(t, lit, p.Exprs.Get(out).L)

	plain := p.IntLit(b.Int, 2)
	require.Equal(t, plain, p.SubstituteExpr(plain, []ExprID{lit}))
}
