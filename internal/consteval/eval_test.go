package consteval

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/meta"
	"reflex/internal/refl"
	"reflex/internal/source"
)

func newEval(t *testing.T, opts meta.Options) (*entity.Program, *meta.Session, *Evaluator) {
	t.Helper()
	p := entity.NewProgram()
	s, ev := NewSession(p, opts)
	return p, s, ev
}

func constVar(p *entity.Program, name string, t entity.TypeID, init entity.ExprID) entity.DeclID {
	v := p.AddVariable(p.Global(), name, t, init)
	p.MustDecl(v).Flags |= entity.FlagConstexpr
	return v
}

func TestCheckedArithmetic(t *testing.T) {
	_, ok := AddInt64Checked(math.MaxInt64, 1)
	require.False(t, ok)
	_, ok = SubInt64Checked(math.MinInt64, 1)
	require.False(t, ok)
	_, ok = MulInt64Checked(math.MinInt64, -1)
	require.False(t, ok)
	got, ok := MulInt64Checked(-4, 5)
	require.True(t, ok)
	require.Equal(t, int64(-20), got)
}

func TestBinaryOverflowRespectsWidth(t *testing.T) {
	p, _, ev := newEval(t, meta.Options{})
	b := p.Types.Builtins()
	sum := p.Binary(entity.BinAdd, b.Int, p.IntLit(b.Int, math.MaxInt32), p.IntLit(b.Int, 1))
	_, err := ev.Run(sum)
	require.Error(t, err)
	require.Equal(t, diag.ReflNotConstant, meta.CodeOf(err))

	wide := p.Binary(entity.BinAdd, b.Long, p.IntLit(b.Long, math.MaxInt32), p.IntLit(b.Long, 1))
	v, err := ev.Run(wide)
	require.NoError(t, err)
	n, _ := v.AsInt()
	require.Equal(t, int64(math.MaxInt32)+1, n)
}

func TestDivisionByZero(t *testing.T) {
	p, _, ev := newEval(t, meta.Options{})
	b := p.Types.Builtins()
	_, err := ev.Run(p.Binary(entity.BinDiv, b.Int, p.IntLit(b.Int, 1), p.IntLit(b.Int, 0)))
	require.Error(t, err)
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	p, _, ev := newEval(t, meta.Options{})
	b := p.Types.Builtins()
	bad := p.TemplateParamRef(0, b.Bool)
	v, err := ev.Run(p.Binary(entity.BinAnd, b.Bool, p.BoolLit(false), bad))
	require.NoError(t, err)
	got, _ := v.AsBool()
	require.False(t, got)
}

func TestCallWithDefaultArgumentAndMemberAccess(t *testing.T) {
	p, _, ev := newEval(t, meta.Options{})
	b := p.Types.Builtins()

	pt := p.AddClass(p.Global(), "Point", entity.KeyStruct)
	x := p.AddField(pt, "x", b.Int, entity.AccessNone)
	y := p.AddField(pt, "y", b.Int, entity.AccessNone)
	p.MustDecl(y).Init = p.IntLit(b.Int, 3)
	p.Complete(pt)
	ptType := p.MustDecl(pt).Type

	origin := constVar(p, "origin", ptType, p.InitList(ptType, p.IntLit(b.Int, 7)))

	sig := p.Types.Function(entity.FnInfo{Params: []entity.TypeID{b.Int, b.Int}, Result: b.Int})
	add := p.AddFunction(p.Global(), "add", sig)
	p.AddParam(add, "a", b.Int)
	k := p.AddParam(add, "k", b.Int)
	p.MustDecl(k).Init = p.IntLit(b.Int, 100)
	p.MustDecl(add).Body = p.Binary(entity.BinAdd, b.Int, p.ParamRef(0, b.Int), p.ParamRef(1, b.Int))

	call := p.Call(add, entity.NoExprID, p.Member(p.DeclRef(origin), y))
	v, err := ev.Run(call)
	require.NoError(t, err)
	n, _ := v.AsInt()
	require.Equal(t, int64(103), n)

	v, err = ev.Run(p.Member(p.DeclRef(origin), x))
	require.NoError(t, err)
	n, _ = v.AsInt()
	require.Equal(t, int64(7), n)
}

func TestRecursionHitsDepthLimit(t *testing.T) {
	bag := diag.NewBag(16)
	p, _, ev := newEval(t, meta.Options{MaxDepth: 32, Reporter: diag.BagReporter{Bag: bag}})
	b := p.Types.Builtins()
	sig := p.Types.Function(entity.FnInfo{Result: b.Int})
	loop := p.AddFunction(p.Global(), "loop", sig)
	p.MustDecl(loop).Body = p.Call(loop, entity.NoExprID)

	_, err := ev.Run(p.Call(loop, entity.NoExprID))
	require.Error(t, err)
	require.True(t, errors.Is(err, &meta.Error{Code: diag.ReflDepthExceeded}))
	require.Equal(t, 1, bag.Len())
}

func TestNonConstexprVariableIsRejected(t *testing.T) {
	p, _, ev := newEval(t, meta.Options{})
	b := p.Types.Builtins()
	v := p.AddVariable(p.Global(), "mutable_value", b.Int, p.IntLit(b.Int, 1))
	_, err := ev.Run(p.DeclRef(v))
	require.Error(t, err)
	require.Equal(t, diag.ReflNotConstant, meta.CodeOf(err))
}

func TestLiftAndSplice(t *testing.T) {
	p, _, ev := newEval(t, meta.Options{})
	b := p.Types.Builtins()
	lifted := p.Lift(p.IntLit(b.Int, 42), b.Int)
	v, err := ev.Run(lifted)
	require.NoError(t, err)
	require.True(t, v.Is(refl.KindValue))
	require.Equal(t, b.Int, v.LiftType())

	spliced := p.Exprs.New(entity.Expr{Kind: entity.ExprSplice, Type: b.Int, L: lifted})
	v, err = ev.Run(spliced)
	require.NoError(t, err)
	n, _ := v.AsInt()
	require.Equal(t, int64(42), n)

	cls := p.AddClass(p.Global(), "S", entity.KeyStruct)
	f := p.AddField(cls, "m", b.Int, entity.AccessNone)
	p.Complete(cls)
	member := p.Exprs.New(entity.Expr{Kind: entity.ExprSplice, Type: b.Int, L: p.Reflect(entity.ReflOperand{Kind: entity.ReflOperandDecl, Decl: f})})
	_, err = ev.Run(member)
	require.Equal(t, diag.ReflSpliceNonStaticMember, meta.CodeOf(err))
}

func TestObjectLiftKeepsNoType(t *testing.T) {
	p, _, ev := newEval(t, meta.Options{})
	b := p.Types.Builtins()
	g := constVar(p, "g", b.Int, p.IntLit(b.Int, 5))
	v, err := ev.Run(p.Lift(p.DeclRef(g), entity.NoTypeID))
	require.NoError(t, err)
	require.True(t, v.Is(refl.KindObject))
	require.True(t, refl.Equal(v, refl.ObjectOf(refl.Ref{Decl: g}), p))
}

func TestStringLiteralCategories(t *testing.T) {
	p, s, ev := newEval(t, meta.Options{})
	lit := p.StringLit("hi")
	v, err := ev.Evaluate(lit, true)
	require.NoError(t, err)
	str, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "hi", str)

	v, err = ev.Evaluate(lit, false)
	require.NoError(t, err)
	ref, ok := v.AsRef()
	require.True(t, ok)
	read, err := s.ReadObject(ref, source.Span{})
	require.NoError(t, err)
	str, _ = read.AsString()
	require.Equal(t, "hi", str)
}
