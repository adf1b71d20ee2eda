package meta_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reflex/internal/consteval"
	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/meta"
	"reflex/internal/refl"
	"reflex/internal/source"
)

type env struct {
	t   *testing.T
	p   *entity.Program
	s   *meta.Session
	ev  *consteval.Evaluator
	bag *diag.Bag
	b   entity.Builtins
}

func newEnv(t *testing.T) *env {
	t.Helper()
	p := entity.NewProgram()
	bag := diag.NewBag(64)
	s, ev := consteval.NewSession(p, meta.Options{Reporter: diag.BagReporter{Bag: bag}})
	return &env{t: t, p: p, s: s, ev: ev, bag: bag, b: p.Types.Builtins()}
}

// r turns a reflection into an argument expression.
func (e *env) r(v refl.Value) entity.ExprID { return e.s.Materialize(v, e.b.Info) }

func (e *env) typ(t entity.TypeID) entity.ExprID {
	return e.p.Reflect(entity.ReflOperand{Kind: entity.ReflOperandType, Type: t})
}

func (e *env) decl(d entity.DeclID) entity.ExprID {
	return e.p.Reflect(entity.ReflOperand{Kind: entity.ReflOperandDecl, Decl: d})
}

func (e *env) null() entity.ExprID {
	return e.p.Reflect(entity.ReflOperand{Kind: entity.ReflOperandNull})
}

func (e *env) size(n int64) entity.ExprID { return e.p.IntLit(e.b.Size, n) }

func (e *env) call(id meta.ID, args ...entity.ExprID) (meta.Result, error) {
	return e.s.Call(id, args, source.Span{})
}

func (e *env) must(id meta.ID, args ...entity.ExprID) refl.Value {
	e.t.Helper()
	res, err := e.call(id, args...)
	require.NoError(e.t, err)
	return res.Value
}

func (e *env) flag(id meta.ID, args ...entity.ExprID) bool {
	e.t.Helper()
	v := e.must(id, args...)
	b, ok := v.AsBool()
	require.True(e.t, ok)
	return b
}

func (e *env) num(id meta.ID, args ...entity.ExprID) int64 {
	e.t.Helper()
	v := e.must(id, args...)
	n, ok := v.AsInt()
	require.True(e.t, ok)
	return n
}

// members collects a scope's members through the begin/next protocol.
func (e *env) members(scope entity.ExprID) []refl.Value {
	e.t.Helper()
	var out []refl.Value
	cur := e.must(meta.GetBeginMemberDeclOf, scope, e.null())
	for !cur.Is(refl.KindNull) {
		out = append(out, cur)
		cur = e.must(meta.GetNextMemberDeclOf, e.r(cur), e.null())
	}
	return out
}

// spec builds a named data_member_spec of type t.
func (e *env) spec(t entity.TypeID, name string) refl.Value {
	e.t.Helper()
	p := e.p
	return e.must(meta.DataMemberSpec,
		e.typ(t),
		p.BoolLit(true), p.StringLit(name),
		p.BoolLit(false), e.size(0),
		p.BoolLit(false), e.size(0),
		p.BoolLit(false))
}

func (e *env) constVar(name string, t entity.TypeID, init entity.ExprID) entity.DeclID {
	v := e.p.AddVariable(e.p.Global(), name, t, init)
	e.p.MustDecl(v).Flags |= entity.FlagConstexpr
	return v
}

func (e *env) readString(v refl.Value) string {
	e.t.Helper()
	require.True(e.t, v.Is(refl.KindObject))
	ref, ok := v.Lower().AsRef()
	require.True(e.t, ok)
	got, err := e.s.ReadObject(ref, source.Span{})
	require.NoError(e.t, err)
	str, ok := got.AsString()
	require.True(e.t, ok)
	return str
}
