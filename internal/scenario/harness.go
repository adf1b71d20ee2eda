package scenario

import (
	"fmt"
	"strings"

	"reflex/internal/consteval"
	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/meta"
	"reflex/internal/refl"
	"reflex/internal/source"
	"reflex/internal/splice"
)

// Harness is the compilation one scenario runs in. Its helpers keep the
// first failure and turn every later call into a no-op, so a scenario body
// reads as straight-line code and returns h.Err() at the end.
type Harness struct {
	Program *entity.Program
	Session *meta.Session
	Eval    *consteval.Evaluator
	Splice  *splice.Builder
	Files   *source.FileSet
	Bag     *diag.Bag
	Types   entity.Builtins

	file source.FileID
	src  string
	err  error
}

func newHarness(name, src string, opts meta.Options, maxDiagnostics int) *Harness {
	p := entity.NewProgram()
	fs := source.NewFileSet()
	file := fs.AddVirtual(name+".cpp", []byte(src))
	bag := diag.NewBag(maxDiagnostics)
	opts.Reporter = diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	s, ev := consteval.NewSession(p, opts)
	return &Harness{
		Program: p,
		Session: s,
		Eval:    ev,
		Splice:  splice.New(s),
		Files:   fs,
		Bag:     bag,
		Types:   p.Types.Builtins(),
		file:    file,
		src:     src,
	}
}

// Err returns the first failure seen by the harness helpers.
func (h *Harness) Err() error { return h.err }

func (h *Harness) failf(format string, args ...any) {
	if h.err == nil {
		h.err = fmt.Errorf(format, args...)
	}
}

// Check records a failure unless cond holds.
func (h *Harness) Check(cond bool, format string, args ...any) {
	if !cond {
		h.failf(format, args...)
	}
}

// At is the span of the first occurrence of text in the scenario source.
// Missing text yields an empty span at the start of the file.
func (h *Harness) At(text string) source.Span {
	off := strings.Index(h.src, text)
	if off < 0 || text == "" {
		return source.Span{File: h.file}
	}
	return source.Span{File: h.file, Start: uint32(off), End: uint32(off + len(text))} // #nosec G115 -- scenario sources are small
}

func (h *Harness) reflect(op entity.ReflOperand, at string) entity.ExprID {
	if h.err != nil {
		return entity.NoExprID
	}
	e, err := h.Splice.BuildReflectOperator(op, h.At(at))
	if err != nil {
		h.failf("reflect %q: %w", at, err)
	}
	return e
}

// Type reflects t with the reflect operator written at at.
func (h *Harness) Type(t entity.TypeID, at string) entity.ExprID {
	return h.reflect(entity.ReflOperand{Kind: entity.ReflOperandType, Type: t}, at)
}

// Decl reflects d with the reflect operator written at at.
func (h *Harness) Decl(d entity.DeclID, at string) entity.ExprID {
	return h.reflect(entity.ReflOperand{Kind: entity.ReflOperandDecl, Decl: d}, at)
}

// Value turns an already computed reflection back into an argument.
func (h *Harness) Value(v refl.Value) entity.ExprID {
	return h.Session.Materialize(v, h.Types.Info)
}

// Null is the sentinel argument of the iteration primitives.
func (h *Harness) Null() entity.ExprID {
	return h.Program.Reflect(entity.ReflOperand{Kind: entity.ReflOperandNull})
}

func (h *Harness) Size(n int64) entity.ExprID { return h.Program.IntLit(h.Types.Size, n) }

// Call evaluates metafunction id at the call written at at.
func (h *Harness) Call(id meta.ID, at string, args ...entity.ExprID) refl.Value {
	if h.err != nil {
		return refl.MakeNull()
	}
	res, err := h.Session.Call(id, args, h.At(at))
	if err != nil {
		h.failf("%s: %w", name(id), err)
		return refl.MakeNull()
	}
	return res.Value
}

// Fails evaluates id and returns the diagnostic code it failed with, or
// diag.UnknownCode when it succeeded.
func (h *Harness) Fails(id meta.ID, at string, args ...entity.ExprID) diag.Code {
	if h.err != nil {
		return diag.UnknownCode
	}
	_, err := h.Session.Call(id, args, h.At(at))
	if err == nil {
		return diag.UnknownCode
	}
	return meta.CodeOf(err)
}

func (h *Harness) Bool(id meta.ID, at string, args ...entity.ExprID) bool {
	v := h.Call(id, at, args...)
	if h.err != nil {
		return false
	}
	b, ok := v.AsBool()
	h.Check(ok, "%s: result is not a bool", name(id))
	return b
}

func (h *Harness) Int(id meta.ID, at string, args ...entity.ExprID) int64 {
	v := h.Call(id, at, args...)
	if h.err != nil {
		return 0
	}
	n, ok := v.AsInt()
	h.Check(ok, "%s: result is not an integer", name(id))
	return n
}

// String reads the static string an identifier_of result points at.
func (h *Harness) String(v refl.Value) string {
	if h.err != nil {
		return ""
	}
	ref, ok := v.Lower().AsRef()
	if !ok {
		h.failf("reflection %v does not designate an object", v)
		return ""
	}
	obj, err := h.Session.ReadObject(ref, source.NoSpan)
	if err != nil {
		h.failf("read object: %w", err)
		return ""
	}
	s, _ := obj.AsString()
	return s
}

// Members walks scope through the begin/next member protocol.
func (h *Harness) Members(scope entity.ExprID, at string) []refl.Value {
	return h.walk(meta.GetBeginMemberDeclOf, meta.GetNextMemberDeclOf, scope, at)
}

// Enumerators walks an enumeration type.
func (h *Harness) Enumerators(enum entity.ExprID, at string) []refl.Value {
	return h.walk(meta.GetBeginEnumeratorDeclOf, meta.GetNextEnumeratorDeclOf, enum, at)
}

func (h *Harness) walk(begin, next meta.ID, scope entity.ExprID, at string) []refl.Value {
	var out []refl.Value
	cur := h.Call(begin, at, scope, h.Null())
	for h.err == nil && !cur.Is(refl.KindNull) {
		out = append(out, cur)
		cur = h.Call(next, at, h.Value(cur), h.Null())
	}
	return out
}

// MemberSpec builds a data_member_spec. An empty name leaves the member
// unnamed; a negative width leaves it a plain field.
func (h *Harness) MemberSpec(t entity.TypeID, name string, width int64, at string) refl.Value {
	p := h.Program
	return h.Call(meta.DataMemberSpec, at,
		h.Type(t, at),
		p.BoolLit(name != ""), p.StringLit(name),
		p.BoolLit(false), h.Size(0),
		p.BoolLit(width >= 0), h.Size(max(width, 0)),
		p.BoolLit(false))
}

func name(id meta.ID) string {
	if e, ok := meta.Lookup(id); ok {
		return e.Name
	}
	return fmt.Sprintf("metafunction#%d", id)
}
