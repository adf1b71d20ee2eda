package scenario

import (
	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/meta"
	"reflex/internal/refl"
	"reflex/internal/splice"
)

// Scenario is one end-to-end check. Source is the program the scenario
// models; it only supplies spans for diagnostics. Expect lists the codes
// the scenario must leave in its diagnostic bag, in order.
type Scenario struct {
	Name   string
	Source string
	Expect []diag.Code
	Run    func(h *Harness)
}

// All returns the built-in scenarios.
func All() []Scenario {
	return []Scenario{
		defaultMemberInitializer,
		defineNamedMember,
		defineUnnamedBitField,
		baseSpecifier,
		defineTwice,
		substituteTwice,
		enumeratorsRestart,
		spliceRoundTrip,
		vacuousPredicates,
	}
}

var defaultMemberInitializer = Scenario{
	Name: "default-member-initializer",
	Source: `struct S {
  int a;
  int b = 3;
};
static_assert(!has_default_member_initializer(^S::a));
static_assert(has_default_member_initializer(^S::b));
static_assert(size_of(^S) == 8);
`,
	Run: func(h *Harness) {
		p := h.Program
		s := p.AddClass(p.Global(), "S", entity.KeyStruct)
		a := p.AddField(s, "a", h.Types.Int, entity.AccessNone)
		b := p.AddField(s, "b", h.Types.Int, entity.AccessNone)
		p.MustDecl(b).Init = p.IntLit(h.Types.Int, 3)
		p.Complete(s)
		st := p.MustDecl(s).Type

		h.Check(!h.Bool(meta.HasDefaultMemberInitializer, "has_default_member_initializer(^S::a)", h.Decl(a, "^S::a")),
			"S::a reports a default member initializer")
		h.Check(h.Bool(meta.HasDefaultMemberInitializer, "has_default_member_initializer(^S::b)", h.Decl(b, "^S::b")),
			"S::b reports no default member initializer")

		var fields int64
		for _, m := range h.Members(h.Type(st, "^S"), "size_of(^S)") {
			ty := h.Call(meta.TypeOf, "size_of(^S)", h.Value(m))
			fields += h.Int(meta.SizeOf, "size_of(^int)", h.Value(ty))
		}
		h.Check(fields == 8, "members of S sum to %d bytes, want 8", fields)
		size := h.Int(meta.SizeOf, "size_of(^S)", h.Type(st, "^S"))
		h.Check(size == 8, "size_of(S) = %d, want 8", size)
	},
}

var defineNamedMember = Scenario{
	Name: "define-class-named-member",
	Source: `struct C;
static_assert(is_type(define_class(^C, {data_member_spec(^int, {.name = "x"})})));
`,
	Run: func(h *Harness) {
		p := h.Program
		c := p.AddClass(p.Global(), "C", entity.KeyStruct)
		ct := p.MustDecl(c).Type
		spec := h.MemberSpec(h.Types.Int, "x", -1, `data_member_spec(^int, {.name = "x"})`)
		h.Call(meta.DefineClass, "define_class", h.Type(ct, "^C"), h.Value(spec))

		members := h.Members(h.Type(ct, "^C"), "define_class")
		if h.Check(len(members) == 1, "C has %d members, want 1", len(members)); h.err != nil {
			return
		}
		id := h.Call(meta.IdentifierOf, "define_class", h.Value(members[0]))
		h.Check(h.String(id) == "x", "identifier_of = %q, want \"x\"", h.String(id))
		h.Check(!h.Bool(meta.IsBitField, "define_class", h.Value(members[0])), "x is a bit-field")
	},
}

var defineUnnamedBitField = Scenario{
	Name: "define-class-unnamed-bit-field",
	Source: `struct C;
static_assert(is_type(define_class(^C, {data_member_spec(^int, {.width = 0})})));
`,
	Run: func(h *Harness) {
		p := h.Program
		c := p.AddClass(p.Global(), "C", entity.KeyStruct)
		ct := p.MustDecl(c).Type
		spec := h.MemberSpec(h.Types.Int, "", 0, `data_member_spec(^int, {.width = 0})`)
		h.Call(meta.DefineClass, "define_class", h.Type(ct, "^C"), h.Value(spec))

		members := h.Members(h.Type(ct, "^C"), "define_class")
		if h.Check(len(members) == 1, "C has %d members, want 1", len(members)); h.err != nil {
			return
		}
		h.Check(h.Bool(meta.IsBitField, "define_class", h.Value(members[0])), "member is not a bit-field")
		h.Check(!h.Bool(meta.HasIdentifier, "define_class", h.Value(members[0])), "member has an identifier")
	},
}

var baseSpecifier = Scenario{
	Name: "base-specifier",
	Source: `struct B {};
struct D : B {};
constexpr auto base = bases_of(^D)[0];
static_assert(is_base(base) && !is_type(base));
`,
	Run: func(h *Harness) {
		p := h.Program
		b := p.AddClass(p.Global(), "B", entity.KeyStruct)
		p.Complete(b)
		d := p.AddClass(p.Global(), "D", entity.KeyStruct)
		p.AddBase(d, p.MustDecl(b).Type, entity.AccessNone, false)
		p.Complete(d)

		base := h.Call(meta.GetIthBaseOf, "bases_of(^D)", h.Type(p.MustDecl(d).Type, "^D"), h.Size(0), h.Null())
		h.Check(h.Bool(meta.IsBase, "is_base(base)", h.Value(base)), "is_base is false")
		h.Check(!h.Bool(meta.IsType, "is_type(base)", h.Value(base)), "is_type is true")
	},
}

var defineTwice = Scenario{
	Name: "define-class-twice",
	Source: `struct C;
constexpr auto first = define_class(^C, {data_member_spec(^int, {.name = "x"})});
constexpr auto second = define_class(^C, {});
`,
	Expect: []diag.Code{diag.ReflAlreadyComplete},
	Run: func(h *Harness) {
		p := h.Program
		c := p.AddClass(p.Global(), "C", entity.KeyStruct)
		ct := p.MustDecl(c).Type
		spec := h.MemberSpec(h.Types.Int, "x", -1, `data_member_spec(^int, {.name = "x"})`)
		h.Call(meta.DefineClass, "define_class(^C, {data", h.Type(ct, "^C"), h.Value(spec))
		code := h.Fails(meta.DefineClass, "define_class(^C, {})", h.Type(ct, "^C"))
		h.Check(code == diag.ReflAlreadyComplete, "second define_class failed with %v", code)
		members := h.Members(h.Type(ct, "^C"), "second")
		h.Check(len(members) == 1, "C has %d members after the rejected definition", len(members))
	},
}

var substituteTwice = Scenario{
	Name: "substitute-twice",
	Source: `template <class T> struct Box { T value; };
constexpr auto a = substitute(^Box, {^int});
constexpr auto b = substitute(^Box, {^int});
static_assert(a == b);
`,
	Run: func(h *Harness) {
		p := h.Program
		tmpl, pattern := p.AddTemplate(p.Global(), "Box", entity.TemplateClass,
			[]entity.TemplateParam{{Kind: entity.ParamType, Name: "T"}})
		p.AddField(pattern, "value", p.Types.Intern(entity.MakeTemplateParam(0)), entity.AccessNone)
		p.Complete(pattern)
		box := h.Value(refl.MakeTemplate(p, tmpl))

		a := h.Call(meta.Substitute, "substitute(^Box, {^int})", box, h.Type(h.Types.Int, "^int"))
		b := h.Call(meta.Substitute, "substitute(^Box, {^int})", box, h.Type(h.Types.Int, "^int"))
		h.Check(refl.ProfileOf(a, p) == refl.ProfileOf(b, p), "substitutions have different profiles")
	},
}

var enumeratorsRestart = Scenario{
	Name: "enumerators-restart",
	Source: `enum class Color { red, green, blue };
static_assert(enumerators_of(^Color) == enumerators_of(^Color));
`,
	Run: func(h *Harness) {
		p := h.Program
		enum := p.AddEnum(p.Global(), "Color", h.Types.Int, true)
		for i, n := range []string{"red", "green", "blue"} {
			p.AddEnumerator(enum, n, int64(i))
		}
		et := p.MustDecl(enum).Type
		first := h.Enumerators(h.Type(et, "^Color"), "enumerators_of(^Color)")
		second := h.Enumerators(h.Type(et, "^Color"), "enumerators_of(^Color)")
		if h.Check(len(first) == 3 && len(second) == 3, "walks yielded %d and %d enumerators", len(first), len(second)); h.err != nil {
			return
		}
		for i := range first {
			h.Check(refl.Equal(first[i], second[i], p), "enumerator %d differs between walks", i)
		}
	},
}

var spliceRoundTrip = Scenario{
	Name: "splice-round-trip",
	Source: `struct S { int m; };
using T = [:^int:];
int v = [:^S::m:];
`,
	Expect: []diag.Code{diag.ReflSpliceNonStaticMember},
	Run: func(h *Harness) {
		p := h.Program
		s := p.AddClass(p.Global(), "S", entity.KeyStruct)
		m := p.AddField(s, "m", h.Types.Int, entity.AccessNone)
		p.Complete(s)

		n, err := h.Splice.BuildSplice(splice.PosType, h.Type(h.Types.Int, "^int"), nil, h.At("[:^int:]"))
		if err != nil {
			h.failf("type splice: %w", err)
			return
		}
		h.Check(n.Type == h.Types.Int, "[:^int:] is not int")

		_, err = h.Splice.BuildSplice(splice.PosExpr, h.Decl(m, "^S::m"), nil, h.At("[:^S::m:]"))
		h.Check(meta.CodeOf(err) == diag.ReflSpliceNonStaticMember, "member splice failed with %v", meta.CodeOf(err))
	},
}

var vacuousPredicates = Scenario{
	Name: "vacuous-predicates",
	Source: `namespace N {}
static_assert(!is_bit_field(^N));
`,
	Run: func(h *Harness) {
		p := h.Program
		ns := p.AddNamespace(p.Global(), "N")
		operands := []entity.ExprID{
			h.Null(),
			h.Decl(ns, "^N"),
			h.Type(h.Types.Int, "^N"),
			h.Value(refl.ValueOf(refl.Int(1), h.Types.Int)),
		}
		for _, e := range meta.Entries() {
			if !meta.IsVacuousFalse(e.ID) || !e.Accepts(1) {
				continue
			}
			for _, op := range operands {
				h.Bool(e.ID, "is_bit_field(^N)", op)
			}
		}
	},
}
