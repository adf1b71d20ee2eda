package layout_test

import (
	"errors"
	"testing"

	"reflex/internal/entity"
	"reflex/internal/layout"
)

func newEngine() (*entity.Program, *layout.LayoutEngine) {
	p := entity.NewProgram()
	return p, layout.New(layout.X86_64LinuxGNU(), p)
}

func TestLayoutEngine_ScalarsAndPointers(t *testing.T) {
	p, le := newEngine()
	b := p.Types.Builtins()
	cases := []struct {
		name  string
		typ   entity.TypeID
		size  int
		align int
	}{
		{"bool", b.Bool, 1, 1},
		{"char", b.Char, 1, 1},
		{"int", b.Int, 4, 4},
		{"long", b.Long, 8, 8},
		{"double", b.Double, 8, 8},
		{"pointer", p.Types.Pointer(b.Char), 8, 8},
		{"info", b.Info, 8, 8},
		{"array", p.Types.Array(b.Int, 3), 12, 4},
		{"const int", p.Types.Qualified(b.Int, entity.QualConst), 4, 4},
	}
	for _, tc := range cases {
		l, err := le.LayoutOf(tc.typ)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if l.Size != tc.size || l.Align != tc.align {
			t.Fatalf("%s: expected size=%d align=%d, got size=%d align=%d", tc.name, tc.size, tc.align, l.Size, l.Align)
		}
	}
}

func TestLayoutEngine_StructPadding(t *testing.T) {
	p, le := newEngine()
	b := p.Types.Builtins()
	s := p.AddClass(p.Global(), "S", entity.KeyStruct)
	c := p.AddField(s, "c", b.Char, entity.AccessNone)
	d := p.AddField(s, "d", b.Double, entity.AccessNone)
	i := p.AddField(s, "i", b.Int, entity.AccessNone)
	p.Complete(s)

	l, err := le.LayoutOf(p.MustDecl(s).Type)
	if err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
	if l.Size != 24 || l.Align != 8 {
		t.Fatalf("expected size=24 align=8, got size=%d align=%d", l.Size, l.Align)
	}
	want := map[entity.DeclID]int64{c: 0, d: 64, i: 128}
	for _, f := range l.Fields {
		if want[f.Decl] != f.OffsetBit {
			t.Fatalf("field %d: expected bit offset %d, got %d", f.Decl, want[f.Decl], f.OffsetBit)
		}
	}
}

func TestLayoutEngine_BitFields(t *testing.T) {
	p, le := newEngine()
	b := p.Types.Builtins()
	s := p.AddClass(p.Global(), "Flags", entity.KeyStruct)
	a := p.AddBitField(s, "a", b.Int, 3, entity.AccessNone)
	bb := p.AddBitField(s, "b", b.Int, 30, entity.AccessNone)
	p.AddBitField(s, "", b.Int, 0, entity.AccessNone)
	c := p.AddBitField(s, "c", b.Int, 1, entity.AccessNone)
	p.Complete(s)

	l, err := le.LayoutOf(p.MustDecl(s).Type)
	if err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
	offsets := map[entity.DeclID]int64{}
	for _, f := range l.Fields {
		offsets[f.Decl] = f.OffsetBit
	}
	if offsets[a] != 0 || offsets[bb] != 32 || offsets[c] != 64 {
		t.Fatalf("unexpected bit offsets: a=%d b=%d c=%d", offsets[a], offsets[bb], offsets[c])
	}
	if l.Size != 12 {
		t.Fatalf("expected size 12, got %d", l.Size)
	}
}

func TestLayoutEngine_UnionAndEmpty(t *testing.T) {
	p, le := newEngine()
	b := p.Types.Builtins()
	u := p.AddClass(p.Global(), "U", entity.KeyUnion)
	p.AddField(u, "i", b.Int, entity.AccessNone)
	p.AddField(u, "d", b.Double, entity.AccessNone)
	p.Complete(u)
	empty := p.AddClass(p.Global(), "E", entity.KeyStruct)
	p.Complete(empty)

	ul, err := le.LayoutOf(p.MustDecl(u).Type)
	if err != nil || ul.Size != 8 || ul.Align != 8 {
		t.Fatalf("expected union size=8 align=8, got %+v (%v)", ul, err)
	}
	el, err := le.LayoutOf(p.MustDecl(empty).Type)
	if err != nil || el.Size != 1 || !el.Empty {
		t.Fatalf("expected empty class of size 1, got %+v (%v)", el, err)
	}

	// Empty base occupies no storage; a no_unique_address empty member neither.
	d := p.AddClass(p.Global(), "D", entity.KeyStruct)
	p.AddBase(d, p.MustDecl(empty).Type, entity.AccessPublic, false)
	tag := p.AddField(d, "tag", p.MustDecl(empty).Type, entity.AccessNone)
	p.MustDecl(tag).Flags |= entity.FlagNoUniqueAddress
	p.AddField(d, "x", b.Int, entity.AccessNone)
	p.Complete(d)
	dl, err := le.LayoutOf(p.MustDecl(d).Type)
	if err != nil || dl.Size != 4 {
		t.Fatalf("expected size 4 with empty base optimisation, got %+v (%v)", dl, err)
	}
}

func TestLayoutEngine_DynamicClassHasVptr(t *testing.T) {
	p, le := newEngine()
	b := p.Types.Builtins()
	s := p.AddClass(p.Global(), "Poly", entity.KeyStruct)
	f := p.AddMethod(s, "f", entity.MethodOrdinary, p.Types.Function(entity.FnInfo{Result: b.Void}), entity.AccessNone)
	p.MustDecl(f).Flags |= entity.FlagVirtual
	x := p.AddField(s, "x", b.Int, entity.AccessNone)
	p.Complete(s)

	fl, err := le.FieldOf(x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fl.OffsetBit != 64 {
		t.Fatalf("expected x after the vptr at bit 64, got %d", fl.OffsetBit)
	}
	size, _ := le.SizeOf(p.MustDecl(s).Type)
	if size != 16 {
		t.Fatalf("expected size 16, got %d", size)
	}
}

func TestLayoutEngine_IncompleteIsNotCached(t *testing.T) {
	p, le := newEngine()
	b := p.Types.Builtins()
	s := p.AddClass(p.Global(), "Later", entity.KeyStruct)
	_, err := le.LayoutOf(p.MustDecl(s).Type)
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrIncomplete {
		t.Fatalf("expected LayoutErrIncomplete, got %v", err)
	}
	p.AddField(s, "v", b.Long, entity.AccessNone)
	p.Complete(s)
	size, err := le.SizeOf(p.MustDecl(s).Type)
	if err != nil || size != 8 {
		t.Fatalf("expected size 8 after completion, got %d (%v)", size, err)
	}
}

func TestLayoutEngine_RecursiveStructReportsError(t *testing.T) {
	p, le := newEngine()
	s := p.AddClass(p.Global(), "Node", entity.KeyStruct)
	p.AddField(s, "next", p.MustDecl(s).Type, entity.AccessNone)
	p.Complete(s)

	_, err := le.LayoutOf(p.MustDecl(s).Type)
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.LayoutError, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.LayoutErrRecursive || len(lerr.Cycle) == 0 {
		t.Fatalf("expected recursive error with cycle, got %+v", lerr)
	}
}

func TestLayoutEngine_VoidHasNoSize(t *testing.T) {
	p, le := newEngine()
	_, err := le.SizeOf(p.Types.Builtins().Void)
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrNoSize {
		t.Fatalf("expected LayoutErrNoSize, got %v", err)
	}
}
