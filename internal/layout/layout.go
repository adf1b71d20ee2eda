package layout

import (
	"reflex/internal/entity"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Record-only:
	Fields  []FieldLayout
	Bases   []BaseLayout
	Empty   bool // no storage beyond the mandatory byte
	Dynamic bool // carries a vptr
}

// FieldLayout places one non-static data member. Offsets are in bits from
// the start of the enclosing record.
type FieldLayout struct {
	Decl      entity.DeclID
	OffsetBit int64
	SizeBits  int64
	Align     int // 0 for bit-fields
	BitField  bool
}

// BaseLayout places one base-class subobject.
type BaseLayout struct {
	Base   entity.BaseID
	Offset int
}

// LayoutEngine computes memory layout for types.
type LayoutEngine struct {
	Target  Target
	Program *entity.Program

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, prog *entity.Program) *LayoutEngine {
	return &LayoutEngine{
		Target:  target,
		Program: prog,
		cache:   newCache(),
	}
}

type layoutState struct {
	stack []entity.TypeID
	index map[entity.TypeID]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		index: make(map[entity.TypeID]int, 32),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t entity.TypeID) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err
	}
	return layout, nil
}

func (e *LayoutEngine) layoutOf(t entity.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	canon := e.Program.Types.Unqualified(e.Program.Dealias(t))
	if cached, ok := e.cache.get(canon); ok {
		return cached, nil
	}

	if idx, ok := state.index[canon]; ok {
		cycle := append([]entity.TypeID(nil), state.stack[idx:]...)
		cycle = append(cycle, canon)
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{
			Kind:  LayoutErrRecursive,
			Type:  canon,
			Cycle: cycle,
		}
	}

	state.index[canon] = len(state.stack)
	state.stack = append(state.stack, canon)
	layout, err := e.computeLayout(canon, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, canon)

	if err == nil {
		e.cache.put(canon, layout)
	}
	return layout, err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t entity.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t entity.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOf returns the placement of a non-static data member within its
// class.
func (e *LayoutEngine) FieldOf(field entity.DeclID) (FieldLayout, error) {
	d := e.Program.Decl(field)
	if d == nil || d.Kind != entity.DeclField {
		return FieldLayout{}, &LayoutError{Kind: LayoutErrNotField}
	}
	class := e.Program.MustDecl(d.Parent)
	l, err := e.LayoutOf(class.Type)
	if err != nil {
		return FieldLayout{}, err
	}
	for _, f := range l.Fields {
		if f.Decl == field {
			return f, nil
		}
	}
	return FieldLayout{}, &LayoutError{Kind: LayoutErrNotField, Type: class.Type}
}

// BaseOffset returns the byte offset of a base-class subobject.
func (e *LayoutEngine) BaseOffset(base entity.BaseID) (int, error) {
	b := e.Program.Base(base)
	if b == nil {
		return 0, &LayoutError{Kind: LayoutErrNotField}
	}
	l, err := e.LayoutOf(e.Program.MustDecl(b.Derived).Type)
	if err != nil {
		return 0, err
	}
	for _, bl := range l.Bases {
		if bl.Base == base {
			return bl.Offset, nil
		}
	}
	return 0, &LayoutError{Kind: LayoutErrNotField}
}

// Cached reports how many layouts are memoized.
func (e *LayoutEngine) Cached() int {
	return e.cache.len()
}
