package layout

import (
	"fortio.org/safecast"

	"reflex/internal/entity"
)

func (e *LayoutEngine) computeLayout(id entity.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	tt, ok := e.Program.Types.Lookup(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
	}

	switch tt.Kind {
	case entity.KindVoid, entity.KindFunction:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrNoSize, Type: id}

	case entity.KindBool, entity.KindChar:
		return TypeLayout{Size: 1, Align: 1}, nil

	case entity.KindInt, entity.KindUint, entity.KindFloat:
		if tt.Width == entity.WidthAny {
			return e.ptrLayout(), nil
		}
		return scalarLayoutBytes(int(tt.Width) / 8), nil

	case entity.KindNullptr, entity.KindInfo, entity.KindPointer, entity.KindLValueRef, entity.KindRValueRef:
		return e.ptrLayout(), nil

	case entity.KindArray:
		if tt.Count == 0 {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
		}
		return e.arrayFixedLayout(id, tt.Elem, tt.Count, state)

	case entity.KindEnum:
		d := e.Program.Decl(tt.Decl)
		if d != nil && d.Underlying.IsValid() {
			return e.layoutOf(d.Underlying, state)
		}
		return scalarLayoutBytes(4), nil

	case entity.KindRecord:
		d := e.Program.Decl(tt.Decl)
		if d == nil || !d.Has(entity.FlagComplete) {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
		}
		if d.Key == entity.KeyUnion {
			return e.unionLayout(id, d, state)
		}
		return e.recordLayout(id, d, state)

	default:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
	}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func roundUpBits(n int64, align int) int64 {
	a := int64(align) * 8
	if a <= 8 && n%8 == 0 {
		return n
	}
	if r := n % a; r != 0 {
		return n + (a - r)
	}
	return n
}

func bytesFor(bitsUsed int64) int {
	return int((bitsUsed + 7) / 8)
}

func (e *LayoutEngine) arrayFixedLayout(id, elem entity.TypeID, length uint32, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	stride := roundUp(elemLayout.Size, elemAlign)
	n, cerr := safecast.Conv[int](length)
	if cerr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrOverflow, Type: id, Err: cerr}
	}
	size := int64(stride) * int64(n)
	if _, cerr := safecast.Conv[int32](size); cerr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrOverflow, Type: id, Err: cerr}
	}
	return TypeLayout{
		Size:  stride * n,
		Align: elemAlign,
	}, nil
}

// isDynamic reports whether objects of the class carry a vptr.
func (e *LayoutEngine) isDynamic(d *entity.Decl) bool {
	for _, b := range d.Bases {
		base := e.Program.Base(b)
		if base.Virtual {
			return true
		}
		if bd := e.Program.Decl(e.Program.ClassOf(base.Type)); bd != nil && e.isDynamic(bd) {
			return true
		}
	}
	for _, m := range d.Children {
		if md := e.Program.Decl(m); md.Kind == entity.DeclFunction && md.Has(entity.FlagVirtual) {
			return true
		}
	}
	return false
}

// recordLayout follows the Itanium C++ ABI in simplified form: primary
// dynamic base or vptr first, then non-virtual bases, fields in declaration
// order, and virtual bases last.
func (e *LayoutEngine) recordLayout(id entity.TypeID, d *entity.Decl, state *layoutState) (TypeLayout, *LayoutError) {
	out := TypeLayout{Align: 1, Dynamic: e.isDynamic(d)}
	var bitsUsed int64
	storage := false
	emptyAt := map[entity.TypeID][]int{}

	var virtuals []entity.BaseID
	primary := entity.NoBaseID
	if out.Dynamic {
		for _, b := range d.Bases {
			base := e.Program.Base(b)
			if bd := e.Program.Decl(e.Program.ClassOf(base.Type)); !base.Virtual && bd != nil && e.isDynamic(bd) {
				primary = b
				break
			}
		}
		if !primary.IsValid() {
			ptr := e.ptrLayout()
			bitsUsed = int64(ptr.Size) * 8
			out.Align = ptr.Align
			storage = true
		}
	}

	placeBase := func(b entity.BaseID) *LayoutError {
		base := e.Program.Base(b)
		bt := e.Program.Types.Unqualified(e.Program.Dealias(base.Type))
		bl, err := e.layoutOf(bt, state)
		if err != nil {
			return err
		}
		off := roundUp(bytesFor(bitsUsed), bl.Align)
		if bl.Empty {
			off = 0
			for conflicts(emptyAt[bt], off) {
				off = roundUp(max(off+1, bytesFor(bitsUsed)), bl.Align)
			}
			emptyAt[bt] = append(emptyAt[bt], off)
			if off > 0 && off >= bytesFor(bitsUsed) {
				bitsUsed = int64(off+bl.Size) * 8
			}
		} else {
			bitsUsed = int64(off+bl.Size) * 8
			storage = true
		}
		out.Align = max(out.Align, bl.Align)
		out.Bases = append(out.Bases, BaseLayout{Base: b, Offset: off})
		return nil
	}

	if primary.IsValid() {
		if err := placeBase(primary); err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
	}
	for _, b := range d.Bases {
		if b == primary {
			continue
		}
		if e.Program.Base(b).Virtual {
			virtuals = append(virtuals, b)
			continue
		}
		if err := placeBase(b); err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
	}

	for _, f := range e.Program.Fields(d.Canonical) {
		fd := e.Program.MustDecl(f)
		fl, err := e.layoutOf(fd.Type, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		if fd.Has(entity.FlagBitField) {
			unit := max(fl.Align, 1)
			width := int64(fd.BitWidth)
			if width == 0 {
				bitsUsed = roundUpBits(bitsUsed, unit)
				out.Fields = append(out.Fields, FieldLayout{Decl: f, OffsetBit: bitsUsed, BitField: true})
				continue
			}
			unitBits := int64(unit) * 8
			if width > int64(fl.Size)*8 || bitsUsed/unitBits != (bitsUsed+width-1)/unitBits {
				bitsUsed = roundUpBits(bitsUsed, unit)
			}
			out.Fields = append(out.Fields, FieldLayout{Decl: f, OffsetBit: bitsUsed, SizeBits: width, BitField: true})
			bitsUsed += width
			storage = true
			if fd.Name != 0 {
				out.Align = max(out.Align, unit)
			}
			continue
		}
		align := max(fl.Align, 1)
		if fd.Align > 0 {
			align = max(align, int(fd.Align))
		}
		if fd.Has(entity.FlagNoUniqueAddress) && fl.Empty {
			out.Fields = append(out.Fields, FieldLayout{Decl: f, Align: align})
			out.Align = max(out.Align, align)
			continue
		}
		off := roundUp(bytesFor(bitsUsed), align)
		out.Fields = append(out.Fields, FieldLayout{Decl: f, OffsetBit: int64(off) * 8, SizeBits: int64(fl.Size) * 8, Align: align})
		bitsUsed = int64(off+fl.Size) * 8
		out.Align = max(out.Align, align)
		storage = true
	}

	for _, b := range virtuals {
		if err := placeBase(b); err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
	}

	if d.Align > 0 {
		out.Align = max(out.Align, int(d.Align))
	}
	size := roundUp(bytesFor(bitsUsed), out.Align)
	if size == 0 {
		size = roundUp(1, out.Align)
	}
	if _, cerr := safecast.Conv[int32](size); cerr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrOverflow, Type: id, Err: cerr}
	}
	out.Size = size
	out.Empty = !storage
	return out, nil
}

func conflicts(offsets []int, off int) bool {
	for _, o := range offsets {
		if o == off {
			return true
		}
	}
	return false
}

// unionLayout overlaps every member at offset zero.
func (e *LayoutEngine) unionLayout(id entity.TypeID, d *entity.Decl, state *layoutState) (TypeLayout, *LayoutError) {
	out := TypeLayout{Align: 1}
	maxBits := int64(0)
	storage := false
	for _, f := range e.Program.Fields(d.Canonical) {
		fd := e.Program.MustDecl(f)
		fl, err := e.layoutOf(fd.Type, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		if fd.Has(entity.FlagBitField) {
			width := int64(fd.BitWidth)
			out.Fields = append(out.Fields, FieldLayout{Decl: f, SizeBits: width, BitField: true})
			if width > 0 {
				maxBits = max(maxBits, width)
				storage = true
				if fd.Name != 0 {
					out.Align = max(out.Align, fl.Align)
				}
			}
			continue
		}
		align := max(fl.Align, 1)
		if fd.Align > 0 {
			align = max(align, int(fd.Align))
		}
		out.Fields = append(out.Fields, FieldLayout{Decl: f, SizeBits: int64(fl.Size) * 8, Align: align})
		maxBits = max(maxBits, int64(fl.Size)*8)
		out.Align = max(out.Align, align)
		storage = true
	}
	if d.Align > 0 {
		out.Align = max(out.Align, int(d.Align))
	}
	size := roundUp(max(bytesFor(maxBits), 1), out.Align)
	if _, cerr := safecast.Conv[int32](size); cerr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrOverflow, Type: id, Err: cerr}
	}
	out.Size = size
	out.Empty = !storage
	return out, nil
}
