package meta

import (
	"errors"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/layout"
	"reflex/internal/refl"
)

func (c *call) layoutError(err error) error {
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		return c.fail(diag.ReflLayout, "%v", err)
	}
	p := c.prog()
	switch lerr.Kind {
	case layout.LayoutErrIncomplete:
		return c.fail(diag.ReflIncomplete, "%s is incomplete", typeName(p, lerr.Type))
	case layout.LayoutErrNoSize:
		return c.fail(diag.ReflLayout, "%s has no size", typeName(p, lerr.Type))
	}
	return c.fail(diag.ReflLayout, "%v", err)
}

// field resolves a non-static data member reflection and its placement.
func (c *call) field(r refl.Value) (*entity.Decl, layout.FieldLayout, bool, error) {
	d, id, ok := c.s.declWith(r, entity.DeclField)
	if !ok {
		return nil, layout.FieldLayout{}, false, nil
	}
	fl, err := c.s.Layout.FieldOf(id)
	if err != nil {
		return nil, layout.FieldLayout{}, true, c.layoutError(err)
	}
	return d, fl, true, nil
}

// sizedType returns the type whose layout answers size and alignment
// queries about r.
func (c *call) sizedType(r refl.Value) (entity.TypeID, bool) {
	p := c.prog()
	switch r.Kind() {
	case refl.KindType:
		return p.StripRef(r.Type()), true
	case refl.KindObject, refl.KindValue:
		if t := r.LiftType(); t.IsValid() {
			return t, true
		}
		ref, _ := r.LowerAll().AsRef()
		t := c.s.ObjectType(ref)
		return t, t.IsValid()
	case refl.KindBase:
		return p.Base(r.Base()).Type, true
	case refl.KindSpec:
		return p.Spec(r.Spec()).Type, true
	case refl.KindDecl:
		if d, _, ok := c.s.declWith(r, entity.DeclVariable, entity.DeclBinding, entity.DeclParam); ok {
			return d.Type, true
		}
	}
	return entity.NoTypeID, false
}

func opOffsetOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	if r.Depth() == 0 && r.Kind() == refl.KindBase {
		off, err := c.s.Layout.BaseOffset(r.Base())
		if err != nil {
			return Result{}, c.layoutError(err)
		}
		return sizeResult(int64(off)), nil
	}
	_, fl, ok, err := c.field(r)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, inapplicable(r)
	}
	return sizeResult(fl.OffsetBit / 8), nil
}

func opBitOffsetOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	if r.Depth() == 0 && r.Kind() == refl.KindBase {
		if _, err := c.s.Layout.BaseOffset(r.Base()); err != nil {
			return Result{}, c.layoutError(err)
		}
		return sizeResult(0), nil
	}
	_, fl, ok, err := c.field(r)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, inapplicable(r)
	}
	return sizeResult(fl.OffsetBit % 8), nil
}

func opSizeOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	d, fl, ok, err := c.field(r)
	if err != nil {
		return Result{}, err
	}
	if ok {
		if d.Has(entity.FlagBitField) {
			return Result{}, c.fail(diag.ReflKindMismatch, "bit-field %q has no size in bytes", c.prog().Name(r.Decl()))
		}
		return sizeResult(fl.SizeBits / 8), nil
	}
	t, ok := c.sizedType(r)
	if !ok {
		return Result{}, inapplicable(r)
	}
	size, err := c.s.Layout.SizeOf(t)
	if err != nil {
		return Result{}, c.layoutError(err)
	}
	return sizeResult(int64(size)), nil
}

func opBitSizeOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	_, fl, ok, err := c.field(r)
	if err != nil {
		return Result{}, err
	}
	if ok {
		return sizeResult(fl.SizeBits), nil
	}
	if r.Depth() == 0 && r.Kind() == refl.KindSpec {
		if spec := c.prog().Spec(r.Spec()); spec.HasWidth {
			return sizeResult(int64(spec.Width)), nil
		}
	}
	t, ok := c.sizedType(r)
	if !ok {
		return Result{}, inapplicable(r)
	}
	size, err := c.s.Layout.SizeOf(t)
	if err != nil {
		return Result{}, c.layoutError(err)
	}
	return sizeResult(int64(size) * 8), nil
}

func opAlignmentOf(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	d, fl, ok, err := c.field(r)
	if err != nil {
		return Result{}, err
	}
	if ok {
		if d.Has(entity.FlagBitField) {
			return Result{}, errorf(diag.ReflBitFieldAlignment, c.argSpan(0), "alignment_of: bit-field %q has no alignment", c.prog().Name(r.Decl()))
		}
		return sizeResult(int64(fl.Align)), nil
	}
	t, ok := c.sizedType(r)
	if !ok {
		return Result{}, inapplicable(r)
	}
	align, err := c.s.Layout.AlignOf(t)
	if err != nil {
		return Result{}, c.layoutError(err)
	}
	if v, _, ok := c.s.declWith(r, entity.DeclVariable); ok && int(v.Align) > align {
		align = int(v.Align)
	}
	return sizeResult(int64(align)), nil
}
