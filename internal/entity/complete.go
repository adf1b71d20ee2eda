package entity

import (
	"fmt"
	"math/bits"

	"reflex/internal/source"
)

// ValidateSpec checks one member description against the rules of
// CompleteClass. class may be NoDeclID when the owner is not known yet.
func (p *Program) ValidateSpec(class DeclID, spec MemberSpec) error {
	t := p.Dealias(spec.Type)
	tt, ok := p.Types.Lookup(t)
	if !ok {
		return fmt.Errorf("%w: missing type", ErrInvalidMember)
	}
	switch tt.Kind {
	case KindVoid, KindFunction:
		return fmt.Errorf("%w: %s member", ErrInvalidMember, tt.Kind)
	}
	if !p.IsReference(t) && !p.IsComplete(t) {
		return fmt.Errorf("%w: member of incomplete type", ErrInvalidMember)
	}
	if class.IsValid() && p.ClassOf(t) == class {
		return fmt.Errorf("%w: class cannot contain itself", ErrInvalidMember)
	}
	if spec.HasAlign && (spec.Align == 0 || bits.OnesCount32(spec.Align) != 1) {
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidMember, spec.Align)
	}
	if !spec.HasWidth {
		if spec.Name == source.NoStringID {
			return fmt.Errorf("%w: unnamed member requires a bit width", ErrInvalidMember)
		}
		return nil
	}
	if !p.IsIntegral(t) {
		return fmt.Errorf("%w: bit-field of non-integral type", ErrInvalidMember)
	}
	if spec.HasAlign {
		return fmt.Errorf("%w: bit-field cannot have an alignment", ErrInvalidMember)
	}
	if spec.Width == 0 && spec.Name != source.NoStringID {
		return fmt.Errorf("%w: zero-width bit-field must be unnamed", ErrInvalidMember)
	}
	if spec.NoUniqueAddress {
		return fmt.Errorf("%w: bit-field cannot have no_unique_address", ErrInvalidMember)
	}
	return nil
}

// CompleteClass defines the incomplete class with one non-static data
// member per spec, in order. It never modifies the class on failure and
// rejects classes that are already complete.
func (p *Program) CompleteClass(class DeclID, specs []SpecID) error {
	c := p.Decl(class)
	if c == nil || c.Kind != DeclClass || c.Has(FlagInjected) {
		return ErrNotClass
	}
	if c.Has(FlagComplete) {
		return fmt.Errorf("%w: %s", ErrAlreadyComplete, p.Name(class))
	}
	for i, sid := range specs {
		spec := p.Spec(sid)
		if spec == nil {
			return &ArgError{Index: i, Err: ErrInvalidMember}
		}
		if err := p.ValidateSpec(class, *spec); err != nil {
			return &ArgError{Index: i, Err: err}
		}
	}
	for _, sid := range specs {
		spec := *p.Spec(sid)
		d := Decl{
			Kind:   DeclField,
			Name:   spec.Name,
			Parent: class,
			Type:   spec.Type,
			Access: AccessPublic,
			Flags:  FlagUserDeclared,
		}
		if spec.HasAlign {
			d.Align = spec.Align
		}
		if spec.HasWidth {
			d.Flags |= FlagBitField
			d.BitWidth = spec.Width
		}
		if spec.NoUniqueAddress {
			d.Flags |= FlagNoUniqueAddress
		}
		if spec.Name == source.NoStringID {
			d.Flags |= FlagAnonymous
		}
		p.newDecl(d, true)
	}
	p.decls[class].Flags |= FlagComplete
	return nil
}
