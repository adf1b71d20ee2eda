package meta

import (
	"errors"
	"unicode"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/refl"
	"reflex/internal/source"
)

var keywords = map[string]struct{}{
	"alignas": {}, "alignof": {}, "auto": {}, "bool": {}, "break": {}, "case": {}, "catch": {},
	"char": {}, "class": {}, "concept": {}, "const": {}, "consteval": {}, "constexpr": {},
	"constinit": {}, "continue": {}, "decltype": {}, "default": {}, "delete": {}, "do": {},
	"double": {}, "else": {}, "enum": {}, "explicit": {}, "export": {}, "extern": {}, "false": {},
	"float": {}, "for": {}, "friend": {}, "goto": {}, "if": {}, "inline": {}, "int": {}, "long": {},
	"mutable": {}, "namespace": {}, "new": {}, "noexcept": {}, "nullptr": {}, "operator": {},
	"private": {}, "protected": {}, "public": {}, "requires": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "static_assert": {}, "struct": {}, "switch": {},
	"template": {}, "this": {}, "throw": {}, "true": {}, "try": {}, "typedef": {}, "typename": {},
	"union": {}, "unsigned": {}, "using": {}, "virtual": {}, "void": {}, "volatile": {}, "while": {},
}

// ValidIdentifier reports whether name can be declared as an identifier:
// NFC-normalized, starting with a letter or underscore, continuing with
// letters, digits or underscores, and not a keyword.
func ValidIdentifier(name string) bool {
	if name == "" || !norm.NFC.IsNormalString(name) {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return false
		}
	}
	_, kw := keywords[name]
	return !kw
}

func opDataMemberSpec(c *call) (Result, error) {
	t, err := c.typeArg(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	spec := entity.MemberSpec{Type: t, Name: source.NoStringID}

	hasName, err := c.boolean(1)
	if err != nil {
		return Result{}, err
	}
	if hasName {
		name, err := c.text(2)
		if err != nil {
			return Result{}, err
		}
		if !ValidIdentifier(name) {
			return Result{}, errorf(diag.ReflInvalidIdentifier, c.argSpan(2), "data_member_spec: %q is not a valid identifier", name)
		}
		spec.Name = p.Strings.Intern(name)
	}

	if spec.HasAlign, err = c.boolean(3); err != nil {
		return Result{}, err
	}
	if spec.HasAlign {
		if spec.Align, err = c.unsigned(4); err != nil {
			return Result{}, err
		}
	}
	if spec.HasWidth, err = c.boolean(5); err != nil {
		return Result{}, err
	}
	if spec.HasWidth {
		if spec.Width, err = c.unsigned(6); err != nil {
			return Result{}, err
		}
	}
	if spec.NoUniqueAddress, err = c.boolean(7); err != nil {
		return Result{}, err
	}

	if !p.IsReference(t) && !p.IsComplete(t) {
		return Result{}, errorf(diag.ReflIncomplete, c.argSpan(0), "data_member_spec: %s is incomplete", typeName(p, t))
	}
	if err := p.ValidateSpec(entity.NoDeclID, spec); err != nil {
		return Result{}, c.fail(diag.ReflBadMemberSpec, "%v", err)
	}
	return reflResult(refl.MakeSpec(p.AddSpec(spec))), nil
}

func (c *call) unsigned(i int) (uint32, error) {
	n, err := c.integer(i)
	if err != nil {
		return 0, err
	}
	u, cerr := safecast.Conv[uint32](n)
	if cerr != nil {
		return 0, errorf(diag.ReflBadMemberSpec, c.argSpan(i), "%s: argument %d is out of range: %d", c.entry.Name, i, n)
	}
	return u, nil
}

func opDefineClass(c *call) (Result, error) {
	r, err := c.reflection(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	t, ok := typeOperand(r)
	if !ok || !p.ClassOf(t).IsValid() {
		return Result{}, c.mismatch(0, r, "a class type")
	}
	class := p.ClassOf(t)
	if p.IsComplete(t) {
		return Result{}, errorf(diag.ReflAlreadyComplete, c.argSpan(0), "define_class: %s is already complete", typeName(p, t)).
			WithNote(p.MustDecl(class).Span, "class declared here")
	}
	specs := make([]entity.SpecID, 0, c.n()-1)
	for i := 1; i < c.n(); i++ {
		v, err := c.reflection(i)
		if err != nil {
			return Result{}, err
		}
		if v.Depth() != 0 || v.Kind() != refl.KindSpec {
			return Result{}, c.mismatch(i, v, "a data member description")
		}
		specs = append(specs, v.Spec())
	}
	if err := p.CompleteClass(class, specs); err != nil {
		switch {
		case errors.Is(err, entity.ErrAlreadyComplete):
			return Result{}, c.fail(diag.ReflAlreadyComplete, "%v", err)
		case errors.Is(err, entity.ErrNotClass):
			return Result{}, c.mismatch(0, r, "a class type")
		}
		var argErr *entity.ArgError
		if errors.As(err, &argErr) {
			return Result{}, errorf(diag.ReflBadMemberSpec, c.argSpan(argErr.Index+1), "define_class: %v", argErr.Err)
		}
		return Result{}, c.fail(diag.ReflBadMemberSpec, "%v", err)
	}
	return reflResult(r), nil
}
