package meta

import (
	"strings"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/refl"
	"reflex/internal/source"
)

// call is one metafunction invocation. Arguments are evaluated on demand,
// in the order the implementation asks for them.
type call struct {
	s     *Session
	entry *Entry
	args  []entity.ExprID
	span  source.Span
}

func (c *call) prog() *entity.Program { return c.s.Program }

func (c *call) n() int { return len(c.args) }

func (c *call) argSpan(i int) source.Span {
	if i < len(c.args) {
		if sp := c.s.exprSpan(c.args[i]); sp != (source.Span{}) {
			return sp
		}
	}
	return c.span
}

func (c *call) value(i int) (refl.Value, error) {
	return c.s.Evaluate(c.args[i], true)
}

func (c *call) glvalue(i int) (refl.Value, error) {
	return c.s.Evaluate(c.args[i], false)
}

func (c *call) reflection(i int) (refl.Value, error) {
	v, err := c.value(i)
	if err != nil {
		return refl.Value{}, err
	}
	if !v.IsReflection() {
		return refl.Value{}, errorf(diag.ReflBadArgument, c.argSpan(i), "argument %d of %s is not a reflection", i, c.entry.Name)
	}
	return v, nil
}

func (c *call) integer(i int) (int64, error) {
	v, err := c.value(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, errorf(diag.ReflBadArgument, c.argSpan(i), "argument %d of %s is not an integer", i, c.entry.Name)
	}
	return n, nil
}

func (c *call) index(i int) (int, error) {
	n, err := c.integer(i)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errorf(diag.ReflBadArgument, c.argSpan(i), "argument %d of %s is negative", i, c.entry.Name)
	}
	return int(n), nil
}

func (c *call) boolean(i int) (bool, error) {
	v, err := c.value(i)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, errorf(diag.ReflBadArgument, c.argSpan(i), "argument %d of %s is not a boolean", i, c.entry.Name)
	}
	return b, nil
}

// text reads a string argument given as a character array or a pointer
// into one.
func (c *call) text(i int) (string, error) {
	v, err := c.value(i)
	if err != nil {
		return "", err
	}
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	if ref, ok := v.AsRef(); ok {
		if s, ok := c.s.readString(ref, c.argSpan(i)); ok {
			return s, nil
		}
	}
	return "", errorf(diag.ReflBadArgument, c.argSpan(i), "argument %d of %s is not a string", i, c.entry.Name)
}

func (s *Session) readString(ref refl.Ref, span source.Span) (string, bool) {
	start := 0
	if n := len(ref.Path); n > 0 {
		if t := s.ObjectType(refl.Ref{Decl: ref.Decl, Path: ref.Path[:n-1]}); t.IsValid() {
			if tt, ok := s.Program.Types.Lookup(s.Program.Types.Unqualified(t)); ok && tt.Kind == entity.KindArray {
				start = int(ref.Path[n-1])
				ref.Path = ref.Path[:n-1]
			}
		}
	}
	v, err := s.ReadObject(ref, span)
	if err != nil {
		return "", false
	}
	elems, ok := v.Elems()
	if !ok || start > len(elems) {
		return "", false
	}
	return refl.Aggregate(elems[start:]...).AsString()
}

// typeArg evaluates argument i and requires a type reflection.
func (c *call) typeArg(i int) (entity.TypeID, error) {
	v, err := c.reflection(i)
	if err != nil {
		return entity.NoTypeID, err
	}
	if !v.Is(refl.KindType) || v.Depth() != 0 {
		return entity.NoTypeID, c.mismatch(i, v, "a type")
	}
	return v.Type(), nil
}

// sentinel evaluates the trailing sentinel argument; iteration reaches it
// only once exhausted.
func (c *call) sentinel() (Result, error) {
	v, err := c.reflection(c.n() - 1)
	if err != nil {
		return Result{}, err
	}
	return reflResult(v), nil
}

func (c *call) mismatch(i int, v refl.Value, want string) *Error {
	return errorf(diag.ReflKindMismatch, c.argSpan(i), "%s: argument %d is %s, expected %s", c.entry.Name, i, describe(v), want)
}

func (c *call) fail(code diag.Code, format string, args ...any) *Error {
	return errorf(code, c.span, c.entry.Name+": "+format, args...)
}

// inapplicable rejects an operand outside the operation's domain.
func inapplicable(v refl.Value) error {
	return errInapplicable{what: describe(v)}
}

func describe(v refl.Value) string {
	if !v.IsReflection() {
		return "a non-reflection constant"
	}
	name := v.Kind().String()
	if strings.ContainsRune("aeiou", rune(name[0])) {
		return "an " + name + " reflection"
	}
	return "a " + name + " reflection"
}
