package meta

import (
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/google/uuid"

	"reflex/internal/diag"
	"reflex/internal/entity"
	"reflex/internal/refl"
	"reflex/internal/source"
)

// staticSpace is the UUID namespace synthesized object names live in.
var staticSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("reflex:static-object"))

// staticName derives the stable name of a synthesized object from its
// contents, so equal contents always map to the same object.
func staticName(kind string, content []byte) string {
	return "__reflex_" + kind + "_" + uuid.NewSHA1(staticSpace, content).String()
}

// StaticString returns the static character array holding str.
func (s *Session) StaticString(str string) entity.DeclID {
	p := s.Program
	name := staticName("str", []byte(str))
	if id, ok := p.Static(name); ok {
		return id
	}
	init := p.StringLit(str)
	return p.DefineStatic(name, p.Exprs.Get(init).Type, init)
}

// StaticArray returns the static array of elem holding values.
func (s *Session) StaticArray(elem entity.TypeID, values []refl.Value) (entity.DeclID, error) {
	p := s.Program
	n, err := safecast.Conv[uint32](len(values))
	if err != nil {
		return entity.NoDeclID, errorf(diag.ReflBadArgument, source.Span{}, "static array too large: %v", err)
	}
	var key strings.Builder
	key.WriteString(strconv.FormatUint(uint64(elem), 10))
	for _, v := range values {
		key.WriteByte('|')
		key.WriteString(string(refl.ProfileOf(v, p)))
	}
	name := staticName("arr", []byte(key.String()))
	if id, ok := p.Static(name); ok {
		return id, nil
	}
	exprs := make([]entity.ExprID, len(values))
	for i, v := range values {
		exprs[i] = s.Materialize(v, elem)
	}
	t := p.Types.Array(elem, n)
	return p.DefineStatic(name, t, p.InitList(t, exprs...)), nil
}

func opDefineStaticString(c *call) (Result, error) {
	str, err := c.text(0)
	if err != nil {
		return Result{}, err
	}
	obj := c.s.StaticString(str)
	return reflResult(refl.ObjectOf(refl.Ref{Decl: obj})), nil
}

func opDefineStaticArray(c *call) (Result, error) {
	elem, err := c.typeArg(0)
	if err != nil {
		return Result{}, err
	}
	p := c.prog()
	if !p.IsComplete(elem) || p.IsReference(elem) {
		return Result{}, errorf(diag.ReflIncomplete, c.argSpan(0), "define_static_array: element type must be a complete object type")
	}
	values := make([]refl.Value, 0, c.n()-1)
	for i := 1; i < c.n(); i++ {
		v, err := c.value(i)
		if err != nil {
			return Result{}, err
		}
		if v.IsReflection() != (p.Types.Unqualified(p.Dealias(elem)) == p.Types.Builtins().Info) {
			return Result{}, errorf(diag.ReflBadArgument, c.argSpan(i), "define_static_array: element %d does not have the element type", i-1)
		}
		values = append(values, v)
	}
	obj, err := c.s.StaticArray(elem, values)
	if err != nil {
		return Result{}, err
	}
	return reflResult(refl.ObjectOf(refl.Ref{Decl: obj})), nil
}
