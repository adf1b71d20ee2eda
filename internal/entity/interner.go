package entity

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs of the fundamental types.
type Builtins struct {
	Void    TypeID
	Bool    TypeID
	Char    TypeID
	Int     TypeID
	Uint    TypeID
	Long    TypeID
	Size    TypeID
	Double  TypeID
	Nullptr TypeID
	Info    TypeID
}

// Types provides stable TypeIDs by hashing structural descriptors.
type Types struct {
	types    []Type
	index    map[Type]TypeID
	fns      []FnInfo
	fnIndex  map[string]TypeID
	builtins Builtins
}

// NewTypes constructs an interner seeded with the fundamental types.
func NewTypes() *Types {
	in := &Types{
		types:   []Type{{Kind: KindInvalid}},
		index:   make(map[Type]TypeID, 64),
		fnIndex: make(map[string]TypeID),
	}
	in.builtins = Builtins{
		Void:    in.Intern(Type{Kind: KindVoid}),
		Bool:    in.Intern(Type{Kind: KindBool}),
		Char:    in.Intern(Type{Kind: KindChar, Width: Width8}),
		Int:     in.Intern(MakeInt(Width32)),
		Uint:    in.Intern(MakeUint(Width32)),
		Long:    in.Intern(MakeInt(Width64)),
		Size:    in.Intern(MakeUint(Width64)),
		Double:  in.Intern(MakeFloat(Width64)),
		Nullptr: in.Intern(Type{Kind: KindNullptr}),
		Info:    in.Intern(Type{Kind: KindInfo}),
	}
	return in
}

// Builtins returns the fundamental TypeIDs.
func (in *Types) Builtins() Builtins {
	return in.builtins
}

// Intern ensures t has a stable TypeID.
func (in *Types) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Types) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for id.
func (in *Types) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Types) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("entity: invalid TypeID")
	}
	return t
}

// Function interns a function type with the given signature.
func (in *Types) Function(info FnInfo) TypeID {
	key := fnKey(info)
	if id, ok := in.fnIndex[key]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	info.Params = slices.Clone(info.Params)
	in.fns = append(in.fns, info)
	id := in.internRaw(Type{Kind: KindFunction, Payload: slot})
	in.fnIndex[key] = id
	return id
}

// FnInfo returns the signature of a function type.
func (in *Types) FnInfo(id TypeID) (FnInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFunction || int(t.Payload) >= len(in.fns) {
		return FnInfo{}, false
	}
	return in.fns[t.Payload], true
}

func fnKey(info FnInfo) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(info.Result), 10))
	sb.WriteByte('(')
	for i, p := range info.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(p), 10))
	}
	sb.WriteByte(')')
	if info.Variadic {
		sb.WriteString("...")
	}
	if info.Noexcept {
		sb.WriteString("n")
	}
	sb.WriteString(strconv.Itoa(int(info.Quals)))
	sb.WriteString(strconv.Itoa(int(info.Ref)))
	return sb.String()
}

// Qualified returns t with the extra qualifiers applied.
func (in *Types) Qualified(id TypeID, q Quals) TypeID {
	t, ok := in.Lookup(id)
	if !ok || q == 0 {
		return id
	}
	switch t.Kind {
	case KindFunction, KindLValueRef, KindRValueRef:
		return id
	}
	t.Quals |= q
	return in.Intern(t)
}

// Unqualified strips top-level cv-qualifiers.
func (in *Types) Unqualified(id TypeID) TypeID {
	t, ok := in.Lookup(id)
	if !ok || t.Quals == 0 {
		return id
	}
	t.Quals = 0
	return in.Intern(t)
}

// Pointer interns a pointer to elem.
func (in *Types) Pointer(elem TypeID) TypeID { return in.Intern(MakePointer(elem)) }

// LValueRef interns an lvalue reference to elem.
func (in *Types) LValueRef(elem TypeID) TypeID { return in.Intern(MakeLValueRef(elem)) }

// Array interns elem[count].
func (in *Types) Array(elem TypeID, count uint32) TypeID { return in.Intern(MakeArray(elem, count)) }
