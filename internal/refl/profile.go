package refl

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"reflex/internal/entity"
)

// DomainProfile separates profile digests from other content hashes.
const DomainProfile = "reflex/profile/v1"

// Profile is the structural identity of a value. Equal profiles mean the
// values denote the same entity or constant. Profiles are comparable and
// usable as map keys.
type Profile string

// SpecSource resolves member descriptions for profiling.
// *entity.Program implements it.
type SpecSource interface {
	Spec(entity.SpecID) *entity.MemberSpec
}

// ProfileOf computes the profile of v after lowering it completely. For
// lifted constants the type recorded by the innermost lift is part of the
// identity, so 1 as int and 1 as long differ while the same reflection at
// different depths does not. Aggregate elements follow the same rule.
func ProfileOf(v Value, specs SpecSource) Profile {
	var sb strings.Builder
	writeValue(&sb, v, specs)
	return Profile(sb.String())
}

func writeValue(sb *strings.Builder, v Value, specs SpecSource) {
	base := v.LowerAll()
	if base.rep != RepReflection && v.Depth() > 0 {
		sb.WriteString("t")
		sb.WriteString(strconv.FormatUint(uint64(v.InnermostLiftType()), 10))
		sb.WriteByte(':')
	}
	writeConstant(sb, base, specs)
}

func writeConstant(sb *strings.Builder, v Value, specs SpecSource) {
	switch v.rep {
	case RepAbsent:
		sb.WriteString("_")
	case RepInt:
		sb.WriteString("i")
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case RepBool:
		sb.WriteString("b")
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case RepNullptr:
		sb.WriteString("n")
	case RepLValue, RepPointer:
		if v.rep == RepLValue {
			sb.WriteString("l")
		} else {
			sb.WriteString("p")
		}
		sb.WriteString(strconv.FormatUint(uint64(v.ref.Decl), 10))
		for _, idx := range v.ref.Path {
			sb.WriteByte('.')
			sb.WriteString(strconv.FormatUint(uint64(idx), 10))
		}
	case RepAggregate:
		sb.WriteString("{")
		for i, e := range v.elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeValue(sb, e, specs)
		}
		sb.WriteString("}")
	case RepReflection:
		writeReflection(sb, v, specs)
	}
}

func writeReflection(sb *strings.Builder, v Value, specs SpecSource) {
	sb.WriteString("r")
	sb.WriteString(strconv.Itoa(int(v.tag)))
	sb.WriteByte(':')
	if v.tag != KindSpec || specs == nil {
		sb.WriteString(strconv.FormatUint(uint64(v.handle), 10))
		return
	}
	spec := specs.Spec(entity.SpecID(v.handle))
	if spec == nil {
		sb.WriteString("?")
		return
	}
	sb.WriteString("(")
	sb.WriteString(strconv.FormatUint(uint64(spec.Type), 10))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatUint(uint64(spec.Name), 10))
	sb.WriteByte(',')
	if spec.HasAlign {
		sb.WriteString(strconv.FormatUint(uint64(spec.Align), 10))
	} else {
		sb.WriteByte('-')
	}
	sb.WriteByte(',')
	if spec.HasWidth {
		sb.WriteString(strconv.FormatUint(uint64(spec.Width), 10))
	} else {
		sb.WriteByte('-')
	}
	sb.WriteByte(',')
	if spec.NoUniqueAddress {
		sb.WriteByte('u')
	}
	sb.WriteString(")")
}

// Equal compares two values by profile.
func Equal(a, b Value, specs SpecSource) bool {
	return ProfileOf(a, specs) == ProfileOf(b, specs)
}

// Digest is the domain-separated SHA-256 of the profile, hex encoded.
// Format: SHA256(domain + 0x00 + profile).
func (p Profile) Digest() string {
	h := sha256.New()
	h.Write([]byte(DomainProfile))
	h.Write([]byte{0x00})
	h.Write([]byte(p))
	return hex.EncodeToString(h.Sum(nil))
}
