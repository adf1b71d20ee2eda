package consteval

import (
	"math"

	"fortio.org/safecast"

	"reflex/internal/entity"
)

// AddInt64Checked returns (a+b, ok). ok is false on signed overflow.
func AddInt64Checked(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// SubInt64Checked returns (a-b, ok). ok is false on signed overflow.
func SubInt64Checked(a, b int64) (int64, bool) {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		return 0, false
	}
	return a - b, true
}

// MulInt64Checked returns (a*b, ok). ok is false on signed overflow.
func MulInt64Checked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, false
	}
	res := a * b
	if res/b != a {
		return 0, false
	}
	return res, true
}

// fits reports whether v is representable in the integral type t.
// Unsigned 64-bit values are carried in int64 and must stay non-negative.
func fits(p *entity.Program, t entity.TypeID, v int64) bool {
	tt, ok := p.Types.Lookup(p.Types.Unqualified(p.Dealias(t)))
	if !ok {
		return true
	}
	if tt.Kind == entity.KindEnum {
		if d := p.Decl(tt.Decl); d != nil && d.Underlying.IsValid() {
			return fits(p, d.Underlying, v)
		}
		return true
	}
	var err error
	switch {
	case tt.Kind == entity.KindBool:
		if v != 0 && v != 1 {
			return false
		}
	case tt.Kind == entity.KindChar:
		_, err = safecast.Conv[int8](v)
		if err != nil {
			_, err = safecast.Conv[uint8](v)
		}
	case tt.Kind == entity.KindInt && tt.Width == entity.Width8:
		_, err = safecast.Conv[int8](v)
	case tt.Kind == entity.KindInt && tt.Width == entity.Width16:
		_, err = safecast.Conv[int16](v)
	case tt.Kind == entity.KindInt && tt.Width == entity.Width32:
		_, err = safecast.Conv[int32](v)
	case tt.Kind == entity.KindUint && tt.Width == entity.Width8:
		_, err = safecast.Conv[uint8](v)
	case tt.Kind == entity.KindUint && tt.Width == entity.Width16:
		_, err = safecast.Conv[uint16](v)
	case tt.Kind == entity.KindUint && tt.Width == entity.Width32:
		_, err = safecast.Conv[uint32](v)
	case tt.Kind == entity.KindUint:
		_, err = safecast.Conv[uint64](v)
	}
	return err == nil
}
