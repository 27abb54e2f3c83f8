package space

import (
	"fmt"
	"math"
)

// DType is the numeric element type of a leaf.
type DType uint8

const (
	Int8 DType = iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var dtypeNames = [...]string{
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

func (d DType) String() string {
	if int(d) < len(dtypeNames) {
		return dtypeNames[d]
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

// ParseDType is the inverse of DType.String.
func ParseDType(s string) (DType, error) {
	for i, name := range dtypeNames {
		if name == s {
			return DType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dtype %q", s)
}

// IsFloat reports whether d is a floating point type.
func (d DType) IsFloat() bool { return d == Float32 || d == Float64 }

// IsSigned reports whether d is a signed integer type.
func (d DType) IsSigned() bool { return d <= Int64 }

// IsUnsigned reports whether d is an unsigned integer type.
func (d DType) IsUnsigned() bool { return d >= Uint8 && d <= Uint64 }

// Bits returns the storage width of d.
func (d DType) Bits() int {
	switch d {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	default:
		return 64
	}
}

// Bounds returns the minimum and maximum representable value of d.
// Float types report their largest finite magnitude.
func (d DType) Bounds() (lo, hi float64) {
	switch d {
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Int32:
		return math.MinInt32, math.MaxInt32
	case Int64:
		return math.MinInt64, math.MaxInt64
	case Uint8:
		return 0, math.MaxUint8
	case Uint16:
		return 0, math.MaxUint16
	case Uint32:
		return 0, math.MaxUint32
	case Uint64:
		return 0, math.MaxUint64
	case Float32:
		return -math.MaxFloat32, math.MaxFloat32
	default:
		return -math.MaxFloat64, math.MaxFloat64
	}
}

// Cast converts v to the nearest value representable in d. Integer types
// truncate toward zero and saturate at their bounds; NaN becomes 0.
func (d DType) Cast(v float64) float64 {
	switch {
	case d == Float64:
		return v
	case d == Float32:
		return float64(float32(v))
	case math.IsNaN(v):
		return 0
	}
	lo, hi := d.Bounds()
	v = math.Trunc(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func signedOfBits(bits int) DType {
	switch bits {
	case 8:
		return Int8
	case 16:
		return Int16
	case 32:
		return Int32
	default:
		return Int64
	}
}

// Promote returns the smallest dtype both a and b convert to without loss,
// following numpy's promotion table:
//
//	same kind           -> the wider of the two
//	signed + unsigned   -> signed type of twice the unsigned width (uint64 -> float64)
//	int + float32       -> float32 for ints up to 16 bits, float64 otherwise
func Promote(a, b DType) DType {
	if a == b {
		return a
	}
	switch {
	case a.IsFloat() && b.IsFloat():
		return Float64
	case a.IsFloat() || b.IsFloat():
		f, i := a, b
		if b.IsFloat() {
			f, i = b, a
		}
		if f == Float32 && i.Bits() <= 16 {
			return Float32
		}
		return Float64
	case a.IsSigned() == b.IsSigned():
		if a.Bits() >= b.Bits() {
			return a
		}
		return b
	}
	s, u := a, b
	if b.IsSigned() {
		s, u = b, a
	}
	if u.Bits() == 64 {
		return Float64
	}
	need := 2 * u.Bits()
	if s.Bits() > need {
		need = s.Bits()
	}
	return signedOfBits(need)
}

// MaxExactInt bounds the integer magnitude an Array element holds exactly.
// Integer values beyond it are rejected rather than rounded.
const MaxExactInt = 1 << 53

// exactInt reports whether an integer element lies within MaxExactInt.
func exactInt(f float64) bool { return f >= -MaxExactInt && f <= MaxExactInt }

// exactScalar reports whether the Go scalar v survives conversion to an
// Array element unchanged.
func exactScalar(v any) bool {
	switch x := v.(type) {
	case int:
		return int64(x) >= -MaxExactInt && int64(x) <= MaxExactInt
	case int64:
		return x >= -MaxExactInt && x <= MaxExactInt
	case uint:
		return uint64(x) <= MaxExactInt
	case uint64:
		return x <= MaxExactInt
	}
	return true
}

// scalarDType maps a Go numeric scalar to its dtype.
func scalarDType(v any) (float64, DType, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), Int64, true
	case int8:
		return float64(x), Int8, true
	case int16:
		return float64(x), Int16, true
	case int32:
		return float64(x), Int32, true
	case int64:
		return float64(x), Int64, true
	case uint:
		return float64(x), Uint64, true
	case uint8:
		return float64(x), Uint8, true
	case uint16:
		return float64(x), Uint16, true
	case uint32:
		return float64(x), Uint32, true
	case uint64:
		return float64(x), Uint64, true
	case float32:
		return float64(x), Float32, true
	case float64:
		return x, Float64, true
	}
	return 0, 0, false
}
