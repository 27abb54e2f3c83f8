package space

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// Map is an insertion-ordered string-keyed mapping, the sample counterpart of
// a Dict.
type Map struct {
	keys []string
	vals map[string]any
}

// NewMap builds a Map from alternating key, value arguments.
func NewMap(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("space: NewMap needs key/value pairs")
	}
	m := &Map{vals: make(map[string]any, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

// Set inserts or replaces key. A replaced key keeps its position.
func (m *Map) Set(key string, v any) {
	if m.vals == nil {
		m.vals = make(map[string]any)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string { return append([]string{}, m.keys...) }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

func (m *Map) String() string {
	s := "{"
	for i, k := range m.keys {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %v", k, m.vals[k])
	}
	return s + "}"
}

// sortedKeys returns the keys of a plain Go map in sorted order, the order
// used whenever no schema dictates one.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Zero returns the zero-valued sample of s: zero arrays for Box and
// MultiDiscrete, 0 for Discrete.
func Zero(s Space) any {
	switch x := s.(type) {
	case *Box:
		return Zeros(x.DType, x.Shape...)
	case *Discrete:
		return 0
	case *MultiDiscrete:
		return Zeros(Int64, len(x.NVec))
	case *Tuple:
		out := make([]any, len(x.Spaces))
		for i, c := range x.Spaces {
			out[i] = Zero(c)
		}
		return out
	case *Dict:
		out := &Map{}
		for _, f := range x.Fields {
			out.Set(f.Name, Zero(f.Space))
		}
		return out
	}
	panic(fmt.Sprintf("space: unknown node %T", s))
}

// Sample draws a random sample of s. Bounded Box elements are uniform,
// half-bounded ones are shifted exponentials and unbounded ones are normal.
// Categorical draws never exceed MaxExactInt, so every sample is a member.
func Sample(s Space, rng *rand.Rand) any {
	switch x := s.(type) {
	case *Box:
		out := Zeros(x.DType, x.Shape...)
		for i := range out.Data {
			out.Data[i] = x.DType.Cast(sampleBounded(x.Low[i], x.High[i], x.DType, rng))
		}
		return out
	case *Discrete:
		return int(rng.Int64N(min(x.N, MaxExactInt+1)))
	case *MultiDiscrete:
		out := Zeros(Int64, len(x.NVec))
		for i, n := range x.NVec {
			out.Data[i] = float64(rng.Int64N(min(n, MaxExactInt+1)))
		}
		return out
	case *Tuple:
		out := make([]any, len(x.Spaces))
		for i, c := range x.Spaces {
			out[i] = Sample(c, rng)
		}
		return out
	case *Dict:
		out := &Map{}
		for _, f := range x.Fields {
			out.Set(f.Name, Sample(f.Space, rng))
		}
		return out
	}
	panic(fmt.Sprintf("space: unknown node %T", s))
}

// sampleSpan caps the integer range drawn from so full-width dtype bounds
// stay samplable.
const sampleSpan = 1 << 31

func sampleBounded(lo, hi float64, dtype DType, rng *rand.Rand) float64 {
	if !dtype.IsFloat() {
		lo = math.Max(math.Ceil(lo), -sampleSpan)
		hi = math.Min(math.Floor(hi), sampleSpan)
		if hi < lo {
			return lo
		}
		return lo + float64(rng.Int64N(int64(hi-lo)+1))
	}
	finiteLo := !math.IsInf(lo, 0) && lo > -math.MaxFloat32
	finiteHi := !math.IsInf(hi, 0) && hi < math.MaxFloat32
	switch {
	case finiteLo && finiteHi:
		return lo + rng.Float64()*(hi-lo)
	case finiteLo:
		return lo + rng.ExpFloat64()
	case finiteHi:
		return hi - rng.ExpFloat64()
	default:
		return rng.NormFloat64()
	}
}
