package space

import (
	"fmt"
	"math"
)

// Contains reports whether v is a member of s. Box membership requires the
// exact shape, a dtype that casts to the Box dtype without loss and every
// element within bounds; categorical leaves accept an int or an integer
// array of the matching shape. Integers beyond MaxExactInt are never members.
func Contains(s Space, v any) bool {
	switch x := s.(type) {
	case *Box:
		a, ok := v.(Array)
		if !ok {
			f, dt, isScalar := scalarDType(v)
			if !isScalar || len(x.Shape) != 0 || !exactScalar(v) {
				return false
			}
			a = Scalar(dt, f)
		}
		if !shapeEqual(a.Shape, x.Shape) || Promote(a.DType, x.DType) != x.DType {
			return false
		}
		for i, e := range a.Data {
			if math.IsNaN(e) || e < x.Low[i] || e > x.High[i] || (!a.DType.IsFloat() && !exactInt(e)) {
				return false
			}
		}
		return true
	case *Discrete:
		n, ok := categoricalValue(v)
		return ok && n >= 0 && n < x.N
	case *MultiDiscrete:
		a, ok := v.(Array)
		if !ok || a.DType.IsFloat() || !shapeEqual(a.Shape, []int{len(x.NVec)}) {
			return false
		}
		for i, e := range a.Data {
			if e < 0 || !exactInt(e) || int64(e) >= x.NVec[i] {
				return false
			}
		}
		return true
	case *Tuple:
		t, ok := v.([]any)
		if !ok || len(t) != len(x.Spaces) {
			return false
		}
		for i, c := range x.Spaces {
			if !Contains(c, t[i]) {
				return false
			}
		}
		return true
	case *Dict:
		get, n, ok := mappingAccessor(v)
		if !ok || n != len(x.Fields) {
			return false
		}
		for _, f := range x.Fields {
			child, present := get(f.Name)
			if !present || !Contains(f.Space, child) {
				return false
			}
		}
		return true
	}
	panic(fmt.Sprintf("space: unknown node %T", s))
}

func categoricalValue(v any) (int64, bool) {
	if a, ok := v.(Array); ok {
		if a.DType.IsFloat() || len(a.Data) != 1 || len(a.Shape) > 1 || !exactInt(a.Data[0]) {
			return 0, false
		}
		return int64(a.Data[0]), true
	}
	f, dt, ok := scalarDType(v)
	if !ok || dt.IsFloat() || !exactScalar(v) {
		return 0, false
	}
	return int64(f), true
}

// mappingAccessor adapts the two accepted mapping sample types.
func mappingAccessor(v any) (get func(string) (any, bool), n int, ok bool) {
	switch m := v.(type) {
	case *Map:
		return m.Get, m.Len(), true
	case map[string]any:
		return func(k string) (any, bool) {
			x, found := m[k]
			return x, found
		}, len(m), true
	}
	return nil, 0, false
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
