package space

import (
	"fmt"
	"math"
)

// BoxFor describes a flat observation: a Box of flat's shape and dtype bounded
// by the dtype's representable range. The zero array it returns is the pad
// observation used for agents that are no longer active.
func BoxFor(flat Array) (*Box, Array) {
	lo, hi := flat.DType.Bounds()
	return NewBox(lo, hi, flat.DType, flat.Shape...), flat.ZerosLike()
}

// MultiDiscreteFor merges the categorical leaves of fs into one MultiDiscrete
// in traversal order. A Discrete contributes one slot and a MultiDiscrete one
// slot per component. Any other leaf fails with ErrInvalidActionSpace:
// continuous actions have no place in the merged layout.
func MultiDiscreteFor(fs FlatSpace) (*MultiDiscrete, error) {
	var nvec []int64
	for _, l := range fs {
		switch x := l.Space.(type) {
		case *Discrete:
			nvec = append(nvec, x.N)
		case *MultiDiscrete:
			nvec = append(nvec, x.NVec...)
		case *Box, *Tuple, *Dict:
			return nil, fmt.Errorf("%w: %s at %q", ErrInvalidActionSpace, l.Space, l.Key)
		default:
			panic(fmt.Sprintf("space: unknown node %T", l.Space))
		}
	}
	return &MultiDiscrete{NVec: nvec}, nil
}

// SpaceLike infers a schema from a live sample. Arrays become Boxes spanning
// their dtype's range, []any becomes a Tuple, mappings become Dicts (a *Map
// keeps its order, a plain map is sorted) and bare numeric scalars become
// unbounded zero-dimensional float32 Boxes.
func SpaceLike(sample any) (Space, error) {
	switch x := sample.(type) {
	case Array:
		lo, hi := x.DType.Bounds()
		return NewBox(lo, hi, x.DType, x.Shape...), nil
	case []any:
		spaces := make([]Space, len(x))
		for i, e := range x {
			s, err := SpaceLike(e)
			if err != nil {
				return nil, fmt.Errorf("tuple element %d: %w", i, err)
			}
			spaces[i] = s
		}
		return &Tuple{Spaces: spaces}, nil
	case *Map:
		return dictLike(x.keys, x.vals)
	case map[string]any:
		return dictLike(sortedKeys(x), x)
	}
	if _, _, ok := scalarDType(sample); ok {
		return NewBox(math.Inf(-1), math.Inf(1), Float32), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedSample, sample)
}

func dictLike(keys []string, vals map[string]any) (Space, error) {
	fields := make([]Field, len(keys))
	for i, k := range keys {
		s, err := SpaceLike(vals[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		fields[i] = Field{Name: k, Space: s}
	}
	return &Dict{Fields: fields}, nil
}
