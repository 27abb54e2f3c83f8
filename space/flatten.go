package space

import (
	"fmt"
	"strconv"
)

// FlatLeaf is one entry of a FlatSpace.
type FlatLeaf struct {
	Key   string
	Space Space
}

// FlatSpace is the ordered list of a schema's leaves keyed by path. Its order
// is the byte layout of every flat array built from the schema.
type FlatSpace []FlatLeaf

// Keys returns the leaf keys in order.
func (fs FlatSpace) Keys() []string {
	keys := make([]string, len(fs))
	for i, l := range fs {
		keys[i] = l.Key
	}
	return keys
}

// Get returns the leaf stored under key.
func (fs FlatSpace) Get(key string) (Space, bool) {
	for _, l := range fs {
		if l.Key == key {
			return l.Space, true
		}
	}
	return nil, false
}

// Size returns the total element count of one flat sample.
func (fs FlatSpace) Size() int {
	n := 0
	for _, l := range fs {
		shape, _ := LeafShape(l.Space)
		n += Size(shape)
	}
	return n
}

// FlattenSpace walks s depth-first and records every leaf under its path key.
// Tuple children append "T<index>.", Dict children append "D<name>." and a
// leaf terminates the key with "V".
func FlattenSpace(s Space) FlatSpace {
	var fs FlatSpace
	flattenSpace(s, "", &fs)
	return fs
}

func flattenSpace(s Space, key string, fs *FlatSpace) {
	switch x := s.(type) {
	case *Tuple:
		for i, c := range x.Spaces {
			flattenSpace(c, key+"T"+strconv.Itoa(i)+".", fs)
		}
	case *Dict:
		for _, f := range x.Fields {
			flattenSpace(f.Space, key+"D"+f.Name+".", fs)
		}
	case *Box, *Discrete, *MultiDiscrete:
		*fs = append(*fs, FlatLeaf{Key: key + "V", Space: s})
	default:
		panic(fmt.Sprintf("space: unknown node %T", s))
	}
}

// Flatten walks sample in the traversal order of s and returns one array per
// leaf. Mapping values are looked up by field name, so the sample's own key
// order does not matter. Scalars become length-1 arrays; arrays are returned
// without copying. Go integers beyond MaxExactInt fail with ErrInexact.
func Flatten(s Space, sample any) ([]Array, error) {
	var out []Array
	if err := flattenSample(s, sample, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenSample(s Space, v any, key string, out *[]Array) error {
	switch x := s.(type) {
	case *Tuple:
		t, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%w: %q expects a tuple, got %T", ErrSampleMismatch, key, v)
		}
		if len(t) != len(x.Spaces) {
			return fmt.Errorf("%w: %q expects %d elements, got %d", ErrSampleMismatch, key, len(x.Spaces), len(t))
		}
		for i, c := range x.Spaces {
			if err := flattenSample(c, t[i], key+"T"+strconv.Itoa(i)+".", out); err != nil {
				return err
			}
		}
		return nil
	case *Dict:
		get, _, ok := mappingAccessor(v)
		if !ok {
			return fmt.Errorf("%w: %q expects a mapping, got %T", ErrSampleMismatch, key, v)
		}
		for _, f := range x.Fields {
			child, present := get(f.Name)
			if !present {
				return fmt.Errorf("%w: %q missing key %q", ErrSampleMismatch, key, f.Name)
			}
			if err := flattenSample(f.Space, child, key+"D"+f.Name+".", out); err != nil {
				return err
			}
		}
		return nil
	case *Box, *Discrete, *MultiDiscrete:
		a, err := leafArray(v)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrSampleMismatch, key+"V", err)
		}
		*out = append(*out, a)
		return nil
	}
	panic(fmt.Sprintf("space: unknown node %T", s))
}

// FlattenSample walks sample in its own order (Map insertion order, sorted
// keys for plain Go maps) and returns one array per leaf.
func FlattenSample(sample any) ([]Array, error) {
	var out []Array
	var walk func(v any) error
	walk = func(v any) error {
		switch x := v.(type) {
		case []any:
			for _, e := range x {
				if err := walk(e); err != nil {
					return err
				}
			}
		case *Map:
			for _, k := range x.keys {
				if err := walk(x.vals[k]); err != nil {
					return err
				}
			}
		case map[string]any:
			for _, k := range sortedKeys(x) {
				if err := walk(x[k]); err != nil {
					return err
				}
			}
		default:
			a, err := leafArray(v)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return nil
	}
	if err := walk(sample); err != nil {
		return nil, err
	}
	return out, nil
}

func leafArray(v any) (Array, error) {
	if a, ok := v.(Array); ok {
		return a, nil
	}
	if f, dt, ok := scalarDType(v); ok {
		if !exactScalar(v) {
			return Array{}, fmt.Errorf("%w: %v exceeds ±%d", ErrInexact, v, int64(MaxExactInt))
		}
		return Array{DType: dt, Shape: []int{1}, Data: []float64{f}}, nil
	}
	return Array{}, fmt.Errorf("%w: %T", ErrUnsupportedSample, v)
}

// Concatenate joins flattened leaves into the schema's flat form. A single
// leaf is returned unchanged, so its result keeps the leaf's own shape and is
// not necessarily one-dimensional. Otherwise the leaves are raveled and joined
// in order and the dtype is the promotion of every leaf dtype: mixing a float
// and an integer leaf yields a float array.
func Concatenate(leaves []Array) Array {
	if len(leaves) == 1 {
		return leaves[0]
	}
	if len(leaves) == 0 {
		return Zeros(Float32, 0)
	}
	dtype := leaves[0].DType
	n := 0
	for _, l := range leaves {
		dtype = Promote(dtype, l.DType)
		n += len(l.Data)
	}
	out := Array{DType: dtype, Shape: []int{n}, Data: make([]float64, 0, n)}
	for _, l := range leaves {
		out.Data = append(out.Data, l.Data...)
	}
	return out
}
