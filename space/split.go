package space

import "fmt"

// Split cuts a flat array into per-leaf values following fs. Each leaf takes
// prod(shape) contiguous elements, is reshaped to the leaf shape and cast to
// the leaf dtype.
//
// When batched, flat must be [B, N] and every leaf is an array of shape
// [B, leaf shape...]. A Discrete leaf has the empty shape, so its batched
// form is [B], not [B, 1]. Otherwise flat holds exactly N elements and a
// Discrete leaf is returned as a plain int rather than an array.
func Split(flat Array, fs FlatSpace, batched bool) ([]any, error) {
	want := fs.Size()
	batch, width := 1, len(flat.Data)
	if batched {
		if len(flat.Shape) != 2 {
			return nil, fmt.Errorf("%w: batched input must be 2-D, got shape %v", ErrSizeMismatch, flat.Shape)
		}
		batch, width = flat.Shape[0], flat.Shape[1]
	}
	if width != want {
		return nil, fmt.Errorf("%w: layout needs %d elements per sample, got %d", ErrSizeMismatch, want, width)
	}

	leaves := make([]any, 0, len(fs))
	ptr := 0
	for _, l := range fs {
		shape, dtype := LeafShape(l.Space)
		sz := Size(shape)
		if !batched {
			if _, ok := l.Space.(*Discrete); ok {
				leaves = append(leaves, int(dtype.Cast(flat.Data[ptr])))
				ptr += sz
				continue
			}
			leaves = append(leaves, NewArray(dtype, shape, flat.Data[ptr:ptr+sz]))
			ptr += sz
			continue
		}
		data := make([]float64, 0, batch*sz)
		for b := 0; b < batch; b++ {
			row := flat.Data[b*width : (b+1)*width]
			data = append(data, row[ptr:ptr+sz]...)
		}
		leaves = append(leaves, NewArray(dtype, append([]int{batch}, shape...), data))
		ptr += sz
	}
	return leaves, nil
}

// Unflatten rebuilds the nested structure of s from leaves in traversal
// order: tuples become []any and dicts become *Map.
func Unflatten(leaves []any, s Space) (any, error) {
	v, next, err := unflatten(s, leaves, 0)
	if err != nil {
		return nil, err
	}
	if next != len(leaves) {
		return nil, fmt.Errorf("%w: %d leaves left over after %s", ErrSampleMismatch, len(leaves)-next, s)
	}
	return v, nil
}

// unflatten decodes the subtree s starting at leaves[pos] and returns the
// position after the last leaf it consumed.
func unflatten(s Space, leaves []any, pos int) (any, int, error) {
	switch x := s.(type) {
	case *Tuple:
		out := make([]any, len(x.Spaces))
		for i, c := range x.Spaces {
			v, next, err := unflatten(c, leaves, pos)
			if err != nil {
				return nil, pos, err
			}
			out[i], pos = v, next
		}
		return out, pos, nil
	case *Dict:
		out := &Map{vals: make(map[string]any, len(x.Fields))}
		for _, f := range x.Fields {
			v, next, err := unflatten(f.Space, leaves, pos)
			if err != nil {
				return nil, pos, err
			}
			out.Set(f.Name, v)
			pos = next
		}
		return out, pos, nil
	case *Box, *Discrete, *MultiDiscrete:
		if pos >= len(leaves) {
			return nil, pos, fmt.Errorf("%w: ran out of leaves at %s", ErrSampleMismatch, s)
		}
		return leaves[pos], pos + 1, nil
	}
	panic(fmt.Sprintf("space: unknown node %T", s))
}

// UnpackBatched decodes a [B, N] batch of flat samples into the nested
// structure of s, each leaf carrying the batch dimension.
func UnpackBatched(flat Array, s Space) (any, error) {
	leaves, err := Split(flat, FlattenSpace(s), true)
	if err != nil {
		return nil, err
	}
	return Unflatten(leaves, s)
}
