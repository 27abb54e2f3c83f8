// Package emer connects emergent-style simulations to the emulation layer:
// it converts between space.Array and etensor.Tensor and wraps a World,
// which exposes named tensor states and named actions, as an emulation.Env.
package emer

import (
	"fmt"

	"github.com/alexunderch/PufferLib/space"
	"github.com/emer/etable/etensor"
)

var toEtensor = map[space.DType]etensor.Type{
	space.Int8:    etensor.INT8,
	space.Int16:   etensor.INT16,
	space.Int32:   etensor.INT32,
	space.Int64:   etensor.INT64,
	space.Uint8:   etensor.UINT8,
	space.Uint16:  etensor.UINT16,
	space.Uint32:  etensor.UINT32,
	space.Uint64:  etensor.UINT64,
	space.Float32: etensor.FLOAT32,
	space.Float64: etensor.FLOAT64,
}

// DType returns the space dtype of an etensor element type.
func DType(t etensor.Type) (space.DType, error) {
	for d, et := range toEtensor {
		if et == t {
			return d, nil
		}
	}
	return 0, fmt.Errorf("emer: unsupported tensor type %v", t)
}

// ToTensor copies a into a new tensor of the same shape and element type. A
// zero-dimensional array becomes a one-element vector.
func ToTensor(a space.Array) (etensor.Tensor, error) {
	et, ok := toEtensor[a.DType]
	if !ok {
		return nil, fmt.Errorf("emer: unsupported dtype %s", a.DType)
	}
	shape := a.Shape
	if len(shape) == 0 {
		shape = []int{1}
	}
	t := etensor.New(et, shape, nil, nil)
	for i, v := range a.Data {
		t.SetFloat1D(i, v)
	}
	return t, nil
}

// FromTensor copies t into a new Array.
func FromTensor(t etensor.Tensor) (space.Array, error) {
	d, err := DType(t.DataType())
	if err != nil {
		return space.Array{}, err
	}
	data := make([]float64, t.Len())
	for i := range data {
		data[i] = t.FloatVal1D(i)
	}
	return space.NewArray(d, t.Shapes(), data), nil
}
