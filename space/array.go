package space

import (
	"fmt"
	"strings"
)

// Array is a dense row-major numeric array. Elements are held as float64 and
// are always valid values of DType; integers above 2^53 lose precision.
type Array struct {
	DType DType
	Shape []int
	Data  []float64
}

// NewArray builds an array of the given dtype and shape from data, casting
// every element. It panics if len(data) does not match the shape.
func NewArray(dtype DType, shape []int, data []float64) Array {
	n := Size(shape)
	if len(data) != n {
		panic(fmt.Sprintf("space: %d elements for shape %v", len(data), shape))
	}
	out := Array{DType: dtype, Shape: append([]int{}, shape...), Data: make([]float64, n)}
	for i, v := range data {
		out.Data[i] = dtype.Cast(v)
	}
	return out
}

// Zeros returns a zero-filled array.
func Zeros(dtype DType, shape ...int) Array {
	return Array{DType: dtype, Shape: append([]int{}, shape...), Data: make([]float64, Size(shape))}
}

// Vector is shorthand for a one-dimensional array.
func Vector(dtype DType, vals ...float64) Array {
	return NewArray(dtype, []int{len(vals)}, vals)
}

// Ints builds a one-dimensional int64 array.
func Ints(vals ...int) Array {
	data := make([]float64, len(vals))
	for i, v := range vals {
		data[i] = float64(v)
	}
	return NewArray(Int64, []int{len(vals)}, data)
}

// Scalar builds a zero-dimensional array.
func Scalar(dtype DType, v float64) Array {
	return NewArray(dtype, []int{}, []float64{v})
}

// Size is the element count of a shape; the empty shape holds one element.
func Size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.Data) }

// Ravel returns a one-dimensional view of a sharing its data.
func (a Array) Ravel() Array {
	return Array{DType: a.DType, Shape: []int{len(a.Data)}, Data: a.Data}
}

// Reshape returns a view of a with a new shape of the same size.
func (a Array) Reshape(shape ...int) (Array, error) {
	if Size(shape) != len(a.Data) {
		return Array{}, fmt.Errorf("%w: cannot reshape %d elements to %v", ErrSizeMismatch, len(a.Data), shape)
	}
	return Array{DType: a.DType, Shape: append([]int{}, shape...), Data: a.Data}, nil
}

// AsType returns a copy of a cast to dtype.
func (a Array) AsType(dtype DType) Array {
	return NewArray(dtype, a.Shape, a.Data)
}

// ZerosLike returns a zero array with a's dtype and shape.
func (a Array) ZerosLike() Array {
	return Zeros(a.DType, a.Shape...)
}

// Int returns element i as an int.
func (a Array) Int(i int) int { return int(a.Data[i]) }

// Equal reports whether a and b have the same dtype, shape and elements.
func (a Array) Equal(b Array) bool {
	if a.DType != b.DType || len(a.Shape) != len(b.Shape) || len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

func (a Array) String() string {
	var sb strings.Builder
	sb.WriteString("array(")
	const maxShown = 16
	sb.WriteByte('[')
	for i, v := range a.Data {
		if i == maxShown {
			fmt.Fprintf(&sb, " ...%d more", len(a.Data)-maxShown)
			break
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	fmt.Fprintf(&sb, "], shape=%v, dtype=%s)", a.Shape, a.DType)
	return sb.String()
}
