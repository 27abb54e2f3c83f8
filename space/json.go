package space

import (
	"encoding/json"
	"fmt"
)

type arrayJSON struct {
	DType string    `json:"dtype"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// MarshalJSON encodes a as {"dtype", "shape", "data"}.
func (a Array) MarshalJSON() ([]byte, error) {
	shape := a.Shape
	if shape == nil {
		shape = []int{}
	}
	data := a.Data
	if data == nil {
		data = []float64{}
	}
	return json.Marshal(arrayJSON{DType: a.DType.String(), Shape: shape, Data: data})
}

// UnmarshalJSON decodes the MarshalJSON form, casting elements to the dtype.
func (a *Array) UnmarshalJSON(b []byte) error {
	var raw arrayJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	dtype, err := ParseDType(raw.DType)
	if err != nil {
		return err
	}
	if raw.Shape == nil {
		raw.Shape = []int{len(raw.Data)}
	}
	if Size(raw.Shape) != len(raw.Data) {
		return fmt.Errorf("%w: %d elements for shape %v", ErrSizeMismatch, len(raw.Data), raw.Shape)
	}
	*a = NewArray(dtype, raw.Shape, raw.Data)
	return nil
}
