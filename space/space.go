// Package space describes nested observation and action layouts and converts
// samples of them to and from flat numeric arrays.
//
// A Space is one of five node kinds: *Box, *Discrete and *MultiDiscrete
// leaves, and *Tuple and *Dict containers. The set is closed; every function
// in this package switches over exactly these types and panics on anything
// else.
package space

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies a Space node type.
type Kind uint8

const (
	KindBox Kind = iota
	KindDiscrete
	KindMultiDiscrete
	KindTuple
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "Box"
	case KindDiscrete:
		return "Discrete"
	case KindMultiDiscrete:
		return "MultiDiscrete"
	case KindTuple:
		return "Tuple"
	case KindDict:
		return "Dict"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Space is a node in a schema tree. Implementations are immutable once built.
type Space interface {
	Kind() Kind
	String() string
	isSpace()
}

// Box is a fixed-shape numeric leaf with inclusive per-element bounds.
type Box struct {
	Shape []int
	DType DType
	Low   []float64
	High  []float64
}

// NewBox builds a Box whose every element shares the same bounds.
func NewBox(low, high float64, dtype DType, shape ...int) *Box {
	n := Size(shape)
	b := &Box{
		Shape: append([]int{}, shape...),
		DType: dtype,
		Low:   make([]float64, n),
		High:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		b.Low[i] = low
		b.High[i] = high
	}
	return b
}

// NewBoxBounds builds a Box with per-element bounds. It panics if the bound
// slices do not match the shape.
func NewBoxBounds(low, high []float64, dtype DType, shape ...int) *Box {
	n := Size(shape)
	if len(low) != n || len(high) != n {
		panic(fmt.Sprintf("space: bounds of length %d/%d for shape %v", len(low), len(high), shape))
	}
	return &Box{
		Shape: append([]int{}, shape...),
		DType: dtype,
		Low:   append([]float64{}, low...),
		High:  append([]float64{}, high...),
	}
}

func (*Box) Kind() Kind { return KindBox }
func (*Box) isSpace()   {}

func (b *Box) String() string {
	lo, hi := boundSummary(b.Low), boundSummary(b.High)
	return fmt.Sprintf("Box(%s, %s, %v, %s)", lo, hi, b.Shape, b.DType)
}

// boundSummary prints a single value when all bounds agree.
func boundSummary(v []float64) string {
	if len(v) == 0 {
		return "[]"
	}
	for _, x := range v[1:] {
		if x != v[0] && !(math.IsNaN(x) && math.IsNaN(v[0])) {
			return fmt.Sprint(v)
		}
	}
	return fmt.Sprint(v[0])
}

// Discrete is a single categorical choice in [0, N).
type Discrete struct {
	N int64
}

// NewDiscrete builds a Discrete leaf. It panics unless n > 0.
func NewDiscrete(n int64) *Discrete {
	if n <= 0 {
		panic(fmt.Sprintf("space: Discrete(%d) must have positive cardinality", n))
	}
	return &Discrete{N: n}
}

func (*Discrete) Kind() Kind       { return KindDiscrete }
func (*Discrete) isSpace()         {}
func (d *Discrete) String() string { return fmt.Sprintf("Discrete(%d)", d.N) }

// MultiDiscrete is a vector of independent categorical choices.
type MultiDiscrete struct {
	NVec []int64
}

// NewMultiDiscrete builds a MultiDiscrete leaf. It panics on a non-positive
// cardinality.
func NewMultiDiscrete(nvec ...int64) *MultiDiscrete {
	for i, n := range nvec {
		if n <= 0 {
			panic(fmt.Sprintf("space: MultiDiscrete component %d has cardinality %d", i, n))
		}
	}
	return &MultiDiscrete{NVec: append([]int64{}, nvec...)}
}

func (*MultiDiscrete) Kind() Kind       { return KindMultiDiscrete }
func (*MultiDiscrete) isSpace()         {}
func (m *MultiDiscrete) String() string { return fmt.Sprintf("MultiDiscrete(%v)", m.NVec) }

// Tuple is an ordered sequence of child spaces.
type Tuple struct {
	Spaces []Space
}

// NewTuple builds a Tuple container.
func NewTuple(spaces ...Space) *Tuple {
	return &Tuple{Spaces: append([]Space{}, spaces...)}
}

func (*Tuple) Kind() Kind { return KindTuple }
func (*Tuple) isSpace()   {}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Spaces))
	for i, s := range t.Spaces {
		parts[i] = s.String()
	}
	return "Tuple(" + strings.Join(parts, ", ") + ")"
}

// Field is one named entry of a Dict.
type Field struct {
	Name  string
	Space Space
}

// Dict maps names to child spaces. Field order is significant: it defines the
// traversal order and therefore the flat layout.
type Dict struct {
	Fields []Field
}

// NewDict builds a Dict container. It panics on a duplicate field name.
func NewDict(fields ...Field) *Dict {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			panic(fmt.Sprintf("space: duplicate Dict field %q", f.Name))
		}
		seen[f.Name] = true
	}
	return &Dict{Fields: append([]Field{}, fields...)}
}

func (*Dict) Kind() Kind { return KindDict }
func (*Dict) isSpace()   {}

// Get returns the child space named name.
func (d *Dict) Get(name string) (Space, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Space, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (d *Dict) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

func (d *Dict) String() string {
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Space)
	}
	return "Dict(" + strings.Join(parts, ", ") + ")"
}

// LeafShape returns the shape and dtype a leaf's values take.
func LeafShape(s Space) ([]int, DType) {
	switch x := s.(type) {
	case *Box:
		return x.Shape, x.DType
	case *Discrete:
		return []int{}, Int64
	case *MultiDiscrete:
		return []int{len(x.NVec)}, Int64
	case *Tuple, *Dict:
		panic(fmt.Sprintf("space: %s is not a leaf", s.Kind()))
	}
	panic(fmt.Sprintf("space: unknown node %T", s))
}
