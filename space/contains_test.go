package space

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	box := NewBox(0, 1, Float32, 2)
	tests := []struct {
		name string
		s    Space
		v    any
		want bool
	}{
		{"box inside", box, Vector(Float32, 0, 1), true},
		{"box above", box, Vector(Float32, 0, 1.5), false},
		{"box wrong shape", box, Vector(Float32, 0), false},
		{"box lossy dtype", box, Vector(Float64, 0, 1), false},
		{"box narrower dtype", box, Vector(Uint8, 0, 1), true},
		{"box scalar", NewBox(-1, 1, Float64), 0.5, true},
		{"discrete int", NewDiscrete(3), 2, true},
		{"discrete out of range", NewDiscrete(3), 3, false},
		{"discrete negative", NewDiscrete(3), -1, false},
		{"discrete float", NewDiscrete(3), 1.0, false},
		{"multidiscrete", NewMultiDiscrete(2, 3), Ints(1, 2), true},
		{"multidiscrete out of range", NewMultiDiscrete(2, 3), Ints(2, 0), false},
		{"multidiscrete float", NewMultiDiscrete(2, 3), Vector(Float32, 1, 1), false},
		{"tuple", NewTuple(NewDiscrete(2), box), []any{1, Vector(Float32, 0, 0)}, true},
		{"tuple length", NewTuple(NewDiscrete(2)), []any{1, 1}, false},
		{"dict", NewDict(Field{"a", NewDiscrete(2)}), map[string]any{"a": 1}, true},
		{"dict extra key", NewDict(Field{"a", NewDiscrete(2)}), NewMap("a", 1, "b", 0), false},
		{"dict missing key", NewDict(Field{"a", NewDiscrete(2)}), NewMap("b", 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.s, tt.v))
		})
	}
}

func TestSampleAndZeroAreMembers(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	s := NewDict(
		Field{"full", NewBox(-1e40, 1e40, Float64, 3)},
		Field{"ints", func() Space { lo, hi := Int64.Bounds(); return NewBox(lo, hi, Int64, 2) }()},
		Field{"half", NewBox(0, 1e39, Float64)},
		Field{"nested", nestedSpace()},
	)
	for i := 0; i < 50; i++ {
		assert.True(t, Contains(s, Sample(s, rng)))
	}
	assert.True(t, Contains(s, Zero(s)))
}

func TestUnknownNodePanics(t *testing.T) {
	var bogus struct{ Space }
	assert.Panics(t, func() { FlattenSpace(bogus) })
	assert.Panics(t, func() { Contains(bogus, 1) })
	assert.Panics(t, func() { Zero(bogus) })
}
