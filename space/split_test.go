package space

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mapComparer = cmp.AllowUnexported(Map{})

func flatOf(t *testing.T, s Space, sample any) Array {
	t.Helper()
	leaves, err := Flatten(s, sample)
	require.NoError(t, err)
	return Concatenate(leaves)
}

func TestRoundTripUnbatched(t *testing.T) {
	s := nestedSpace()
	want := nestedSample()

	flat := flatOf(t, s, want)
	require.Equal(t, []int{10}, flat.Shape)

	leaves, err := Split(flat, FlattenSpace(s), false)
	require.NoError(t, err)
	got, err := Unflatten(leaves, s)
	require.NoError(t, err)

	if diff := cmp.Diff(any(want), got, mapComparer); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// TestRoundTripRandomSamples checks the round trip on sampled values of every
// leaf kind, including exact categorical scalar types.
func TestRoundTripRandomSamples(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	spaces := []Space{
		nestedSpace(),
		NewTuple(NewDiscrete(2), NewTuple(NewDiscrete(9), NewBox(-1, 1, Float64, 3))),
		NewDict(Field{"only", NewMultiDiscrete(4, 4, 4)}),
		NewBox(0, 10, Int32, 2, 3),
	}
	for _, s := range spaces {
		fs := FlattenSpace(s)
		for i := 0; i < 25; i++ {
			want := Sample(s, rng)
			leaves, err := Split(flatOf(t, s, want), fs, false)
			require.NoError(t, err)
			got, err := Unflatten(leaves, s)
			require.NoError(t, err)
			require.Empty(t, cmp.Diff(want, got, mapComparer), "space %s", s)
			require.True(t, Contains(s, got))
		}
	}
}

func TestRoundTripBatched(t *testing.T) {
	s := NewDict(
		Field{"pos", NewBox(-10, 10, Float32, 2)},
		Field{"act", NewTuple(NewDiscrete(4), NewMultiDiscrete(2, 3))},
	)
	samples := []*Map{
		NewMap("pos", Vector(Float32, 1, 2), "act", []any{3, Ints(1, 2)}),
		NewMap("pos", Vector(Float32, -1, 0.5), "act", []any{0, Ints(0, 1)}),
	}

	var stacked []float64
	for _, smp := range samples {
		stacked = append(stacked, flatOf(t, s, smp).Data...)
	}
	flat := NewArray(Float64, []int{2, 5}, stacked)

	got, err := UnpackBatched(flat, s)
	require.NoError(t, err)

	want := NewMap(
		"pos", NewArray(Float32, []int{2, 2}, []float64{1, 2, -1, 0.5}),
		"act", []any{
			NewArray(Int64, []int{2}, []float64{3, 0}),
			NewArray(Int64, []int{2, 2}, []float64{1, 2, 0, 1}),
		},
	)
	if diff := cmp.Diff(any(want), got, mapComparer); diff != "" {
		t.Errorf("batched mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitBatchedDiscreteIsOneDimensional(t *testing.T) {
	fs := FlattenSpace(NewTuple(NewDiscrete(4), NewBox(0, 1, Float32, 1)))
	leaves, err := Split(NewArray(Float64, []int{3, 2}, []float64{1, 0.5, 2, 0, 3, 1}), fs, true)
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	assert.Equal(t, []int{3}, leaves[0].(Array).Shape)
	assert.Equal(t, []float64{1, 2, 3}, leaves[0].(Array).Data)
	assert.Equal(t, []int{3, 1}, leaves[1].(Array).Shape, "a shaped leaf keeps its own dimension")
}

func TestSplitCastsToLeafDType(t *testing.T) {
	fs := FlattenSpace(NewTuple(NewBox(0, 255, Uint8, 2), NewDiscrete(5)))
	leaves, err := Split(Vector(Float64, 3.9, 300, 4.2), fs, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 255}, leaves[0].(Array).Data)
	assert.Equal(t, 4, leaves[1])
}

func TestSplitSizeMismatch(t *testing.T) {
	fs := FlattenSpace(NewMultiDiscrete(2, 2))
	_, err := Split(Ints(1, 1, 1), fs, false)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = Split(Ints(1, 1), fs, true)
	assert.ErrorIs(t, err, ErrSizeMismatch, "batched input must be 2-D")
}

func TestUnflattenLeafCount(t *testing.T) {
	s := NewTuple(NewDiscrete(2), NewDiscrete(2))
	_, err := Unflatten([]any{1}, s)
	assert.ErrorIs(t, err, ErrSampleMismatch)
	_, err = Unflatten([]any{1, 0, 1}, s)
	assert.ErrorIs(t, err, ErrSampleMismatch)
}

// TestUnflattenCursor checks the cursor threading on a subtree in isolation.
func TestUnflattenCursor(t *testing.T) {
	leaves := []any{0, 1, 2, 3}
	v, next, err := unflatten(NewTuple(NewDiscrete(5), NewDiscrete(5)), leaves, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, v)
	assert.Equal(t, 3, next)
}

func TestExactIntegerBoundary(t *testing.T) {
	s := NewTuple(NewDiscrete(1<<62), NewDiscrete(4))

	edge := []any{1 << 53, 3}
	require.True(t, Contains(s, edge))
	leaves, err := Split(flatOf(t, s, edge), FlattenSpace(s), false)
	require.NoError(t, err)
	got, err := Unflatten(leaves, s)
	require.NoError(t, err)
	assert.Equal(t, any(edge), got, "the largest exact integer survives the round trip")

	past := []any{1<<53 + 1, 3}
	assert.False(t, Contains(s, past))
	_, err = Flatten(s, past)
	require.ErrorIs(t, err, ErrInexact)
	assert.ErrorIs(t, err, ErrSampleMismatch)

	assert.False(t, Contains(NewDiscrete(1<<62), uint64(1<<60)))
	assert.False(t, Contains(NewMultiDiscrete(1<<62), NewArray(Int64, []int{1}, []float64{1 << 60})))

	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 20; i++ {
		assert.True(t, Contains(s, Sample(s, rng)), "samples of huge categorical spaces stay exact")
	}
}
