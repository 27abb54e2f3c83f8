package emulation

import (
	"testing"

	"github.com/alexunderch/PufferLib/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sensorFeatures featurizes an observation into a plain map with scalar and
// array leaves.
type sensorFeatures struct{ Base }

func (sensorFeatures) Features(obs any) any {
	return map[string]any{
		"range": 3.5,
		"angle": space.Vector(space.Float32, 0.25, 0.5),
		"raw":   obs,
	}
}

func TestLayoutBoxFollowsFeaturizedSample(t *testing.T) {
	obs := space.NewBox(0, 1, space.Float32, 2)
	act := space.NewDiscrete(3)
	l, err := newLayout(obs, act, sensorFeatures{}, spaceRNG(1))
	require.NoError(t, err)

	assert.Equal(t, []string{"angle", "range", "raw"}, l.features.(*space.Dict).Names())
	assert.Equal(t, []int{5}, l.box.Shape)
	assert.Equal(t, space.Float64, l.box.DType, "the float64 scalar promotes the layout")
	assert.True(t, space.Zeros(space.Float64, 5).Equal(l.pad))

	flat, err := l.observe(sensorFeatures{}, space.Vector(space.Float32, 0.75, 1))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 3.5, 0.75, 1}, flat.Data)
	assert.True(t, space.Contains(l.box, flat))
}

func TestLayoutRejectsUnflattenableFeatures(t *testing.T) {
	_, err := newLayout(space.NewDiscrete(2), space.NewDiscrete(2), textFeatures{}, spaceRNG(1))
	assert.ErrorIs(t, err, space.ErrUnsupportedSample)
}

type textFeatures struct{ Base }

func (textFeatures) Features(any) any { return map[string]any{"label": "north"} }
