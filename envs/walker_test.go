package envs

import (
	"testing"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walk(move, sprint int) *space.Map { return space.NewMap("move", move, "sprint", sprint) }

func TestWalkerSeededResetIsDeterministic(t *testing.T) {
	seed := int64(11)
	a, b := NewWalker(8, 10), NewWalker(8, 10)
	oa, err := a.Reset(&seed)
	require.NoError(t, err)
	ob, err := b.Reset(&seed)
	require.NoError(t, err)
	assert.Equal(t, oa, ob)
	assert.Equal(t, a.State(), b.State())
	assert.NotEqual(t, a.State().Pos, a.State().Goal)
	assert.True(t, space.Contains(a.ObservationSpace(), oa))
}

func TestWalkerReachesGoal(t *testing.T) {
	w := NewWalker(4, 10)
	_, err := w.Reset(nil)
	require.NoError(t, err)
	w.Restore(WalkerState{Pos: [2]int{0, 0}, Goal: [2]int{2, 0}, RNG: 1})

	obs, reward, done, info, err := w.Step(walk(MoveRight, 1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, reward)
	assert.True(t, done)
	assert.Equal(t, true, info["reached"])
	pos, _ := obs.(*space.Map).Get("pos")
	assert.Equal(t, []float64{2, 0}, pos.(space.Array).Data)

	_, _, _, _, err = w.Step(walk(MoveStay, 0))
	assert.Error(t, err)
}

func TestWalkerClampsAndTimesOut(t *testing.T) {
	w := NewWalker(3, 2)
	_, err := w.Reset(nil)
	require.NoError(t, err)
	w.Restore(WalkerState{Pos: [2]int{0, 0}, Goal: [2]int{2, 2}, RNG: 1})

	_, reward, done, _, err := w.Step(walk(MoveLeft, 1))
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 0}, w.State().Pos)
	assert.Equal(t, -0.01, reward)
	assert.False(t, done)

	_, _, done, info, err := w.Step(map[string]any{"move": MoveUp, "sprint": 0})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, false, info["reached"])
}

func TestWalkerRejectsBadActions(t *testing.T) {
	w := NewWalker(3, 5)
	_, err := w.Reset(nil)
	require.NoError(t, err)

	for _, action := range []any{
		[]any{1, 0},
		space.NewMap("move", 1),
		walk(NumMoves, 0),
		space.NewMap("move", 1.5, "sprint", 0),
	} {
		_, _, _, _, err := w.Step(action)
		assert.Error(t, err, "%v", action)
	}
}

// TestWalkerThroughAdapter drives a full episode of random flat actions
// through the single-agent adapter with validation on.
func TestWalkerThroughAdapter(t *testing.T) {
	s, err := emulation.NewSingle(emulation.SingleOptions{
		EnvCreator:    func() (emulation.Env, error) { return NewWalker(5, 20), nil },
		Postprocessor: emulation.NewBasic,
		Validate:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{NumMoves, 2}, s.ActionSpace().NVec)
	assert.Equal(t, []int{5}, s.ObservationSpace().Shape)

	seed := int64(3)
	obs, err := s.Reset(&seed)
	require.NoError(t, err)
	assert.Equal(t, space.Int64, obs.DType)

	rng := newTestRand(9)
	var info emulation.Info
	for steps := 0; !s.Done(); steps++ {
		require.Less(t, steps, 20)
		action := space.Sample(s.ActionSpace(), rng).(space.Array)
		_, _, _, info, err = s.Step(action)
		require.NoError(t, err)
	}
	assert.Contains(t, info, "return")
	assert.Contains(t, info, "length")
}
