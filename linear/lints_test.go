package linear

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0madic/go-bandits/bandit"
)

func TestNewLinTS(t *testing.T) {
	l, err := NewLinTS(3, 2, WithV(0.5), WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, bandit.PosteriorSampling, l.Kind())
	assert.Equal(t, 0.5, l.V())

	_, err = NewLinTS(3, 2, WithV(-1))
	assert.ErrorIs(t, err, bandit.ErrInvalidInput)
}

func TestLinTSSeedReproducible(t *testing.T) {
	run := func(src Option) []int {
		l, err := NewLinTS(4, 3, src)
		require.NoError(t, err)
		env := rand.New(rand.NewPCG(1, 1))

		var picks []int
		for i := 0; i < 200; i++ {
			x := []float64{env.NormFloat64(), env.NormFloat64(), env.NormFloat64()}
			arm, err := l.Select(x)
			require.NoError(t, err)
			picks = append(picks, arm)
			require.NoError(t, l.Update(arm, x[0]*float64(arm), x))
		}
		return picks
	}
	assert.Equal(t, run(WithSeed(99)), run(WithSeed(99)))
	assert.Equal(t,
		run(WithSource(rand.NewPCG(3, 4))),
		run(WithSource(rand.NewPCG(3, 4))),
		"a caller-supplied source is as reproducible as a seed")
}

func TestLinTSZeroScaleIsGreedy(t *testing.T) {
	l, err := NewLinTS(2, 2, WithV(0), WithSeed(1))
	require.NoError(t, err)

	require.NoError(t, l.Update(0, 1, []float64{1, 0}))
	require.NoError(t, l.Update(0, 1, []float64{1, 0}))
	require.NoError(t, l.Update(0, 0, []float64{0, 1}))

	scores, err := l.Scores([]float64{1, 0}, []int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, scores[0], 1e-12)
	assert.InDelta(t, 0.0, scores[1], 1e-12)

	for i := 0; i < 10; i++ {
		arm, err := l.Select([]float64{1, 0})
		require.NoError(t, err)
		assert.Equal(t, 0, arm)
	}
}

func TestLinTSExploresUntrainedArms(t *testing.T) {
	l, err := NewLinTS(3, 2, WithSeed(7))
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		arm, err := l.Select([]float64{1, 1})
		require.NoError(t, err)
		seen[arm] = true
	}
	assert.Len(t, seen, 3, "sampling from the prior must reach every arm")
}

func TestLinTSLearnsBestArm(t *testing.T) {
	thetaStar := [][]float64{{0.1, 0.1}, {1, 0.5}, {-0.5, 0.2}}
	l, err := NewLinTS(3, 2, WithV(0.3), WithSeed(11))
	require.NoError(t, err)

	env := rand.New(rand.NewPCG(2, 3))
	x := []float64{1, 1}
	for i := 0; i < 500; i++ {
		arm, err := l.Select(x)
		require.NoError(t, err)
		r := thetaStar[arm][0]*x[0] + thetaStar[arm][1]*x[1] + 0.05*env.NormFloat64()
		require.NoError(t, l.Update(arm, r, x))
	}

	pulls := l.Pulls()
	assert.Greater(t, pulls[1], pulls[0]+pulls[2])
}
