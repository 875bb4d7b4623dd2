package env

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestParseRewardType(t *testing.T) {
	got, err := ParseRewardType(" Bernoulli ")
	require.NoError(t, err)
	assert.Equal(t, Bernoulli, got)

	_, err = ParseRewardType("poisson")
	assert.Error(t, err)
}

func TestNewEnvironmentsValidate(t *testing.T) {
	_, err := NewContextual(0, 3)
	assert.Error(t, err)
	_, err = NewShared(3, 2, WithNoise(-1))
	assert.Error(t, err)
	_, err = NewShared(3, 2, WithRewardType("other"))
	assert.Error(t, err)
	_, err = NewBernoulli(nil)
	assert.Error(t, err)
	_, err = NewBernoulli([]float64{0.2, 1.2})
	assert.Error(t, err)
}

func TestContextualDeterministicWithSeed(t *testing.T) {
	a, err := NewContextual(3, 4, WithSeed(9))
	require.NoError(t, err)
	b, err := NewContextual(3, 4, WithSeed(9))
	require.NoError(t, err)

	for arm := 0; arm < 3; arm++ {
		assert.Equal(t, a.Theta(arm), b.Theta(arm))
	}
	x := a.Context()
	assert.Equal(t, x, b.Context())
	assert.Equal(t, a.Pull(1, x), b.Pull(1, x))
}

func TestContextualNoiseFree(t *testing.T) {
	e, err := NewContextual(3, 2, WithNoise(0), WithSeed(1))
	require.NoError(t, err)

	x := e.Context()
	best := math.Inf(-1)
	for arm := 0; arm < 3; arm++ {
		want := floats.Dot(e.Theta(arm), x)
		assert.InDelta(t, want, e.Pull(arm, x), 1e-12)
		assert.InDelta(t, want, e.Expected(arm, x), 1e-12)
		best = math.Max(best, want)
	}
	assert.Equal(t, best, e.Best(x))
}

func TestBernoulliLinearRewards(t *testing.T) {
	e, err := NewContextual(2, 3, WithRewardType(Bernoulli), WithSeed(4))
	require.NoError(t, err)

	x := e.Context()
	for i := 0; i < 100; i++ {
		r := e.Pull(i%2, x)
		assert.Contains(t, []float64{0, 1}, r)
	}
	p := e.Expected(0, x)
	assert.True(t, p > 0 && p < 1)
}

func TestSharedGaussianSlate(t *testing.T) {
	e, err := NewShared(5, 3, WithNoise(0), WithGap(0.5), WithSeed(2))
	require.NoError(t, err)

	x := e.Context()
	arms := []int{4, 0, 2}
	rewards := e.PullK(arms, x)
	require.Len(t, rewards, 3)
	for i, a := range arms {
		assert.InDelta(t, floats.Dot(e.Theta(a), x), rewards[i], 1e-12)
	}
	assert.InDelta(t, floats.Sum(rewards), e.ExpectedK(arms, x), 1e-12)
	assert.GreaterOrEqual(t, e.BestK(3, x), e.ExpectedK(arms, x)-1e-12)
}

func TestSharedClickModel(t *testing.T) {
	e, err := NewShared(6, 3, WithRewardType(Bernoulli), WithSeed(8))
	require.NoError(t, err)

	x := e.Context()
	arms := []int{0, 1, 2}
	clicks := 0.0
	const rounds = 5000
	for i := 0; i < rounds; i++ {
		rewards := e.PullK(arms, x)
		total := floats.Sum(rewards)
		require.LessOrEqual(t, total, 1.0, "at most one click per slate")
		clicks += total
	}
	assert.InDelta(t, e.ExpectedK(arms, x), clicks/rounds, 0.03)
	assert.GreaterOrEqual(t, e.BestK(3, x), e.ExpectedK(arms, x)-1e-12)
	assert.Empty(t, e.PullK(nil, x))
}

func TestBestKMatchesExhaustiveSearch(t *testing.T) {
	for _, rt := range []RewardType{Gaussian, Bernoulli} {
		e, err := NewShared(6, 3, WithRewardType(rt), WithGap(0.7), WithSeed(21))
		require.NoError(t, err)

		for round := 0; round < 20; round++ {
			x := e.Context()
			best := math.Inf(-1)
			for i := 0; i < 6; i++ {
				for j := i + 1; j < 6; j++ {
					best = math.Max(best, e.ExpectedK([]int{i, j}, x))
				}
			}
			assert.InDelta(t, best, e.BestK(2, x), 1e-12, string(rt))
		}
		x := e.Context()
		assert.InDelta(t, e.ExpectedK([]int{0, 1, 2, 3, 4, 5}, x), e.BestK(10, x), 1e-12, "k is clamped to the arm count")
	}
}

func TestCallerSuppliedSource(t *testing.T) {
	a, err := NewContextual(3, 2, WithSource(rand.NewPCG(5, 6)))
	require.NoError(t, err)
	b, err := NewContextual(3, 2, WithSource(rand.NewPCG(5, 6)))
	require.NoError(t, err)
	assert.Equal(t, a.Theta(2), b.Theta(2))
	assert.Equal(t, a.Context(), b.Context())

	arms, err := NewBernoulli([]float64{0.5}, WithSource(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	assert.Contains(t, []float64{0, 1}, arms.Pull(0, nil))
}

func TestClickWeightsDoNotOverflow(t *testing.T) {
	e, err := NewShared(2, 1, WithRewardType(Bernoulli), WithSeed(1))
	require.NoError(t, err)
	e.theta[0][0], e.theta[1][0] = 1000, -1000

	p := e.ExpectedK([]int{0, 1}, []float64{1})
	assert.False(t, math.IsNaN(p))
	assert.InDelta(t, 1.0, p, 1e-12)
}

func TestCloneSharesWeights(t *testing.T) {
	e, err := NewContextual(2, 2, WithSeed(3))
	require.NoError(t, err)
	c := e.Clone(77)
	assert.Equal(t, e.Theta(1), c.Theta(1))

	b, err := NewBernoulli([]float64{0.1, 0.9}, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 0.9, b.Clone(2).Best(nil))
}

func TestBernoulliArms(t *testing.T) {
	b, err := NewBernoulli([]float64{0, 1, 0.5}, WithSeed(6))
	require.NoError(t, err)
	assert.Equal(t, 3, b.NumArms())
	assert.Equal(t, 0, b.Dim())
	assert.Nil(t, b.Context())
	assert.Equal(t, 0.0, b.Pull(0, nil))
	assert.Equal(t, 1.0, b.Pull(1, nil))
	assert.Equal(t, 0.5, b.Expected(2, nil))
	assert.Equal(t, 1.0, b.Best(nil))

	var _ Environment = b
	var _ Environment = (*Linear)(nil)
	var _ SlateEnvironment = (*Linear)(nil)
}
