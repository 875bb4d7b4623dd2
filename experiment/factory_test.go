package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/n0madic/go-bandits/bandit"
	"github.com/n0madic/go-bandits/internal/rng"
)

func TestResolveKind(t *testing.T) {
	tests := []struct {
		mode    Mode
		name    string
		want    bandit.Kind
		wantErr bool
	}{
		{ModeClassic, "epsilon_greedy", bandit.EpsilonGreedy, false},
		{ModeClassic, "ucb", bandit.UCB1, false},
		{ModeClassic, "thompson", bandit.BetaThompson, false},
		{ModeClassic, "linucb", 0, true},
		{ModeContextual, "epsilon_greedy", bandit.OnlineGradient, false},
		{ModeContextual, "linucb", bandit.ConfidenceBound, false},
		{ModeContextual, "linthompson", bandit.PosteriorSampling, false},
		{ModeContextual, "logistic", bandit.LogisticGradient, false},
		{ModeContextual, "thompson", bandit.BetaThompson, false},
		{ModeCombinatorial, "linucb", bandit.ConfidenceBound, false},
		{ModeCombinatorial, "thompson", bandit.PosteriorSampling, false},
		{ModeCombinatorial, "logistic", 0, true},
		{ModeContextual, "neural", 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.name, func(t *testing.T) {
			got, err := ResolveKind(tt.mode, tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, bandit.ErrUnknownPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPolicy(t *testing.T) {
	pc := Default().Policy
	for _, name := range []string{"linucb", "linthompson", "epsilon_greedy", "logistic", "ucb", "thompson"} {
		p, err := NewPolicy(ModeContextual, name, pc, rng.New(1), zap.NewNop())
		require.NoError(t, err, name)
		assert.Equal(t, pc.NArms, p.NumArms())
	}

	p, err := NewPolicy(ModeContextual, "nope", pc, rng.New(1), nil)
	assert.ErrorIs(t, err, bandit.ErrUnknownPolicy)
	assert.Nil(t, p)

	pc.Epsilon = 2
	p, err = NewPolicy(ModeClassic, "epsilon_greedy", pc, rng.New(1), nil)
	assert.ErrorIs(t, err, bandit.ErrInvalidInput)
	assert.Nil(t, p, "constructor errors must not leak a typed nil")

	_, err = NewPolicy(ModeCombinatorial, "linucb", Default().Policy, nil, nil)
	assert.ErrorIs(t, err, bandit.ErrUnknownPolicy)
}

func TestNewSlatePolicy(t *testing.T) {
	pc := Default().Policy
	pc.NArms, pc.K = 5, 3

	p, err := NewSlatePolicy("linucb", pc, rng.New(1), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, p.K())
	assert.Equal(t, bandit.ConfidenceBound, p.Kind())

	p, err = NewSlatePolicy("thompson", pc, rng.New(1), nil)
	require.NoError(t, err)
	assert.Equal(t, bandit.PosteriorSampling, p.Kind())

	pc.K = 9
	p, err = NewSlatePolicy("linucb", pc, rng.New(1), nil)
	assert.ErrorIs(t, err, bandit.ErrInvalidInput)
	assert.Nil(t, p)
}

func TestNewPolicySharedSourceIsReproducible(t *testing.T) {
	pc := Default().Policy
	x := []float64{0.3, -1, 0.5, 2, -0.2}

	draws := func() []int {
		p, err := NewPolicy(ModeContextual, "linthompson", pc, rng.New(99), nil)
		require.NoError(t, err)
		out := make([]int, 20)
		for i := range out {
			out[i], err = p.Select(x)
			require.NoError(t, err)
		}
		return out
	}
	assert.Equal(t, draws(), draws())
}
