package classic

import (
	"slices"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/n0madic/go-bandits/bandit"
	"github.com/n0madic/go-bandits/internal/rng"
)

// Thompson is Beta-Bernoulli Thompson sampling with a Beta(1, 1) prior.
//
// By default an update applies two increments: one for reward > 0 versus not,
// and one for reward == 1 versus not. A reward of exactly 1 therefore adds 2
// to alpha and a reward of 0 adds 2 to beta. WithSingleIncrement applies only
// the first.
type Thompson struct {
	mu     sync.RWMutex
	alpha  []float64
	beta   []float64
	pulls  []uint64
	single bool
	src    *rng.Source
	logger *zap.Logger
}

// NewThompson creates a Beta-Bernoulli Thompson sampling policy
func NewThompson(nArms int, opts ...Option) (*Thompson, error) {
	o, err := newOptions(nArms, opts)
	if err != nil {
		return nil, err
	}
	t := &Thompson{
		alpha:  make([]float64, nArms),
		beta:   make([]float64, nArms),
		pulls:  make([]uint64, nArms),
		single: o.singleIncrement,
		src:    o.src,
		logger: o.logger,
	}
	t.reset()
	return t, nil
}

func (t *Thompson) reset() {
	for i := range t.alpha {
		t.alpha[i], t.beta[i] = 1, 1
	}
	clear(t.pulls)
}

func (t *Thompson) Kind() bandit.Kind { return bandit.BetaThompson }

// NumArms returns the number of arms
func (t *Thompson) NumArms() int { return len(t.alpha) }

// Select samples each arm's Beta posterior and plays the largest draw.
func (t *Thompson) Select(_ []float64) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	samples := make([]float64, len(t.alpha))
	for arm := range samples {
		samples[arm] = distuv.Beta{Alpha: t.alpha[arm], Beta: t.beta[arm], Src: t.src}.Rand()
	}
	return floats.MaxIdx(samples), nil
}

func (t *Thompson) Update(arm int, reward float64, _ []float64) error {
	if err := bandit.CheckArm(arm, len(t.alpha)); err != nil {
		return err
	}
	if err := checkReward(reward); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if reward > 0 {
		t.alpha[arm]++
	} else {
		t.beta[arm]++
	}
	if !t.single {
		if reward == 1 {
			t.alpha[arm]++
		} else {
			t.beta[arm]++
		}
	}
	t.pulls[arm]++
	return nil
}

// Values returns the posterior means α/(α+β)
func (t *Thompson) Values() []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]float64, len(t.alpha))
	for i := range out {
		out[i] = t.alpha[i] / (t.alpha[i] + t.beta[i])
	}
	return out
}

// Counts returns α+β−2 per arm, the pseudo-observation count.
func (t *Thompson) Counts() []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]float64, len(t.alpha))
	for i := range out {
		out[i] = t.alpha[i] + t.beta[i] - 2
	}
	return out
}

// Pulls returns the number of updates per arm
func (t *Thompson) Pulls() []uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.pulls)
}

func (t *Thompson) Reset() {
	t.mu.Lock()
	t.reset()
	t.mu.Unlock()
	t.logger.Debug("policy reset", zap.Stringer("kind", t.Kind()))
}
