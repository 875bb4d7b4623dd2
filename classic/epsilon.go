package classic

import (
	"math/rand/v2"
	"slices"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/n0madic/go-bandits/bandit"
)

// counter keeps pull counts and incremental sample means.
type counter struct {
	mu     sync.RWMutex
	counts []uint64
	values []float64
}

func newCounter(n int) *counter {
	return &counter{counts: make([]uint64, n), values: make([]float64, n)}
}

func (c *counter) observe(arm int, reward float64) {
	c.counts[arm]++
	c.values[arm] += (reward - c.values[arm]) / float64(c.counts[arm])
}

func (c *counter) reset() {
	clear(c.counts)
	clear(c.values)
}

// NumArms returns the number of arms
func (c *counter) NumArms() int { return len(c.counts) }

// Pulls returns the number of updates per arm
func (c *counter) Pulls() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.counts)
}

// Values returns the sample mean reward per arm
func (c *counter) Values() []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.values)
}

// EpsilonGreedy plays a uniformly random arm with probability epsilon and
// the arm with the best sample mean otherwise.
type EpsilonGreedy struct {
	*counter
	epsilon float64
	rnd     *rand.Rand
	logger  *zap.Logger
}

// NewEpsilonGreedy creates an epsilon-greedy policy. Default epsilon is 0.1.
func NewEpsilonGreedy(nArms int, opts ...Option) (*EpsilonGreedy, error) {
	o, err := newOptions(nArms, opts)
	if err != nil {
		return nil, err
	}
	return &EpsilonGreedy{
		counter: newCounter(nArms),
		epsilon: o.epsilon,
		rnd:     rand.New(o.src),
		logger:  o.logger,
	}, nil
}

func (e *EpsilonGreedy) Kind() bandit.Kind { return bandit.EpsilonGreedy }

func (e *EpsilonGreedy) Select(_ []float64) (int, error) {
	if e.rnd.Float64() < e.epsilon {
		return e.rnd.IntN(len(e.counts)), nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return floats.MaxIdx(e.values), nil
}

func (e *EpsilonGreedy) Update(arm int, reward float64, _ []float64) error {
	if err := bandit.CheckArm(arm, len(e.counts)); err != nil {
		return err
	}
	if err := checkReward(reward); err != nil {
		return err
	}
	e.mu.Lock()
	e.observe(arm, reward)
	e.mu.Unlock()
	return nil
}

func (e *EpsilonGreedy) Reset() {
	e.mu.Lock()
	e.reset()
	e.mu.Unlock()
	e.logger.Debug("policy reset", zap.Stringer("kind", e.Kind()))
}
