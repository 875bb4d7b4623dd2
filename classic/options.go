// Package classic implements context-free bandit policies: epsilon-greedy,
// UCB1 and Beta-Bernoulli Thompson sampling. They satisfy bandit.Policy and
// ignore the context argument.
package classic

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/n0madic/go-bandits/bandit"
	"github.com/n0madic/go-bandits/internal/rng"
)

type options struct {
	epsilon         float64
	singleIncrement bool
	src             *rng.Source
	logger          *zap.Logger
}

// Option defines a functional option for configuring a policy
type Option func(*options)

// WithEpsilon sets the exploration probability
func WithEpsilon(epsilon float64) Option {
	return func(o *options) {
		o.epsilon = epsilon
	}
}

// WithSingleIncrement makes Thompson count each observation once. By default
// a binary reward moves its Beta parameter by two.
func WithSingleIncrement() Option {
	return func(o *options) {
		o.singleIncrement = true
	}
}

// WithSeed sets the random seed. 0 picks a random seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.src = rng.New(seed)
	}
}

// WithSource sets the random source
func WithSource(src rand.Source) Option {
	return func(o *options) {
		if src != nil {
			o.src = rng.Wrap(src)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(nArms int, opts []Option) (options, error) {
	o := options{epsilon: 0.1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = rng.New(0)
	}
	if nArms <= 0 {
		return o, bandit.Invalid("n_arms", "must be positive, got %d", nArms)
	}
	if !(o.epsilon >= 0 && o.epsilon <= 1) {
		return o, bandit.Invalid("epsilon", "must be in [0, 1], got %v", o.epsilon)
	}
	return o, nil
}

func checkReward(reward float64) error {
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return bandit.Invalid("reward", "must be finite, got %v", reward)
	}
	return nil
}
