package linear

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/n0madic/go-bandits/bandit"
	"github.com/n0madic/go-bandits/internal/rng"
)

type options struct {
	alpha        float64
	v            float64
	epsilon      float64
	lr           float64
	discount     float64
	refreshEvery int
	src          *rng.Source
	logger       *zap.Logger
}

func defaultOptions() options {
	return options{
		alpha:    1.0,
		v:        1.0,
		epsilon:  0.1,
		lr:       0.01,
		discount: 1.0,
		logger:   zap.NewNop(),
	}
}

// Option defines a functional option for configuring a policy or store
type Option func(*options)

// WithAlpha sets the width of the LinUCB confidence bonus
func WithAlpha(alpha float64) Option {
	return func(o *options) {
		o.alpha = alpha
	}
}

// WithV sets the posterior scale for Thompson sampling
func WithV(v float64) Option {
	return func(o *options) {
		o.v = v
	}
}

// WithEpsilon sets the exploration probability of the epsilon-greedy policy
func WithEpsilon(epsilon float64) Option {
	return func(o *options) {
		o.epsilon = epsilon
	}
}

// WithLearningRate sets the SGD step size of the gradient policies
func WithLearningRate(lr float64) Option {
	return func(o *options) {
		o.lr = lr
	}
}

// WithDiscount sets the forgetting factor γ in (0, 1].
// 1 disables discounting.
func WithDiscount(gamma float64) Option {
	return func(o *options) {
		o.discount = gamma
	}
}

// WithIncrementalInverse keeps A⁻¹ per arm with Sherman-Morrison updates and
// recomputes it exactly every refreshEvery updates. 0 turns it off.
func WithIncrementalInverse(refreshEvery int) Option {
	return func(o *options) {
		o.refreshEvery = refreshEvery
	}
}

// WithSeed sets the random seed for reproducibility. 0 picks a random seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.src = rng.New(seed)
	}
}

// WithSource sets the random source. It is wrapped for concurrent use.
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

func newOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = rng.New(0)
	}
	return o, o.validate()
}

func (o *options) validate() error {
	switch {
	case !(o.alpha >= 0) || math.IsInf(o.alpha, 0):
		return bandit.Invalid("alpha", "must be finite and non-negative, got %v", o.alpha)
	case !(o.v >= 0) || math.IsInf(o.v, 0):
		return bandit.Invalid("v", "must be finite and non-negative, got %v", o.v)
	case !(o.epsilon >= 0 && o.epsilon <= 1):
		return bandit.Invalid("epsilon", "must be in [0, 1], got %v", o.epsilon)
	case !(o.lr >= 0) || math.IsInf(o.lr, 0):
		return bandit.Invalid("learning rate", "must be finite and non-negative, got %v", o.lr)
	case !(o.discount > 0 && o.discount <= 1):
		return bandit.Invalid("discount", "must be in (0, 1], got %v", o.discount)
	case o.refreshEvery < 0:
		return bandit.Invalid("refresh interval", "must be non-negative, got %d", o.refreshEvery)
	}
	return nil
}

func checkShape(nArms, d int) error {
	if nArms <= 0 {
		return bandit.Invalid("n_arms", "must be positive, got %d", nArms)
	}
	if d <= 0 {
		return bandit.Invalid("n_features", "must be positive, got %d", d)
	}
	return nil
}
