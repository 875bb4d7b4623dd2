package classic

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/n0madic/go-bandits/bandit"
)

// UCB1 plays every arm once, then the arm maximizing
//
//	μ̂_a + sqrt(2·ln(t) / n_a)
type UCB1 struct {
	*counter
	total  uint64
	logger *zap.Logger
}

// NewUCB1 creates a UCB1 policy
func NewUCB1(nArms int, opts ...Option) (*UCB1, error) {
	o, err := newOptions(nArms, opts)
	if err != nil {
		return nil, err
	}
	return &UCB1{counter: newCounter(nArms), logger: o.logger}, nil
}

func (u *UCB1) Kind() bandit.Kind { return bandit.UCB1 }

func (u *UCB1) Select(_ []float64) (int, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	for arm, n := range u.counts {
		if n == 0 {
			return arm, nil
		}
	}
	logT := math.Log(float64(u.total))
	bounds := make([]float64, len(u.counts))
	for arm, n := range u.counts {
		bounds[arm] = u.values[arm] + math.Sqrt(2*logT/float64(n))
	}
	return floats.MaxIdx(bounds), nil
}

func (u *UCB1) Update(arm int, reward float64, _ []float64) error {
	if err := bandit.CheckArm(arm, len(u.counts)); err != nil {
		return err
	}
	if err := checkReward(reward); err != nil {
		return err
	}
	u.mu.Lock()
	u.total++
	u.observe(arm, reward)
	u.mu.Unlock()
	return nil
}

func (u *UCB1) Reset() {
	u.mu.Lock()
	u.reset()
	u.total = 0
	u.mu.Unlock()
	u.logger.Debug("policy reset", zap.Stringer("kind", u.Kind()))
}
