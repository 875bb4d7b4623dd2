package linear

import (
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/n0madic/go-bandits/bandit"
)

type gradArm struct {
	mu    sync.RWMutex
	theta []float64
	pulls uint64
}

// OnlineGradient keeps one weight vector per arm trained by stochastic
// gradient steps:
//
//	θ ← γθ + lr·(r − f(xᵀθ))·x
//
// where f is the identity for the epsilon-greedy variant and the logistic
// sigmoid for the logistic variant.
type OnlineGradient struct {
	kind     bandit.Kind
	nArms    int
	d        int
	epsilon  float64
	lr       float64
	discount float64
	link     func(float64) float64
	rnd      *rand.Rand
	logger   *zap.Logger
	arms     []gradArm
	all      []int
}

// NewEpsilonGreedy creates a contextual epsilon-greedy policy over linear
// reward models.
func NewEpsilonGreedy(nArms, d int, opts ...Option) (*OnlineGradient, error) {
	return newGradient(bandit.OnlineGradient, nArms, d, identityLink, opts)
}

// NewLogistic creates a logistic policy. It always plays the arm with the
// highest predicted probability; epsilon is ignored. The default learning
// rate is 0.1.
func NewLogistic(nArms, d int, opts ...Option) (*OnlineGradient, error) {
	opts = append([]Option{WithLearningRate(0.1)}, opts...)
	return newGradient(bandit.LogisticGradient, nArms, d, sigmoid, opts)
}

func newGradient(kind bandit.Kind, nArms, d int, link func(float64) float64, opts []Option) (*OnlineGradient, error) {
	if err := checkShape(nArms, d); err != nil {
		return nil, err
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	g := &OnlineGradient{
		kind:     kind,
		nArms:    nArms,
		d:        d,
		epsilon:  o.epsilon,
		lr:       o.lr,
		discount: o.discount,
		link:     link,
		rnd:      rand.New(o.src),
		logger:   o.logger,
		arms:     make([]gradArm, nArms),
		all:      allArms(nArms),
	}
	for i := range g.arms {
		g.arms[i].theta = make([]float64, d)
	}
	return g, nil
}

func (g *OnlineGradient) Kind() bandit.Kind { return g.kind }

// NumArms returns the number of arms
func (g *OnlineGradient) NumArms() int { return g.nArms }

// Dim returns the context dimension
func (g *OnlineGradient) Dim() int { return g.d }

// Predict returns f(xᵀθ) for arm.
func (g *OnlineGradient) Predict(arm int, x []float64) (float64, error) {
	if err := bandit.CheckArm(arm, g.nArms); err != nil {
		return 0, err
	}
	if err := bandit.CheckContext(x, g.d); err != nil {
		return 0, err
	}
	return g.predict(arm, x), nil
}

func (g *OnlineGradient) predict(arm int, x []float64) float64 {
	st := &g.arms[arm]
	st.mu.RLock()
	z := floats.Dot(st.theta, x)
	st.mu.RUnlock()
	return g.link(z)
}

// Select picks an arm for context x.
func (g *OnlineGradient) Select(x []float64) (int, error) {
	return g.SelectFrom(x, g.all)
}

// SelectFrom is Select restricted to a subset of arms.
func (g *OnlineGradient) SelectFrom(x []float64, candidates []int) (int, error) {
	if err := bandit.CheckContext(x, g.d); err != nil {
		return 0, err
	}
	cands, err := candidateSet(candidates, g.nArms)
	if err != nil {
		return 0, err
	}
	if g.kind == bandit.OnlineGradient && g.epsilon > 0 && g.rnd.Float64() < g.epsilon {
		return cands[g.rnd.IntN(len(cands))], nil
	}
	scores := make([]float64, len(cands))
	for i, arm := range cands {
		scores[i] = g.predict(arm, x)
	}
	return argmax(scores, cands), nil
}

// Update takes one gradient step on arm's weights.
func (g *OnlineGradient) Update(arm int, reward float64, x []float64) error {
	if err := bandit.CheckArm(arm, g.nArms); err != nil {
		return err
	}
	if err := bandit.CheckContext(x, g.d); err != nil {
		return err
	}
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return bandit.Invalid("reward", "must be finite, got %v", reward)
	}

	st := &g.arms[arm]
	st.mu.Lock()
	defer st.mu.Unlock()

	residual := reward - g.link(floats.Dot(st.theta, x))
	if g.discount != 1 {
		floats.Scale(g.discount, st.theta)
	}
	floats.AddScaled(st.theta, g.lr*residual, x)
	st.pulls++
	return nil
}

// Weights returns a copy of arm's weight vector.
func (g *OnlineGradient) Weights(arm int) ([]float64, error) {
	if err := bandit.CheckArm(arm, g.nArms); err != nil {
		return nil, err
	}
	st := &g.arms[arm]
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.theta), nil
}

// Estimates returns a copy of every arm's weights.
func (g *OnlineGradient) Estimates() ([][]float64, error) {
	out := make([][]float64, g.nArms)
	for arm := range out {
		out[arm], _ = g.Weights(arm)
	}
	return out, nil
}

// Pulls returns the number of updates per arm
func (g *OnlineGradient) Pulls() []uint64 {
	out := make([]uint64, g.nArms)
	for i := range g.arms {
		g.arms[i].mu.RLock()
		out[i] = g.arms[i].pulls
		g.arms[i].mu.RUnlock()
	}
	return out
}

// Reset zeroes every weight vector
func (g *OnlineGradient) Reset() {
	for i := range g.arms {
		st := &g.arms[i]
		st.mu.Lock()
		clear(st.theta)
		st.pulls = 0
		st.mu.Unlock()
	}
	g.logger.Debug("policy reset", zap.Stringer("kind", g.kind))
}

func identityLink(z float64) float64 { return z }

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
