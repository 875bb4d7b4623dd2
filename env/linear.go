package env

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/n0madic/go-bandits/internal/rng"
)

// Linear rewards arm a with θ_a·x plus Gaussian noise, or with a Bernoulli
// draw. Single pulls use p = σ(θ_a·x); slates use a multinomial logit click
// model with a no-click option of weight 1, so at most one arm is clicked.
type Linear struct {
	theta  [][]float64
	d      int
	noise  float64
	reward RewardType
	src    *rng.Source
}

// NewContextual draws θ_a ~ N(0, I) for every arm.
func NewContextual(nArms, d int, opts ...Option) (*Linear, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	if err := checkShape(nArms, d); err != nil {
		return nil, err
	}
	e := newLinear(nArms, d, &s)
	for a := range e.theta {
		e.fillNormal(e.theta[a])
	}
	return e, nil
}

// NewShared draws a shared θ₀ ~ N(0, I) and θ_a = θ₀ + gap·N(0, I), so arms
// differ by a controllable gap.
func NewShared(nArms, d int, opts ...Option) (*Linear, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	if err := checkShape(nArms, d); err != nil {
		return nil, err
	}
	e := newLinear(nArms, d, &s)
	base := make([]float64, d)
	e.fillNormal(base)
	for a := range e.theta {
		e.fillNormal(e.theta[a])
		floats.Scale(s.gap, e.theta[a])
		floats.Add(e.theta[a], base)
	}
	return e, nil
}

func checkShape(nArms, d int) error {
	if nArms <= 0 || d <= 0 {
		return fmt.Errorf("environment needs positive arms and features, got %d and %d", nArms, d)
	}
	return nil
}

func newLinear(nArms, d int, s *settings) *Linear {
	e := &Linear{
		theta:  make([][]float64, nArms),
		d:      d,
		noise:  s.noise,
		reward: s.reward,
		src:    s.src,
	}
	for a := range e.theta {
		e.theta[a] = make([]float64, d)
	}
	return e
}

// Clone returns an environment with the same weights and an independent
// random stream.
func (e *Linear) Clone(seed uint64) *Linear {
	c := *e
	c.src = rng.New(seed)
	return &c
}

func (e *Linear) fillNormal(dst []float64) {
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: e.src}
	for i := range dst {
		dst[i] = n.Rand()
	}
}

// NumArms returns the number of arms
func (e *Linear) NumArms() int { return len(e.theta) }

// Dim returns the context dimension
func (e *Linear) Dim() int { return e.d }

// RewardType returns the reward model
func (e *Linear) RewardType() RewardType { return e.reward }

// Theta returns a copy of arm's true weights.
func (e *Linear) Theta(arm int) []float64 { return slices.Clone(e.theta[arm]) }

// Context draws x ~ N(0, I).
func (e *Linear) Context() []float64 {
	x := make([]float64, e.d)
	e.fillNormal(x)
	return x
}

func (e *Linear) logit(arm int, x []float64) float64 {
	return floats.Dot(e.theta[arm], x)
}

func (e *Linear) Expected(arm int, x []float64) float64 {
	if e.reward == Bernoulli {
		return sigmoid(e.logit(arm, x))
	}
	return e.logit(arm, x)
}

func (e *Linear) Pull(arm int, x []float64) float64 {
	if e.reward == Bernoulli {
		return distuv.Bernoulli{P: e.Expected(arm, x), Src: e.src}.Rand()
	}
	return distuv.Normal{Mu: e.logit(arm, x), Sigma: e.noise, Src: e.src}.Rand()
}

func (e *Linear) Best(x []float64) float64 {
	best := math.Inf(-1)
	for a := range e.theta {
		best = math.Max(best, e.Expected(a, x))
	}
	return best
}

// clickWeights returns the unnormalized click probabilities of arms followed
// by the no-click weight, shifted to avoid overflow.
func (e *Linear) clickWeights(arms []int, x []float64) []float64 {
	w := make([]float64, len(arms)+1)
	shift := 0.0
	for i, a := range arms {
		w[i] = e.logit(a, x)
		shift = math.Max(shift, w[i])
	}
	for i := range w {
		w[i] = math.Exp(w[i] - shift)
	}
	w[len(arms)] = math.Exp(-shift)
	return w
}

func (e *Linear) PullK(arms []int, x []float64) []float64 {
	rewards := make([]float64, len(arms))
	if e.reward == Bernoulli {
		if len(arms) == 0 {
			return rewards
		}
		clicked := int(distuv.NewCategorical(e.clickWeights(arms, x), e.src).Rand())
		if clicked < len(arms) {
			rewards[clicked] = 1
		}
		return rewards
	}
	for i, a := range arms {
		rewards[i] = e.Pull(a, x)
	}
	return rewards
}

// ExpectedK is the expected total slate reward: the sum of means for
// Gaussian rewards, the click probability for Bernoulli rewards.
func (e *Linear) ExpectedK(arms []int, x []float64) float64 {
	if e.reward == Bernoulli {
		if len(arms) == 0 {
			return 0
		}
		w := e.clickWeights(arms, x)
		noClick := w[len(arms)]
		return 1 - noClick/floats.Sum(w)
	}
	total := 0.0
	for _, a := range arms {
		total += e.logit(a, x)
	}
	return total
}

// BestK is ExpectedK of the k arms with the largest θ_a·x. Both reward models
// are increasing in every logit, so this slate is optimal.
func (e *Linear) BestK(k int, x []float64) float64 {
	keys := make([]float64, len(e.theta))
	for a := range keys {
		keys[a] = -e.logit(a, x)
	}
	arms := make([]int, len(keys))
	floats.ArgsortStable(keys, arms)
	return e.ExpectedK(arms[:min(k, len(arms))], x)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}
