package linear

import (
	"gonum.org/v1/gonum/floats"

	"github.com/n0madic/go-bandits/bandit"
	"github.com/n0madic/go-bandits/internal/rng"
)

// LinTS implements linear Thompson sampling. Each round draws
// θ̃ ~ N(θ̂, v²A⁻¹) per arm and plays the arm maximizing xᵀθ̃.
type LinTS struct {
	ridge
	v   float64
	src *rng.Source
}

// NewLinTS creates a linear Thompson sampling policy.
func NewLinTS(nArms, d int, opts ...Option) (*LinTS, error) {
	if err := checkShape(nArms, d); err != nil {
		return nil, err
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &LinTS{ridge: newRidge(nArms, d, &o), v: o.v, src: o.src}, nil
}

func (l *LinTS) Kind() bandit.Kind { return bandit.PosteriorSampling }

// V returns the posterior scale
func (l *LinTS) V() float64 { return l.v }

// Scores draws one posterior sample per candidate and returns xᵀθ̃.
func (l *LinTS) Scores(x []float64, candidates []int) ([]float64, error) {
	if err := bandit.CheckContext(x, l.d); err != nil {
		return nil, err
	}
	scores := make([]float64, len(candidates))
	for i, arm := range candidates {
		est, err := l.store.Estimate(arm)
		if err != nil {
			return nil, err
		}
		theta, err := est.Sample(l.v, l.src)
		if err != nil {
			return nil, err
		}
		scores[i] = floats.Dot(x, theta)
	}
	return scores, nil
}

// Select returns the arm whose sampled reward is highest.
func (l *LinTS) Select(x []float64) (int, error) {
	return l.SelectFrom(x, l.all)
}

// SelectFrom is Select restricted to a subset of arms.
func (l *LinTS) SelectFrom(x []float64, candidates []int) (int, error) {
	cands, err := candidateSet(candidates, l.nArms)
	if err != nil {
		return 0, err
	}
	scores, err := l.Scores(x, cands)
	if err != nil {
		return 0, err
	}
	return argmax(scores, cands), nil
}
