package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-bandits/bandit"
)

// LinUCB implements disjoint LinUCB: an independent ridge regression per arm
// scored as xᵀθ̂ + α·sqrt(xᵀA⁻¹x).
type LinUCB struct {
	ridge
	alpha float64
}

// NewLinUCB creates a LinUCB policy over nArms arms and d-dimensional contexts.
func NewLinUCB(nArms, d int, opts ...Option) (*LinUCB, error) {
	if err := checkShape(nArms, d); err != nil {
		return nil, err
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &LinUCB{ridge: newRidge(nArms, d, &o), alpha: o.alpha}, nil
}

func (l *LinUCB) Kind() bandit.Kind { return bandit.ConfidenceBound }

// Alpha returns the confidence width
func (l *LinUCB) Alpha() float64 { return l.alpha }

// Scores returns the upper confidence bound of each candidate arm.
func (l *LinUCB) Scores(x []float64, candidates []int) ([]float64, error) {
	if err := bandit.CheckContext(x, l.d); err != nil {
		return nil, err
	}
	xv := mat.NewVecDense(l.d, x)
	scores := make([]float64, len(candidates))
	for i, arm := range candidates {
		est, err := l.store.Estimate(arm)
		if err != nil {
			return nil, err
		}
		scores[i] = est.Mean(xv) + l.alpha*est.Uncertainty(xv)
	}
	return scores, nil
}

// Select returns the arm with the highest upper confidence bound.
func (l *LinUCB) Select(x []float64) (int, error) {
	return l.SelectFrom(x, l.all)
}

// SelectFrom is Select restricted to a subset of arms.
func (l *LinUCB) SelectFrom(x []float64, candidates []int) (int, error) {
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
