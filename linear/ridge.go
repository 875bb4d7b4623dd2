package linear

import (
	"math"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/n0madic/go-bandits/bandit"
)

// ridge is the state shared by LinUCB and LinTS.
type ridge struct {
	nArms  int
	d      int
	store  *Store
	logger *zap.Logger
	all    []int
}

func newRidge(nArms, d int, o *options) ridge {
	return ridge{
		nArms:  nArms,
		d:      d,
		store:  newStore(nArms, d, o),
		logger: o.logger,
		all:    allArms(nArms),
	}
}

// NumArms returns the number of arms
func (r *ridge) NumArms() int { return r.nArms }

// Dim returns the context dimension
func (r *ridge) Dim() int { return r.d }

// Store exposes the per-arm statistics.
func (r *ridge) Store() *Store { return r.store }

// Update folds the observed reward for arm into its statistics.
func (r *ridge) Update(arm int, reward float64, x []float64) error {
	return r.store.Accumulate(arm, x, reward)
}

// Reset restores the initial state of every arm
func (r *ridge) Reset() { r.store.Reset() }

// Pulls returns the number of updates per arm
func (r *ridge) Pulls() []uint64 { return r.store.Pulls() }

// Estimate returns the ridge estimate of one arm.
func (r *ridge) Estimate(arm int) (*Estimate, error) { return r.store.Estimate(arm) }

// Estimates returns θ̂ for every arm.
func (r *ridge) Estimates() ([][]float64, error) {
	out := make([][]float64, r.nArms)
	for arm := range out {
		est, err := r.store.Estimate(arm)
		if err != nil {
			return nil, err
		}
		out[arm] = slices.Clone(est.Theta.RawVector().Data)
	}
	return out, nil
}

func allArms(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// candidateSet returns candidates sorted ascending without duplicates.
func candidateSet(candidates []int, nArms int) ([]int, error) {
	if len(candidates) == 0 {
		return nil, bandit.Invalid("candidates", "empty candidate set")
	}
	out := slices.Clone(candidates)
	slices.Sort(out)
	out = slices.Compact(out)
	for _, arm := range out {
		if err := bandit.CheckArm(arm, nArms); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// argmax returns the candidate with the highest score, the lowest index on ties.
func argmax(scores []float64, candidates []int) int {
	return candidates[floats.MaxIdx(scores)]
}

// topK returns the k best candidates, best first. Equal scores keep
// candidate order.
func topK(scores []float64, candidates []int, k int) []int {
	keys := make([]float64, len(scores))
	for i, s := range scores {
		if math.IsNaN(s) {
			s = math.Inf(-1)
		}
		keys[i] = -s
	}
	inds := make([]int, len(keys))
	floats.ArgsortStable(keys, inds)

	out := make([]int, k)
	for i := range out {
		out[i] = candidates[inds[i]]
	}
	return out
}
