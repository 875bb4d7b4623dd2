package linear

import (
	"math"

	"github.com/n0madic/go-bandits/bandit"
)

// Ranker is a policy that can score arms for a context.
// LinUCB and LinTS are rankers.
type Ranker interface {
	bandit.Policy
	Dim() int
	Scores(x []float64, candidates []int) ([]float64, error)
}

// TopK plays the k best-scoring arms of a Ranker each round.
type TopK struct {
	ranker Ranker
	k      int
	all    []int
}

// NewTopK wraps r to select k arms per round.
func NewTopK(r Ranker, k int) (*TopK, error) {
	n := r.NumArms()
	if k < 1 || k > n {
		return nil, bandit.Invalid("k", "must be in [1, %d], got %d", n, k)
	}
	return &TopK{ranker: r, k: k, all: allArms(n)}, nil
}

// NewCombinatorialLinUCB creates a top-k policy over LinUCB scores.
func NewCombinatorialLinUCB(nArms, d, k int, opts ...Option) (*TopK, error) {
	l, err := NewLinUCB(nArms, d, opts...)
	if err != nil {
		return nil, err
	}
	return NewTopK(l, k)
}

// NewCombinatorialLinTS creates a top-k policy over Thompson samples.
func NewCombinatorialLinTS(nArms, d, k int, opts ...Option) (*TopK, error) {
	l, err := NewLinTS(nArms, d, opts...)
	if err != nil {
		return nil, err
	}
	return NewTopK(l, k)
}

func (t *TopK) Kind() bandit.Kind { return t.ranker.Kind() }

// NumArms returns the number of arms
func (t *TopK) NumArms() int { return t.ranker.NumArms() }

// K returns the slate size
func (t *TopK) K() int { return t.k }

// Ranker returns the wrapped policy.
func (t *TopK) Ranker() Ranker { return t.ranker }

// SelectK returns k distinct arms ordered best first.
func (t *TopK) SelectK(x []float64) ([]int, error) {
	return t.SelectKFrom(x, t.all)
}

// SelectKFrom is SelectK restricted to a subset of arms.
func (t *TopK) SelectKFrom(x []float64, candidates []int) ([]int, error) {
	cands, err := candidateSet(candidates, t.ranker.NumArms())
	if err != nil {
		return nil, err
	}
	if len(cands) < t.k {
		return nil, &bandit.InputError{Type: "candidates", Expected: t.k, Got: len(cands)}
	}
	scores, err := t.ranker.Scores(x, cands)
	if err != nil {
		return nil, err
	}
	return topK(scores, cands, t.k), nil
}

// UpdateK applies one update per (arm, reward) pair. The whole batch is
// validated before any arm changes.
func (t *TopK) UpdateK(arms []int, rewards []float64, x []float64) error {
	if len(rewards) != len(arms) {
		return &bandit.InputError{Type: "rewards", Expected: len(arms), Got: len(rewards)}
	}
	if len(arms) > t.k {
		return bandit.Invalid("arms", "at most %d arms per round, got %d", t.k, len(arms))
	}
	if err := bandit.CheckContext(x, t.ranker.Dim()); err != nil {
		return err
	}
	n := t.ranker.NumArms()
	seen := make(map[int]struct{}, len(arms))
	for i, arm := range arms {
		if err := bandit.CheckArm(arm, n); err != nil {
			return err
		}
		if _, dup := seen[arm]; dup {
			return bandit.Invalid("arms", "arm %d appears more than once", arm)
		}
		seen[arm] = struct{}{}
		if r := rewards[i]; math.IsNaN(r) || math.IsInf(r, 0) {
			return bandit.Invalid("reward", "must be finite, got %v", r)
		}
	}

	for i, arm := range arms {
		if err := t.ranker.Update(arm, rewards[i], x); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores the wrapped policy.
func (t *TopK) Reset() { t.ranker.Reset() }

// Pulls returns the number of updates per arm
func (t *TopK) Pulls() []uint64 { return t.ranker.Pulls() }

// Estimates returns the wrapped policy's estimates when it has any.
func (t *TopK) Estimates() ([][]float64, error) {
	if e, ok := t.ranker.(bandit.Estimator); ok {
		return e.Estimates()
	}
	return nil, nil
}
