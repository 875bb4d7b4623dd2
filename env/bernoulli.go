package env

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/n0madic/go-bandits/internal/rng"
)

// BernoulliArms is a context-free environment where arm a pays 1 with
// probability p_a and 0 otherwise.
type BernoulliArms struct {
	probs []float64
	src   *rng.Source
}

// NewBernoulli creates a context-free Bernoulli environment.
// Only WithSeed and WithSource apply.
func NewBernoulli(probs []float64, opts ...Option) (*BernoulliArms, error) {
	if len(probs) == 0 {
		return nil, fmt.Errorf("at least one arm probability is required")
	}
	for i, p := range probs {
		if !(p >= 0 && p <= 1) {
			return nil, fmt.Errorf("arm %d probability must be in [0, 1], got %v", i, p)
		}
	}
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return &BernoulliArms{probs: slices.Clone(probs), src: s.src}, nil
}

// Clone returns an environment with the same probabilities and an
// independent random stream.
func (b *BernoulliArms) Clone(seed uint64) *BernoulliArms {
	return &BernoulliArms{probs: b.probs, src: rng.New(seed)}
}

func (b *BernoulliArms) NumArms() int { return len(b.probs) }

func (b *BernoulliArms) Dim() int { return 0 }

func (b *BernoulliArms) Context() []float64 { return nil }

func (b *BernoulliArms) Pull(arm int, _ []float64) float64 {
	return distuv.Bernoulli{P: b.probs[arm], Src: b.src}.Rand()
}

func (b *BernoulliArms) Expected(arm int, _ []float64) float64 { return b.probs[arm] }

func (b *BernoulliArms) Best(_ []float64) float64 { return floats.Max(b.probs) }
