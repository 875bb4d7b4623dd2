package linear

import (
	"math"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-bandits/bandit"
)

// armStats holds the ridge-regression statistics of one arm.
// Matrices are replaced on update, never written in place, so readers may keep
// the pointers they observed under the read lock.
type armStats struct {
	mu    sync.RWMutex
	a     *mat.SymDense
	b     *mat.VecDense
	ainv  *mat.SymDense // only with incremental inverse
	since int
	pulls uint64
}

func (s *armStats) init(d int, incremental bool) {
	s.a = identity(d)
	s.b = mat.NewVecDense(d, nil)
	s.ainv = nil
	if incremental {
		s.ainv = identity(d)
	}
	s.since = 0
	s.pulls = 0
}

// Store keeps per-arm design matrices A (d×d) and response vectors b.
type Store struct {
	nArms        int
	d            int
	discount     float64
	refreshEvery int
	logger       *zap.Logger
	arms         []armStats
}

// NewStore creates a store with A = I and b = 0 for every arm.
// Only WithDiscount, WithIncrementalInverse and WithLogger apply.
func NewStore(nArms, d int, opts ...Option) (*Store, error) {
	if err := checkShape(nArms, d); err != nil {
		return nil, err
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return newStore(nArms, d, &o), nil
}

func newStore(nArms, d int, o *options) *Store {
	s := &Store{
		nArms:        nArms,
		d:            d,
		discount:     o.discount,
		refreshEvery: o.refreshEvery,
		logger:       o.logger,
		arms:         make([]armStats, nArms),
	}
	for i := range s.arms {
		s.arms[i].init(d, s.incremental())
	}
	return s
}

func (s *Store) incremental() bool { return s.refreshEvery > 0 }

// NumArms returns the number of arms
func (s *Store) NumArms() int { return s.nArms }

// Dim returns the feature dimension
func (s *Store) Dim() int { return s.d }

// Get returns copies of A and b for arm.
func (s *Store) Get(arm int) (*mat.SymDense, *mat.VecDense, error) {
	if err := bandit.CheckArm(arm, s.nArms); err != nil {
		return nil, nil, err
	}
	st := &s.arms[arm]
	st.mu.RLock()
	a, b := st.a, st.b
	st.mu.RUnlock()

	ac := mat.NewSymDense(s.d, nil)
	ac.CopySym(a)
	return ac, mat.VecDenseCopyOf(b), nil
}

// Accumulate folds one observation into arm's statistics:
//
//	A ← γA + xxᵀ
//	b ← γb + r·x
//
// Invalid input leaves the store untouched.
func (s *Store) Accumulate(arm int, x []float64, reward float64) error {
	if err := bandit.CheckArm(arm, s.nArms); err != nil {
		return err
	}
	if err := bandit.CheckContext(x, s.d); err != nil {
		return err
	}
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return bandit.Invalid("reward", "must be finite, got %v", reward)
	}
	xv := mat.NewVecDense(s.d, append([]float64(nil), x...))

	st := &s.arms[arm]
	st.mu.Lock()
	defer st.mu.Unlock()

	a := mat.NewSymDense(s.d, nil)
	b := mat.NewVecDense(s.d, nil)
	if s.discount == 1 {
		a.CopySym(st.a)
		b.CopyVec(st.b)
	} else {
		a.ScaleSym(s.discount, st.a)
		b.ScaleVec(s.discount, st.b)
	}
	a.SymRankOne(a, 1, xv)
	b.AddScaledVec(b, reward, xv)

	ainv, since := st.ainv, st.since
	if s.incremental() {
		since++
		if since >= s.refreshEvery {
			var err error
			if ainv, err = invert(arm, a); err != nil {
				s.logger.Warn("exact inverse refresh failed", zap.Int("arm", arm), zap.Error(err))
				return err
			}
			s.logger.Debug("refreshed inverse", zap.Int("arm", arm))
			since = 0
		} else {
			ainv = shermanMorrison(st.ainv, xv, s.discount)
		}
	}

	st.a, st.b = a, b
	st.ainv, st.since = ainv, since
	st.pulls++
	return nil
}

// Estimate returns the ridge estimate of arm.
func (s *Store) Estimate(arm int) (*Estimate, error) {
	if err := bandit.CheckArm(arm, s.nArms); err != nil {
		return nil, err
	}
	st := &s.arms[arm]
	st.mu.RLock()
	a, b, ainv := st.a, st.b, st.ainv
	st.mu.RUnlock()

	if ainv == nil {
		var err error
		if ainv, err = invert(arm, a); err != nil {
			s.logger.Warn("design matrix inversion failed", zap.Int("arm", arm), zap.Error(err))
			return nil, err
		}
	}
	return newEstimate(arm, ainv, b), nil
}

// Pulls returns the number of accumulated observations per arm.
func (s *Store) Pulls() []uint64 {
	out := make([]uint64, s.nArms)
	for i := range s.arms {
		s.arms[i].mu.RLock()
		out[i] = s.arms[i].pulls
		s.arms[i].mu.RUnlock()
	}
	return out
}

// Reset restores A = I and b = 0 for every arm.
func (s *Store) Reset() {
	for i := range s.arms {
		s.arms[i].mu.Lock()
		s.arms[i].init(s.d, s.incremental())
		s.arms[i].mu.Unlock()
	}
	s.logger.Debug("store reset", zap.Int("arms", s.nArms))
}

func identity(d int) *mat.SymDense {
	m := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		m.SetSym(i, i, 1)
	}
	return m
}

// invert computes A⁻¹ through a Cholesky factorization.
func invert(arm int, a *mat.SymDense) (*mat.SymDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, &NumericalError{Arm: arm, Cond: math.Inf(1)}
	}
	ainv := mat.NewSymDense(a.SymmetricDim(), nil)
	if err := chol.InverseTo(ainv); err != nil {
		return nil, &NumericalError{Arm: arm, Cond: chol.Cond(), Err: err}
	}
	return ainv, nil
}

// shermanMorrison returns (γA + xxᵀ)⁻¹ given A⁻¹.
func shermanMorrison(ainv *mat.SymDense, x *mat.VecDense, gamma float64) *mat.SymDense {
	out := mat.NewSymDense(x.Len(), nil)
	if gamma == 1 {
		out.CopySym(ainv)
	} else {
		out.ScaleSym(1/gamma, ainv)
	}
	var u mat.VecDense
	u.MulVec(out, x)
	denom := 1 + mat.Dot(x, &u)
	out.SymRankOne(out, -1/denom, &u)
	return out
}
