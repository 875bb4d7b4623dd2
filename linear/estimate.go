package linear

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/n0madic/go-bandits/bandit"
)

// NumericalError reports a design matrix that could not be inverted.
type NumericalError struct {
	Arm  int
	Cond float64
	Err  error
}

func (e *NumericalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("arm %d: design matrix inversion failed (cond %.3g): %v", e.Arm, e.Cond, e.Err)
	}
	return fmt.Sprintf("arm %d: design matrix is not positive definite", e.Arm)
}

func (e *NumericalError) Unwrap() []error {
	if e.Err != nil {
		return []error{bandit.ErrSingular, e.Err}
	}
	return []error{bandit.ErrSingular}
}

// Estimate is the ridge-regression view of one arm: θ̂ = A⁻¹b and A⁻¹.
// Both fields are shared and must not be modified.
type Estimate struct {
	Arm   int
	Theta *mat.VecDense
	Cov   *mat.SymDense
}

func newEstimate(arm int, ainv *mat.SymDense, b *mat.VecDense) *Estimate {
	theta := mat.NewVecDense(b.Len(), nil)
	theta.MulVec(ainv, b)
	return &Estimate{Arm: arm, Theta: theta, Cov: ainv}
}

// Mean returns xᵀθ̂.
func (e *Estimate) Mean(x mat.Vector) float64 {
	return mat.Dot(x, e.Theta)
}

// Uncertainty returns sqrt(xᵀA⁻¹x).
func (e *Estimate) Uncertainty(x mat.Vector) float64 {
	q := mat.Inner(x, e.Cov, x)
	if q < 0 {
		// rounding on a near-singular inverse
		q = 0
	}
	return math.Sqrt(q)
}

// Sample draws θ̃ ~ N(θ̂, v²A⁻¹). v = 0 returns θ̂.
func (e *Estimate) Sample(v float64, src rand.Source) ([]float64, error) {
	d := e.Theta.Len()
	mean := make([]float64, d)
	for i := range mean {
		mean[i] = e.Theta.AtVec(i)
	}
	if v == 0 {
		return mean, nil
	}
	cov := mat.NewSymDense(d, nil)
	cov.ScaleSym(v*v, e.Cov)
	return SampleMVN(nil, mean, cov, src)
}

// SampleMVN draws one sample from N(mean, cov). It factorizes cov with
// Cholesky and falls back to an eigendecomposition, clipping negative
// eigenvalues, when cov is only positive semi-definite.
func SampleMVN(dst, mean []float64, cov mat.Symmetric, src rand.Source) ([]float64, error) {
	if n := cov.SymmetricDim(); len(mean) != n {
		return nil, &bandit.InputError{Type: "mean", Expected: n, Got: len(mean)}
	}
	if dst != nil && len(dst) != len(mean) {
		return nil, &bandit.InputError{Type: "destination", Expected: len(mean), Got: len(dst)}
	}

	var chol mat.Cholesky
	if chol.Factorize(cov) {
		return distmv.NormalRand(dst, mean, &chol, src), nil
	}

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return nil, fmt.Errorf("%w: covariance eigendecomposition failed", bandit.ErrSingular)
	}
	return distmv.NormalRandCov(dst, mean, distmv.NewPositivePartEigenSym(&eig), src), nil
}
