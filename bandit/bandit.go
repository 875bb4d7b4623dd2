// Package bandit defines the contract shared by every decision policy in this
// module: the policy interfaces, the closed set of policy variants and the
// error taxonomy.
package bandit

// Policy chooses one arm per round and learns from the observed reward.
//
// Contextual policies require x to have the policy's feature dimension;
// context-free policies ignore it and accept nil.
type Policy interface {
	Kind() Kind
	NumArms() int
	Select(x []float64) (int, error)
	Update(arm int, reward float64, x []float64) error
	Reset()
	Pulls() []uint64
}

// SlatePolicy chooses k distinct arms per round and learns from one reward per
// chosen arm.
type SlatePolicy interface {
	Kind() Kind
	NumArms() int
	K() int
	SelectK(x []float64) ([]int, error)
	UpdateK(arms []int, rewards []float64, x []float64) error
	Reset()
	Pulls() []uint64
}

// Estimator exposes per-arm point estimates for reporting.
type Estimator interface {
	Estimates() ([][]float64, error)
}
