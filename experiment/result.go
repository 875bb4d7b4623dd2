package experiment

import (
	"gonum.org/v1/gonum/floats"
)

// Result is the trace of one policy over one experiment.
type Result struct {
	RunID  string
	Policy string
	Mode   Mode
	// Rewards holds the observed reward per round; slates report the sum.
	Rewards []float64
	// Regret holds the expected regret per round.
	Regret []float64
	// Counts is the number of times each arm was played.
	Counts []int
}

func newResult(runID, policy string, mode Mode, rounds, nArms int) *Result {
	return &Result{
		RunID:   runID,
		Policy:  policy,
		Mode:    mode,
		Rewards: make([]float64, 0, rounds),
		Regret:  make([]float64, 0, rounds),
		Counts:  make([]int, nArms),
	}
}

func (r *Result) record(arms []int, reward, regret float64) {
	r.Rewards = append(r.Rewards, reward)
	r.Regret = append(r.Regret, regret)
	for _, a := range arms {
		r.Counts[a]++
	}
}

// Rounds returns the number of rounds played
func (r *Result) Rounds() int { return len(r.Rewards) }

// TotalReward returns the sum of observed rewards
func (r *Result) TotalReward() float64 { return floats.Sum(r.Rewards) }

// AverageReward returns the mean reward per round
func (r *Result) AverageReward() float64 {
	if len(r.Rewards) == 0 {
		return 0
	}
	return r.TotalReward() / float64(len(r.Rewards))
}

// TotalRegret returns the cumulative expected regret
func (r *Result) TotalRegret() float64 { return floats.Sum(r.Regret) }

// CumulativeRewards returns the running sum of rewards
func (r *Result) CumulativeRewards() []float64 {
	return floats.CumSum(make([]float64, len(r.Rewards)), r.Rewards)
}

// CumulativeRegret returns the running sum of regret
func (r *Result) CumulativeRegret() []float64 {
	return floats.CumSum(make([]float64, len(r.Regret)), r.Regret)
}
