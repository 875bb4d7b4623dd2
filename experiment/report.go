package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes one row per policy and round:
// run_id, policy, round, reward, cumulative_reward, cumulative_regret.
func WriteCSV(w io.Writer, results ...*Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "policy", "round", "reward", "cumulative_reward", "cumulative_regret"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, res := range results {
		cumReward := res.CumulativeRewards()
		cumRegret := res.CumulativeRegret()
		for t, reward := range res.Rewards {
			row := []string{
				res.RunID,
				res.Policy,
				strconv.Itoa(t + 1),
				formatFloat(reward),
				formatFloat(cumReward[t]),
				formatFloat(cumRegret[t]),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary prints totals and arm counts for each result.
func WriteSummary(w io.Writer, results ...*Result) error {
	for _, res := range results {
		_, err := fmt.Fprintf(w, "\n=== %s (%s) ===\nTotal reward: %.4f\nAverage reward: %.4f\nTotal regret: %.4f\nArm counts: %v\n",
			res.Policy, res.Mode, res.TotalReward(), res.AverageReward(), res.TotalRegret(), res.Counts)
		if err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
