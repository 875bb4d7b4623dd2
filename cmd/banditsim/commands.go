package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0madic/go-bandits/experiment"
)

// runCmd plays a single policy
func runCmd(opts *options, cfg *experiment.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one policy",
		Example: `  banditsim run --mode classic --algo ucb
  banditsim run --mode contextual --algo linucb --alpha 0.5 --rounds 5000
  banditsim run --mode combinatorial --algo thompson --n-arms 10 --k 3 --reward-type bernoulli`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			s, err := newSession(cmd, opts, cfg)
			if err != nil {
				return err
			}
			s.logger.Info("starting run", zap.String("run_id", s.runner.RunID()), zap.String("algo", s.cfg.Algo))

			res, err := s.runner.Run(ctx)
			if err != nil {
				return err
			}
			return s.finish(cmd.OutOrStdout(), opts, []*experiment.Result{res})
		},
	}
}

// compareCmd plays several policies over the same contexts
func compareCmd(opts *options, cfg *experiment.Config) *cobra.Command {
	var algos []string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare policies on the same environment",
		Example: `  banditsim compare --mode classic
  banditsim compare --mode contextual --algos linucb,linthompson,logistic --csv results.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			s, err := newSession(cmd, opts, cfg)
			if err != nil {
				return err
			}
			if len(algos) == 0 {
				algos = s.cfg.Comparison()
			}
			s.logger.Info("starting comparison", zap.String("run_id", s.runner.RunID()), zap.Strings("algos", algos))

			results, err := s.runner.Compare(ctx, algos)
			if err != nil {
				return err
			}
			return s.finish(cmd.OutOrStdout(), opts, results)
		},
	}
	cmd.Flags().StringSliceVar(&algos, "algos", nil, "Policies to compare (default depends on mode)")
	return cmd
}
