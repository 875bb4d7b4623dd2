package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/n0madic/go-bandits/experiment"
)

// options holds global flags
type options struct {
	configFile  string
	debug       bool
	csvFile     string
	metricsFile string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cfg := experiment.Default()

	rootCmd := &cobra.Command{
		Use:   "banditsim",
		Short: "Simulate multi-armed bandit policies",
		Long: `Runs classic, contextual and combinatorial bandit policies against
simulated environments and reports reward, regret and arm counts.`,
		SilenceUsage: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "Experiment config file (YAML)")
	pf.BoolVar(&opts.debug, "debug", false, "Development logging at debug level")
	pf.StringVar(&opts.csvFile, "csv", "", "Write per-round rewards and regret to this CSV file")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
	bindExperimentFlags(pf, cfg)

	rootCmd.AddCommand(runCmd(opts, cfg))
	rootCmd.AddCommand(compareCmd(opts, cfg))
	return rootCmd
}

func bindExperimentFlags(fs *pflag.FlagSet, cfg *experiment.Config) {
	fs.StringVar((*string)(&cfg.Mode), "mode", string(cfg.Mode), "Experiment mode: classic, contextual or combinatorial")
	fs.StringVar(&cfg.Algo, "algo", cfg.Algo, "Policy to run")
	fs.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "Number of rounds to simulate")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 for a random one")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every round")

	fs.IntVar(&cfg.Policy.NArms, "n-arms", cfg.Policy.NArms, "Number of arms")
	fs.IntVar(&cfg.Policy.NFeatures, "n-features", cfg.Policy.NFeatures, "Context dimension")
	fs.IntVar(&cfg.Policy.K, "k", cfg.Policy.K, "Arms per round in combinatorial mode")
	fs.Float64Var(&cfg.Policy.Epsilon, "epsilon", cfg.Policy.Epsilon, "Exploration probability")
	fs.Float64Var(&cfg.Policy.Alpha, "alpha", cfg.Policy.Alpha, "LinUCB confidence width")
	fs.Float64Var(&cfg.Policy.V, "v", cfg.Policy.V, "Thompson sampling posterior scale")
	fs.Float64Var(&cfg.Policy.LearningRate, "lr", cfg.Policy.LearningRate, "Learning rate of gradient policies")
	fs.Float64Var(&cfg.Policy.Discount, "discount", cfg.Policy.Discount, "Forgetting factor in (0, 1]")
	fs.IntVar(&cfg.Policy.RefreshEvery, "refresh-every", cfg.Policy.RefreshEvery, "Sherman-Morrison updates between exact inversions, 0 to always invert")
	fs.BoolVar(&cfg.Policy.SingleIncrement, "single-increment", cfg.Policy.SingleIncrement, "Classic Thompson adds each reward to its posterior once")

	fs.Float64Var(&cfg.Environment.NoiseStd, "noise-std", cfg.Environment.NoiseStd, "Gaussian reward noise")
	fs.Float64Var(&cfg.Environment.GapStrength, "gap-strength", cfg.Environment.GapStrength, "Spread of arm weights around the shared component")
	fs.StringVar(&cfg.Environment.RewardType, "reward-type", cfg.Environment.RewardType, "Reward model: gaussian or bernoulli")
	fs.Float64SliceVar(&cfg.Environment.ArmProbs, "arm-probs", nil, "Arm success probabilities in classic mode, one per arm (sets the number of arms)")
}

// resolveConfig loads the config file, if any, and re-applies the flags the
// user set explicitly on top of it.
func resolveConfig(cmd *cobra.Command, opts *options, flagCfg *experiment.Config) (*experiment.Config, error) {
	if err := checkArmFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if opts.configFile == "" {
		cfg := *flagCfg
		experiment.ApplyDefaults(&cfg)
		return &cfg, cfg.Validate()
	}

	cfg, err := experiment.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	overlay := experiment.Default()
	fs := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	bindExperimentFlags(fs, overlay)

	var setErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		target := fs.Lookup(f.Name)
		if target == nil || setErr != nil {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			setErr = target.Value.(pflag.SliceValue).Replace(sv.GetSlice())
		} else {
			setErr = target.Value.Set(f.Value.String())
		}
		copyFlag(cfg, overlay, f.Name)
	})
	if setErr != nil {
		return nil, setErr
	}
	experiment.ApplyDefaults(cfg)
	return cfg, cfg.Validate()
}

// checkArmFlags rejects --n-arms and --arm-probs that disagree.
func checkArmFlags(fs *pflag.FlagSet) error {
	if !fs.Changed("n-arms") || !fs.Changed("arm-probs") {
		return nil
	}
	n, err := fs.GetInt("n-arms")
	if err != nil {
		return err
	}
	probs, err := fs.GetFloat64Slice("arm-probs")
	if err != nil {
		return err
	}
	if len(probs) != n {
		return fmt.Errorf("--n-arms is %d but --arm-probs has %d values", n, len(probs))
	}
	return nil
}

// copyFlag copies the field behind flag name from src to dst.
func copyFlag(dst, src *experiment.Config, name string) {
	switch name {
	case "mode":
		dst.Mode = src.Mode
	case "algo":
		dst.Algo = src.Algo
	case "rounds":
		dst.Rounds = src.Rounds
	case "seed":
		dst.Seed = src.Seed
	case "verbose":
		dst.Verbose = src.Verbose
	case "n-arms":
		dst.Policy.NArms = src.Policy.NArms
		if len(src.Environment.ArmProbs) == 0 {
			// re-derived by ApplyDefaults
			dst.Environment.ArmProbs = nil
		}
	case "n-features":
		dst.Policy.NFeatures = src.Policy.NFeatures
	case "k":
		dst.Policy.K = src.Policy.K
	case "epsilon":
		dst.Policy.Epsilon = src.Policy.Epsilon
	case "alpha":
		dst.Policy.Alpha = src.Policy.Alpha
	case "v":
		dst.Policy.V = src.Policy.V
	case "lr":
		dst.Policy.LearningRate = src.Policy.LearningRate
	case "discount":
		dst.Policy.Discount = src.Policy.Discount
	case "refresh-every":
		dst.Policy.RefreshEvery = src.Policy.RefreshEvery
	case "single-increment":
		dst.Policy.SingleIncrement = src.Policy.SingleIncrement
	case "noise-std":
		dst.Environment.NoiseStd = src.Environment.NoiseStd
	case "gap-strength":
		dst.Environment.GapStrength = src.Environment.GapStrength
	case "reward-type":
		dst.Environment.RewardType = src.Environment.RewardType
	case "arm-probs":
		dst.Environment.ArmProbs = src.Environment.ArmProbs
	}
}

// newLogger returns a development logger when debug is set, production otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// session is everything a subcommand needs to run an experiment.
type session struct {
	cfg      *experiment.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	runner   *experiment.Runner
}

func newSession(cmd *cobra.Command, opts *options, flagCfg *experiment.Config) (*session, error) {
	cfg, err := resolveConfig(cmd, opts, flagCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(opts.debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	reg := prometheus.NewRegistry()
	runner, err := experiment.NewRunner(cfg,
		experiment.WithLogger(logger),
		experiment.WithMetrics(experiment.NewMetrics(reg)),
	)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, registry: reg, runner: runner}, nil
}

// finish writes the requested reports.
func (s *session) finish(out io.Writer, opts *options, results []*experiment.Result) error {
	defer s.logger.Sync() //nolint:errcheck

	if err := experiment.WriteSummary(out, results...); err != nil {
		return err
	}
	if opts.csvFile != "" {
		f, err := os.Create(opts.csvFile)
		if err != nil {
			return fmt.Errorf("failed to create csv: %w", err)
		}
		if err := experiment.WriteCSV(f, results...); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		s.logger.Info("wrote csv", zap.String("path", opts.csvFile))
	}
	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, s.registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		s.logger.Info("wrote metrics", zap.String("path", opts.metricsFile))
	}
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
