package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/n0madic/go-bandits/bandit"
	"github.com/n0madic/go-bandits/env"
	"github.com/n0madic/go-bandits/internal/rng"
)

// Runner plays policies against simulated environments.
type Runner struct {
	cfg     *Config
	logger  *zap.Logger
	metrics *Metrics
	runID   string
	seed    uint64
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records rounds in m
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner validates cfg and creates a runner. A zero seed is replaced by a
// random one, reported by Seed.
func NewRunner(cfg *Config, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:    cfg,
		logger: zap.NewNop(),
		runID:  uuid.NewString(),
		seed:   cfg.Seed,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.seed == 0 {
		r.seed = rng.New(0).Uint64()
	}
	return r, nil
}

// RunID identifies this runner's results
func (r *Runner) RunID() string { return r.runID }

// Seed returns the base seed of the experiment
func (r *Runner) Seed() uint64 { return r.seed }

// Run plays cfg.Algo for cfg.Rounds rounds.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	results, err := r.run(ctx, []string{r.cfg.Algo}, false)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Compare plays every named policy over the same contexts, concurrently.
// Every policy is built before the first round so a bad name fails fast.
func (r *Runner) Compare(ctx context.Context, names []string) ([]*Result, error) {
	if len(names) == 0 {
		names = r.cfg.Comparison()
	}
	return r.run(ctx, names, true)
}

type job struct {
	name   string
	single bandit.Policy
	slate  bandit.SlatePolicy
}

func (r *Runner) run(ctx context.Context, names []string, comparison bool) ([]*Result, error) {
	// every random stream of the experiment derives from the base seed
	seeds := rng.New(r.seed)
	envSrc := seeds.Split()
	jobs := make([]job, len(names))
	for i, name := range names {
		src := seeds.Split()
		var err error
		if r.cfg.Mode == ModeCombinatorial {
			jobs[i].slate, err = NewSlatePolicy(name, r.cfg.Policy, src, r.logger)
		} else {
			jobs[i].single, err = NewPolicy(r.cfg.Mode, name, r.cfg.Policy, src, r.logger)
		}
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", name, err)
		}
		jobs[i].name = name
	}

	base, err := r.environment(comparison, envSrc)
	if err != nil {
		return nil, err
	}
	contexts := make([][]float64, r.cfg.Rounds)
	for t := range contexts {
		contexts[t] = base.Context()
	}

	r.logger.Info("experiment started",
		zap.String("run_id", r.runID),
		zap.String("mode", string(r.cfg.Mode)),
		zap.Strings("policies", names),
		zap.Int("rounds", r.cfg.Rounds),
		zap.Uint64("seed", r.seed),
	)

	results := make([]*Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, j := range jobs {
		e := base.clone(seeds.Uint64())
		g.Go(func() error {
			var res *Result
			var err error
			if j.slate != nil {
				res, err = r.playSlate(gctx, j.name, j.slate, e, contexts)
			} else {
				res, err = r.play(gctx, j.name, j.single, e, contexts)
			}
			if err != nil {
				return fmt.Errorf("policy %q: %w", j.name, err)
			}
			results[i] = res
			r.logger.Info("policy finished",
				zap.String("run_id", r.runID),
				zap.String("policy", j.name),
				zap.Float64("total_reward", res.TotalReward()),
				zap.Float64("total_regret", res.TotalRegret()),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// simulation is the environment of one run.
type simulation struct {
	env.Environment
	slate env.SlateEnvironment
	clone func(seed uint64) simulation
}

// environment builds the simulation. Comparisons and slates draw arm weights
// around a shared component so arms are close competitors.
func (r *Runner) environment(shared bool, src rand.Source) (simulation, error) {
	cfg := r.cfg
	if cfg.Mode == ModeClassic {
		b, err := env.NewBernoulli(cfg.Environment.ArmProbs, env.WithSource(src))
		if err != nil {
			return simulation{}, err
		}
		return bernoulliSimulation(b), nil
	}

	rt, err := env.ParseRewardType(cfg.Environment.RewardType)
	if err != nil {
		return simulation{}, err
	}
	opts := []env.Option{
		env.WithNoise(cfg.Environment.NoiseStd),
		env.WithGap(cfg.Environment.GapStrength),
		env.WithRewardType(rt),
		env.WithSource(src),
	}
	var l *env.Linear
	if shared || cfg.Mode == ModeCombinatorial {
		l, err = env.NewShared(cfg.Policy.NArms, cfg.Policy.NFeatures, opts...)
	} else {
		l, err = env.NewContextual(cfg.Policy.NArms, cfg.Policy.NFeatures, opts...)
	}
	if err != nil {
		return simulation{}, err
	}
	return linearSimulation(l), nil
}

func bernoulliSimulation(b *env.BernoulliArms) simulation {
	return simulation{
		Environment: b,
		clone: func(seed uint64) simulation {
			return bernoulliSimulation(b.Clone(seed))
		},
	}
}

func linearSimulation(l *env.Linear) simulation {
	return simulation{
		Environment: l,
		slate:       l,
		clone: func(seed uint64) simulation {
			return linearSimulation(l.Clone(seed))
		},
	}
}

func (r *Runner) play(ctx context.Context, name string, p bandit.Policy, e simulation, contexts [][]float64) (*Result, error) {
	res := newResult(r.runID, name, r.cfg.Mode, len(contexts), p.NumArms())
	for t, x := range contexts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		arm, err := p.Select(x)
		if err != nil {
			return nil, fmt.Errorf("round %d: select: %w", t, err)
		}
		r.metrics.observeDecision(name, time.Since(start))

		reward := e.Pull(arm, x)
		if err := p.Update(arm, reward, x); err != nil {
			return nil, fmt.Errorf("round %d: update: %w", t, err)
		}
		regret := e.Best(x) - e.Expected(arm, x)
		res.record([]int{arm}, reward, regret)
		r.metrics.observeRound(name, []int{arm}, reward, regret)

		if r.cfg.Verbose {
			r.logger.Info("round",
				zap.String("policy", name),
				zap.Int("round", t),
				zap.Int("arm", arm),
				zap.Float64("reward", reward),
				zap.Float64("regret", regret),
			)
		}
	}
	return res, nil
}

func (r *Runner) playSlate(ctx context.Context, name string, p bandit.SlatePolicy, e simulation, contexts [][]float64) (*Result, error) {
	res := newResult(r.runID, name, r.cfg.Mode, len(contexts), p.NumArms())
	for t, x := range contexts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		arms, err := p.SelectK(x)
		if err != nil {
			return nil, fmt.Errorf("round %d: select: %w", t, err)
		}
		r.metrics.observeDecision(name, time.Since(start))

		rewards := e.slate.PullK(arms, x)
		if err := p.UpdateK(arms, rewards, x); err != nil {
			return nil, fmt.Errorf("round %d: update: %w", t, err)
		}
		total := 0.0
		for _, rw := range rewards {
			total += rw
		}
		regret := e.slate.BestK(p.K(), x) - e.slate.ExpectedK(arms, x)
		res.record(arms, total, regret)
		r.metrics.observeRound(name, arms, total, regret)

		if r.cfg.Verbose {
			r.logger.Info("round",
				zap.String("policy", name),
				zap.Int("round", t),
				zap.Ints("arms", arms),
				zap.Float64s("rewards", rewards),
				zap.Float64("regret", regret),
			)
		}
	}
	return res, nil
}
