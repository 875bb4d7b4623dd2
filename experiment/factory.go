package experiment

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/n0madic/go-bandits/bandit"
	"github.com/n0madic/go-bandits/classic"
	"github.com/n0madic/go-bandits/linear"
)

// ResolveKind maps a policy name to its variant for mode. In contextual mode
// "epsilon_greedy" means the contextual gradient policy.
func ResolveKind(mode Mode, name string) (bandit.Kind, error) {
	kind, err := bandit.ParseKind(name)
	if err != nil {
		return bandit.KindUnknown, err
	}
	switch mode {
	case ModeClassic:
		if kind.Contextual() {
			return bandit.KindUnknown, fmt.Errorf("%w: %q needs context features, unavailable in %s mode", bandit.ErrUnknownPolicy, name, mode)
		}
	case ModeContextual:
		if kind == bandit.EpsilonGreedy {
			kind = bandit.OnlineGradient
		}
	case ModeCombinatorial:
		if kind == bandit.BetaThompson {
			kind = bandit.PosteriorSampling
		}
		if kind != bandit.ConfidenceBound && kind != bandit.PosteriorSampling {
			return bandit.KindUnknown, fmt.Errorf("%w: %q cannot rank slates", bandit.ErrUnknownPolicy, name)
		}
	default:
		return bandit.KindUnknown, fmt.Errorf("unknown mode %q", mode)
	}
	return kind, nil
}

// NewPolicy builds the single-arm policy called name. A nil src picks a
// random seed.
func NewPolicy(mode Mode, name string, pc PolicyConfig, src rand.Source, logger *zap.Logger) (bandit.Policy, error) {
	if mode == ModeCombinatorial {
		return nil, fmt.Errorf("%w: combinatorial mode plays slates", bandit.ErrUnknownPolicy)
	}
	kind, err := ResolveKind(mode, name)
	if err != nil {
		return nil, err
	}

	switch kind {
	case bandit.ConfidenceBound:
		return asPolicy(linear.NewLinUCB(pc.NArms, pc.NFeatures, linearOptions(pc, src, logger)...))
	case bandit.PosteriorSampling:
		return asPolicy(linear.NewLinTS(pc.NArms, pc.NFeatures, linearOptions(pc, src, logger)...))
	case bandit.OnlineGradient:
		return asPolicy(linear.NewEpsilonGreedy(pc.NArms, pc.NFeatures, linearOptions(pc, src, logger)...))
	case bandit.LogisticGradient:
		return asPolicy(linear.NewLogistic(pc.NArms, pc.NFeatures, linearOptions(pc, src, logger)...))
	case bandit.EpsilonGreedy:
		return asPolicy(classic.NewEpsilonGreedy(pc.NArms, classicOptions(pc, src, logger)...))
	case bandit.UCB1:
		return asPolicy(classic.NewUCB1(pc.NArms, classicOptions(pc, src, logger)...))
	case bandit.BetaThompson:
		return asPolicy(classic.NewThompson(pc.NArms, classicOptions(pc, src, logger)...))
	}
	return nil, fmt.Errorf("%w: %q", bandit.ErrUnknownPolicy, name)
}

// NewSlatePolicy builds the top-k policy called name.
func NewSlatePolicy(name string, pc PolicyConfig, src rand.Source, logger *zap.Logger) (bandit.SlatePolicy, error) {
	kind, err := ResolveKind(ModeCombinatorial, name)
	if err != nil {
		return nil, err
	}
	opts := linearOptions(pc, src, logger)
	if kind == bandit.ConfidenceBound {
		return asSlate(linear.NewCombinatorialLinUCB(pc.NArms, pc.NFeatures, pc.K, opts...))
	}
	return asSlate(linear.NewCombinatorialLinTS(pc.NArms, pc.NFeatures, pc.K, opts...))
}

// asPolicy drops the concrete type without leaking a typed nil.
func asPolicy[P bandit.Policy](p P, err error) (bandit.Policy, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

func asSlate[P bandit.SlatePolicy](p P, err error) (bandit.SlatePolicy, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

func linearOptions(pc PolicyConfig, src rand.Source, logger *zap.Logger) []linear.Option {
	return []linear.Option{
		linear.WithAlpha(pc.Alpha),
		linear.WithV(pc.V),
		linear.WithEpsilon(pc.Epsilon),
		linear.WithLearningRate(pc.LearningRate),
		linear.WithDiscount(pc.Discount),
		linear.WithIncrementalInverse(pc.RefreshEvery),
		linear.WithSource(src),
		linear.WithLogger(logger),
	}
}

func classicOptions(pc PolicyConfig, src rand.Source, logger *zap.Logger) []classic.Option {
	opts := []classic.Option{
		classic.WithEpsilon(pc.Epsilon),
		classic.WithSource(src),
		classic.WithLogger(logger),
	}
	if pc.SingleIncrement {
		opts = append(opts, classic.WithSingleIncrement())
	}
	return opts
}
