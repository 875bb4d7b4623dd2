package bandit

import (
	"fmt"
	"strings"
)

// Kind tags a policy variant.
type Kind uint8

const (
	KindUnknown Kind = iota
	// ConfidenceBound is LinUCB: ridge estimate plus an optimistic bonus.
	ConfidenceBound
	// PosteriorSampling is linear Thompson sampling.
	PosteriorSampling
	// OnlineGradient is contextual epsilon-greedy over SGD weights.
	OnlineGradient
	// LogisticGradient is greedy selection over sigmoid SGD weights.
	LogisticGradient
	// EpsilonGreedy is the context-free epsilon-greedy over sample means.
	EpsilonGreedy
	// UCB1 is the context-free upper confidence bound policy.
	UCB1
	// BetaThompson is context-free Beta-Bernoulli Thompson sampling.
	BetaThompson
)

var kindNames = [...]string{
	KindUnknown:       "unknown",
	ConfidenceBound:   "linucb",
	PosteriorSampling: "linthompson",
	OnlineGradient:    "contextual_epsilon_greedy",
	LogisticGradient:  "logistic",
	EpsilonGreedy:     "epsilon_greedy",
	UCB1:              "ucb",
	BetaThompson:      "thompson",
}

var kindAliases = map[string]Kind{
	"lin_ucb":       ConfidenceBound,
	"lints":         PosteriorSampling,
	"lin_thompson":  PosteriorSampling,
	"linear_ts":     PosteriorSampling,
	"sgd":           OnlineGradient,
	"logistic_sgd":  LogisticGradient,
	"egreedy":       EpsilonGreedy,
	"ucb1":          UCB1,
	"beta_thompson": BetaThompson,
	"thompson_beta": BetaThompson,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Contextual reports whether the variant reads the context vector.
func (k Kind) Contextual() bool {
	switch k {
	case ConfidenceBound, PosteriorSampling, OnlineGradient, LogisticGradient:
		return true
	}
	return false
}

// ParseKind resolves a policy name, case-insensitively, to its variant.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	for k, s := range kindNames {
		if k != int(KindUnknown) && s == n {
			return Kind(k), nil
		}
	}
	if k, ok := kindAliases[n]; ok {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}
