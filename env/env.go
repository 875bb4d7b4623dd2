// Package env provides simulated reward environments for bandit experiments.
package env

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/n0madic/go-bandits/internal/rng"
)

// Environment produces contexts and single-arm rewards.
type Environment interface {
	NumArms() int
	// Dim is the context dimension, 0 for context-free environments.
	Dim() int
	Context() []float64
	Pull(arm int, x []float64) float64
	// Expected is the noise-free reward of arm.
	Expected(arm int, x []float64) float64
	// Best is the largest expected reward over all arms.
	Best(x []float64) float64
}

// SlateEnvironment produces one reward per arm of a slate.
type SlateEnvironment interface {
	NumArms() int
	Dim() int
	Context() []float64
	PullK(arms []int, x []float64) []float64
	ExpectedK(arms []int, x []float64) float64
	BestK(k int, x []float64) float64
}

// RewardType selects the reward model.
type RewardType string

const (
	Gaussian  RewardType = "gaussian"
	Bernoulli RewardType = "bernoulli"
)

// ParseRewardType validates a reward model name.
func ParseRewardType(s string) (RewardType, error) {
	switch t := RewardType(strings.ToLower(strings.TrimSpace(s))); t {
	case Gaussian, Bernoulli:
		return t, nil
	}
	return "", fmt.Errorf("unknown reward type %q", s)
}

type settings struct {
	noise  float64
	gap    float64
	reward RewardType
	src    *rng.Source
}

// Option configures an environment
type Option func(*settings)

// WithNoise sets the standard deviation of Gaussian reward noise
func WithNoise(std float64) Option {
	return func(s *settings) {
		s.noise = std
	}
}

// WithGap scales how far arm weights spread around the shared component
func WithGap(gap float64) Option {
	return func(s *settings) {
		s.gap = gap
	}
}

// WithRewardType sets the reward model
func WithRewardType(t RewardType) Option {
	return func(s *settings) {
		s.reward = t
	}
}

// WithSeed sets the random seed. 0 picks a random seed.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.src = rng.New(seed)
	}
}

// WithSource sets the random source
func WithSource(src rand.Source) Option {
	return func(s *settings) {
		if src != nil {
			s.src = rng.Wrap(src)
		}
	}
}

func newSettings(opts []Option) (settings, error) {
	s := settings{noise: 0.1, gap: 1, reward: Gaussian}
	for _, opt := range opts {
		opt(&s)
	}
	if s.src == nil {
		s.src = rng.New(0)
	}
	if s.noise < 0 {
		return s, fmt.Errorf("noise std must be non-negative, got %v", s.noise)
	}
	if s.gap < 0 {
		return s, fmt.Errorf("gap strength must be non-negative, got %v", s.gap)
	}
	if _, err := ParseRewardType(string(s.reward)); err != nil {
		return s, err
	}
	return s, nil
}
