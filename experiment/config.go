// Package experiment runs simulated bandit experiments: configuration,
// policy construction by name, the round loop, metrics and reports.
package experiment

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/n0madic/go-bandits/env"
)

// Mode selects the kind of experiment.
type Mode string

const (
	ModeClassic       Mode = "classic"
	ModeContextual    Mode = "contextual"
	ModeCombinatorial Mode = "combinatorial"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeClassic, ModeContextual, ModeCombinatorial:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Config holds all settings of an experiment.
type Config struct {
	Mode        Mode              `yaml:"mode"`
	Algo        string            `yaml:"algo"`
	Compare     []string          `yaml:"compare"`
	Rounds      int               `yaml:"rounds"`
	Seed        uint64            `yaml:"seed"`
	Verbose     bool              `yaml:"verbose"`
	Policy      PolicyConfig      `yaml:"policy"`
	Environment EnvironmentConfig `yaml:"environment"`
}

// PolicyConfig holds policy hyperparameters.
type PolicyConfig struct {
	NArms           int     `yaml:"n_arms"`
	NFeatures       int     `yaml:"n_features"`
	K               int     `yaml:"k"`
	Epsilon         float64 `yaml:"epsilon"`
	Alpha           float64 `yaml:"alpha"`
	V               float64 `yaml:"v"`
	LearningRate    float64 `yaml:"lr"`
	Discount        float64 `yaml:"discount"`
	RefreshEvery    int     `yaml:"refresh_every"`
	SingleIncrement bool    `yaml:"single_increment"`
}

// EnvironmentConfig holds simulation settings.
type EnvironmentConfig struct {
	NoiseStd    float64   `yaml:"noise_std"`
	GapStrength float64   `yaml:"gap_strength"`
	RewardType  string    `yaml:"reward_type"`
	ArmProbs    []float64 `yaml:"arm_probs"`
}

// Load reads a YAML config. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges. It does not resolve policy names.
func (c *Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	}
	p := c.Policy
	if p.NArms <= 0 {
		return fmt.Errorf("n_arms must be positive, got %d", p.NArms)
	}
	if c.Mode != ModeClassic && p.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive, got %d", p.NFeatures)
	}
	if c.Mode == ModeCombinatorial && (p.K < 1 || p.K > p.NArms) {
		return fmt.Errorf("k must be in [1, %d], got %d", p.NArms, p.K)
	}
	if p.Epsilon < 0 || p.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1], got %v", p.Epsilon)
	}
	if p.Discount <= 0 || p.Discount > 1 {
		return fmt.Errorf("discount must be in (0, 1], got %v", p.Discount)
	}
	if p.Alpha < 0 || p.V < 0 || p.LearningRate < 0 {
		return fmt.Errorf("alpha, v and lr must be non-negative")
	}
	if _, err := env.ParseRewardType(c.Environment.RewardType); err != nil {
		return err
	}
	if c.Mode == ModeClassic && len(c.Environment.ArmProbs) != p.NArms {
		return fmt.Errorf("classic mode needs %d arm probabilities, got %d", p.NArms, len(c.Environment.ArmProbs))
	}
	return nil
}
