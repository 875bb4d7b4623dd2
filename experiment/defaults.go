package experiment

// Default returns the configuration used when no file or flag overrides it.
func Default() *Config {
	return &Config{
		Mode:   ModeClassic,
		Algo:   "epsilon_greedy",
		Rounds: 1000,
		Policy: PolicyConfig{
			NArms:        3,
			NFeatures:    5,
			K:            2,
			Epsilon:      0.1,
			Alpha:        1.0,
			V:            1.0,
			LearningRate: 0.01,
			Discount:     1.0,
		},
		Environment: EnvironmentConfig{
			NoiseStd:    0.2,
			GapStrength: 1.0,
			RewardType:  "gaussian",
		},
	}
}

// ApplyDefaults fills settings derived from others.
func ApplyDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = ModeClassic
	}
	if cfg.Algo == "" {
		cfg.Algo = "epsilon_greedy"
	}
	if cfg.Rounds == 0 {
		cfg.Rounds = 1000
	}
	if cfg.Environment.RewardType == "" {
		cfg.Environment.RewardType = "gaussian"
	}
	if cfg.Mode == ModeClassic {
		// arm_probs, when given, decides the number of arms
		if n := len(cfg.Environment.ArmProbs); n > 0 {
			cfg.Policy.NArms = n
		} else if cfg.Policy.NArms > 0 {
			cfg.Environment.ArmProbs = defaultArmProbs(cfg.Policy.NArms)
		}
	}
}

// Comparison returns the policies compared when none are named: Compare if
// set, otherwise the default list for the current mode.
func (c *Config) Comparison() []string {
	if len(c.Compare) > 0 {
		return c.Compare
	}
	return defaultComparison(c.Mode)
}

// defaultArmProbs spreads success probabilities evenly; three arms get
// 0.2, 0.5 and 0.8.
func defaultArmProbs(n int) []float64 {
	if n == 3 {
		return []float64{0.2, 0.5, 0.8}
	}
	probs := make([]float64, n)
	for i := range probs {
		probs[i] = float64(i+1) / float64(n+1)
	}
	return probs
}

func defaultComparison(mode Mode) []string {
	switch mode {
	case ModeContextual:
		return []string{"linucb", "linthompson", "ucb", "thompson"}
	case ModeCombinatorial:
		return []string{"linucb", "linthompson"}
	}
	return []string{"epsilon_greedy", "ucb", "thompson"}
}
