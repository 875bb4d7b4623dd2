package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunFromFlags(t *testing.T) {
	out, err := execute(t, "run", "--mode", "classic", "--algo", "ucb", "--rounds", "50", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "=== ucb (classic) ===")
	assert.Contains(t, out, "Arm counts: [")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bandit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: contextual
algo: linucb
rounds: 500
seed: 11
policy:
  n_arms: 4
  n_features: 3
`), 0o644))
	csvPath := filepath.Join(dir, "out.csv")

	out, err := execute(t, "run", "--config", path, "--rounds", "20", "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "=== linucb (contextual) ===")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 21)
	assert.Equal(t, "policy", rows[0][1])
	assert.Equal(t, "linucb", rows[1][1])
	assert.Equal(t, "20", rows[20][2])
}

func TestCompareWritesMetrics(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "bandit.prom")

	out, err := execute(t, "compare", "--mode", "combinatorial", "--n-arms", "6", "--k", "2",
		"--n-features", "3", "--rounds", "30", "--seed", "5", "--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "=== linucb (combinatorial) ===")
	assert.Contains(t, out, "=== linthompson (combinatorial) ===")

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bandit_rounds_total")
}

func TestCompareExplicitAlgos(t *testing.T) {
	out, err := execute(t, "compare", "--algos", "thompson,ucb", "--rounds", "40", "--seed", "1",
		"--arm-probs", "0.1,0.9", "--single-increment")
	require.NoError(t, err)
	assert.Contains(t, out, "=== thompson (classic) ===")
	assert.Contains(t, out, "=== ucb (classic) ===")
	assert.NotContains(t, out, "epsilon_greedy")
}

func TestNegativeArmsIsAnError(t *testing.T) {
	for _, mode := range []string{"classic", "contextual"} {
		_, err := execute(t, "run", "--mode", mode, "--n-arms", "-1")
		require.Error(t, err, mode)
		assert.Contains(t, err.Error(), "n_arms must be positive")
	}

	path := filepath.Join(t.TempDir(), "bandit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: classic\n"), 0o644))
	_, err := execute(t, "run", "--config", path, "--n-arms", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n_arms must be positive")
}

func TestModeFlagOverridesConfigComparison(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bandit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: classic\nrounds: 500\nseed: 4\n"), 0o644))

	out, err := execute(t, "compare", "--config", path, "--mode", "combinatorial",
		"--n-features", "3", "--rounds", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "=== linucb (combinatorial) ===")
	assert.Contains(t, out, "=== linthompson (combinatorial) ===")
	assert.NotContains(t, out, "epsilon_greedy")
}

func TestArmFlagsMustAgree(t *testing.T) {
	_, err := execute(t, "run", "--n-arms", "4", "--arm-probs", "0.1,0.9", "--rounds", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--arm-probs has 2 values")

	out, err := execute(t, "run", "--n-arms", "2", "--arm-probs", "0.1,0.9", "--rounds", "10", "--seed", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "=== epsilon_greedy (classic) ===")
}

func TestInvalidMode(t *testing.T) {
	_, err := execute(t, "run", "--mode", "adversarial")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
