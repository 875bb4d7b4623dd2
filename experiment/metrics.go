package experiment

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of an experiment
type Metrics struct {
	Rounds           *prometheus.CounterVec
	ArmPulls         *prometheus.CounterVec
	CumulativeReward *prometheus.GaugeVec
	CumulativeRegret *prometheus.GaugeVec
	DecisionSeconds  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Rounds: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandit_rounds_total",
				Help: "Number of rounds played per policy",
			},
			[]string{"policy"},
		),
		ArmPulls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandit_arm_pulls_total",
				Help: "Number of times each arm was played per policy",
			},
			[]string{"policy", "arm"},
		),
		CumulativeReward: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bandit_cumulative_reward",
				Help: "Sum of observed rewards per policy",
			},
			[]string{"policy"},
		),
		CumulativeRegret: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bandit_cumulative_regret",
				Help: "Sum of expected regret per policy",
			},
			[]string{"policy"},
		),
		DecisionSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bandit_decision_duration_seconds",
				Help:    "Time spent selecting arms per round",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"policy"},
		),
	}
}

func (m *Metrics) observeDecision(policy string, d time.Duration) {
	if m == nil {
		return
	}
	m.DecisionSeconds.WithLabelValues(policy).Observe(d.Seconds())
}

func (m *Metrics) observeRound(policy string, arms []int, reward, regret float64) {
	if m == nil {
		return
	}
	m.Rounds.WithLabelValues(policy).Inc()
	for _, a := range arms {
		m.ArmPulls.WithLabelValues(policy, strconv.Itoa(a)).Inc()
	}
	m.CumulativeReward.WithLabelValues(policy).Add(reward)
	m.CumulativeRegret.WithLabelValues(policy).Add(regret)
}
