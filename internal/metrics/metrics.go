package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ValidationsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainflow_validations_total",
		Help: "Total number of chain validations performed.",
	})

	ValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainflow_validation_errors_total",
		Help: "Total number of validation errors reported across all validations.",
	})

	SimulationsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainflow_simulations_total",
		Help: "Total number of chain simulations completed.",
	})

	SimulationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainflow_simulations_dropped_total",
		Help: "Total number of batch simulations rejected due to a full queue.",
	})

	TriggersFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainflow_triggers_fired_total",
		Help: "Total number of trigger firings, labelled by trigger block ID.",
	}, []string{"block_id"})

	ConditionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainflow_condition_outcomes_total",
		Help: "Total number of condition evaluations during simulation, labelled by outcome.",
	}, []string{"outcome"})

	CyclesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainflow_cycles_detected_total",
		Help: "Total number of cycles cut short during simulation.",
	})

	SimulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chainflow_simulation_duration_ms",
		Help:    "Chain simulation latency in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250},
	})

	ChainSwaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainflow_chain_swaps_total",
		Help: "Total number of times the active chain was replaced.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chainflow_queue_utilization_ratio",
		Help: "Current batch simulation queue utilization (0-1).",
	})
)
