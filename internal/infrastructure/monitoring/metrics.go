package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	TransitionsTotal     *prometheus.CounterVec
	GateVerdictsTotal    *prometheus.CounterVec
	SchedulesGenerated   prometheus.Counter
	PaymentsTotal        *prometheus.CounterVec
	RiskHoldsTotal       prometheus.Counter
	ConflictingUpdates   prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "origination_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		TransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "origination_engine_transitions_total",
				Help: "Total number of attempted application status transitions.",
			},
			[]string{"from", "to", "outcome"},
		),
		GateVerdictsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "origination_engine_kyc_gate_verdicts_total",
				Help: "Total number of KYC gate evaluations by stage and verdict.",
			},
			[]string{"stage", "verdict"},
		),
		SchedulesGenerated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "origination_engine_schedules_generated_total",
				Help: "Total number of installment schedules generated on disbursement.",
			},
		),
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "origination_engine_payments_total",
				Help: "Total number of installment payment attempts by result.",
			},
			[]string{"status"},
		),
		RiskHoldsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "origination_engine_risk_manual_holds_total",
				Help: "Total number of applications held for manual review by the risk gate.",
			},
		),
		ConflictingUpdates: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "origination_engine_conflicting_updates_total",
				Help: "Total number of transitions lost to a concurrent writer.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordTransition(from, to, outcome string) {
	Business.TransitionsTotal.WithLabelValues(from, to, outcome).Inc()
}

func RecordGateVerdict(stage, verdict string) {
	Business.GateVerdictsTotal.WithLabelValues(stage, verdict).Inc()
}

func RecordPayment(status string) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
}
