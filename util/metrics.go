package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	tablesCreatedCounter    prometheus.Counter
	actionsRecordedCounter  prometheus.Counter
	actionsRejectedCounter  *prometheus.CounterVec
	stageTransitionsCounter *prometheus.CounterVec
	scoringFailuresCounter  prometheus.Counter
	cachedTablesGauge       prometheus.Gauge
}

func (m *metrics) TableCreated() {
	m.tablesCreatedCounter.Inc()
}

func (m *metrics) ActionRecorded() {
	m.actionsRecordedCounter.Inc()
}

func (m *metrics) ActionRejected(kind string) {
	m.actionsRejectedCounter.WithLabelValues(kind).Inc()
}

func (m *metrics) StageEntered(stage string) {
	m.stageTransitionsCounter.WithLabelValues(stage).Inc()
}

func (m *metrics) ScoringFailed() {
	m.scoringFailuresCounter.Inc()
}

func (m *metrics) SetCachedTables(count int) {
	m.cachedTablesGauge.Set(float64(count))
}

var Metrics = &metrics{
	tablesCreatedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "tables_created_total",
		Help: "Total number of tables created by matchmaking",
	}),
	actionsRecordedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "player_actions_recorded_total",
		Help: "Total number of player actions applied to a table",
	}),
	actionsRejectedCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "player_actions_rejected_total",
		Help: "Total number of player actions rejected, by error kind",
	}, []string{"kind"}),
	stageTransitionsCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "table_stage_transitions_total",
		Help: "Total number of stage transitions, by the stage entered",
	}, []string{"stage"}),
	scoringFailuresCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "scoring_failures_total",
		Help: "Total number of scoring attempts that ended without a result",
	}),
	cachedTablesGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cached_tables_count",
		Help: "Count of decoded tables held in the table cache",
	}),
}
