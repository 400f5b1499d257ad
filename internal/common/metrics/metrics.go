package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total number of conversation turns processed, by planner decision",
		},
		[]string{"decision"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
		[]string{"decision"},
	)

	CatalogQueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_queries_failed_total",
			Help: "Total number of failed catalog queries, by adapter",
		},
		[]string{"adapter"},
	)

	InteractionLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interaction_log_failures_total",
			Help: "Total number of interaction records that could not be persisted",
		},
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_sessions_started_total",
			Help: "Total number of chat sessions started",
		},
	)
)
