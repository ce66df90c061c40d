/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP API metrics.
var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioengine_api_requests_total",
		Help: "Total HTTP requests handled by the façade.",
	}, []string{"method", "route", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audioengine_api_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audioengine_api_active_connections",
		Help: "In-flight HTTP requests.",
	})

	WebsocketConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audioengine_websocket_connections_active",
		Help: "Open observable-state WebSocket connections.",
	})
)

// Engine operation metrics, grounded on the teacher's
// telemetry.MediaEngineOperations call-site shape: a counter split by
// operation name and outcome, plus a duration histogram per operation.
var (
	EngineOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioengine_operations_total",
		Help: "Engine operations by name and outcome.",
	}, []string{"operation", "status"})

	EngineOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audioengine_operation_duration_seconds",
		Help:    "Engine operation duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	EffectOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioengine_effect_operations_total",
		Help: "Effect parameter setter calls by effect name and outcome.",
	}, []string{"effect", "status"})

	CrossfadeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audioengine_crossfade_duration_seconds",
		Help:    "Wall-clock duration of completed crossfades.",
		Buckets: []float64{0.5, 1, 2, 3, 5, 8, 13},
	})

	QueueOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioengine_queue_operations_total",
		Help: "Queue state machine operations by name and mode (normal/temp).",
	}, []string{"operation", "mode"})

	QueueVersion = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "audioengine_queue_version",
		Help: "Current queue version per session.",
	}, []string{"session_id"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audioengine_active_sessions",
		Help: "Number of live engine sessions held by the façade.",
	})
)

// Database metrics, recorded by the gorm callback hooks in internal/db.
var (
	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audioengine_db_query_duration_seconds",
		Help:    "Database query duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioengine_db_errors_total",
		Help: "Database errors by operation and kind.",
	}, []string{"operation", "kind"})

	DatabaseConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audioengine_db_connections_active",
		Help: "Open database connections in the pool.",
	})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
