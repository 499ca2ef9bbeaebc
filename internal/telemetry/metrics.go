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

var (
	// FillRunsTotal counts fill invocations by outcome: complete, partial,
	// open_gaps, or error.
	FillRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hugin",
		Subsystem: "fill",
		Name:      "runs_total",
		Help:      "Fill runs by outcome.",
	}, []string{"outcome"})

	// FillItemsPlacedTotal counts items placed across all fill runs.
	FillItemsPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hugin",
		Subsystem: "fill",
		Name:      "items_placed_total",
		Help:      "Items placed by the fill engine.",
	})

	// FillOpenSeconds observes unfillable seconds left after each run.
	FillOpenSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hugin",
		Subsystem: "fill",
		Name:      "open_seconds",
		Help:      "Open seconds remaining after a fill run.",
		Buckets:   []float64{0, 1, 5, 15, 60, 300, 900, 3600, 14400, 86400},
	})

	// APIRequestsTotal counts HTTP requests by method, route, and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hugin",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes HTTP request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hugin",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hugin",
		Subsystem: "api",
		Name:      "active_connections",
		Help:      "In-flight HTTP requests.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
