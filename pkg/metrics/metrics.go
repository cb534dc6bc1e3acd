// Package metrics holds the Prometheus instruments shared by the engine
// wrappers and the commands.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NativeCallsTotal counts native engine calls by entry point and status.
	NativeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphiti_native_calls_total",
			Help: "Total number of native graph engine calls",
		},
		[]string{"call", "status"},
	)

	// NativeCallDuration covers the whole call, including host/device copies.
	NativeCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphiti_native_call_duration_seconds",
			Help:    "Duration of native graph engine calls in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10, 60},
		},
		[]string{"call"},
	)

	LiveHandles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphiti_live_handles",
			Help: "Number of library handles not yet released",
		},
	)

	LiveDescriptors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphiti_live_descriptors",
			Help: "Number of graph descriptors not yet released",
		},
	)

	// ReleaseFailuresTotal counts releases that failed and may have leaked device memory.
	ReleaseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphiti_release_failures_total",
			Help: "Total number of failed handle or descriptor releases",
		},
		[]string{"resource"},
	)

	// PathQueriesTotal counts path queries served, by algorithm and outcome.
	PathQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphiti_path_queries_total",
			Help: "Total number of path queries",
		},
		[]string{"algorithm", "result"},
	)
)
