// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "snapmap"

var (
	// CatalogOperations counts catalog operations by name and result
	// ("ok", "not_found", "invalid", "error").
	CatalogOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "operations_total",
		Help:      "Catalog operations by operation and result.",
	}, []string{"op", "result"})

	// ArchiveRemoveFailures counts best-effort file removals that failed
	// after the row was already deleted.
	ArchiveRemoveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "archive",
		Name:      "remove_failures_total",
		Help:      "Archived files that could not be removed after their row was deleted.",
	})

	// ArchiveOrphans is the number of archived files without a row, as of the last audit.
	ArchiveOrphans = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "archive",
		Name:      "orphaned_files",
		Help:      "Archived files with no catalog row at the last audit.",
	})

	// ArchiveMissing is the number of rows whose file is missing, as of the last audit.
	ArchiveMissing = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "archive",
		Name:      "missing_files",
		Help:      "Catalog rows whose archived file was missing at the last audit.",
	})

	// CaptureLocations counts captures by whether a coordinate fix was obtained.
	CaptureLocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "location_total",
		Help:      "Captures by coordinate outcome (fix, none).",
	}, []string{"outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status code.",
	}, []string{"method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)
