package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan pipeline counters, exposed on /metrics by cmd/api.
var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rfid_scans_total",
		Help: "Completed tag scans by outcome (checked_in, checked_out, invalid, error, dropped).",
	}, []string{"outcome"})

	ResolverLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rfid_resolver_lookups_total",
		Help: "Student resolver lookups by source (cache, store, miss).",
	}, []string{"source"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rfid_scan_duration_seconds",
		Help:    "End-to-end duration of a scan cycle from flush to display.",
		Buckets: prometheus.DefBuckets,
	})
)
