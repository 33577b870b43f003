package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqcheck_parsing_seconds",
		Help:    "Time spent parsing the declaration files of one scan.",
		Buckets: prometheus.DefBuckets,
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqcheck_scan_seconds",
		Help:    "Time spent on a full scan: listing, parsing and checking.",
		Buckets: prometheus.DefBuckets,
	})

	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reqcheck_scans_total",
		Help: "Total number of scans, labelled by outcome.",
	}, []string{"outcome"})

	DeclarationFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reqcheck_declaration_files",
		Help: "Number of declaration files found by the last scan.",
	})

	IncludeEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reqcheck_include_edges",
		Help: "Number of include references found by the last scan.",
	})

	Conflicts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reqcheck_conflicts",
		Help: "Number of duplicate declarations found by the last scan.",
	}, []string{"kind"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reqcheck_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
