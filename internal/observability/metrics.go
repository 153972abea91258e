package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for QueriesTotal.
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "no_match"
	OutcomeError   = "error"
)

// Metrics definitions
var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typeextractor_queries_total",
		Help: "Total number of type queries by backend and outcome.",
	}, []string{"backend", "outcome"})

	LoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "typeextractor_load_seconds",
		Help:    "Time spent loading and parsing the compilation units.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "typeextractor_resolve_seconds",
		Help:    "Time spent walking the tree for one position.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})

	TreeNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "typeextractor_tree_nodes",
		Help: "Number of nodes in the last queried compilation unit.",
	}, []string{"backend"})

	LoadProblemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typeextractor_load_problems_total",
		Help: "Parse, type and list errors reported while loading.",
	}, []string{"code"})
)

// WriteTextfile dumps the default registry in the text exposition format,
// for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
