// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cobalt",
		Name:      "analyses_total",
		Help:      "Completed analysis requests.",
	})

	AnalysesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cobalt",
		Name:      "analyses_failed_total",
		Help:      "Analysis requests that surfaced an error.",
	})

	ModelCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cobalt",
		Name:      "model_call_seconds",
		Help:      "Wall time of language model calls.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})

	HandlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cobalt",
		Name:      "post_handler_failures_total",
		Help:      "Post-analysis handler failures, caught and skipped.",
	}, []string{"handler"})

	TaxonomyEvolutions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cobalt",
		Name:      "taxonomy_evolutions_total",
		Help:      "Taxonomy documents created from merged proposals.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cobalt",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, path, and status.",
	}, []string{"method", "path", "status"})
)
