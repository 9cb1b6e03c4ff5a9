package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the research service.
type Metrics struct {
	// QuestionsProcessed counts research questions accepted for processing.
	QuestionsProcessed prometheus.Counter

	// PipelineDuration observes end-to-end pipeline latency in seconds.
	PipelineDuration prometheus.Histogram

	// SearchesStarted counts source searches started, labeled by source.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts source searches that succeeded, labeled by source.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts source searches that failed, labeled by source.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes per-source search latency in seconds.
	SearchDuration *prometheus.HistogramVec

	// PapersBySource counts papers returned, labeled by source.
	PapersBySource *prometheus.CounterVec

	// DOIsEnriched counts DOIs passed to the open access resolver.
	DOIsEnriched prometheus.Counter

	// LLMRequestsTotal counts LLM calls, labeled by provider and operation.
	LLMRequestsTotal *prometheus.CounterVec

	// LLMRequestsFailed counts failed LLM calls, labeled by provider and operation.
	LLMRequestsFailed *prometheus.CounterVec

	// CitationsResolved counts citation markers resolved to papers.
	CitationsResolved prometheus.Counter

	// CitationFallbacks counts answers where no marker resolved and the
	// fallback citation list was used.
	CitationFallbacks prometheus.Counter
}

// NewMetrics creates and registers all metrics under the given namespace
// using the default Prometheus registerer.
func NewMetrics(namespace string) *Metrics {
	return newMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates metrics attached to a custom registry.
// Tests use this to avoid duplicate registration panics.
func NewMetricsWithRegistry(namespace string, reg *prometheus.Registry) *Metrics {
	return newMetricsWith(namespace, reg)
}

func newMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		QuestionsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_processed_total",
			Help:      "Total research questions accepted for processing.",
		}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end research pipeline latency.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		SearchesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Source searches started.",
		}, []string{"source"}),
		SearchesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Source searches that succeeded.",
		}, []string{"source"}),
		SearchesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Source searches that failed or timed out.",
		}, []string{"source"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Per-source search latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		PapersBySource: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_by_source_total",
			Help:      "Papers returned, by source.",
		}, []string{"source"}),
		DOIsEnriched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dois_enriched_total",
			Help:      "DOIs passed to the open access resolver.",
		}),
		LLMRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM calls made.",
		}, []string{"provider", "operation"}),
		LLMRequestsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_failed_total",
			Help:      "LLM calls that failed after retries.",
		}, []string{"provider", "operation"}),
		CitationsResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citations_resolved_total",
			Help:      "Citation markers resolved to papers.",
		}),
		CitationFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citation_fallbacks_total",
			Help:      "Answers where no citation marker resolved.",
		}),
	}
}
