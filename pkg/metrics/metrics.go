package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	ExtractionsTotal    *prometheus.CounterVec
	OCRConfidence       prometheus.Histogram
	MedicationsTotal    *prometheus.CounterVec
	ValidationFuzzyHits prometheus.Counter

	SymptomAnalysesTotal *prometheus.CounterVec
	InteractionsTotal    *prometheus.CounterVec
	FallbackActivations  prometheus.Counter

	EmbeddingCacheHits   prometheus.Counter
	EmbeddingCacheMisses prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		ExtractionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ocr",
			Name:      "extractions_total",
			Help:      "Total prescription extractions by final quality grade.",
		}, []string{"quality"}),

		OCRConfidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "ocr",
			Name:      "confidence",
			Help:      "Distribution of overall recognizer confidence (0-100).",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		MedicationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ocr",
			Name:      "medications_total",
			Help:      "Extracted medications by validation outcome.",
		}, []string{"validated"}),

		ValidationFuzzyHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ocr",
			Name:      "validation_fuzzy_hits_total",
			Help:      "Validations resolved through fuzzy suggestions.",
		}),

		SymptomAnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "semantic",
			Name:      "symptom_analyses_total",
			Help:      "Symptom analyses by derived severity.",
		}, []string{"severity"}),

		InteractionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "semantic",
			Name:      "drug_interactions_total",
			Help:      "Drug interactions detected by level.",
		}, []string{"level"}),

		FallbackActivations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "semantic",
			Name:      "fallback_activations_total",
			Help:      "Requests served by the keyword fallback instead of embeddings.",
		}),

		EmbeddingCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "semantic",
			Name:      "embedding_cache_hits_total",
			Help:      "Embedding cache hits.",
		}),

		EmbeddingCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "semantic",
			Name:      "embedding_cache_misses_total",
			Help:      "Embedding cache misses.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
