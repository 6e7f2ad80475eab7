package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Generation
	ManifestsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcgen_manifests_generated_total",
			Help: "Number of manifest generations by result",
		},
		[]string{"result"}, // result: success|error
	)
	HostsRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcgen_hosts_rendered_total",
			Help: "Number of host files embedded into manifests",
		},
		[]string{"role"},
	)
	GenerationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mcgen_generation_duration_seconds",
			Help:    "Duration of manifest generation including analysis",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs..1.6s
		},
	)
	ManifestBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mcgen_manifest_bytes",
			Help:    "Size of generated manifests in bytes",
			Buckets: prometheus.ExponentialBuckets(512, 4, 8), // 512B..8MB
		},
	)

	// Form views
	FormViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mcgen_form_views_total",
			Help: "Number of times the input form was rendered",
		},
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcgen_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		// Generation
		ManifestsGenerated,
		HostsRendered,
		GenerationDurationSeconds,
		ManifestBytes,
		// Form
		FormViews,
		// Errors
		Errors,
	)
}

// StartMetricsServer serves /metrics on its own listener. It blocks.
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

// Generation
func IncManifestGenerated(result string) {
	ManifestsGenerated.WithLabelValues(result).Inc()
}

func AddHostsRendered(role string, n int) {
	HostsRendered.WithLabelValues(role).Add(float64(n))
}

func ObserveGenerationDuration(d time.Duration) {
	GenerationDurationSeconds.Observe(d.Seconds())
}

func ObserveManifestBytes(n int) {
	ManifestBytes.Observe(float64(n))
}

// Form
func IncFormView() {
	FormViews.Inc()
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}
