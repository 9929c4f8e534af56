package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	SessionsIngested  prometheus.Counter
	SessionsDropped   prometheus.Counter
	PipelineQueueSize prometheus.Gauge
	AnalysisLatency   *prometheus.HistogramVec

	RiskAssessments  *prometheus.CounterVec
	ThreatsDetected  *prometheus.CounterVec
	Recommendations  *prometheus.CounterVec
	PoliciesCreated  *prometheus.CounterVec
	EventsGenerated  *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec
	SimulationCycles prometheus.Counter
	DevicePoolSize   prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naps_sessions_ingested_total",
			Help: "Total number of sessions accepted into the analysis pipeline.",
		}),
		SessionsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naps_sessions_dropped_total",
			Help: "Total number of sessions dropped because the pipeline queue was full.",
		}),
		PipelineQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "naps_pipeline_queue_size",
			Help: "Current number of sessions waiting in the pipeline queue.",
		}),
		AnalysisLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "naps_analysis_duration_seconds",
				Help:    "Duration of full session analysis runs.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		RiskAssessments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naps_risk_assessments_total",
				Help: "Total number of risk assessments by resulting band.",
			},
			[]string{"risk_level"},
		),
		ThreatsDetected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naps_threats_detected_total",
				Help: "Total number of threat detections by severity.",
			},
			[]string{"severity"},
		),
		Recommendations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naps_policy_recommendations_total",
				Help: "Total number of policy recommendations by priority.",
			},
			[]string{"priority"},
		),
		PoliciesCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naps_policies_created_total",
				Help: "Total number of policies materialized from recommendations.",
			},
			[]string{"type"},
		),
		EventsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naps_events_generated_total",
				Help: "Total number of simulated network events by type and severity.",
			},
			[]string{"event_type", "severity"},
		),
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naps_events_published_total",
				Help: "Total number of security events published to the broker.",
			},
			[]string{"result"},
		),
		SimulationCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naps_simulation_cycles_total",
			Help: "Total number of completed simulation cycles.",
		}),
		DevicePoolSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "naps_device_pool_size",
			Help: "Current number of devices in the simulated pool.",
		}),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naps_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "naps_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecordAnalysis observes one completed analysis run.
func (m *Metrics) RecordAnalysis(result string, duration time.Duration) {
	m.AnalysisLatency.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordHTTPRequest observes one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}
