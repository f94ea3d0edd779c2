package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flood_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	AssessmentsTotal *prometheus.CounterVec // labels: class={low,high}
	RiskScore        prometheus.Histogram

	// Weather provider metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,<fallback reason>}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram
	WeatherRetries     prometheus.Counter
	WeatherEnabled     prometheus.Gauge
	FloodSimEnabled    prometheus.Gauge

	// Event publishing metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter

	// Scheduled sweep metrics.
	SweepRunning  prometheus.Gauge
	SweepDuration prometheus.Histogram
	SweepHighRisk prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewUnregisteredMetrics creates Metrics that are never exported, for
// one-shot commands that have no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can create as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Risk assessments by resulting class.",
		}, []string{"class"}),
		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of computed risk scores.",
			Buckets:   []float64{1, 5, 10, 20, 40, 80, 160, 500, 1000},
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "Rainfall lookups by outcome (success or fallback reason).",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Observation cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "KMA nowcast API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		WeatherRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_retries_total",
			Help:      "Retries against the previous base time after a NO_DATA response.",
		}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_enabled",
			Help:      "1 when live rainfall is enabled, 0 otherwise.",
		}),
		FloodSimEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flood_simulation_enabled",
			Help:      "1 when flood depth simulation is enabled, 0 otherwise.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Assessment events written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Assessment events that failed to publish.",
		}),
		SweepRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_running",
			Help:      "1 while the scheduled district sweep is running, 0 otherwise.",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time to assess every registered district once.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		SweepHighRisk: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_high_risk_districts",
			Help:      "High-risk districts in the most recent sweep.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.AssessmentsTotal,
		m.RiskScore,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.WeatherRetries,
		m.WeatherEnabled,
		m.FloodSimEnabled,
		m.EventsPublished,
		m.PublishErrors,
		m.SweepRunning,
		m.SweepDuration,
		m.SweepHighRisk,
	}
}

// SetFeatureGauges records which optional features are switched on.
func (m *Metrics) SetFeatureGauges(weather, floodSim bool) {
	m.WeatherEnabled.Set(boolToFloat(weather))
	m.FloodSimEnabled.Set(boolToFloat(floodSim))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
