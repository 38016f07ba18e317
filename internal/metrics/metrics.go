package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeLive    = "live"
	OutcomeCached  = "cached"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RateRequestsTotal       prometheus.Counter
	ConversionRequestsTotal prometheus.Counter

	ConversionOutcomesTotal *prometheus.CounterVec
	ProviderRequestsTotal   *prometheus.CounterVec
	StoreWriteFailuresTotal prometheus.Counter
	ResolvingInFlight       prometheus.Gauge
}

// NewMetrics registers all collectors with reg. Pass prometheus.DefaultRegisterer to expose
// them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RateRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_requests_total",
				Help: "Total number of exchange rate requests",
			},
		),

		ConversionRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_requests_total",
				Help: "Total number of currency conversion requests",
			},
		),

		ConversionOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversion_outcomes_total",
				Help: "Conversions by final outcome (live, cached, failed, invalid)",
			},
			[]string{"outcome"},
		),

		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_provider_requests_total",
				Help: "Rate provider attempts by provider and result",
			},
			[]string{"provider", "result"},
		),

		StoreWriteFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_store_write_failures_total",
				Help: "Rate cache writes that failed or were skipped after a failed read",
			},
		),

		ResolvingInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_resolutions_in_flight",
				Help: "Conversions currently in the resolving state",
			},
		),
	}
}
