package utils

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "onethy"

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
	Messages     *prometheus.CounterVec
	Errors       *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton.
func Registry() *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status.",
			}, []string{"method", "route", "status"}),
			HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency distribution for HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"}),
			Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "messages_total",
				Help:      "Messages appended to conversations by direction.",
			}, []string{"direction"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "errors_total",
				Help:      "Internal errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.HTTPRequests,
			metricsInstance.HTTPLatency,
			metricsInstance.Messages,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
