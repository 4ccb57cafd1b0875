// Package metrics owns the Prometheus registry of the service. A single
// Registry is built by the composition root and handed to every component
// that records observations.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DurationBuckets are shared by the HTTP and database histograms, in seconds.
var DurationBuckets = []float64{0.1, 0.5, 1, 2, 5}

// DefaultPrefix namespaces the runtime and process collectors.
const DefaultPrefix = "phonebook_"

type Registry struct {
	registry *prometheus.Registry

	httpRequestDuration       *prometheus.HistogramVec
	errorRate                 *prometheus.CounterVec
	databaseOperationDuration *prometheus.HistogramVec
}

// NewRegistry creates the registry with the request, error and database
// instruments plus Go runtime and process collectors.
func NewRegistry() *Registry {
	r := newRegistry()
	prometheus.WrapRegistererWithPrefix(DefaultPrefix, r.registry).MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func newRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: DurationBuckets,
			},
			[]string{"method", "route", "status_code"},
		),

		errorRate: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_request_errors_total",
				Help: "Total number of HTTP request errors",
			},
			[]string{"method", "route", "status_code"},
		),

		databaseOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "database_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: DurationBuckets,
			},
			[]string{"operation"},
		),
	}

	r.registry.MustRegister(
		r.httpRequestDuration,
		r.errorRate,
		r.databaseOperationDuration,
	)
	return r
}

// ObserveHTTPRequest records a finished request. Statuses >= 400 also count
// as errors.
func (r *Registry) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	r.httpRequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	if status >= 400 {
		r.errorRate.WithLabelValues(method, route, code).Inc()
	}
}

// ObserveDatabaseOperation records the duration of one gateway interaction.
func (r *Registry) ObserveDatabaseOperation(operation string, d time.Duration) {
	r.databaseOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// MustRegister adds collectors owned by other components (cache, pools).
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Registerer lets components register their own instruments.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the registry for the scrape endpoint.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
