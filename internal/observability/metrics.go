package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	resultFetchTotal       *prometheus.CounterVec
	resultFetchSeconds     *prometheus.HistogramVec
	markDecodeFailures     prometheus.Counter
	contactSubmissionTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		resultFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "result_fetch_total",
			Help: "Result engine operations by outcome.",
		}, []string{"operation", "outcome"})

		resultFetchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "result_fetch_duration_seconds",
			Help:    "Duration of result engine operations.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"operation"})

		markDecodeFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "result_mark_decode_failures_total",
			Help: "Mark tuple cells that could not be decoded.",
		})

		contactSubmissionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by status.",
		}, []string{"status"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			resultFetchTotal,
			resultFetchSeconds,
			markDecodeFailures,
			contactSubmissionTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ResultFetches exposes the result engine outcome counter.
func ResultFetches() *prometheus.CounterVec {
	RegisterMetrics()
	return resultFetchTotal
}

// ResultFetchDuration exposes the result engine duration histogram.
func ResultFetchDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return resultFetchSeconds
}

// MarkDecodeFailures exposes the counter of undecodable mark cells.
func MarkDecodeFailures() prometheus.Counter {
	RegisterMetrics()
	return markDecodeFailures
}

// ContactSubmissions exposes the contact submission counter.
func ContactSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return contactSubmissionTotal
}
