package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the API client.
// A nil *Metrics is valid and does nothing, so the client can run unmetered.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	AuthErrors        *prometheus.CounterVec
	CSRFPrimes        prometheus.Counter
	CSRFPrimeFailures prometheus.Counter
}

// New registers and returns API client metrics on the given registerer.
// Callers that construct multiple clients (tests) should pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propadmin_api_requests_total",
			Help: "Total API requests by method and status code",
		}, []string{"method", "status"}),
		RequestDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "propadmin_api_request_duration_ms",
			Help:    "API request duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"method"}),
		AuthErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propadmin_api_auth_errors_total",
			Help: "Auth error dispatches by kind (unauthorized, forbidden)",
		}, []string{"kind"}),
		CSRFPrimes: factory.NewCounter(prometheus.CounterOpts{
			Name: "propadmin_api_csrf_primes_total",
			Help: "Explicit CSRF token fetches",
		}),
		CSRFPrimeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "propadmin_api_csrf_prime_failures_total",
			Help: "Failed CSRF token fetches (non-fatal)",
		}),
	}
}

// ObserveRequest records one completed request. status 0 means no response.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDurationMs.WithLabelValues(method).Observe(float64(elapsed.Milliseconds()))
}

// ObserveAuthError records one auth-error dispatch.
func (m *Metrics) ObserveAuthError(kind string) {
	if m == nil {
		return
	}
	m.AuthErrors.WithLabelValues(kind).Inc()
}

// ObserveCSRFPrime records one explicit CSRF token fetch.
func (m *Metrics) ObserveCSRFPrime(ok bool) {
	if m == nil {
		return
	}
	m.CSRFPrimes.Inc()
	if !ok {
		m.CSRFPrimeFailures.Inc()
	}
}
