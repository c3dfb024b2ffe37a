package openagenda

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the optional Prometheus collectors of a client. A nil
// *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	tokenRequests *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registerer when
// it is not nil.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openagenda",
			Name:      "requests_total",
			Help:      "Number of API requests by method and status code",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "openagenda",
			Name:      "request_duration_seconds",
			Help:      "Time spent waiting for API responses",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		tokenRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openagenda",
			Name:      "token_requests_total",
			Help:      "Number of access token requests by outcome",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openagenda",
			Name:      "token_cache_lookups_total",
			Help:      "Number of token cache lookups by result",
		}, []string{"result"}),
	}

	if registerer == nil {
		return metrics, nil
	}

	for _, collector := range metrics.Collectors() {
		err := registerer.Register(collector)
		if err != nil {
			return nil, err
		}
	}

	return metrics, nil
}

// Collectors returns every collector, for custom registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.duration, m.tokenRequests, m.cacheLookups}
}

// ObserveRequest records one completed request. Status 0 means the transport
// failed before a response arrived.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}

	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// TokenRequested records an authentication request outcome.
func (m *Metrics) TokenRequested(ok bool) {
	if m == nil {
		return
	}

	outcome := "failure"
	if ok {
		outcome = "success"
	}

	m.tokenRequests.WithLabelValues(outcome).Inc()
}

// CacheLookup records a token cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	m.cacheLookups.WithLabelValues(result).Inc()
}
