package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records remote API calls. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "profiledesk",
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Remote user API requests by endpoint and status class.",
		}, []string{"endpoint", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "profiledesk",
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Remote user API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) observe(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, statusClass(status)).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// statusClass buckets a status code; 0 means the request never got a response
func statusClass(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
