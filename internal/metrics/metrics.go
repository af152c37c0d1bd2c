package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prediction outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	buckets     *prometheus.CounterVec
	duration    prometheus.Histogram
	requests    *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a new registry.
func New() *Metrics {
	m := Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_predictions_total",
			Help: "Prediction requests by outcome.",
		}, []string{"outcome"}),
		buckets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_prediction_bucket_total",
			Help: "Successful predictions by message bucket.",
		}, []string{"bucket"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "risk_prediction_duration_seconds",
			Help:    "Time spent scoring a prediction request.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}

	m.registry.MustRegister(
		m.predictions,
		m.buckets,
		m.duration,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &m
}

// ObservePrediction records the outcome and duration of one prediction.
// bucket is the message bucket index, 0 for the fallback message; it is only
// recorded for successful predictions.
func (m *Metrics) ObservePrediction(outcome string, bucket int, elapsed time.Duration) {
	m.predictions.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome != OutcomeSuccess {
		return
	}

	label := strconv.Itoa(bucket)
	if bucket == 0 {
		label = "invalid"
	}
	m.buckets.WithLabelValues(label).Inc()
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method string, code int) {
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// Handler returns the exposition handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
