package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Flow holds the authorization flow metrics
type Flow struct {
	SessionsStarted *prometheus.CounterVec
	SessionsDone    *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	PagesScanned    prometheus.Counter
}

// NewFlow registers the flow metrics on reg. A nil reg creates unregistered metrics.
func NewFlow(reg prometheus.Registerer) *Flow {
	factory := promauto.With(reg)
	return &Flow{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ergo_wallet_sessions_started_total",
			Help: "The total number of authorization sessions started",
		}, []string{"flow"}),
		SessionsDone: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ergo_wallet_sessions_done_total",
			Help: "The total number of authorization sessions finished, by outcome severity",
		}, []string{"flow", "severity"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ergo_wallet_request_fetch_duration_seconds",
			Help:    "Duration of authorization request fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"flow", "result"}),
		PagesScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "ergo_wallet_qr_pages_scanned_total",
			Help: "The total number of distinct QR pages accepted",
		}),
	}
}

// HTTP holds the API request metrics
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP registers the API request metrics on reg
func NewHTTP(reg prometheus.Registerer) *HTTP {
	factory := promauto.With(reg)
	return &HTTP{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ergo_wallet_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ergo_wallet_http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "path"}),
	}
}
