package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/AlexZinkM/ergo-wallet/docs"
	"github.com/AlexZinkM/ergo-wallet/internal/handler"
	"github.com/AlexZinkM/ergo-wallet/internal/metrics"
)

// SetupRouter sets up router with handlers
func SetupRouter(sessions *handler.SessionHandler, gatherer prometheus.Gatherer, httpMetrics *metrics.HTTP, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Prometheus
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Session endpoints
	sessions.Register(mux)

	return instrument(mux, httpMetrics, log)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// instrument records request metrics by route pattern and logs each request
func instrument(next *http.ServeMux, m *metrics.HTTP, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		_, pattern := next.Handler(r)

		if pattern == "GET /sessions/{id}/events" {
			// hijacked connections report no status
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		if pattern != "" {
			m.Requests.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
			m.Duration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())
		}
		log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}
