package middlewarectx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "course_store_http_requests_total",
	Help: "Количество HTTP запросов по методам и статусам.",
}, []string{"method", "status"})

// MetricsMiddleware считает HTTP запросы для Prometheus.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}
