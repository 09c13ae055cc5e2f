package middleware

import (
	"net/http"
	"time"

	"github.com/damon-houk/currency-widget/internal/infrastructure/metrics"
	"github.com/gorilla/mux"
)

// MetricsMiddleware records request counts and latency per mux route template
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			collector.ObserveHTTP(routeName(r), r.Method, rec.status, time.Since(start))
		})
	}
}

// routeName keeps labels bounded: /widget/currencies/{code}, not every code
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
