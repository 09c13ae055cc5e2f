package middleware

import (
	"net/http"
	"time"

	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
)

// quietRoutes are polled by health checks and scrapers and only logged at debug level
var quietRoutes = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// LoggingMiddleware writes one line per request once it completes. Server
// errors log at error level, client errors at warn.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := routeName(r)
			fields := map[string]interface{}{
				"request_id":     GetRequestID(r.Context()),
				"method":         r.Method,
				"route":          route,
				"path":           r.URL.Path,
				"status":         rec.status,
				"duration_ms":    time.Since(start).Milliseconds(),
				"content_length": rec.written,
			}
			if origin := r.Header.Get("Origin"); origin != "" {
				fields["origin"] = origin
			}

			switch {
			case rec.status >= http.StatusInternalServerError:
				log.Error("Request failed", fields)
			case rec.status >= http.StatusBadRequest:
				log.Warn("Request rejected", fields)
			case quietRoutes[route]:
				log.Debug("Request completed", fields)
			default:
				log.Info("Request completed", fields)
			}
		})
	}
}
