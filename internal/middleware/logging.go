package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging emits one structured line per request after it completes.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ClientIP(r),
			"request_id", GetRequestID(r.Context()),
		)
	})
}
