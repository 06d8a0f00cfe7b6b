package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs every HTTP request with its duration. Scrapes of
// /metrics are passed through silently. The handler gets the raw
// ResponseWriter: the websocket upgrade needs http.Hijacker, so no
// status-capturing wrapper is layered in here.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogConnectionOpen logs a player's WebSocket connection being accepted.
func LogConnectionOpen(logger *logrus.Logger, remoteAddr string) {
	logger.WithField("remote", remoteAddr).Info("WebSocket connected")
}

// LogConnectionClosed logs a player's WebSocket connection going away, with
// the display name when the session got far enough to have one.
func LogConnectionClosed(logger *logrus.Logger, remoteAddr, name string, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
	}
	if name != "" {
		fields["player"] = name
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
