package api

import (
	"net/http"
	"time"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/scope"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// scopingMiddleware stamps every request with a request id.
func scopingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(scope.WithRequestID(r.Context())))
	})
}

// loggingMiddleware logs one line per request with method, route and status.
func loggingMiddleware(l logger.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)
			scope.AugmentLogger(r.Context(), l).Infow("Handled request",
				"method", r.Method, "path", r.URL.Path,
				"status", recorder.status, "duration", time.Since(start))
		})
	}
}

// metricsMiddleware records request duration and errors.
func metricsMiddleware(m common.GatewayMonitoring) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			metrics := m.Metrics().With("method", r.Method, "path", r.URL.Path)
			metrics.RecordAPIRequestDuration(r.Context(), time.Since(start))
			if recorder.status >= http.StatusBadRequest {
				metrics.IncrementAPIRequestErrors(r.Context())
			}
		})
	}
}
