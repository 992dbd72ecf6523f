package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/qte/pkg/metrics"
)

// MetricsMiddleware records request count and latency per endpoint. Failed
// requests are also counted under the error code written by writeError.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.status)
		ms := float64(time.Since(start).Microseconds()) / 1000
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, ms)

		if rec.status >= http.StatusBadRequest {
			code := rec.code
			if code == "" {
				code = "http_" + status
			}
			metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
		}
	}
}

// statusRecorder keeps the status and API error code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// recordErrorCode tags w with code when it is being measured.
func recordErrorCode(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.code = code
	}
}
