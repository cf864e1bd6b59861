// Package middleware holds the HTTP middleware shared by all routes.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/diewo77/go-tailorshop/httpx"
	"github.com/diewo77/go-tailorshop/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Logging tags each request with an id, stores a request-scoped logger in the
// context and logs one line per request.
func Logging(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			l := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
			)
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r.WithContext(logging.WithCtx(r.Context(), l)))

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			attrs := []any{
				"status", sw.status,
				"dur_ms", time.Since(start).Milliseconds(),
				"resp_bytes", sw.bytes,
			}
			if sw.status >= http.StatusInternalServerError {
				l.Error("http_request", attrs...)
				return
			}
			l.Info("http_request", attrs...)
		})
	}
}

// Recover turns a panic in a handler into a 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.FromCtx(r.Context()).Error("panic recovered", "panic", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "UNKNOWN", "internal error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Chain applies mws so that the first one is outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
