package daemon

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"curtail/internal/logship"
)

// Middleware wraps an http.Handler, typically to add cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in order, returning the final wrapped handler.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

const (
	// HeaderCorrelationID tracks a request end-to-end.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an accepted alternative set by some proxies.
	HeaderRequestID = "X-Request-ID"
)

func normalizeCorrelationID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.ContainsAny(value, "\r\n") {
		return ""
	}
	const maxLen = 128
	if len(value) > maxLen {
		value = value[:maxLen]
	}
	return value
}

// correlationID echoes an inbound correlation header or mints a fresh UUID.
func correlationID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := normalizeCorrelationID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = normalizeCorrelationID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" {
				cid = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, cid)
			next.ServeHTTP(w, r)
		})
	}
}

// recoverer converts handler panics into 500 responses instead of torn
// connections. http.ErrAbortHandler is re-raised as the server expects.
func recoverer(logger *slog.Logger, shipper logship.Shipper) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic in request handler",
						slog.Any("panic", rvr),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					shipper.Error(r.Context(), logship.StackBackend, logship.PackageMiddleware, "request handler panicked")
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// requestLog emits one local log line per completed request.
func requestLog(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request handled",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", rec.bytes),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("correlation_id", rec.Header().Get(HeaderCorrelationID)),
			)
		})
	}
}
