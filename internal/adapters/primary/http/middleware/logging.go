package middleware

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/infrastructure/logging"
)

// routeParamKeys maps chi URL params onto the log keys the services use.
var routeParamKeys = map[string]string{
	"alarmID":    "alarm_id",
	"ticketID":   "ticket_id",
	"customerID": "customer_id",
}

// statusRecorder remembers the status and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.written += int64(n)
	return n, err
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the live feed upgrade to a websocket through this wrapper.
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

// RequestLogger logs one line per request once routing is done, so the line
// carries the matched route and any alarm, ticket or customer id in the path.
// Health checks log at debug.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", rec.written,
				"client_ip", clientIP(r),
			}
			attrs = append(attrs, routeAttrs(r)...)
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}

			logger.Log(r.Context(), requestLevel(r.URL.Path, rec.status), "http request", attrs...)
		})
	}
}

func routeAttrs(r *http.Request) []any {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}

	var attrs []any
	if pattern := rctx.RoutePattern(); pattern != "" {
		attrs = append(attrs, "route", pattern)
	}
	for i, key := range rctx.URLParams.Keys {
		logKey, ok := routeParamKeys[key]
		if ok && i < len(rctx.URLParams.Values) && rctx.URLParams.Values[i] != "" {
			attrs = append(attrs, logKey, rctx.URLParams.Values[i])
		}
	}
	return attrs
}

func requestLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case strings.HasPrefix(path, "/health"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// RecoveryLogger turns a handler panic into a logged 500.
func RecoveryLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logging.LogPanic(logging.LoggerFromContext(r.Context(), logger).With(
						"method", r.Method,
						"path", r.URL.Path,
					), recovered)

					writeAppError(w, apperrors.NewInternalError(fmt.Errorf("panic: %v", recovered)))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// writeAppError writes the same JSON shape as the handlers' error responses.
func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}{appErr.Message, appErr.Code})
}
