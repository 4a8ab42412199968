package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey contextKey = "request_id"
	// AlarmIDKey is the context key for the alarm being processed
	AlarmIDKey contextKey = "alarm_id"
	// TicketIDKey is the context key for the ticket being processed
	TicketIDKey contextKey = "ticket_id"
)

// correlationKeys are copied from the context onto every record, in this order.
var correlationKeys = []contextKey{RequestIDKey, AlarmIDKey, TicketIDKey}

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, text
	Output      io.Writer
	AddSource   bool
	ServiceName string
	Environment string
}

// NewLogger creates a structured logger. Records carry the application name
// under "app", since "service" is already taken by alarm records
// (BROADBAND, MOBILE and so on).
func NewLogger(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("app", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	})

	return slog.New(&correlationHandler{next: handler})
}

// correlationHandler stamps request, alarm and ticket ids found in the context.
type correlationHandler struct {
	next slog.Handler
}

func (h *correlationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *correlationHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range correlationKeys {
		if value := stringValue(ctx, key); value != "" {
			r.AddAttrs(slog.String(string(key), value))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *correlationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &correlationHandler{next: h.next.WithAttrs(attrs)}
}

func (h *correlationHandler) WithGroup(name string) slog.Handler {
	return &correlationHandler{next: h.next.WithGroup(name)}
}

func stringValue(ctx context.Context, key contextKey) string {
	value, _ := ctx.Value(key).(string)
	return value
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithAlarmID adds an alarm ID to the context
func WithAlarmID(ctx context.Context, alarmID string) context.Context {
	return context.WithValue(ctx, AlarmIDKey, alarmID)
}

// WithTicketID adds a ticket ID to the context
func WithTicketID(ctx context.Context, ticketID string) context.Context {
	return context.WithValue(ctx, TicketIDKey, ticketID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// LoggerFromContext binds the context's correlation ids to logger. Use it for
// loggers that are not created by NewLogger or that outlive the context.
func LoggerFromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	var attrs []any
	for _, key := range correlationKeys {
		if value := stringValue(ctx, key); value != "" {
			attrs = append(attrs, string(key), value)
		}
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}

// LogPanic logs panic information and stack trace
func LogPanic(logger *slog.Logger, panicValue any) {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)

	logger.Error("panic recovered",
		"panic", panicValue,
		"stack_trace", string(buf[:n]),
	)
}
