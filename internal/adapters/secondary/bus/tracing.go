package bus

import (
	"context"

	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const headerEventType = "event_type"

// outgoingHeaders builds the headers of a published message: the event type
// tagged by the publishing service plus the trace context.
func outgoingHeaders(ctx context.Context) map[string]string {
	headers := make(map[string]string, 3)
	if eventType := ports.EventTypeFromContext(ctx); eventType != "" {
		headers[headerEventType] = eventType
	}
	injectTraceContext(ctx, headers)
	return headers
}

// injectTraceContext writes W3C trace headers for ctx into headers.
func injectTraceContext(ctx context.Context, headers map[string]string) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))
}

// extractTraceContext returns ctx carrying the remote span found in headers.
func extractTraceContext(ctx context.Context, headers map[string]string) context.Context {
	if len(headers) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))
}

func toKafkaHeaders(headers map[string]string) []kafka.Header {
	out := make([]kafka.Header, 0, len(headers))
	for k, v := range headers {
		out = append(out, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

func fromKafkaHeaders(headers []kafka.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h.Key] = string(h.Value)
	}
	return out
}
