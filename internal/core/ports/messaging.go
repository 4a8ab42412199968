package ports

import (
	"context"
	"time"
)

// Topic names on the message bus.
const (
	TopicAlarms        = "alarms"
	TopicTickets       = "tickets"
	TopicNotifications = "notifications"
)

// Event type names carried in the event_type message header.
const (
	EventTypeAlarm        = "AlarmEvent"
	EventTypeTicket       = "TicketEvent"
	EventTypeNotification = "NotificationEvent"
)

type eventTypeKey struct{}

// WithEventType tags ctx with the type of the event about to be published.
// Bus adapters copy it into the event_type header.
func WithEventType(ctx context.Context, eventType string) context.Context {
	return context.WithValue(ctx, eventTypeKey{}, eventType)
}

// EventTypeFromContext returns the tag set by WithEventType, or "".
func EventTypeFromContext(ctx context.Context) string {
	eventType, _ := ctx.Value(eventTypeKey{}).(string)
	return eventType
}

// Message is one record consumed from a topic.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
	Time    time.Time
}

// MessageHandler processes a single message. A returned error is logged by the
// bus and the message is dropped.
type MessageHandler func(ctx context.Context, msg Message) error

// MessagePublisher writes keyed payloads to a topic. A nil error only means the
// transport accepted the message.
type MessagePublisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// MessageSubscriber registers handlers. Every distinct groupID receives every
// message of the topic, and messages sharing a key reach a group in order.
type MessageSubscriber interface {
	Subscribe(ctx context.Context, topic, groupID string, handler MessageHandler) error
}

// MessageBus is the full transport used by the process.
type MessageBus interface {
	MessagePublisher
	MessageSubscriber
	Ping(ctx context.Context) error
	Close() error
}
