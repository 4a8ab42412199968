package bus

import (
	"context"

	"github.com/lorrc/incident-desk/internal/core/ports"
)

// TopicNames maps the logical topics used by the services to the names on
// the broker. Missing entries keep their logical name.
type TopicNames map[string]string

// WithTopicNames wraps b so that every publish and subscribe goes to the
// configured broker topic.
func WithTopicNames(b ports.MessageBus, names TopicNames) ports.MessageBus {
	renamed := false
	for logical, physical := range names {
		if physical != "" && physical != logical {
			renamed = true
		}
	}
	if !renamed {
		return b
	}
	return &renamedBus{MessageBus: b, names: names}
}

type renamedBus struct {
	ports.MessageBus
	names TopicNames
}

func (r *renamedBus) resolve(topic string) string {
	if physical := r.names[topic]; physical != "" {
		return physical
	}
	return topic
}

func (r *renamedBus) Publish(ctx context.Context, topic, key string, payload []byte) error {
	return r.MessageBus.Publish(ctx, r.resolve(topic), key, payload)
}

func (r *renamedBus) Subscribe(ctx context.Context, topic, groupID string, handler ports.MessageHandler) error {
	return r.MessageBus.Subscribe(ctx, r.resolve(topic), groupID, handler)
}
