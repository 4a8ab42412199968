package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/lorrc/incident-desk/internal/core/ports"
)

var (
	ErrBusClosed         = errors.New("message bus closed")
	ErrAlreadySubscribed = errors.New("group already subscribed to topic")
)

// MemoryBus is an in-process MessageBus with the same delivery contract as
// the Kafka bus: fan-out per group, ordering per key, handler errors dropped.
// Messages published to a topic with no subscribers are discarded.
type MemoryBus struct {
	mu      sync.RWMutex
	subs    map[string]map[string]*dispatcher
	workers int
	logger  *slog.Logger
	closed  bool
	done    chan struct{}
}

var _ ports.MessageBus = (*MemoryBus)(nil)

// NewMemoryBus creates a bus whose subscriptions each run workers goroutines.
func NewMemoryBus(workers int, logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		subs:    make(map[string]map[string]*dispatcher),
		workers: workers,
		logger:  logger.With("component", "memory_bus"),
		done:    make(chan struct{}),
	}
}

// Publish copies payload to every group subscribed to topic.
func (b *MemoryBus) Publish(ctx context.Context, topic, key string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	headers := outgoingHeaders(ctx)

	for _, d := range b.subs[topic] {
		d.dispatch(key, ports.Message{
			Topic:   topic,
			Key:     key,
			Value:   append([]byte(nil), payload...),
			Headers: maps.Clone(headers),
			Time:    time.Now(),
		}, nil)
	}
	return nil
}

// Subscribe registers handler for groupID. The subscription ends when ctx is
// cancelled or the bus is closed.
func (b *MemoryBus) Subscribe(ctx context.Context, topic, groupID string, handler ports.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if _, exists := b.subs[topic][groupID]; exists {
		return fmt.Errorf("%w: %s/%s", ErrAlreadySubscribed, topic, groupID)
	}

	d := newDispatcher(topic, groupID, b.workers, handler, b.logger)
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]*dispatcher)
	}
	b.subs[topic][groupID] = d

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(topic, groupID, d)
		case <-b.done:
		}
	}()

	b.logger.Info("subscribed", "topic", topic, "group", groupID)
	return nil
}

func (b *MemoryBus) unsubscribe(topic, groupID string, d *dispatcher) {
	b.mu.Lock()
	if current, ok := b.subs[topic][groupID]; ok && current == d {
		delete(b.subs[topic], groupID)
	}
	b.mu.Unlock()

	d.close()
}

// Ping reports whether the bus still accepts messages.
func (b *MemoryBus) Ping(_ context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}
	return nil
}

// Close stops all subscriptions after their queued messages are handled.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)

	var all []*dispatcher
	for topic, groups := range b.subs {
		for _, d := range groups {
			all = append(all, d)
		}
		delete(b.subs, topic)
	}
	b.mu.Unlock()

	for _, d := range all {
		d.close()
	}
	return nil
}
