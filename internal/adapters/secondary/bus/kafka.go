package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/segmentio/kafka-go"
)

var ErrBrokersNotConfigured = errors.New("kafka brokers not configured")

// KafkaConfig configures the Kafka-backed bus.
type KafkaConfig struct {
	Brokers []string
	// Workers is the handler concurrency of each subscription.
	Workers int
	// DialTimeout bounds the readiness check.
	DialTimeout time.Duration
}

// KafkaBus is a MessageBus on segmentio/kafka-go. Messages are keyed so that
// the Hash balancer pins a key to one partition. Each subscription is a
// consumer group reader; offsets are committed after the handler returns.
type KafkaBus struct {
	cfg    KafkaConfig
	writer *kafka.Writer
	logger *slog.Logger

	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
}

var _ ports.MessageBus = (*KafkaBus)(nil)

// NewKafkaBus creates the bus. No connection is made until first use.
func NewKafkaBus(cfg KafkaConfig, logger *slog.Logger) (*KafkaBus, error) {
	cfg.Brokers = splitBrokers(strings.Join(cfg.Brokers, ","))
	if len(cfg.Brokers) == 0 {
		return nil, ErrBrokersNotConfigured
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}

	return &KafkaBus{
		cfg: cfg,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		logger: logger.With("component", "kafka_bus"),
	}, nil
}

// splitBrokers parses a comma separated broker list.
func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Publish writes one message and waits for the leader acknowledgement.
func (b *KafkaBus) Publish(ctx context.Context, topic, key string, payload []byte) error {
	headers := outgoingHeaders(ctx)

	err := b.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: toKafkaHeaders(headers),
		Time:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", topic, err)
	}
	return nil
}

// Subscribe starts a consumer group reader for topic.
func (b *KafkaBus) Subscribe(ctx context.Context, topic, groupID string, handler ports.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.cfg.Brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	runCtx, cancel := context.WithCancel(ctx)
	b.cancels = append(b.cancels, cancel)

	d := newDispatcher(topic, groupID, b.cfg.Workers, handler, b.logger)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(runCtx, reader, d)
	}()

	b.logger.Info("subscribed", "topic", topic, "group", groupID)
	return nil
}

// consume fetches until ctx ends. Messages are routed by partition, which
// keeps per-key order and lets commits advance in offset order.
func (b *KafkaBus) consume(ctx context.Context, reader *kafka.Reader, d *dispatcher) {
	defer func() {
		d.close()
		if err := reader.Close(); err != nil {
			b.logger.Warn("kafka reader close failed", "topic", d.topic, "error", err)
		}
	}()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			b.logger.Error("kafka read error", "topic", d.topic, "group", d.group, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		msg := ports.Message{
			Topic:   m.Topic,
			Key:     string(m.Key),
			Value:   m.Value,
			Headers: fromKafkaHeaders(m.Headers),
			Time:    m.Time,
		}

		d.dispatch(fmt.Sprintf("partition-%d", m.Partition), msg, func() {
			if err := reader.CommitMessages(context.Background(), m); err != nil {
				b.logger.Error("kafka commit failed",
					"topic", m.Topic,
					"partition", m.Partition,
					"offset", m.Offset,
					"error", err,
				)
			}
		})
	}
}

// Ping dials the first reachable broker.
func (b *KafkaBus) Ping(ctx context.Context) error {
	dialer := kafka.Dialer{Timeout: b.cfg.DialTimeout}

	var lastErr error
	for _, broker := range b.cfg.Brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

// Close stops every reader, waits for in-flight handlers and flushes the writer.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancels := b.cancels
	b.cancels = nil
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	b.wg.Wait()

	return b.writer.Close()
}
