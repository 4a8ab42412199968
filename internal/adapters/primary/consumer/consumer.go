package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/lorrc/incident-desk/internal/infrastructure/logging"
)

// Config holds the consumer group ids for each subscription.
type Config struct {
	TicketGroupID       string
	NotificationGroupID string
	LiveFeedGroupID     string
	// NotifyOnAlarms also notifies customers straight from the alarm feed.
	NotifyOnAlarms bool
}

// DefaultConfig returns the group ids used by the services in production.
func DefaultConfig() Config {
	return Config{
		TicketGroupID:       "ticket-service",
		NotificationGroupID: "notification-service",
		LiveFeedGroupID:     "live-feed",
	}
}

// Consumers wires the bus topics to the services that react to them.
type Consumers struct {
	subscriber    ports.MessageSubscriber
	tickets       ports.TicketService
	notifications ports.NotificationService
	broadcaster   ports.EventBroadcaster
	cfg           Config
	logger        *slog.Logger
}

// New creates the consumer set. broadcaster may be nil, in which case the
// live feed is not subscribed.
func New(
	subscriber ports.MessageSubscriber,
	tickets ports.TicketService,
	notifications ports.NotificationService,
	broadcaster ports.EventBroadcaster,
	cfg Config,
	logger *slog.Logger,
) *Consumers {
	return &Consumers{
		subscriber:    subscriber,
		tickets:       tickets,
		notifications: notifications,
		broadcaster:   broadcaster,
		cfg:           cfg,
		logger:        logger.With("component", "consumer"),
	}
}

type subscription struct {
	topic   string
	group   string
	handler ports.MessageHandler
}

// Start subscribes every handler. Subscriptions end when ctx is cancelled.
func (c *Consumers) Start(ctx context.Context) error {
	subs := []subscription{
		{ports.TopicAlarms, c.cfg.TicketGroupID, c.handleAlarmForTickets},
		{ports.TopicTickets, c.cfg.NotificationGroupID, c.handleTicketEvent},
	}
	if c.cfg.NotifyOnAlarms {
		subs = append(subs, subscription{ports.TopicAlarms, c.cfg.NotificationGroupID + "-alarms", c.handleAlarmForNotifications})
	}
	if c.broadcaster != nil {
		subs = append(subs,
			subscription{ports.TopicTickets, c.cfg.LiveFeedGroupID, c.broadcastTicketEvent},
			subscription{ports.TopicNotifications, c.cfg.LiveFeedGroupID, c.broadcastNotification},
		)
	}

	for _, sub := range subs {
		if err := c.subscriber.Subscribe(ctx, sub.topic, sub.group, sub.handler); err != nil {
			return fmt.Errorf("subscribe %s/%s: %w", sub.topic, sub.group, err)
		}
		c.logger.Info("subscribed", "topic", sub.topic, "group", sub.group)
	}
	return nil
}

func (c *Consumers) handleAlarmForTickets(ctx context.Context, msg ports.Message) error {
	event, ok := c.decodeAlarm(ctx, msg)
	if !ok {
		return nil
	}
	return c.tickets.HandleAlarm(logging.WithAlarmID(ctx, event.AlarmID), event)
}

func (c *Consumers) handleAlarmForNotifications(ctx context.Context, msg ports.Message) error {
	event, ok := c.decodeAlarm(ctx, msg)
	if !ok {
		return nil
	}
	return c.notifications.HandleAlarmEvent(logging.WithAlarmID(ctx, event.AlarmID), event)
}

func (c *Consumers) handleTicketEvent(ctx context.Context, msg ports.Message) error {
	event, ok := c.decodeTicket(ctx, msg)
	if !ok {
		return nil
	}
	ctx = logging.WithTicketID(logging.WithAlarmID(ctx, event.AlarmID), event.TicketID)
	return c.notifications.HandleTicketEvent(ctx, event)
}

func (c *Consumers) broadcastTicketEvent(ctx context.Context, msg ports.Message) error {
	event, ok := c.decodeTicket(ctx, msg)
	if !ok {
		return nil
	}
	return c.broadcaster.Broadcast(domain.LiveEvent{
		Type:    domain.LiveTicketChanged,
		Payload: event,
		AlarmID: event.AlarmID,
	})
}

func (c *Consumers) broadcastNotification(ctx context.Context, msg ports.Message) error {
	event, err := DecodeNotificationEvent(msg.Value)
	if err != nil {
		c.dropUnparsable(ctx, msg, err)
		return nil
	}
	return c.broadcaster.Broadcast(domain.LiveEvent{
		Type:    domain.LiveNotificationSent,
		Payload: event,
		AlarmID: event.AlarmID,
	})
}

func (c *Consumers) decodeAlarm(ctx context.Context, msg ports.Message) (*domain.AlarmEvent, bool) {
	event, err := DecodeAlarmEvent(msg.Value)
	if err != nil {
		c.dropUnparsable(ctx, msg, err)
		return nil, false
	}
	return event, true
}

func (c *Consumers) decodeTicket(ctx context.Context, msg ports.Message) (*domain.TicketEvent, bool) {
	event, err := DecodeTicketEvent(msg.Value)
	if err != nil {
		c.dropUnparsable(ctx, msg, err)
		return nil, false
	}
	return event, true
}

func (c *Consumers) dropUnparsable(ctx context.Context, msg ports.Message, err error) {
	c.logger.WarnContext(ctx, "dropping unparsable message",
		"topic", msg.Topic,
		"key", msg.Key,
		"bytes", len(msg.Value),
		"error", err,
	)
}
