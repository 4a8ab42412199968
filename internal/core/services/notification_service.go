package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/incident-desk/internal/core/domain"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// NotificationService turns ticket transitions into customer notifications
// and owns the notification log.
type NotificationService struct {
	notificationRepo ports.NotificationRepository
	notifier         ports.Notifier
	publisher        ports.MessagePublisher
	logger           *slog.Logger
	now              func() time.Time
}

var _ ports.NotificationService = (*NotificationService)(nil)

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo ports.NotificationRepository,
	notifier ports.Notifier,
	publisher ports.MessagePublisher,
	logger *slog.Logger,
) ports.NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		notifier:         notifier,
		publisher:        publisher,
		logger:           logger.With("component", "notification_service"),
		now:              time.Now,
	}
}

// TicketNotificationMessage renders the customer-facing text for a ticket transition.
func TicketNotificationMessage(ticketID, status string) string {
	switch strings.ToUpper(status) {
	case string(domain.TicketEventCreated):
		return fmt.Sprintf("Your support ticket #%s has been created and is being processed. We'll keep you updated on progress.", ticketID)
	case string(domain.TicketEventInProgress):
		return fmt.Sprintf("Good news! Your ticket #%s is now being actively worked on by our team.", ticketID)
	case string(domain.TicketEventResolved):
		return fmt.Sprintf("Your ticket #%s has been resolved. Please contact us if you need further assistance.", ticketID)
	case string(domain.TicketEventClosed):
		return fmt.Sprintf("Ticket #%s has been closed. Thank you for contacting support!", ticketID)
	default:
		return fmt.Sprintf("Your ticket #%s status has been updated to: %s", ticketID, status)
	}
}

// AlarmNotificationMessage renders the broadcast text for an alarm event.
func AlarmNotificationMessage(event *domain.AlarmEvent) string {
	switch {
	case event.Impact.IsImpairing():
		return fmt.Sprintf("Service alert: %s is affected by %s (alarm %s). Our team is working on it.",
			event.Service, strings.ToLower(string(event.Impact)), event.AlarmID)
	case event.Impact == domain.ImpactResolved:
		return fmt.Sprintf("Service restored: %s is operating normally again (alarm %s).", event.Service, event.AlarmID)
	default:
		return fmt.Sprintf("Service update for alarm %s: %s", event.AlarmID, event.Impact)
	}
}

// HandleTicketEvent notifies the ticket's customer about a transition.
func (s *NotificationService) HandleTicketEvent(ctx context.Context, event *domain.TicketEvent) error {
	message := TicketNotificationMessage(event.TicketID, string(event.Status))

	notification := &domain.NotificationEvent{
		ID:         uuid.NewString(),
		TicketID:   event.TicketID,
		AlarmID:    event.AlarmID,
		CustomerID: event.CustomerID,
		Message:    message,
		Status:     s.deliver(ctx, event.CustomerID, message),
		Timestamp:  s.now().Unix(),
	}
	return s.record(ctx, notification)
}

// HandleAlarmEvent notifies every customer named by the alarm directly.
func (s *NotificationService) HandleAlarmEvent(ctx context.Context, event *domain.AlarmEvent) error {
	message := AlarmNotificationMessage(event)

	for _, customerID := range event.TicketTargets() {
		notification := &domain.NotificationEvent{
			ID:         uuid.NewString(),
			AlarmID:    event.AlarmID,
			CustomerID: customerID,
			Message:    message,
			Status:     s.deliver(ctx, customerID, message),
			Timestamp:  s.now().Unix(),
		}
		if err := s.record(ctx, notification); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, customerID, message string) domain.NotificationStatus {
	if err := s.notifier.Deliver(ctx, customerID, message); err != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			"customer_id", customerID,
			"error", err,
		)
		return domain.NotificationFailed
	}
	return domain.NotificationSent
}

// record appends to the log, then publishes. Publishing is best effort and
// never rolls back the append.
func (s *NotificationService) record(ctx context.Context, notification *domain.NotificationEvent) error {
	if err := s.notificationRepo.Append(ctx, notification); err != nil {
		return err
	}

	if err := publishEvent(ctx, s.publisher, ports.TopicNotifications, ports.EventTypeNotification, notification.Key(), notification); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish notification event",
			"notification_id", notification.ID,
			"ticket_id", notification.TicketID,
			"alarm_id", notification.AlarmID,
			"error", err,
		)
		return nil
	}

	s.logger.InfoContext(ctx, "notification dispatched",
		"notification_id", notification.ID,
		"customer_id", notification.CustomerID,
		"status", notification.Status,
	)
	return nil
}

// ListNotifications returns the whole log.
func (s *NotificationService) ListNotifications(ctx context.Context) ([]*domain.NotificationEvent, error) {
	return s.notificationRepo.Find(ctx, ports.NotificationFilter{})
}

// ListByAlarm returns notifications raised for an alarm.
func (s *NotificationService) ListByAlarm(ctx context.Context, alarmID string) ([]*domain.NotificationEvent, error) {
	return s.notificationRepo.Find(ctx, ports.NotificationFilter{AlarmID: alarmID})
}

// ListByTicket returns notifications raised for a ticket.
func (s *NotificationService) ListByTicket(ctx context.Context, ticketID string) ([]*domain.NotificationEvent, error) {
	return s.notificationRepo.Find(ctx, ports.NotificationFilter{TicketID: ticketID})
}

// ListByStatus filters by delivery status. The status must be SENT, PENDING or FAILED.
func (s *NotificationService) ListByStatus(ctx context.Context, status string) ([]*domain.NotificationEvent, error) {
	parsed, err := domain.ParseNotificationStatus(status)
	if err != nil {
		return nil, err
	}
	return s.notificationRepo.Find(ctx, ports.NotificationFilter{Status: parsed})
}

// ListByTimeRange returns notifications with from <= timestamp <= to (epoch seconds).
func (s *NotificationService) ListByTimeRange(ctx context.Context, from, to int64) ([]*domain.NotificationEvent, error) {
	if from > to {
		errs := apperrors.NewFieldError("from", "must not be after 'to'")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidTimeRange, errs)
	}
	return s.notificationRepo.Find(ctx, ports.NotificationFilter{From: &from, To: &to})
}

// ListRecent returns notifications from the last hours.
func (s *NotificationService) ListRecent(ctx context.Context, hours int) ([]*domain.NotificationEvent, error) {
	if hours <= 0 {
		return nil, apperrors.NewFieldError("hours", "must be a positive number")
	}
	from := s.now().Add(-time.Duration(hours) * time.Hour).Unix()
	return s.notificationRepo.Find(ctx, ports.NotificationFilter{From: &from})
}

// Count returns the size of the log.
func (s *NotificationService) Count(ctx context.Context) (int, error) {
	return s.notificationRepo.Count(ctx)
}

// DeleteAll clears the log and returns how many entries were removed.
func (s *NotificationService) DeleteAll(ctx context.Context) (int, error) {
	deleted, err := s.notificationRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "notification log cleared", "deleted", deleted)
	return deleted, nil
}

// DeleteOlderThan removes entries stamped before cutoff (epoch seconds).
func (s *NotificationService) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	deleted, err := s.notificationRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "old notifications deleted", "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}

// Cleanup removes entries older than the given number of hours.
func (s *NotificationService) Cleanup(ctx context.Context, olderThanHours int) (int, error) {
	if olderThanHours <= 0 {
		return 0, apperrors.NewFieldError("olderThanHours", "must be a positive number")
	}
	cutoff := s.now().Add(-time.Duration(olderThanHours) * time.Hour).Unix()
	return s.DeleteOlderThan(ctx, cutoff)
}
