package domain

import (
	"strings"
	"time"

	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
)

// UnknownValue replaces fields missing from a consumed message.
const UnknownValue = "unknown"

// TicketEventStatus is the transition carried by a TicketEvent.
type TicketEventStatus string

const (
	TicketEventCreated    TicketEventStatus = "CREATED"
	TicketEventOpen       TicketEventStatus = "OPEN"
	TicketEventInProgress TicketEventStatus = "IN_PROGRESS"
	TicketEventResolved   TicketEventStatus = "RESOLVED"
	TicketEventClosed     TicketEventStatus = "CLOSED"

	// TicketEventUnknown is assigned when a consumed event carries an unrecognised status.
	TicketEventUnknown TicketEventStatus = "UNKNOWN"
)

// ParseTicketEventStatus normalises raw input. Anything unrecognised maps to TicketEventUnknown.
func ParseTicketEventStatus(raw string) TicketEventStatus {
	s := TicketEventStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case TicketEventCreated, TicketEventOpen, TicketEventInProgress, TicketEventResolved, TicketEventClosed:
		return s
	}
	return TicketEventUnknown
}

// TicketEvent records one ticket state change. It is published on the tickets topic.
type TicketEvent struct {
	TicketID   string            `json:"ticketId"`
	AlarmID    string            `json:"alarmId"`
	CustomerID string            `json:"customerId"`
	Status     TicketEventStatus `json:"status"`
	Timestamp  int64             `json:"timestamp"`
}

// NewTicketEvent snapshots the ticket for publication.
func NewTicketEvent(t *Ticket, status TicketEventStatus, now time.Time) *TicketEvent {
	return &TicketEvent{
		TicketID:   t.ID,
		AlarmID:    t.AlarmID,
		CustomerID: t.CustomerID,
		Status:     status,
		Timestamp:  now.Unix(),
	}
}

// NotificationStatus is the delivery outcome recorded for a notification.
type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "SENT"
	NotificationPending NotificationStatus = "PENDING"
	NotificationFailed  NotificationStatus = "FAILED"
)

// IsValid checks if the status is a known value.
func (s NotificationStatus) IsValid() bool {
	switch s {
	case NotificationSent, NotificationPending, NotificationFailed:
		return true
	}
	return false
}

// ParseNotificationStatus accepts any casing and rejects unknown values.
func ParseNotificationStatus(raw string) (NotificationStatus, error) {
	s := NotificationStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", apperrors.NewFieldError("status", "must be one of: SENT, PENDING, FAILED").
			WithCause(apperrors.ErrInvalidNotification)
	}
	return s, nil
}

// NotificationEvent is the append-only record of a customer-facing message.
// TicketID is empty for notifications raised straight from the alarm feed.
type NotificationEvent struct {
	ID         string             `json:"notificationId"`
	TicketID   string             `json:"ticketId,omitempty"`
	AlarmID    string             `json:"alarmId,omitempty"`
	CustomerID string             `json:"customerId"`
	Message    string             `json:"message"`
	Status     NotificationStatus `json:"status"`
	Timestamp  int64              `json:"timestamp"`
}

// Key is the bus partition key for the notification.
func (n *NotificationEvent) Key() string {
	if n.TicketID != "" {
		return n.TicketID
	}
	return n.AlarmID
}

// LiveEventType defines the type of real-time event.
type LiveEventType string

const (
	LiveTicketChanged    LiveEventType = "TICKET_CHANGED"
	LiveNotificationSent LiveEventType = "NOTIFICATION_SENT"
)

// LiveEvent is the payload sent over WebSocket.
type LiveEvent struct {
	Type    LiveEventType `json:"type"`
	Payload interface{}   `json:"payload"`
	AlarmID string        `json:"alarmId,omitempty"` // Used for routing to alarm "rooms"
}
