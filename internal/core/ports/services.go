package ports

import (
	"context"

	"github.com/lorrc/incident-desk/internal/core/domain"
)

// StartAlarmParams defines the input for raising an alarm. AlarmID is generated when blank.
type StartAlarmParams struct {
	AlarmID           string
	Service           domain.Service
	Impact            domain.Impact
	AffectedCustomers []string
}

// StopAlarmParams defines the input for resolving an alarm.
type StopAlarmParams struct {
	AlarmID           string
	Service           domain.Service
	AffectedCustomers []string
}

// AlarmService defines the alarm lifecycle operations.
type AlarmService interface {
	Start(ctx context.Context, params StartAlarmParams) (*domain.AlarmEvent, error)
	Stop(ctx context.Context, params StopAlarmParams) (*domain.AlarmEvent, error)
	ListAlarms(ctx context.Context) ([]*domain.AlarmEvent, error)
	GetAlarmEvents(ctx context.Context, alarmID string) ([]*domain.AlarmEvent, error)
	GetAlarmStatus(ctx context.Context, alarmID string) (domain.Impact, error)
	ListActiveAlarms(ctx context.Context) ([]*domain.AlarmEvent, error)
	ListAlarmsByService(ctx context.Context, service domain.Service) ([]*domain.AlarmEvent, error)
}

// TicketService defines the ticket workflow: alarm handling plus read/update operations.
type TicketService interface {
	HandleAlarm(ctx context.Context, event *domain.AlarmEvent) error
	GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListTickets(ctx context.Context) ([]*domain.Ticket, error)
	ListTicketsForAlarm(ctx context.Context, alarmID string) ([]*domain.Ticket, error)
	ListTicketsForCustomer(ctx context.Context, customerID string) ([]*domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error)
	GetCustomerInfo(ctx context.Context, ticketID string) (*domain.Customer, error)
}

// NotificationService defines the notification dispatcher and its log queries.
type NotificationService interface {
	HandleTicketEvent(ctx context.Context, event *domain.TicketEvent) error
	HandleAlarmEvent(ctx context.Context, event *domain.AlarmEvent) error
	ListNotifications(ctx context.Context) ([]*domain.NotificationEvent, error)
	ListByAlarm(ctx context.Context, alarmID string) ([]*domain.NotificationEvent, error)
	ListByTicket(ctx context.Context, ticketID string) ([]*domain.NotificationEvent, error)
	ListByStatus(ctx context.Context, status string) ([]*domain.NotificationEvent, error)
	ListByTimeRange(ctx context.Context, from, to int64) ([]*domain.NotificationEvent, error)
	ListRecent(ctx context.Context, hours int) ([]*domain.NotificationEvent, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff int64) (int, error)
	Cleanup(ctx context.Context, olderThanHours int) (int, error)
}

// CustomerDirectory is the point lookup collaborator. It returns
// ErrCustomerNotFound or ErrDependencyUnavailable on failure.
type CustomerDirectory interface {
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
}

// Notifier delivers a message to a customer through an outbound channel.
type Notifier interface {
	Deliver(ctx context.Context, customerID, message string) error
}

// EventBroadcaster defines the port for pushing live events to connected clients.
type EventBroadcaster interface {
	Broadcast(event domain.LiveEvent) error
}
