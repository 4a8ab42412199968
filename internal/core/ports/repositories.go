package ports

import (
	"context"

	"github.com/lorrc/incident-desk/internal/core/domain"
)

// TicketMutation changes a stored ticket in place and reports whether anything changed.
// It runs while the repository holds the ticket's lock.
type TicketMutation func(t *domain.Ticket) bool

// TicketRepository is owned by the ticket workflow. Entries are replaced atomically.
type TicketRepository interface {
	// Create stores a new ticket. Every impairing alarm event creates fresh
	// tickets, so an alarm may hold several tickets for the same customer.
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	// Delete withdraws a ticket whose creation was never announced.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]*domain.Ticket, error)
	ListByAlarm(ctx context.Context, alarmID string) ([]*domain.Ticket, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Ticket, error)
	// Update applies fn as a compare-and-set keyed by ticket id. The change is
	// stored only when fn returns true.
	Update(ctx context.Context, id string, fn TicketMutation) (*domain.Ticket, bool, error)
}

// NotificationFilter narrows a notification query. Zero values match everything.
type NotificationFilter struct {
	AlarmID  string
	TicketID string
	Status   domain.NotificationStatus
	From     *int64
	To       *int64
}

// NotificationRepository is the append-only notification log.
type NotificationRepository interface {
	Append(ctx context.Context, n *domain.NotificationEvent) error
	Find(ctx context.Context, filter NotificationFilter) ([]*domain.NotificationEvent, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff int64) (int, error)
}

// AlarmRepository keeps every AlarmEvent the alarm lifecycle has published.
type AlarmRepository interface {
	Append(ctx context.Context, event *domain.AlarmEvent) error
	List(ctx context.Context) ([]*domain.AlarmEvent, error)
	ListByAlarm(ctx context.Context, alarmID string) ([]*domain.AlarmEvent, error)
	ListByService(ctx context.Context, service domain.Service) ([]*domain.AlarmEvent, error)
	// Latest returns the most recent event of every alarm.
	Latest(ctx context.Context) ([]*domain.AlarmEvent, error)
}
