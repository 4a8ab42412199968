package memory

import (
	"context"
	"sync"

	"github.com/lorrc/incident-desk/internal/core/domain"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// TicketRepository keeps tickets in memory. Every read returns copies, so
// callers never observe a ticket mid-update.
type TicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	order   []string
	byAlarm map[string][]string
}

// Ensure TicketRepository implements the ports.TicketRepository interface.
var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{
		tickets: make(map[string]*domain.Ticket),
		byAlarm: make(map[string][]string),
	}
}

// Create stores a new ticket.
func (r *TicketRepository) Create(_ context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := ticket.Clone()
	r.tickets[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	r.byAlarm[stored.AlarmID] = append(r.byAlarm[stored.AlarmID], stored.ID)

	return stored.Clone(), nil
}

// Delete removes a ticket and its index entries.
func (r *TicketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return apperrors.ErrTicketNotFound
	}

	delete(r.tickets, id)
	r.order = without(r.order, id)
	if ids := without(r.byAlarm[ticket.AlarmID], id); len(ids) > 0 {
		r.byAlarm[ticket.AlarmID] = ids
	} else {
		delete(r.byAlarm, ticket.AlarmID)
	}
	return nil
}

// GetByID retrieves a single ticket by its ID.
func (r *TicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	return ticket.Clone(), nil
}

// List returns all tickets in creation order.
func (r *TicketRepository) List(_ context.Context) ([]*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.order, nil), nil
}

// ListByAlarm returns the tickets opened for an alarm in creation order.
func (r *TicketRepository) ListByAlarm(_ context.Context, alarmID string) ([]*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.byAlarm[alarmID], nil), nil
}

// ListByCustomer returns the tickets of one customer in creation order.
func (r *TicketRepository) ListByCustomer(_ context.Context, customerID string) ([]*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.order, func(t *domain.Ticket) bool {
		return t.CustomerID == customerID
	}), nil
}

// Update runs fn against a working copy under the write lock and swaps the
// copy in only when fn reports a change.
func (r *TicketRepository) Update(_ context.Context, id string, fn ports.TicketMutation) (*domain.Ticket, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tickets[id]
	if !ok {
		return nil, false, apperrors.ErrTicketNotFound
	}

	working := current.Clone()
	if !fn(working) {
		return current.Clone(), false, nil
	}

	r.tickets[id] = working
	return working.Clone(), true, nil
}

func (r *TicketRepository) collect(ids []string, keep func(*domain.Ticket) bool) []*domain.Ticket {
	result := make([]*domain.Ticket, 0, len(ids))
	for _, id := range ids {
		ticket := r.tickets[id]
		if keep != nil && !keep(ticket) {
			continue
		}
		result = append(result, ticket.Clone())
	}
	return result
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
