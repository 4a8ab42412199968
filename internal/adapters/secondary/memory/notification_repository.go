package memory

import (
	"context"
	"sync"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// NotificationRepository is an append-only in-memory notification log.
type NotificationRepository struct {
	mu  sync.RWMutex
	log []domain.NotificationEvent
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates an empty log.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// Append adds a copy of n to the log.
func (r *NotificationRepository) Append(_ context.Context, n *domain.NotificationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log = append(r.log, *n)
	return nil
}

// Find returns matching entries in append order.
func (r *NotificationRepository) Find(_ context.Context, filter ports.NotificationFilter) ([]*domain.NotificationEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.NotificationEvent, 0)
	for i := range r.log {
		if matches(&r.log[i], filter) {
			n := r.log[i]
			result = append(result, &n)
		}
	}
	return result, nil
}

// Count returns the number of entries.
func (r *NotificationRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.log), nil
}

// DeleteAll empties the log and returns the number of removed entries.
func (r *NotificationRepository) DeleteAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.log)
	r.log = nil
	return n, nil
}

// DeleteOlderThan removes entries with a timestamp strictly before cutoff.
func (r *NotificationRepository) DeleteOlderThan(_ context.Context, cutoff int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]domain.NotificationEvent, 0, len(r.log))
	for _, n := range r.log {
		if n.Timestamp >= cutoff {
			kept = append(kept, n)
		}
	}

	deleted := len(r.log) - len(kept)
	r.log = kept
	return deleted, nil
}

func matches(n *domain.NotificationEvent, f ports.NotificationFilter) bool {
	switch {
	case f.AlarmID != "" && n.AlarmID != f.AlarmID:
		return false
	case f.TicketID != "" && n.TicketID != f.TicketID:
		return false
	case f.Status != "" && n.Status != f.Status:
		return false
	case f.From != nil && n.Timestamp < *f.From:
		return false
	case f.To != nil && n.Timestamp > *f.To:
		return false
	}
	return true
}
