package memory

import (
	"context"
	"sync"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// AlarmRepository records published alarm events in publication order.
type AlarmRepository struct {
	mu     sync.RWMutex
	events []domain.AlarmEvent
}

var _ ports.AlarmRepository = (*AlarmRepository)(nil)

// NewAlarmRepository creates an empty alarm log.
func NewAlarmRepository() *AlarmRepository {
	return &AlarmRepository{}
}

func (r *AlarmRepository) Append(_ context.Context, event *domain.AlarmEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := *event
	e.AffectedCustomers = append([]string(nil), event.AffectedCustomers...)
	r.events = append(r.events, e)
	return nil
}

func (r *AlarmRepository) List(_ context.Context) ([]*domain.AlarmEvent, error) {
	return r.filter(func(*domain.AlarmEvent) bool { return true }), nil
}

func (r *AlarmRepository) ListByAlarm(_ context.Context, alarmID string) ([]*domain.AlarmEvent, error) {
	return r.filter(func(e *domain.AlarmEvent) bool { return e.AlarmID == alarmID }), nil
}

func (r *AlarmRepository) ListByService(_ context.Context, service domain.Service) ([]*domain.AlarmEvent, error) {
	return r.filter(func(e *domain.AlarmEvent) bool { return e.Service == service }), nil
}

// Latest returns the newest event per alarm, ordered by when each alarm was first seen.
func (r *AlarmRepository) Latest(_ context.Context) ([]*domain.AlarmEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index := make(map[string]int)
	var latest []*domain.AlarmEvent
	for i := range r.events {
		e := r.events[i]
		if pos, seen := index[e.AlarmID]; seen {
			latest[pos] = &e
			continue
		}
		index[e.AlarmID] = len(latest)
		latest = append(latest, &e)
	}
	if latest == nil {
		latest = []*domain.AlarmEvent{}
	}
	return latest, nil
}

func (r *AlarmRepository) filter(keep func(*domain.AlarmEvent) bool) []*domain.AlarmEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.AlarmEvent, 0)
	for i := range r.events {
		e := r.events[i]
		if keep(&e) {
			result = append(result, &e)
		}
	}
	return result
}
