package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/incident-desk/internal/core/domain"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// AlarmService implements the alarm lifecycle: it validates start/stop
// requests and publishes the resulting AlarmEvent on the alarms topic.
type AlarmService struct {
	alarmRepo ports.AlarmRepository
	publisher ports.MessagePublisher
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.AlarmService = (*AlarmService)(nil)

// NewAlarmService creates a new alarm service
func NewAlarmService(
	alarmRepo ports.AlarmRepository,
	publisher ports.MessagePublisher,
	logger *slog.Logger,
) ports.AlarmService {
	return &AlarmService{
		alarmRepo: alarmRepo,
		publisher: publisher,
		logger:    logger.With("component", "alarm_service"),
		now:       time.Now,
	}
}

// Start raises an alarm. Repeated starts for the same alarm ID are not
// deduplicated and each one fans out again downstream.
func (s *AlarmService) Start(ctx context.Context, params ports.StartAlarmParams) (*domain.AlarmEvent, error) {
	// 1. Assign an ID when the caller did not supply one
	alarmID := strings.TrimSpace(params.AlarmID)
	if alarmID == "" {
		alarmID = uuid.NewString()
	}

	// 2. Build the event (domain validates service and impact)
	event, err := domain.NewAlarmEvent(domain.AlarmParams{
		AlarmID:           alarmID,
		Service:           params.Service,
		Impact:            params.Impact,
		AffectedCustomers: params.AffectedCustomers,
	}, s.now())
	if err != nil {
		return nil, err
	}

	// 3. Publish and record
	return s.publish(ctx, event)
}

// Stop resolves an alarm. The impact is always RESOLVED.
func (s *AlarmService) Stop(ctx context.Context, params ports.StopAlarmParams) (*domain.AlarmEvent, error) {
	event, err := domain.NewAlarmEvent(domain.AlarmParams{
		AlarmID:           params.AlarmID,
		Service:           params.Service,
		Impact:            domain.ImpactResolved,
		AffectedCustomers: params.AffectedCustomers,
	}, s.now())
	if err != nil {
		return nil, err
	}

	return s.publish(ctx, event)
}

func (s *AlarmService) publish(ctx context.Context, event *domain.AlarmEvent) (*domain.AlarmEvent, error) {
	if err := publishEvent(ctx, s.publisher, ports.TopicAlarms, ports.EventTypeAlarm, event.AlarmID, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish alarm event",
			"alarm_id", event.AlarmID,
			"impact", event.Impact,
			"error", err,
		)
		return nil, err
	}

	// Only events that reached the bus are kept in the alarm log
	if err := s.alarmRepo.Append(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record alarm event", "alarm_id", event.AlarmID, "error", err)
	}

	s.logger.InfoContext(ctx, "alarm event published",
		"alarm_id", event.AlarmID,
		"service", event.Service,
		"impact", event.Impact,
		"affected_customers", len(event.AffectedCustomers),
	)
	return event, nil
}

// ListAlarms returns every recorded alarm event.
func (s *AlarmService) ListAlarms(ctx context.Context) ([]*domain.AlarmEvent, error) {
	return s.alarmRepo.List(ctx)
}

// GetAlarmEvents returns the history of one alarm, oldest first.
func (s *AlarmService) GetAlarmEvents(ctx context.Context, alarmID string) ([]*domain.AlarmEvent, error) {
	return s.alarmRepo.ListByAlarm(ctx, alarmID)
}

// GetAlarmStatus returns the impact of the latest event for the alarm.
func (s *AlarmService) GetAlarmStatus(ctx context.Context, alarmID string) (domain.Impact, error) {
	events, err := s.alarmRepo.ListByAlarm(ctx, alarmID)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "", apperrors.ErrAlarmNotFound
	}
	return events[len(events)-1].Impact, nil
}

// ListActiveAlarms returns the latest event of every alarm that is not resolved.
func (s *AlarmService) ListActiveAlarms(ctx context.Context) ([]*domain.AlarmEvent, error) {
	latest, err := s.alarmRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.AlarmEvent, 0, len(latest))
	for _, event := range latest {
		if event.Impact != domain.ImpactResolved {
			active = append(active, event)
		}
	}
	return active, nil
}

// ListAlarmsByService returns recorded events for one service.
func (s *AlarmService) ListAlarmsByService(ctx context.Context, service domain.Service) ([]*domain.AlarmEvent, error) {
	if !service.IsValid() {
		return nil, apperrors.NewFieldError("service", "must be one of: BROADBAND, MOBILE, TV, VOIP").
			WithCause(apperrors.ErrInvalidService)
	}
	return s.alarmRepo.ListByService(ctx, service)
}
