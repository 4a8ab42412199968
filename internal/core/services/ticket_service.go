package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lorrc/incident-desk/internal/core/domain"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// TicketServiceConfig tunes alarm fan-out.
type TicketServiceConfig struct {
	// LookupTimeout bounds each customer directory call.
	LookupTimeout time.Duration
	// FanoutConcurrency caps how many tickets of one alarm are opened at once.
	FanoutConcurrency int
}

// DefaultTicketServiceConfig returns the values used when none are configured.
func DefaultTicketServiceConfig() TicketServiceConfig {
	return TicketServiceConfig{
		LookupTimeout:     2 * time.Second,
		FanoutConcurrency: 4,
	}
}

// TicketService implements the ticket workflow. It is the only writer of tickets.
type TicketService struct {
	ticketRepo ports.TicketRepository
	directory  ports.CustomerDirectory
	publisher  ports.MessagePublisher
	logger     *slog.Logger
	cfg        TicketServiceConfig
	now        func() time.Time
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo ports.TicketRepository,
	directory ports.CustomerDirectory,
	publisher ports.MessagePublisher,
	logger *slog.Logger,
	cfg TicketServiceConfig,
) ports.TicketService {
	defaults := DefaultTicketServiceConfig()
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = defaults.LookupTimeout
	}
	if cfg.FanoutConcurrency <= 0 {
		cfg.FanoutConcurrency = defaults.FanoutConcurrency
	}

	return &TicketService{
		ticketRepo: ticketRepo,
		directory:  directory,
		publisher:  publisher,
		logger:     logger.With("component", "ticket_service"),
		cfg:        cfg,
		now:        time.Now,
	}
}

// HandleAlarm applies an alarm event to the tickets of that alarm.
func (s *TicketService) HandleAlarm(ctx context.Context, event *domain.AlarmEvent) error {
	switch {
	case event.Impact.IsImpairing():
		return s.openTickets(ctx, event)
	case event.Impact == domain.ImpactResolved:
		return s.resolveTickets(ctx, event)
	default:
		s.logger.WarnContext(ctx, "ignoring alarm with unhandled impact",
			"alarm_id", event.AlarmID,
			"impact", event.Impact,
		)
		return nil
	}
}

// openTickets creates one ticket per affected customer, or a single general one.
func (s *TicketService) openTickets(ctx context.Context, event *domain.AlarmEvent) error {
	var g errgroup.Group
	g.SetLimit(s.cfg.FanoutConcurrency)

	for _, customerID := range event.TicketTargets() {
		g.Go(func() error {
			_, err := s.openTicket(ctx, event, customerID)
			return err
		})
	}

	return g.Wait()
}

func (s *TicketService) openTicket(ctx context.Context, event *domain.AlarmEvent, customerID string) (*domain.Ticket, error) {
	// 1. Describe the incident (customer lookup is best effort)
	description := s.describe(ctx, event, customerID)

	// 2. Store a fresh ticket for this event
	ticket := domain.NewTicket(event, customerID, description, s.now())
	stored, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}

	// 3. Announce the ticket. An unannounced ticket must not stay OPEN.
	if err := s.publishTicketEvent(ctx, stored, domain.TicketEventCreated); err != nil {
		if delErr := s.ticketRepo.Delete(context.WithoutCancel(ctx), stored.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to withdraw unannounced ticket",
				"ticket_id", stored.ID,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket created",
		"ticket_id", stored.ID,
		"alarm_id", stored.AlarmID,
		"customer_id", stored.CustomerID,
	)
	return stored, nil
}

func (s *TicketService) describe(ctx context.Context, event *domain.AlarmEvent, customerID string) string {
	if customerID == domain.GeneralCustomerID {
		return domain.IncidentDescription(event.Service, event.Impact, domain.GeneralIncidentLabel)
	}
	return domain.IncidentDescription(event.Service, event.Impact, s.customerLabel(ctx, customerID))
}

func (s *TicketService) customerLabel(ctx context.Context, customerID string) string {
	customer, err := s.lookupCustomer(ctx, customerID)
	if err != nil {
		s.logger.WarnContext(ctx, "customer lookup failed, using fallback description",
			"customer_id", customerID,
			"error", err,
		)
		return domain.CustomerFallbackLabel(customerID)
	}
	return customer.Label()
}

func (s *TicketService) lookupCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	if s.directory == nil {
		return nil, apperrors.ErrDependencyUnavailable
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()

	customer, err := s.directory.GetCustomer(lookupCtx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.ErrCustomerNotFound
	}
	return customer, nil
}

// resolveTickets moves every OPEN ticket of the alarm to RESOLVED. Each move is
// a compare-and-set, so only the caller that performed it publishes the event.
func (s *TicketService) resolveTickets(ctx context.Context, event *domain.AlarmEvent) error {
	tickets, err := s.ticketRepo.ListByAlarm(ctx, event.AlarmID)
	if err != nil {
		return err
	}

	var errs []error
	resolved := 0
	for _, ticket := range tickets {
		if ticket.Status != domain.StatusOpen {
			continue
		}

		now := s.now()
		updated, changed, err := s.ticketRepo.Update(ctx, ticket.ID, func(t *domain.Ticket) bool {
			return t.Resolve(now)
		})
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !changed {
			continue
		}

		// The ticket stays RESOLVED even if the announcement fails
		if err := s.publishTicketEvent(ctx, updated, domain.TicketEventResolved); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish ticket resolution",
				"ticket_id", updated.ID,
				"alarm_id", updated.AlarmID,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		resolved++
	}

	s.logger.InfoContext(ctx, "alarm resolved",
		"alarm_id", event.AlarmID,
		"tickets_resolved", resolved,
	)
	return errors.Join(errs...)
}

func (s *TicketService) publishTicketEvent(ctx context.Context, ticket *domain.Ticket, status domain.TicketEventStatus) error {
	event := domain.NewTicketEvent(ticket, status, s.now())
	return publishEvent(ctx, s.publisher, ports.TopicTickets, ports.EventTypeTicket, ticket.ID, event)
}

// GetTicket retrieves a ticket by ID
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.ticketRepo.GetByID(ctx, ticketID)
}

// ListTickets returns all tickets
func (s *TicketService) ListTickets(ctx context.Context) ([]*domain.Ticket, error) {
	return s.ticketRepo.List(ctx)
}

// ListTicketsForAlarm returns the tickets opened for an alarm
func (s *TicketService) ListTicketsForAlarm(ctx context.Context, alarmID string) ([]*domain.Ticket, error) {
	return s.ticketRepo.ListByAlarm(ctx, alarmID)
}

// ListTicketsForCustomer returns the tickets of one customer
func (s *TicketService) ListTicketsForCustomer(ctx context.Context, customerID string) ([]*domain.Ticket, error) {
	return s.ticketRepo.ListByCustomer(ctx, customerID)
}

// UpdateTicketStatus is the manual override. It overwrites the status without
// transition checks and announces the change when the status actually moved.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	// 1. Validate the requested status
	if !status.IsValid() {
		return nil, apperrors.NewFieldError("status", "must be one of: OPEN, IN_PROGRESS, RESOLVED, CLOSED").
			WithCause(apperrors.ErrInvalidStatus)
	}

	// 2. Overwrite
	now := s.now()
	updated, changed, err := s.ticketRepo.Update(ctx, ticketID, func(t *domain.Ticket) bool {
		return t.SetStatus(status, now)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return updated, nil
	}

	// 3. Announce
	if err := s.publishTicketEvent(ctx, updated, domain.TicketEventStatus(status)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish status update",
			"ticket_id", updated.ID,
			"status", status,
			"error", err,
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket status updated",
		"ticket_id", updated.ID,
		"status", status,
	)
	return updated, nil
}

// GetCustomerInfo returns the directory record of the ticket's customer.
func (s *TicketService) GetCustomerInfo(ctx context.Context, ticketID string) (*domain.Customer, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsGeneral() {
		return nil, apperrors.ErrCustomerNotFound
	}
	return s.lookupCustomer(ctx, ticket.CustomerID)
}
