package mocks

import (
	"context"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockAlarmService is a mock implementation of ports.AlarmService
type MockAlarmService struct {
	mock.Mock
}

func NewMockAlarmService() *MockAlarmService {
	return &MockAlarmService{}
}

func (m *MockAlarmService) Start(ctx context.Context, params ports.StartAlarmParams) (*domain.AlarmEvent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AlarmEvent), args.Error(1)
}

func (m *MockAlarmService) Stop(ctx context.Context, params ports.StopAlarmParams) (*domain.AlarmEvent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AlarmEvent), args.Error(1)
}

func (m *MockAlarmService) ListAlarms(ctx context.Context) ([]*domain.AlarmEvent, error) {
	return m.alarms(m.Called(ctx))
}

func (m *MockAlarmService) GetAlarmEvents(ctx context.Context, alarmID string) ([]*domain.AlarmEvent, error) {
	return m.alarms(m.Called(ctx, alarmID))
}

func (m *MockAlarmService) GetAlarmStatus(ctx context.Context, alarmID string) (domain.Impact, error) {
	args := m.Called(ctx, alarmID)
	return args.Get(0).(domain.Impact), args.Error(1)
}

func (m *MockAlarmService) ListActiveAlarms(ctx context.Context) ([]*domain.AlarmEvent, error) {
	return m.alarms(m.Called(ctx))
}

func (m *MockAlarmService) ListAlarmsByService(ctx context.Context, service domain.Service) ([]*domain.AlarmEvent, error) {
	return m.alarms(m.Called(ctx, service))
}

func (m *MockAlarmService) alarms(args mock.Arguments) ([]*domain.AlarmEvent, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AlarmEvent), args.Error(1)
}

// MockTicketService is a mock implementation of ports.TicketService
type MockTicketService struct {
	mock.Mock
}

func NewMockTicketService() *MockTicketService {
	return &MockTicketService{}
}

func (m *MockTicketService) HandleAlarm(ctx context.Context, event *domain.AlarmEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockTicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return m.ticket(m.Called(ctx, ticketID))
}

func (m *MockTicketService) ListTickets(ctx context.Context) ([]*domain.Ticket, error) {
	return m.tickets(m.Called(ctx))
}

func (m *MockTicketService) ListTicketsForAlarm(ctx context.Context, alarmID string) ([]*domain.Ticket, error) {
	return m.tickets(m.Called(ctx, alarmID))
}

func (m *MockTicketService) ListTicketsForCustomer(ctx context.Context, customerID string) ([]*domain.Ticket, error) {
	return m.tickets(m.Called(ctx, customerID))
}

func (m *MockTicketService) UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	return m.ticket(m.Called(ctx, ticketID, status))
}

func (m *MockTicketService) GetCustomerInfo(ctx context.Context, ticketID string) (*domain.Customer, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockTicketService) ticket(args mock.Arguments) (*domain.Ticket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) tickets(args mock.Arguments) ([]*domain.Ticket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

// MockNotificationService is a mock implementation of ports.NotificationService
type MockNotificationService struct {
	mock.Mock
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) HandleTicketEvent(ctx context.Context, event *domain.TicketEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotificationService) HandleAlarmEvent(ctx context.Context, event *domain.AlarmEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotificationService) ListNotifications(ctx context.Context) ([]*domain.NotificationEvent, error) {
	return m.notifications(m.Called(ctx))
}

func (m *MockNotificationService) ListByAlarm(ctx context.Context, alarmID string) ([]*domain.NotificationEvent, error) {
	return m.notifications(m.Called(ctx, alarmID))
}

func (m *MockNotificationService) ListByTicket(ctx context.Context, ticketID string) ([]*domain.NotificationEvent, error) {
	return m.notifications(m.Called(ctx, ticketID))
}

func (m *MockNotificationService) ListByStatus(ctx context.Context, status string) ([]*domain.NotificationEvent, error) {
	return m.notifications(m.Called(ctx, status))
}

func (m *MockNotificationService) ListByTimeRange(ctx context.Context, from, to int64) ([]*domain.NotificationEvent, error) {
	return m.notifications(m.Called(ctx, from, to))
}

func (m *MockNotificationService) ListRecent(ctx context.Context, hours int) ([]*domain.NotificationEvent, error) {
	return m.notifications(m.Called(ctx, hours))
}

func (m *MockNotificationService) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) DeleteAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) Cleanup(ctx context.Context, olderThanHours int) (int, error) {
	args := m.Called(ctx, olderThanHours)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) notifications(args mock.Arguments) ([]*domain.NotificationEvent, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NotificationEvent), args.Error(1)
}
