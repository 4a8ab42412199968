package mocks

import (
	"context"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockAlarmRepository is a mock implementation of ports.AlarmRepository
type MockAlarmRepository struct {
	mock.Mock
}

func NewMockAlarmRepository() *MockAlarmRepository {
	return &MockAlarmRepository{}
}

func (m *MockAlarmRepository) Append(ctx context.Context, event *domain.AlarmEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAlarmRepository) List(ctx context.Context) ([]*domain.AlarmEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AlarmEvent), args.Error(1)
}

func (m *MockAlarmRepository) ListByAlarm(ctx context.Context, alarmID string) ([]*domain.AlarmEvent, error) {
	args := m.Called(ctx, alarmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AlarmEvent), args.Error(1)
}

func (m *MockAlarmRepository) ListByService(ctx context.Context, service domain.Service) ([]*domain.AlarmEvent, error) {
	args := m.Called(ctx, service)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AlarmEvent), args.Error(1)
}

func (m *MockAlarmRepository) Latest(ctx context.Context) ([]*domain.AlarmEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AlarmEvent), args.Error(1)
}

// MockNotificationRepository is a mock implementation of ports.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Append(ctx context.Context, n *domain.NotificationEvent) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) Find(ctx context.Context, filter ports.NotificationFilter) ([]*domain.NotificationEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NotificationEvent), args.Error(1)
}

func (m *MockNotificationRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) DeleteAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

// MockMessagePublisher is a mock implementation of ports.MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func NewMockMessagePublisher() *MockMessagePublisher {
	return &MockMessagePublisher{}
}

func (m *MockMessagePublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

// MockCustomerDirectory is a mock implementation of ports.CustomerDirectory
type MockCustomerDirectory struct {
	mock.Mock
}

func NewMockCustomerDirectory() *MockCustomerDirectory {
	return &MockCustomerDirectory{}
}

func (m *MockCustomerDirectory) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Deliver(ctx context.Context, customerID, message string) error {
	args := m.Called(ctx, customerID, message)
	return args.Error(0)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.LiveEvent) error {
	args := m.Called(event)
	return args.Error(0)
}
