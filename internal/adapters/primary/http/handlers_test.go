package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/lorrc/incident-desk/internal/adapters/primary/websocket"
	"github.com/lorrc/incident-desk/internal/config"
	"github.com/lorrc/incident-desk/internal/core/domain"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/core/mocks"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

type fakeBus struct {
	err error
}

func (b fakeBus) Ping(context.Context) error { return b.err }

type testServer struct {
	alarms        *mocks.MockAlarmService
	tickets       *mocks.MockTicketService
	notifications *mocks.MockNotificationService
	directory     *mocks.MockCustomerDirectory
	handler       stdhttp.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingInterval:    time.Second,
			PongWait:        2 * time.Second,
		},
		App: config.AppConfig{Name: "incident-desk", Version: "test", Environment: "development"},
	}
}

func newTestServer(t *testing.T, bus HealthChecker, hub *wsAdapter.Hub) *testServer {
	t.Helper()

	s := &testServer{
		alarms:        mocks.NewMockAlarmService(),
		tickets:       mocks.NewMockTicketService(),
		notifications: mocks.NewMockNotificationService(),
		directory:     mocks.NewMockCustomerDirectory(),
	}
	s.handler = NewRouter(RouterDeps{
		AlarmService:        s.alarms,
		TicketService:       s.tickets,
		NotificationService: s.notifications,
		Directory:           s.directory,
		Bus:                 bus,
		Hub:                 hub,
		Config:              testConfig(),
		Logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	t.Cleanup(func() {
		s.alarms.AssertExpectations(t)
		s.tickets.AssertExpectations(t)
		s.notifications.AssertExpectations(t)
		s.directory.AssertExpectations(t)
	})
	return s
}

func (s *testServer) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&out))
	return out
}

func TestAlarmRoutes(t *testing.T) {
	t.Run("start maps the body onto params", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		event := &domain.AlarmEvent{AlarmID: "a-1", Service: domain.ServiceTV, Impact: domain.ImpactOutage, AffectedCustomers: []string{"c-1"}}
		s.alarms.On("Start", mock.Anything, ports.StartAlarmParams{
			AlarmID:           "a-1",
			Service:           domain.ServiceTV,
			Impact:            domain.ImpactOutage,
			AffectedCustomers: []string{"c-1"},
		}).Return(event, nil).Once()

		rec := s.do(stdhttp.MethodPost, "/api/alarms/start", map[string]any{
			"alarmId": "a-1", "service": "tv", "impact": "Outage", "affectedCustomers": []string{"c-1"},
		})

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		got := decodeBody[domain.AlarmEvent](t, rec)
		assert.Equal(t, "a-1", got.AlarmID)
		assert.Equal(t, domain.ImpactOutage, got.Impact)
	})

	t.Run("start rejects unknown service", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodPost, "/api/alarms/start", map[string]any{"service": "FAX", "impact": "OUTAGE"})

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		got := decodeBody[ValidationErrorResponse](t, rec)
		assert.Contains(t, got.Fields, "service")
		s.alarms.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	})

	t.Run("start without body", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodPost, "/api/alarms/start", nil)

		require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "Request body is required", decodeBody[ErrorResponse](t, rec).Error)
	})

	t.Run("start publish failure is a bad gateway", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.alarms.On("Start", mock.Anything, mock.Anything).
			Return(nil, apperrors.PublishFailure("alarms", errors.New("broker down"))).Once()

		rec := s.do(stdhttp.MethodPost, "/api/alarms/start", map[string]any{"service": "MOBILE", "impact": "SLOW"})

		require.Equal(t, stdhttp.StatusBadGateway, rec.Code)
		body := decodeBody[ErrorResponse](t, rec)
		assert.Equal(t, "PUBLISH_FAILED", body.Code)
		assert.Equal(t, "The event could not be published. Please retry.", body.Error)
	})

	t.Run("stop requires an alarm id", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodPost, "/api/alarms/stop", map[string]any{"service": "MOBILE"})

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody[ValidationErrorResponse](t, rec).Fields, "alarmId")
	})

	t.Run("stop", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		event := &domain.AlarmEvent{AlarmID: "a-1", Service: domain.ServiceMobile, Impact: domain.ImpactResolved}
		s.alarms.On("Stop", mock.Anything, ports.StopAlarmParams{
			AlarmID: "a-1",
			Service: domain.ServiceMobile,
		}).Return(event, nil).Once()

		rec := s.do(stdhttp.MethodPost, "/api/alarms/stop", map[string]any{"alarmId": "a-1", "service": "MOBILE"})

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, domain.ImpactResolved, decodeBody[domain.AlarmEvent](t, rec).Impact)
	})

	t.Run("list returns an empty array", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.alarms.On("ListAlarms", mock.Anything).Return(nil, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/alarms", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("by service upper-cases the path", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.alarms.On("ListAlarmsByService", mock.Anything, domain.ServiceBroadband).
			Return([]*domain.AlarmEvent{{AlarmID: "a-1"}}, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/alarms/service/broadband", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]domain.AlarmEvent](t, rec), 1)
	})

	t.Run("active", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.alarms.On("ListActiveAlarms", mock.Anything).
			Return([]*domain.AlarmEvent{{AlarmID: "a-1"}, {AlarmID: "a-2"}}, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/alarms/active", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]domain.AlarmEvent](t, rec), 2)
	})

	t.Run("events of one alarm", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.alarms.On("GetAlarmEvents", mock.Anything, "a-9").
			Return([]*domain.AlarmEvent{{AlarmID: "a-9"}}, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/alarms/a-9", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
	})

	t.Run("status", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.alarms.On("GetAlarmStatus", mock.Anything, "a-1").Return(domain.ImpactDegraded, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/alarms/a-1/status", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.JSONEq(t, `{"alarmId":"a-1","status":"DEGRADED"}`, rec.Body.String())
	})

	t.Run("status of unknown alarm", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.alarms.On("GetAlarmStatus", mock.Anything, "nope").Return(domain.Impact(""), apperrors.ErrAlarmNotFound).Once()

		rec := s.do(stdhttp.MethodGet, "/api/alarms/nope/status", nil)

		require.Equal(t, stdhttp.StatusNotFound, rec.Code)
		assert.Equal(t, "ALARM_NOT_FOUND", decodeBody[ErrorResponse](t, rec).Code)
	})
}

func TestTicketRoutes(t *testing.T) {
	ticket := &domain.Ticket{ID: "t-1", AlarmID: "a-1", CustomerID: "c-42", Status: domain.StatusOpen}

	t.Run("get", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.tickets.On("GetTicket", mock.Anything, "t-1").Return(ticket, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/tickets/t-1", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, "t-1", decodeBody[domain.Ticket](t, rec).ID)
	})

	t.Run("get unknown", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.tickets.On("GetTicket", mock.Anything, "t-0").
			Return(nil, apperrors.ErrTicketNotFound).Once()

		rec := s.do(stdhttp.MethodGet, "/api/tickets/t-0", nil)

		require.Equal(t, stdhttp.StatusNotFound, rec.Code)
		assert.Equal(t, "TICKET_NOT_FOUND", decodeBody[ErrorResponse](t, rec).Code)
	})

	t.Run("list, by alarm and by customer", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.tickets.On("ListTickets", mock.Anything).Return([]*domain.Ticket{ticket}, nil).Once()
		s.tickets.On("ListTicketsForAlarm", mock.Anything, "a-1").Return([]*domain.Ticket{ticket}, nil).Once()
		s.tickets.On("ListTicketsForCustomer", mock.Anything, "c-42").Return([]*domain.Ticket{}, nil).Once()

		for path, want := range map[string]int{
			"/api/tickets":               1,
			"/api/tickets/alarm/a-1":     1,
			"/api/tickets/customer/c-42": 0,
		} {
			rec := s.do(stdhttp.MethodGet, path, nil)
			require.Equal(t, stdhttp.StatusOK, rec.Code, path)
			assert.Len(t, decodeBody[[]domain.Ticket](t, rec), want, path)
		}
	})

	t.Run("customer info dependency unavailable", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.tickets.On("GetCustomerInfo", mock.Anything, "t-1").
			Return(nil, apperrors.ErrDependencyUnavailable).Once()

		rec := s.do(stdhttp.MethodGet, "/api/tickets/t-1/customer-info", nil)

		require.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
	})

	t.Run("update status accepts any casing", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		updated := ticket.Clone()
		updated.Status = domain.StatusInProgress
		s.tickets.On("UpdateTicketStatus", mock.Anything, "t-1", domain.StatusInProgress).Return(updated, nil).Once()

		rec := s.do(stdhttp.MethodPut, "/api/tickets/t-1/status?status=in_progress", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, domain.StatusInProgress, decodeBody[domain.Ticket](t, rec).Status)
	})

	t.Run("update status rejects unknown values", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodPut, "/api/tickets/t-1/status?status=PAUSED", nil)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody[ValidationErrorResponse](t, rec).Fields, "status")
	})

	t.Run("update status requires the parameter", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodPut, "/api/tickets/t-1/status", nil)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	})
}

func TestNotificationRoutes(t *testing.T) {
	sent := &domain.NotificationEvent{ID: "n-1", TicketID: "t-1", AlarmID: "a-1", CustomerID: "c-42", Status: domain.NotificationSent}

	t.Run("recent defaults to 24 hours", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.notifications.On("ListRecent", mock.Anything, 24).Return([]*domain.NotificationEvent{sent}, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/notifications/recent", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]domain.NotificationEvent](t, rec), 1)
	})

	t.Run("recent rejects a malformed hours value", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodGet, "/api/notifications/recent?hours=soon", nil)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("recent rejects non-positive hours", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodGet, "/api/notifications/recent?hours=0", nil)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody[ValidationErrorResponse](t, rec).Fields, "hours")
	})

	t.Run("count", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.notifications.On("Count", mock.Anything).Return(7, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/notifications/count", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":7}`, rec.Body.String())
	})

	t.Run("filters", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.notifications.On("ListNotifications", mock.Anything).Return([]*domain.NotificationEvent{sent}, nil).Once()
		s.notifications.On("ListByStatus", mock.Anything, "sent").Return([]*domain.NotificationEvent{sent}, nil).Once()
		s.notifications.On("ListByAlarm", mock.Anything, "a-1").Return([]*domain.NotificationEvent{sent}, nil).Once()
		s.notifications.On("ListByTicket", mock.Anything, "t-1").Return([]*domain.NotificationEvent{sent}, nil).Once()

		for _, path := range []string{
			"/api/notifications",
			"/api/notifications/status/sent",
			"/api/notifications/alarm/a-1",
			"/api/notifications/ticket/t-1",
		} {
			rec := s.do(stdhttp.MethodGet, path, nil)
			require.Equal(t, stdhttp.StatusOK, rec.Code, path)
			assert.Len(t, decodeBody[[]domain.NotificationEvent](t, rec), 1, path)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.notifications.On("ListByStatus", mock.Anything, "LOST").
			Return(nil, apperrors.NewFieldError("status", "must be one of: SENT, PENDING, FAILED")).Once()

		rec := s.do(stdhttp.MethodGet, "/api/notifications/status/LOST", nil)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("range", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.notifications.On("ListByTimeRange", mock.Anything, int64(100), int64(200)).
			Return([]*domain.NotificationEvent{sent}, nil).Once()

		rec := s.do(stdhttp.MethodGet, "/api/notifications/range?from=100&to=200", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
	})

	t.Run("range requires both bounds", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodGet, "/api/notifications/range?from=100", nil)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody[ValidationErrorResponse](t, rec).Fields, "to")
	})

	t.Run("delete all", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.notifications.On("DeleteAll", mock.Anything).Return(3, nil).Once()

		rec := s.do(stdhttp.MethodDelete, "/api/notifications", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"All notifications cleared","deletedCount":3}`, rec.Body.String())
	})

	t.Run("cleanup defaults to 30 days", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.notifications.On("Cleanup", mock.Anything, 720).Return(2, nil).Once()

		rec := s.do(stdhttp.MethodDelete, "/api/notifications/cleanup", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Cleanup completed","deletedCount":2,"cutoffHours":720}`, rec.Body.String())
	})

	t.Run("cleanup with explicit hours", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)
		s.notifications.On("Cleanup", mock.Anything, 1).Return(0, nil).Once()

		rec := s.do(stdhttp.MethodDelete, "/api/notifications/cleanup?olderThanHours=1", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
	})
}

func TestCustomerRoutes(t *testing.T) {
	s := newTestServer(t, fakeBus{}, nil)
	s.directory.On("GetCustomer", mock.Anything, "c-42").
		Return(&domain.Customer{ID: "c-42", Name: "Acme"}, nil).Once()
	s.directory.On("GetCustomer", mock.Anything, "c-0").
		Return(nil, apperrors.ErrCustomerNotFound).Once()

	rec := s.do(stdhttp.MethodGet, "/api/customers/c-42", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "Acme", decodeBody[domain.Customer](t, rec).Name)

	rec = s.do(stdhttp.MethodGet, "/api/customers/c-0", nil)
	require.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestHealthRoutes(t *testing.T) {
	t.Run("ready when the bus answers", func(t *testing.T) {
		s := newTestServer(t, fakeBus{}, nil)

		rec := s.do(stdhttp.MethodGet, "/health/ready", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		got := decodeBody[HealthResponse](t, rec)
		assert.Equal(t, "healthy", got.Checks[busCheckName].Status)
	})

	t.Run("not ready when the bus fails", func(t *testing.T) {
		s := newTestServer(t, fakeBus{err: errors.New("no brokers")}, nil)

		rec := s.do(stdhttp.MethodGet, "/health/ready", nil)

		require.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
		got := decodeBody[HealthResponse](t, rec)
		assert.Equal(t, "no brokers", got.Checks[busCheckName].Message)
	})

	t.Run("liveness ignores the bus", func(t *testing.T) {
		s := newTestServer(t, fakeBus{err: errors.New("no brokers")}, nil)

		rec := s.do(stdhttp.MethodGet, "/health/live", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
	})

	t.Run("detailed health is degraded", func(t *testing.T) {
		s := newTestServer(t, fakeBus{err: errors.New("no brokers")}, nil)

		rec := s.do(stdhttp.MethodGet, "/health", nil)

		require.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
		got := decodeBody[HealthResponse](t, rec)
		assert.Equal(t, "degraded", got.Status)
		assert.Nil(t, got.LiveFeed)
	})

	t.Run("detailed health counts live feed subscribers", func(t *testing.T) {
		hub := wsAdapter.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
		s := newTestServer(t, fakeBus{}, hub)

		rec := s.do(stdhttp.MethodGet, "/health", nil)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		got := decodeBody[HealthResponse](t, rec)
		assert.Equal(t, "healthy", got.Status)
		require.NotNil(t, got.LiveFeed)
		assert.Equal(t, 0, got.LiveFeed.Clients)
		assert.Equal(t, 0, got.LiveFeed.AlarmRooms)
	})
}

func TestErrorHandler_Mapping(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"app error keeps its status", apperrors.NewBadRequestError(errors.New("x"), "bad"), stdhttp.StatusBadRequest},
		{"field errors", apperrors.NewFieldError("hours", "must be positive"), stdhttp.StatusUnprocessableEntity},
		{"wrapped not found", errors.Join(errors.New("lookup"), apperrors.ErrCustomerNotFound), stdhttp.StatusNotFound},
		{"invalid time range", apperrors.ErrInvalidTimeRange, stdhttp.StatusBadRequest},
		{"dependency", apperrors.ErrDependencyUnavailable, stdhttp.StatusServiceUnavailable},
		{"publish", apperrors.PublishFailure("tickets", errors.New("down")), stdhttp.StatusBadGateway},
		{"rate limited", apperrors.NewRateLimitError(), stdhttp.StatusTooManyRequests},
		{"invalid impact", apperrors.NewFieldError("impact", "unknown").WithCause(apperrors.ErrInvalidImpact), stdhttp.StatusUnprocessableEntity},
		{"unreadable body", apperrors.NewBadRequestError(errors.New("EOF"), "Request body is required"), stdhttp.StatusBadRequest},
		{"unknown", errors.New("boom"), stdhttp.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Handle(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWebSocketFeed(t *testing.T) {
	hub := wsAdapter.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	s := newTestServer(t, fakeBus{}, hub)
	server := httptest.NewServer(s.handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast(domain.LiveEvent{
		Type:    domain.LiveTicketChanged,
		AlarmID: "a-1",
		Payload: map[string]string{"ticketId": "t-1"},
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got domain.LiveEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, domain.LiveTicketChanged, got.Type)
	assert.Equal(t, "a-1", got.AlarmID)
}
