package websocket

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, c *Client) (domain.LiveEvent, bool) {
	t.Helper()
	select {
	case event, ok := <-c.Send:
		return event, ok
	case <-time.After(100 * time.Millisecond):
		return domain.LiveEvent{}, false
	}
}

func TestHub_BroadcastsToUnsubscribedClients(t *testing.T) {
	hub := startHub(t)
	a := NewClient(hub, nil, 0, 0, discardLogger())
	b := NewClient(hub, nil, 0, 0, discardLogger())
	require.True(t, hub.Add(a))
	require.True(t, hub.Add(b))

	require.NoError(t, hub.Broadcast(domain.LiveEvent{Type: domain.LiveTicketChanged, AlarmID: "a1"}))

	for _, c := range []*Client{a, b} {
		event, ok := receive(t, c)
		require.True(t, ok)
		assert.Equal(t, domain.LiveTicketChanged, event.Type)
	}
	assert.Equal(t, 2, hub.GetClientCount())
}

func TestHub_RoomsFilterEvents(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, 0, 0, discardLogger())
	require.True(t, hub.Add(c))

	assert.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	c.handleIncomingMessage([]byte(`{"type":"SUBSCRIBE_TO_ALARM","payload":{"alarmId":"a1"}}`))
	assert.Equal(t, 1, hub.GetClientsInRoom("a1"))

	require.NoError(t, hub.Broadcast(domain.LiveEvent{Type: domain.LiveNotificationSent, AlarmID: "a2"}))
	require.NoError(t, hub.Broadcast(domain.LiveEvent{Type: domain.LiveTicketChanged, AlarmID: "a1"}))

	event, ok := receive(t, c)
	require.True(t, ok)
	assert.Equal(t, "a1", event.AlarmID)

	c.handleIncomingMessage([]byte(`{"type":"UNSUBSCRIBE_FROM_ALARM","payload":{"alarmId":"a1"}}`))
	assert.Equal(t, 0, hub.GetRoomCount())
}

func TestHub_PingAndBadMessages(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, 0, 0, discardLogger())

	c.handleIncomingMessage([]byte(`not json`))
	c.handleIncomingMessage([]byte(`{"type":"SUBSCRIBE_TO_ALARM","payload":{"alarmId":" "}}`))
	assert.False(t, c.HasSubscriptions())

	c.handleIncomingMessage([]byte(`{"type":"PING"}`))
	event, ok := receive(t, c)
	require.True(t, ok)
	assert.Equal(t, domain.LiveEventType(MessagePong), event.Type)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, 0, 0, discardLogger())
	require.True(t, hub.Add(c))
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)
	c.handleIncomingMessage([]byte(`{"type":"SUBSCRIBE_TO_ALARM","payload":{"alarmId":"a1"}}`))
	require.Equal(t, 1, hub.GetRoomCount())

	hub.Remove(c)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.GetClientCount())
	assert.Equal(t, 0, hub.GetRoomCount())

	// Removing twice is harmless
	hub.Remove(c)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := NewClient(hub, nil, 0, 0, discardLogger())
	require.True(t, hub.Add(c))
	cancel()
	<-stopped

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, hub.Add(NewClient(hub, nil, 0, 0, discardLogger())))
}

func TestNewClient_Timing(t *testing.T) {
	c := NewClient(nil, nil, 10*time.Second, 20*time.Second, discardLogger())
	assert.Equal(t, 10*time.Second, c.pongWait)
	assert.Equal(t, 9*time.Second, c.pingPeriod)
	assert.NotEmpty(t, c.ID)
}
