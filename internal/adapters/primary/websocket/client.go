package websocket

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lorrc/incident-desk/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Outbound buffer per client.
	sendBufferSize = 256
)

// Message types exchanged with the browser.
const (
	MessageSubscribe   = "SUBSCRIBE_TO_ALARM"
	MessageUnsubscribe = "UNSUBSCRIBE_FROM_ALARM"
	MessagePing        = "PING"
	MessagePong        = "PONG"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// ID identifies the connection in logs.
	ID string

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan domain.LiveEvent

	// Subscriptions is the set of alarm rooms joined.
	Subscriptions map[string]bool

	pongWait   time.Duration
	pingPeriod time.Duration

	// closeOnce ensures the Send channel is only closed once
	closeOnce sync.Once

	// mu protects Subscriptions map
	mu sync.RWMutex

	// logger for this client
	logger *slog.Logger
}

// NewClient creates a new WebSocket client. pongWait bounds how long the peer
// may stay silent; pings go out every pingPeriod, which must be shorter.
func NewClient(hub *Hub, conn *websocket.Conn, pongWait, pingPeriod time.Duration, logger *slog.Logger) *Client {
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = (pongWait * 9) / 10
	}

	id := uuid.NewString()
	return &Client{
		Hub:           hub,
		ID:            id,
		Conn:          conn,
		Send:          make(chan domain.LiveEvent, sendBufferSize),
		Subscriptions: make(map[string]bool),
		pongWait:      pongWait,
		pingPeriod:    pingPeriod,
		logger:        logger.With("client_id", id),
	}
}

// CloseSend safely closes the Send channel exactly once
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// AddSubscription adds a subscription to an alarm
func (c *Client) AddSubscription(alarmID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Subscriptions[alarmID] = true
}

// RemoveSubscription removes a subscription from an alarm
func (c *Client) RemoveSubscription(alarmID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Subscriptions, alarmID)
}

// HasSubscriptions reports whether the client joined any alarm room
func (c *Client) HasSubscriptions() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Subscriptions) > 0
}

// GetSubscriptions returns a copy of all subscriptions
func (c *Client) GetSubscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	subs := make([]string, 0, len(c.Subscriptions))
	for alarmID := range c.Subscriptions {
		subs = append(subs, alarmID)
	}
	return subs
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Remove(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.Conn.WriteJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// --- Incoming Message Handling ---

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SubscribePayload is the payload for subscribe/unsubscribe messages
type SubscribePayload struct {
	AlarmID string `json:"alarmId"`
}

// handleIncomingMessage processes messages received from the client
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case MessageSubscribe:
		if alarmID, ok := c.alarmIDFrom(msg.Payload); ok {
			c.Hub.subscribeClientToAlarm(c, alarmID)
		}

	case MessageUnsubscribe:
		if alarmID, ok := c.alarmIDFrom(msg.Payload); ok {
			c.Hub.unsubscribeClientFromAlarm(c, alarmID)
		}

	case MessagePing:
		// Client-side keep-alive, respond with pong
		c.sendPong()

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

func (c *Client) alarmIDFrom(payload json.RawMessage) (string, bool) {
	var p SubscribePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal subscription payload", "error", err)
		return "", false
	}

	alarmID := strings.TrimSpace(p.AlarmID)
	if alarmID == "" {
		c.logger.Warn("missing alarm ID in subscription request")
		return "", false
	}
	return alarmID, true
}

func (c *Client) sendPong() {
	defer func() {
		// Send may already be closed by the hub
		_ = recover()
	}()

	select {
	case c.Send <- domain.LiveEvent{Type: MessagePong}:
	default:
		// Channel full, skip pong response
	}
}
