package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// Hub maintains the set of active Clients and broadcasts live events to them.
// A client with no alarm subscriptions receives every event; once it joins
// an alarm room it only receives events for the rooms it joined.
type Hub struct {
	// clients is the set of every connected client
	clients map[*Client]bool

	// Rooms maps alarm IDs to subscribed clients
	rooms map[string]map[*Client]bool

	// Broadcast channel for events
	broadcast chan domain.LiveEvent

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// done is closed when Run returns
	done chan struct{}

	// mu protects the clients and rooms maps
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan domain.LiveEvent, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast sends an event to the hub's internal broadcast channel.
// This method implements the ports.EventBroadcaster interface.
func (h *Hub) Broadcast(event domain.LiveEvent) error {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"alarm_id", event.AlarmID,
		)
	}
	return nil
}

// Run starts the hub's event loop until ctx is cancelled. This MUST be run as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Add registers a client. It returns false once the hub has stopped.
func (h *Hub) Add(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Remove unregisters a client. It is a no-op once the hub has stopped.
func (h *Hub) Remove(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Info("client registered",
		"client_id", client.ID,
		"total_connections", len(h.clients),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}

	// 1. Remove from the client set
	delete(h.clients, client)

	// 2. Remove from all subscribed rooms
	for _, alarmID := range client.GetSubscriptions() {
		if room, ok := h.rooms[alarmID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, alarmID)
			}
		}
	}

	// 3. Safely close the send channel
	client.CloseSend()

	h.logger.Info("client unregistered",
		"client_id", client.ID,
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.CloseSend()
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
}

// broadcastEvent sends an event to every client listening for its alarm
func (h *Hub) broadcastEvent(event domain.LiveEvent) {
	h.mu.RLock()
	// Copy the client list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if !client.HasSubscriptions() || h.rooms[event.AlarmID][client] {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"alarm_id", event.AlarmID,
		"client_count", len(clients),
	)

	// Send to each client
	for _, client := range clients {
		select {
		case client.Send <- event:
			// Successfully queued
		default:
			// Client's send buffer is full, drop it
			h.logger.Warn("client send buffer full, unregistering",
				"client_id", client.ID,
			)
			h.unregisterClient(client)
		}
	}
}

// subscribeClientToAlarm adds a client to an alarm's room
func (h *Hub) subscribeClientToAlarm(client *Client, alarmID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	if h.rooms[alarmID] == nil {
		h.rooms[alarmID] = make(map[*Client]bool)
	}
	h.rooms[alarmID][client] = true
	client.AddSubscription(alarmID)

	h.logger.Debug("client subscribed to alarm",
		"client_id", client.ID,
		"alarm_id", alarmID,
	)
}

// unsubscribeClientFromAlarm removes a client from an alarm's room
func (h *Hub) unsubscribeClientFromAlarm(client *Client, alarmID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[alarmID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, alarmID)
		}
	}
	client.RemoveSubscription(alarmID)
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetRoomCount returns the number of active rooms
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetClientsInRoom returns the number of clients subscribed to an alarm
func (h *Hub) GetClientsInRoom(alarmID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[alarmID])
}
