package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	busCheckName       = "message_bus"
	healthCheckTimeout = 5 * time.Second

	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// HealthChecker is satisfied by both message bus adapters.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// LiveFeedStats is the part of the websocket hub reported by /health.
type LiveFeedStats interface {
	GetClientCount() int
	GetRoomCount() int
}

// HealthHandler reports whether the pipeline can take alarms. The customer
// directory is not checked: lookups fall back to placeholder descriptions.
type HealthHandler struct {
	bus       HealthChecker
	feed      LiveFeedStats
	startTime time.Time
	version   string
}

// NewHealthHandler creates a health handler. feed may be nil when the live
// feed is disabled.
func NewHealthHandler(bus HealthChecker, feed LiveFeedStats, version string) *HealthHandler {
	return &HealthHandler{
		bus:       bus,
		feed:      feed,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
	LiveFeed  *LiveFeedStatus  `json:"liveFeed,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// LiveFeedStatus counts websocket subscribers and the alarms they follow.
type LiveFeedStatus struct {
	Clients    int `json:"clients"`
	AlarmRooms int `json:"alarmRooms"`
}

// HandleLiveness answers as long as the process serves HTTP.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness fails while the bus is unreachable, since no alarm could be
// published or consumed.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.report(r.Context(), statusUnhealthy))
}

// HandleHealth is the detailed view used by operators.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := h.report(r.Context(), statusDegraded)
	if h.feed != nil {
		response.LiveFeed = &LiveFeedStatus{
			Clients:    h.feed.GetClientCount(),
			AlarmRooms: h.feed.GetRoomCount(),
		}
	}
	h.write(w, response)
}

func (h *HealthHandler) report(ctx context.Context, failedStatus string) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	bus := h.checkBus(ctx)
	status := statusHealthy
	if bus.Status != statusHealthy {
		status = failedStatus
	}

	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    map[string]Check{busCheckName: bus},
	}
}

func (h *HealthHandler) write(w http.ResponseWriter, response HealthResponse) {
	code := http.StatusOK
	if response.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, response)
}

func (h *HealthHandler) checkBus(ctx context.Context) Check {
	if h.bus == nil {
		return Check{Status: statusUnhealthy, Message: "message bus not configured"}
	}

	start := time.Now()
	err := h.bus.Ping(ctx)
	latency := time.Since(start).String()

	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Latency: latency}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}
