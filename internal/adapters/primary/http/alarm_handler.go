package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/incident-desk/internal/adapters/primary/validation"
	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

const maxAlarmIDLength = 128

var (
	serviceValues = []string{"BROADBAND", "MOBILE", "TV", "VOIP"}
	impactValues  = []string{"OUTAGE", "DEGRADED", "SLOW", "RESOLVED"}
)

// AlarmHandler handles HTTP requests for the alarm lifecycle
type AlarmHandler struct {
	alarmService ports.AlarmService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAlarmHandler creates a new alarm handler
func NewAlarmHandler(
	alarmService ports.AlarmService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AlarmHandler {
	return &AlarmHandler{
		alarmService: alarmService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "alarm"),
	}
}

// RegisterRoutes sets up the routing for all alarm endpoints.
func (h *AlarmHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListAlarms)
	r.Post("/start", h.HandleStartAlarm)
	r.Post("/stop", h.HandleStopAlarm)
	r.Get("/active", h.HandleListActiveAlarms)
	r.Get("/service/{service}", h.HandleListAlarmsByService)

	r.Route("/{alarmID}", func(r chi.Router) {
		r.Get("/", h.HandleGetAlarmEvents)
		r.Get("/status", h.HandleGetAlarmStatus)
	})
}

// --- Request/Response DTOs ---

// StartAlarmRequest defines the expected JSON body for raising an alarm
type StartAlarmRequest struct {
	AlarmID           string   `json:"alarmId"`
	Service           string   `json:"service"`
	Impact            string   `json:"impact"`
	AffectedCustomers []string `json:"affectedCustomers"`
}

// Validate validates the start alarm request
func (r *StartAlarmRequest) Validate() error {
	v := validation.NewValidator()

	v.MaxLength("alarmId", r.AlarmID, maxAlarmIDLength)

	v.Required("service", r.Service).
		OneOf("service", r.Service, serviceValues)

	v.Required("impact", r.Impact).
		OneOf("impact", r.Impact, impactValues)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// StopAlarmRequest defines the expected JSON body for resolving an alarm
type StopAlarmRequest struct {
	AlarmID           string   `json:"alarmId"`
	Service           string   `json:"service"`
	AffectedCustomers []string `json:"affectedCustomers"`
}

// Validate validates the stop alarm request
func (r *StopAlarmRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("alarmId", r.AlarmID).
		MaxLength("alarmId", r.AlarmID, maxAlarmIDLength)
	v.Required("service", r.Service).
		OneOf("service", r.Service, serviceValues)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// AlarmStatusResponse reports the latest impact of an alarm
type AlarmStatusResponse struct {
	AlarmID string `json:"alarmId"`
	Status  string `json:"status"`
}

// --- Handlers ---

// HandleStartAlarm handles POST /alarms/start
func (h *AlarmHandler) HandleStartAlarm(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[StartAlarmRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	event, err := h.alarmService.Start(r.Context(), ports.StartAlarmParams{
		AlarmID:           req.AlarmID,
		Service:           domain.ParseService(req.Service),
		Impact:            domain.ParseImpact(req.Impact),
		AffectedCustomers: req.AffectedCustomers,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteOK(w, event)
}

// HandleStopAlarm handles POST /alarms/stop
func (h *AlarmHandler) HandleStopAlarm(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[StopAlarmRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	event, err := h.alarmService.Stop(r.Context(), ports.StopAlarmParams{
		AlarmID:           req.AlarmID,
		Service:           domain.ParseService(req.Service),
		AffectedCustomers: req.AffectedCustomers,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteOK(w, event)
}

// HandleListAlarms handles GET /alarms
func (h *AlarmHandler) HandleListAlarms(w http.ResponseWriter, r *http.Request) {
	events, err := h.alarmService.ListAlarms(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, events)
}

// HandleListActiveAlarms handles GET /alarms/active
func (h *AlarmHandler) HandleListActiveAlarms(w http.ResponseWriter, r *http.Request) {
	events, err := h.alarmService.ListActiveAlarms(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, events)
}

// HandleListAlarmsByService handles GET /alarms/service/{service}
func (h *AlarmHandler) HandleListAlarmsByService(w http.ResponseWriter, r *http.Request) {
	service := domain.Service(strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "service"))))

	events, err := h.alarmService.ListAlarmsByService(r.Context(), service)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, events)
}

// HandleGetAlarmEvents handles GET /alarms/{alarmID}
func (h *AlarmHandler) HandleGetAlarmEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.alarmService.GetAlarmEvents(r.Context(), chi.URLParam(r, "alarmID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, events)
}

// HandleGetAlarmStatus handles GET /alarms/{alarmID}/status
func (h *AlarmHandler) HandleGetAlarmStatus(w http.ResponseWriter, r *http.Request) {
	alarmID := chi.URLParam(r, "alarmID")

	impact, err := h.alarmService.GetAlarmStatus(r.Context(), alarmID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteOK(w, AlarmStatusResponse{AlarmID: alarmID, Status: string(impact)})
}
