package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/incident-desk/internal/adapters/primary/validation"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

const (
	defaultRecentHours  = 24
	defaultCleanupHours = 720
)

// NotificationHandler handles HTTP requests for the notification log
type NotificationHandler struct {
	notificationService ports.NotificationService
	errorHandler        *ErrorHandler
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(
	notificationService ports.NotificationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		errorHandler:        errorHandler,
		logger:              logger.With("handler", "notification"),
	}
}

// RegisterRoutes sets up the routing for all notification endpoints.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListNotifications)
	r.Delete("/", h.HandleDeleteAll)
	r.Get("/recent", h.HandleListRecent)
	r.Get("/count", h.HandleCount)
	r.Get("/range", h.HandleListByTimeRange)
	r.Delete("/cleanup", h.HandleCleanup)
	r.Get("/status/{status}", h.HandleListByStatus)
	r.Get("/alarm/{alarmID}", h.HandleListByAlarm)
	r.Get("/ticket/{ticketID}", h.HandleListByTicket)
}

// DeleteResponse reports how many notifications were removed
type DeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

// CleanupResponse reports the outcome of a retention cleanup
type CleanupResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
	CutoffHours  int    `json:"cutoffHours"`
}

// HandleListNotifications handles GET /notifications
func (h *NotificationHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.ListNotifications(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, notifications)
}

// HandleListRecent handles GET /notifications/recent?hours=
func (h *NotificationHandler) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	v := validation.NewValidator()
	hours := validation.ParseIntQueryParam(r, v, "hours", defaultRecentHours)
	v.Min("hours", hours, 1)
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	notifications, err := h.notificationService.ListRecent(r.Context(), hours)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, notifications)
}

// HandleCount handles GET /notifications/count
func (h *NotificationHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.Count(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteOK(w, CountResponse{Count: count})
}

// HandleListByStatus handles GET /notifications/status/{status}
func (h *NotificationHandler) HandleListByStatus(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.ListByStatus(r.Context(), chi.URLParam(r, "status"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, notifications)
}

// HandleListByAlarm handles GET /notifications/alarm/{alarmID}
func (h *NotificationHandler) HandleListByAlarm(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.ListByAlarm(r.Context(), chi.URLParam(r, "alarmID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, notifications)
}

// HandleListByTicket handles GET /notifications/ticket/{ticketID}
func (h *NotificationHandler) HandleListByTicket(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.ListByTicket(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, notifications)
}

// HandleListByTimeRange handles GET /notifications/range?from=&to=
func (h *NotificationHandler) HandleListByTimeRange(w http.ResponseWriter, r *http.Request) {
	v := validation.NewValidator()
	from := validation.ParseInt64QueryParam(r, v, "from")
	to := validation.ParseInt64QueryParam(r, v, "to")
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	notifications, err := h.notificationService.ListByTimeRange(r.Context(), from, to)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, notifications)
}

// HandleDeleteAll handles DELETE /notifications
func (h *NotificationHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.notificationService.DeleteAll(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteOK(w, DeleteResponse{Message: "All notifications cleared", DeletedCount: deleted})
}

// HandleCleanup handles DELETE /notifications/cleanup?olderThanHours=
func (h *NotificationHandler) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	v := validation.NewValidator()
	hours := validation.ParseIntQueryParam(r, v, "olderThanHours", defaultCleanupHours)
	v.Min("olderThanHours", hours, 1)
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	deleted, err := h.notificationService.Cleanup(r.Context(), hours)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteOK(w, CleanupResponse{
		Message:      "Cleanup completed",
		DeletedCount: deleted,
		CutoffHours:  hours,
	})
}
