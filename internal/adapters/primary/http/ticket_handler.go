package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/incident-desk/internal/adapters/primary/validation"
	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	ticketService ports.TicketService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	ticketService ports.TicketService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Get("/alarm/{alarmID}", h.HandleListTicketsForAlarm)
	r.Get("/customer/{customerID}", h.HandleListTicketsForCustomer)

	// Routes for a specific ticket
	r.Route("/{ticketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTicket)
		r.Get("/customer-info", h.HandleGetCustomerInfo)
		r.Put("/status", h.HandleUpdateTicketStatus)
	})
}

// --- Handlers ---

// HandleListTickets handles GET /tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.ticketService.ListTickets(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, tickets)
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.ticketService.GetTicket(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteOK(w, ticket)
}

// HandleListTicketsForAlarm handles GET /tickets/alarm/{alarmID}
func (h *TicketHandler) HandleListTicketsForAlarm(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.ticketService.ListTicketsForAlarm(r.Context(), chi.URLParam(r, "alarmID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, tickets)
}

// HandleListTicketsForCustomer handles GET /tickets/customer/{customerID}
func (h *TicketHandler) HandleListTicketsForCustomer(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.ticketService.ListTicketsForCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteList(w, tickets)
}

// HandleGetCustomerInfo handles GET /tickets/{ticketID}/customer-info
func (h *TicketHandler) HandleGetCustomerInfo(w http.ResponseWriter, r *http.Request) {
	customer, err := h.ticketService.GetCustomerInfo(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteOK(w, customer)
}

// HandleUpdateTicketStatus handles PUT /tickets/{ticketID}/status?status=
func (h *TicketHandler) HandleUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	v := validation.NewValidator()
	raw := validation.ParseStringQueryParam(r, "status")
	v.Required("status", raw)
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	status, err := domain.ParseTicketStatus(raw)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.ticketService.UpdateTicketStatus(r.Context(), ticketID, status)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket status updated",
		"ticket_id", ticketID,
		"status", status,
	)
	WriteOK(w, ticket)
}
