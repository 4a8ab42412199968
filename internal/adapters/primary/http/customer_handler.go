package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// CustomerHandler exposes the customer directory over HTTP
type CustomerHandler struct {
	directory    ports.CustomerDirectory
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(directory ports.CustomerDirectory, errorHandler *ErrorHandler, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		directory:    directory,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "customer"),
	}
}

// RegisterRoutes sets up the routing for customer endpoints.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{customerID}", h.HandleGetCustomer)
}

// HandleGetCustomer handles GET /customers/{customerID}
func (h *CustomerHandler) HandleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.directory.GetCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteOK(w, customer)
}
