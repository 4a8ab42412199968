package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	mw "github.com/lorrc/incident-desk/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/incident-desk/internal/adapters/primary/websocket"
	"github.com/lorrc/incident-desk/internal/config"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterDeps collects everything the HTTP surface is built from
type RouterDeps struct {
	AlarmService        ports.AlarmService
	TicketService       ports.TicketService
	NotificationService ports.NotificationService
	Directory           ports.CustomerDirectory
	Bus                 HealthChecker
	Hub                 *wsAdapter.Hub
	RateLimiter         *mw.RateLimiter // nil disables rate limiting
	Config              *config.Config
	Logger              *slog.Logger
}

// NewRouter builds the chi router serving /health and /api
func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	logger := deps.Logger

	errorHandler := NewErrorHandler(logger)

	alarmHandler := NewAlarmHandler(deps.AlarmService, errorHandler, logger)
	ticketHandler := NewTicketHandler(deps.TicketService, errorHandler, logger)
	notificationHandler := NewNotificationHandler(deps.NotificationService, errorHandler, logger)
	customerHandler := NewCustomerHandler(deps.Directory, errorHandler, logger)
	var feed LiveFeedStats
	if deps.Hub != nil {
		feed = deps.Hub
	}
	healthHandler := NewHealthHandler(deps.Bus, feed, cfg.App.Version)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware)
	}

	// Health endpoints live outside /api
	healthHandler.RegisterRoutes(r)

	r.Route("/api", func(r chi.Router) {
		r.Route("/alarms", alarmHandler.RegisterRoutes)
		r.Route("/tickets", ticketHandler.RegisterRoutes)
		r.Route("/notifications", notificationHandler.RegisterRoutes)
		r.Route("/customers", customerHandler.RegisterRoutes)

		if deps.Hub != nil {
			wsHandler := NewWebSocketHandler(deps.Hub, cfg.WebSocket, cfg.IsDevelopment(), logger)
			r.Get("/ws", wsHandler.ServeHTTP)
		}
	})

	return otelhttp.NewHandler(r, cfg.App.Name)
}
