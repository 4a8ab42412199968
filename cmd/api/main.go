package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lorrc/incident-desk/internal/adapters/primary/consumer"
	httpAdapter "github.com/lorrc/incident-desk/internal/adapters/primary/http"
	mw "github.com/lorrc/incident-desk/internal/adapters/primary/http/middleware"
	"github.com/lorrc/incident-desk/internal/adapters/primary/websocket"
	"github.com/lorrc/incident-desk/internal/adapters/secondary/bus"
	"github.com/lorrc/incident-desk/internal/adapters/secondary/customer"
	"github.com/lorrc/incident-desk/internal/adapters/secondary/delivery"
	"github.com/lorrc/incident-desk/internal/adapters/secondary/memory"
	"github.com/lorrc/incident-desk/internal/config"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/lorrc/incident-desk/internal/core/services"
	"github.com/lorrc/incident-desk/internal/infrastructure/logging"
	"github.com/lorrc/incident-desk/internal/infrastructure/telemetry"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Initialize Tracing
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Message Bus
	messageBus, err := newMessageBus(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize message bus", "driver", cfg.Bus.Driver, "error", err)
		os.Exit(1)
	}
	if err := messageBus.Ping(ctx); err != nil {
		// Kafka may come up after us; readiness reports it until then
		logger.Warn("message bus ping failed", "driver", cfg.Bus.Driver, "error", err)
	}
	logger.Info("message bus ready", "driver", cfg.Bus.Driver)

	// 5. Customer Directory (Secondary Adapter)
	directory, redisClient := newCustomerDirectory(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	// Repositories (Secondary Adapters)
	alarmRepo := memory.NewAlarmRepository()
	ticketRepo := memory.NewTicketRepository()
	notificationRepo := memory.NewNotificationRepository()

	// Notifier (Secondary Adapter)
	notifier := delivery.NewLogNotifier(directory, logger)

	// Services (Core)
	alarmService := services.NewAlarmService(alarmRepo, messageBus, logger)
	ticketService := services.NewTicketService(ticketRepo, directory, messageBus, logger, services.TicketServiceConfig{
		LookupTimeout:     cfg.Customers.LookupTimeout,
		FanoutConcurrency: cfg.Tickets.FanoutConcurrency,
	})
	notificationService := services.NewNotificationService(notificationRepo, notifier, messageBus, logger)

	// 7. Real-time Components
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// 8. Consumers (Primary Adapters driven by the bus)
	consumers := consumer.New(messageBus, ticketService, notificationService, hub, consumer.Config{
		TicketGroupID:       cfg.Bus.TicketGroupID,
		NotificationGroupID: cfg.Bus.NotificationGroupID,
		LiveFeedGroupID:     cfg.Bus.LiveFeedGroupID,
		NotifyOnAlarms:      cfg.Notifications.NotifyOnAlarms,
	}, logger)
	if err := consumers.Start(ctx); err != nil {
		logger.Error("failed to start consumers", "error", err)
		os.Exit(1)
	}

	// 9. Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
	}

	// 10. Setup Router
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		AlarmService:        alarmService,
		TicketService:       ticketService,
		NotificationService: notificationService,
		Directory:           directory,
		Bus:                 messageBus,
		Hub:                 hub,
		RateLimiter:         rateLimiter,
		Config:              cfg,
		Logger:              logger,
	})

	// 11. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown: stop taking requests, then drain the pipeline
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	stop()

	if err := messageBus.Close(); err != nil {
		logger.Error("message bus close error", "error", err)
	}

	if rateLimiter != nil {
		rateLimiter.Stop()
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}

	logger.Info("server shutdown complete")
}

// newMessageBus selects the transport and applies topic overrides
func newMessageBus(cfg *config.Config, logger *slog.Logger) (ports.MessageBus, error) {
	var b ports.MessageBus
	switch cfg.Bus.Driver {
	case "kafka":
		kafkaBus, err := bus.NewKafkaBus(bus.KafkaConfig{
			Brokers:     cfg.Bus.KafkaBrokers,
			Workers:     cfg.Bus.Workers,
			DialTimeout: 5 * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
		b = kafkaBus
	default:
		b = bus.NewMemoryBus(cfg.Bus.Workers, logger)
	}

	return bus.WithTopicNames(b, bus.TopicNames{
		ports.TopicAlarms:        cfg.Bus.AlarmsTopic,
		ports.TopicTickets:       cfg.Bus.TicketsTopic,
		ports.TopicNotifications: cfg.Bus.NotificationsTopic,
	}), nil
}

// newCustomerDirectory returns the remote directory when a URL is configured,
// the built-in one otherwise, wrapped in the Redis cache when REDIS_ADDR is set.
func newCustomerDirectory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.CustomerDirectory, *redis.Client) {
	var directory ports.CustomerDirectory
	if cfg.Customers.DirectoryURL != "" {
		directory = customer.NewHTTPDirectory(cfg.Customers.DirectoryURL, cfg.Customers.LookupTimeout)
		logger.Info("using remote customer directory")
	} else {
		directory = customer.NewStaticDirectory()
		logger.Info("using built-in customer directory")
	}

	if cfg.Redis.Addr == "" {
		return directory, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		// The cache falls back to the directory on every Redis error
		logger.Warn("redis ping failed, customer cache will miss", "addr", cfg.Redis.Addr, "error", err)
	}

	return customer.NewCachedDirectory(directory, client, cfg.Redis.CacheTTL, logger), client
}
