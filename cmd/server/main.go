package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/app"
	"dispatch/internal/config"
	"dispatch/internal/handler"
	"dispatch/internal/jobs"
	"dispatch/internal/memory"
	"dispatch/internal/rabbitmq"
	internalRedis "dispatch/internal/redis"
	"dispatch/internal/repository"
	"dispatch/internal/repository/postgres"
	"dispatch/internal/service"
)

func main() {
	cfg := config.Load()
	logger := app.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// New Relic first so the database and Redis clients can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		var err error
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", "error", err)
		} else {
			logger.Info("New Relic enabled", "app", cfg.NewRelic.AppName)
			defer nrApp.Shutdown(5 * time.Second)
		}
	}

	var (
		redisClient *redis.Client
		err         error
	)
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(startCtx, cfg.Redis, nrApp, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		logger.Info("redis disabled, idempotency replay is off")
	}

	var db *sql.DB
	if cfg.Database.Enabled {
		db, err = app.NewDatabase(startCtx, cfg.Database, nrApp, logger)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	var broker *rabbitmq.Connection
	if cfg.RabbitMQ.Enabled {
		broker, err = app.NewRabbitMQ(ctx, cfg.RabbitMQ, logger)
		if err != nil {
			return err
		}
		defer broker.Close()
	}

	w := wire(cfg, logger, redisClient, db, broker, nrApp)

	if n, err := w.riderService.LoadDirectory(startCtx); err != nil {
		return err
	} else if n > 0 {
		logger.Info("riders loaded from directory", "count", n)
	}

	go w.dispatcher.Run(ctx)
	go w.relay.Run(ctx)

	if err := w.jobs.StartAll(); err != nil {
		return err
	}
	defer w.jobs.StopAll()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "location_backend", cfg.Dispatch.LocationBackend)
		if err := w.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := w.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server exited")
	return nil
}

type wiring struct {
	server       *http.Server
	riderService *service.RiderService
	dispatcher   *service.Dispatcher
	relay        *service.EventRelay
	jobs         *jobs.JobManager
}

// wire builds the core components, services, handlers and HTTP server.
func wire(
	cfg *config.Config,
	logger *slog.Logger,
	redisClient *redis.Client,
	db *sql.DB,
	broker *rabbitmq.Connection,
	nrApp *newrelic.Application,
) *wiring {
	registry := memory.NewRiderRegistry()
	ledger := memory.NewOrderLedger()

	var (
		locations service.LocationStore
		locker    service.DispatchLocker
	)
	switch cfg.Dispatch.LocationBackend {
	case config.BackendMemory:
		locations = memory.NewLocationStore()
		locker = memory.NewLockStore()
	default:
		locations = internalRedis.NewLocationStore(redisClient)
		locker = internalRedis.NewLockStore(redisClient)
	}

	// Relay sinks, in delivery order. The journal comes first so order
	// history is written before the event leaves the process.
	var (
		sinks     []service.EventSink
		directory repository.RiderRepository
		journal   repository.OrderEventRepository
	)
	if db != nil {
		pgJournal := postgres.NewOrderEventRepository(db)
		sinks = append(sinks, pgJournal)
		journal = pgJournal
		directory = postgres.NewRiderRepository(db)
	} else {
		memJournal := memory.NewOrderJournal()
		sinks = append(sinks, memJournal)
		journal = memJournal
	}
	if broker != nil {
		sinks = append(sinks, rabbitmq.NewEventPublisher(broker, logger))
	}
	sinks = append(sinks, service.NewNotificationService(logger))

	dispatcher := service.NewDispatcher(ledger, registry, locations, locker, service.DispatcherConfig{
		MaxAttempts:    cfg.Dispatch.MaxAttempts,
		QueueSize:      cfg.Dispatch.QueueSize,
		LockTTL:        cfg.Dispatch.LockTTL,
		SearchRadiusKm: float64(cfg.Dispatch.SearchRadiusKm),
	}, logger)
	relay := service.NewEventRelay(ledger, cfg.Dispatch.EventBuffer, cfg.Dispatch.SinkTimeout, logger, sinks...)

	riderService := service.NewRiderService(registry, locations, ledger, dispatcher, directory, logger)
	orderService := service.NewOrderService(ledger, registry, dispatcher, journal, logger)
	gateway := service.NewTrackingGateway(ledger, registry, locations)

	var cmdable redis.Cmdable
	if redisClient != nil {
		cmdable = redisClient
	}

	router := app.NewRouter(app.RouterDeps{
		RiderHandler:    handler.NewRiderHandler(riderService),
		OrderHandler:    handler.NewOrderHandler(orderService),
		TrackingHandler: handler.NewTrackingHandler(gateway, cfg.Dispatch.TrackingPushInterval, logger),
		RedisClient:     cmdable,
		NewRelicApp:     nrApp,
		Logger:          logger,
	})

	return &wiring{
		server: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		riderService: riderService,
		dispatcher:   dispatcher,
		relay:        relay,
		jobs:         jobs.NewJobManager(dispatcher, cfg.Dispatch.RescanSpec, logger),
	}
}
