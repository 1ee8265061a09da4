// Package main is the entry point for the TrizzaOne dashboard API server.
//
// It loads configuration, connects Postgres and the optional Redis/AWS
// integrations, starts the simulation session in the background, and serves
// the dashboard API over HTTP with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"trizzaone/internal/api/handlers"
	"trizzaone/internal/config"
	"trizzaone/internal/core"
	"trizzaone/internal/db"
	"trizzaone/internal/detect"
	"trizzaone/internal/external"
	"trizzaone/internal/metrics"
	"trizzaone/internal/notify"
	"trizzaone/internal/query"
	"trizzaone/internal/queue"
	"trizzaone/internal/scheduler"
	"trizzaone/internal/telemetry"
	"trizzaone/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("trizzaone API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	sampleRepo := db.NewSampleRepository(pool)
	eventRepo := db.NewEventRepository(pool)
	orderRepo := db.NewOrderRepository(pool)

	clock := types.RealClock{}
	store := telemetry.NewStore(cfg.Simulation.StoreCapacity)
	gen := telemetry.NewGenerator(nil, clock)

	emitter, sink, err := newAWSIntegrations(ctx, cfg, logger)
	if err != nil {
		return err
	}
	var clientOpts []external.BaseClientOption
	if emitter != nil {
		clientOpts = append(clientOpts, external.WithMetrics(emitter))
	}

	var remote detect.RemoteClassifier
	if cfg.Anomaly.URL != "" {
		remote = external.NewAnomalyClient(cfg.Anomaly, clientOpts...)
	}
	detector := detect.NewDetector(remote, clock, logger)
	windows := detect.NewWindowDetector(orderRepo, clock, logger)

	seen, redisClient := newSeenStore(ctx, cfg.Redis, clock, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	dispatcherCfg := notify.DispatcherConfig{
		Seen:      seen,
		Events:    eventRepo,
		Sink:      sink,
		Prefs:     notify.Preferences{PushEnabled: cfg.Simulation.PushEnabled},
		Cooldown:  cfg.Simulation.DedupCooldown,
		RecentCap: cfg.Simulation.RecentEventCap,
		Logger:    logger,
	}
	if emitter != nil {
		dispatcherCfg.Metrics = emitter
	}
	dispatcher := notify.NewDispatcher(dispatcherCfg)

	sessionCfg := scheduler.SessionConfig{
		Generator:      gen,
		Store:          store,
		Detector:       detector,
		WindowDetector: windows,
		Dispatcher:     dispatcher,
		Writer:         sampleRepo,
		Reader:         sampleRepo,
		TickInterval:   cfg.Simulation.TickInterval,
		PollInterval:   cfg.Simulation.PollInterval,
		Enabled:        cfg.Simulation.Enabled,
		Clock:          clock,
		Logger:         logger,
	}
	if emitter != nil {
		sessionCfg.Metrics = emitter
	}
	session := scheduler.NewSession(sessionCfg)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	if emitter != nil {
		srv.Metrics = newRequestMetrics(emitter)
	}

	mountRoutes(srv, cfg, store, eventRepo, orderRepo, dispatcher, session, emitter, clock, logger, pool)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := session.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("simulation session: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return runHTTPServer(gctx, srv, cfg, logger)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}

// mountRoutes wires the middleware chain and the versioned endpoints.
func mountRoutes(
	srv *core.Server,
	cfg *config.Config,
	store *telemetry.Store,
	eventRepo *db.EventRepository,
	orderRepo *db.OrderRepository,
	dispatcher *notify.Dispatcher,
	session *scheduler.Session,
	emitter *metrics.Emitter,
	clock types.Clock,
	logger *slog.Logger,
	pool *pgxpool.Pool,
) {
	r := srv.Router()
	r.Use(srv.Recoverer)
	r.Use(core.RequestID)
	r.Use(core.RequestLogger(logger))
	r.Use(srv.MetricsMiddleware)

	r.Get("/health", srv.HandleHealth(dbProbe{pool}))

	telemetryHandler := handlers.NewTelemetryHandler(store, clock, logger)
	eventsHandler := handlers.NewEventsHandler(eventRepo, logger)
	ordersHandler := handlers.NewOrdersHandler(orderRepo, dispatcher, clock, logger)
	simulationHandler := handlers.NewSimulationHandler(session, logger)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/telemetry", telemetryHandler.RegisterRoutes)
		r.Route("/events", eventsHandler.RegisterRoutes)
		r.Route("/orders", ordersHandler.RegisterRoutes)
		r.Route("/simulation", simulationHandler.RegisterRoutes)

		if cfg.Query.URL != "" {
			var clientOpts []external.BaseClientOption
			if emitter != nil {
				clientOpts = append(clientOpts, external.WithMetrics(emitter))
			}
			engine := query.NewEngine(query.EngineConfig{
				Selector: external.NewQueryClient(cfg.Query, clientOpts...),
				Store:    store,
				Orders:   orderRepo,
				Events:   eventRepo,
				Clock:    clock,
				Logger:   logger,
			})
			queryHandler := handlers.NewQueryHandler(engine, logger)
			r.Route("/query", queryHandler.RegisterRoutes)
		}
	})
}

// newSeenStore picks the shared Redis store when configured, otherwise the
// in-process one.
func newSeenStore(ctx context.Context, cfg config.RedisConfig, clock types.Clock, logger *slog.Logger) (notify.SeenStore, *redis.Client) {
	if cfg.Addr == "" {
		return notify.NewMemorySeenStore(clock), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password.Unmask(),
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		// The dispatcher fails open anyway; degrade to the local store so a
		// down Redis never blocks startup.
		logger.Warn("redis unreachable, using in-process seen store", "error", err)
		client.Close()
		return notify.NewMemorySeenStore(clock), nil
	}
	return notify.NewRedisSeenStore(client), client
}

// newAWSIntegrations builds the optional CloudWatch emitter and SQS alert
// sink. Both are nil when not configured.
func newAWSIntegrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*metrics.Emitter, notify.AlertSink, error) {
	if !cfg.Observability.MetricsEnabled && cfg.AWS.AlertQueueURL == "" {
		return nil, nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	var emitter *metrics.Emitter
	if cfg.Observability.MetricsEnabled {
		cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		emitter = metrics.NewEmitter(cwClient, cfg.Observability.MetricNamespace, logger)
	}

	var sink notify.AlertSink
	if cfg.AWS.AlertQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		sink = queue.NewAlertPublisher(sqsClient, cfg.AWS.AlertQueueURL, logger)
	}

	return emitter, sink, nil
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully
// with a 10 second deadline.
func runHTTPServer(ctx context.Context, srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("initiating graceful shutdown")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// requestMetrics adapts the CloudWatch emitter to the chassis collector.
type requestMetrics struct {
	emitter *metrics.Emitter
}

func newRequestMetrics(emitter *metrics.Emitter) *requestMetrics {
	return &requestMetrics{emitter: emitter}
}

func (m *requestMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.emitter.Latency(context.Background(), types.MetricAPILatency, duration, map[string]string{
		types.DimEndpoint: method + " " + endpoint,
		types.DimOutcome:  status,
	})
}

// dbProbe reports database connectivity for the health endpoint.
type dbProbe struct {
	pool *pgxpool.Pool
}

func (p dbProbe) Name() string                    { return "database" }
func (p dbProbe) Check(ctx context.Context) error { return p.pool.Ping(ctx) }

// newLogger creates a structured JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
