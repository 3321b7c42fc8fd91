package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/utafrali/giftcard-catalog/internal/config"
	"github.com/utafrali/giftcard-catalog/internal/event"
	handler "github.com/utafrali/giftcard-catalog/internal/handler/http"
	"github.com/utafrali/giftcard-catalog/internal/idgen"
	"github.com/utafrali/giftcard-catalog/internal/repository/memory"
	"github.com/utafrali/giftcard-catalog/internal/service"
	"github.com/utafrali/giftcard-catalog/internal/storage/filestore"
	"github.com/utafrali/giftcard-catalog/pkg/health"
	pkgkafka "github.com/utafrali/giftcard-catalog/pkg/kafka"
	"github.com/utafrali/giftcard-catalog/pkg/middleware"
	"github.com/utafrali/giftcard-catalog/pkg/tracing"
)

// ServiceName identifies the catalog in logs, metrics and traces.
const ServiceName = "catalog-service"

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Open the catalog document.
	store, err := filestore.New(ctx, filestore.Config{
		Path:            cfg.StoreFilePath,
		CreateIfMissing: cfg.StoreCreateIfMissing,
		SlowOpThreshold: cfg.SlowOpThreshold(),
	}, logger, filestore.NewMetrics(reg))
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("open product store: %w", err)
	}

	productRepo, err := memory.NewProductRepository(ctx, store, idgen.RandomGenerator{}, memory.Options{
		SearchFields: cfg.SearchFieldSet(),
		Locale:       cfg.Locale(),
	}, reg)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("load product repository: %w", err)
	}
	logger.Info("product catalog loaded",
		slog.String("path", store.Path()),
		slog.Int("products", productRepo.Count(ctx)),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("store", store.Ping)

	// Domain events are optional.
	var (
		producer  *pkgkafka.Producer
		publisher event.Publisher = event.NopPublisher{}
	)
	if cfg.KafkaEnabled {
		kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		producer = pkgkafka.NewProducer(kafkaCfg, logger, pkgkafka.NewProducerMetrics(reg))
		publisher = event.NewProducer(producer, logger)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	productService := service.NewProductService(productRepo, publisher, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	// HTTP router.
	router := handler.NewRouter(productService, healthHandler, handler.RouterConfig{
		ServiceName: ServiceName,
		CORS:        corsCfg,
		Metrics:     middleware.NewHTTPMetrics(reg, ServiceName),
		Gatherer:    reg,
	}, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
