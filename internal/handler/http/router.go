package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/giftcard-catalog/internal/service"
	"github.com/utafrali/giftcard-catalog/pkg/health"
	"github.com/utafrali/giftcard-catalog/pkg/middleware"
)

// RouterConfig carries the cross-cutting pieces the router is built with.
type RouterConfig struct {
	ServiceName string
	CORS        middleware.CORSConfig
	Metrics     *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	productService *service.ProductService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Recovery(logger))

	// Health check endpoints
	r.Get("/api/health", healthHandler.PingHandler())
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Product API endpoints
	productHandler := NewProductHandler(productService, logger)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.RequireJSON)

		r.Get("/", productHandler.ListProducts)
		r.Post("/", productHandler.CreateProduct)
		r.Get("/{id}", productHandler.GetProduct)
		r.Patch("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	return r
}
