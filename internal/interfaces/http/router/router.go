// Package router assembles the gin engines of the billing and sales services.
package router

import (
	"net/http"

	appsales "github.com/erp/invoicing/internal/application/sales"
	"github.com/erp/invoicing/internal/contract/billingapi"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/erp/invoicing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SalesPrefix is the route prefix of the sales gateway surface
const SalesPrefix = "/api/sales/billing"

// HealthPath answers liveness probes on both services
const HealthPath = "/health"

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRoutes)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	prefix     string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithPrefix mounts every registrar under prefix
func WithPrefix(prefix string) RouterOption {
	return func(r *Router) {
		r.prefix = prefix
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	var routes gin.IRoutes = r.engine
	if r.prefix != "" {
		routes = r.engine.Group(r.prefix)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(routes)
	}
}

// Options carries what the middleware chain needs
type Options struct {
	ServiceName string
	Logger      *zap.Logger
	Meter       metric.Meter // nil disables HTTP metrics
	HTTP        config.HTTPConfig
}

// NewEngine builds a gin engine with the shared middleware chain and the
// health endpoint.
func NewEngine(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, ignoring", zap.Error(err))
		}
	}

	cors := middleware.DefaultCORSConfig()
	if len(opts.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	}
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Tracing(opts.ServiceName),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(opts.Meter),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)

	engine.GET(HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
			"status":  "ok",
			"service": opts.ServiceName,
		}))
	})
	return engine
}

// NewBillingRouter serves the billing contract at its absolute paths
func NewBillingRouter(api billingapi.API, opts Options) *gin.Engine {
	engine := NewEngine(opts)
	NewRouter(engine).
		Register(handler.NewBillingHandler(api)).
		Setup()
	return engine
}

// NewSalesRouter serves the sales gateway under SalesPrefix
func NewSalesRouter(gateway *appsales.Gateway, opts Options) *gin.Engine {
	engine := NewEngine(opts)
	NewRouter(engine, WithPrefix(SalesPrefix)).
		Register(handler.NewSalesGatewayHandler(gateway)).
		Setup()
	return engine
}
