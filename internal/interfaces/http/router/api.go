package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hawaiibiz/intel/internal/infrastructure/auth"
	"github.com/hawaiibiz/intel/internal/infrastructure/config"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"github.com/hawaiibiz/intel/internal/interfaces/http/dto"
	"github.com/hawaiibiz/intel/internal/interfaces/http/handler"
	"github.com/hawaiibiz/intel/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the endpoint handlers mounted by New
type Handlers struct {
	Health     *handler.HealthHandler
	Business   *handler.BusinessHandler
	Collection *handler.CollectionHandler
	Prospect   *handler.ProspectHandler
	Analytics  *handler.AnalyticsHandler
}

// Options configures the engine built by New
type Options struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Swagger     config.SwaggerConfig
	Tracing     bool
	Profiling   bool
	Meter       metric.Meter // nil disables HTTP metrics
	JWT         *auth.JWTService
	Logger      *zap.Logger
}

// New builds the gin engine with the middleware stack and every route.
// ctx bounds background work such as rate limiter eviction.
func New(ctx context.Context, opts Options, h Handlers) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.JWT == nil {
		opts.JWT = auth.NewJWTService(config.JWTConfig{})
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			return nil, err
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(opts.Meter)
	if err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(opts.ServiceName, opts.Tracing),
		middleware.SpanEnricher(),
		httpMetrics,
		middleware.Profiling(opts.Profiling),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)
	if opts.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(ctx, opts.HTTP.RateLimitRequests, opts.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", opts.HTTP.RateLimitRequests),
			zap.Duration("window", opts.HTTP.RateLimitWindow),
		)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	engine.GET("/health", h.Health.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    opts.Swagger.Enabled,
			AllowedIPs: opts.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, g := range DomainGroups(h, middleware.RequireRole(opts.JWT, auth.RoleOperator, log)) {
		r.Register(g)
	}
	r.Setup()

	if !opts.JWT.Enabled() {
		log.Warn("No JWT secret configured; mutating endpoints will reject every request")
	}
	return engine, nil
}

// DomainGroups returns the API route groups. operator guards the routes
// that change pipeline state.
func DomainGroups(h Handlers, operator gin.HandlerFunc) []*DomainGroup {
	businesses := NewDomainGroup("businesses", "/businesses").
		GET("", h.Business.List).
		GET("/:id", h.Business.Get)

	collection := NewDomainGroup("collection", "/collection").
		POST("/runs", operator, h.Collection.TriggerRun).
		GET("/runs", h.Collection.ListRuns).
		GET("/runs/:id", h.Collection.GetRun).
		GET("/sources", h.Collection.Sources)

	prospects := NewDomainGroup("prospects", "/prospects").
		GET("", h.Prospect.List).
		POST("/:id/rescore", operator, h.Prospect.Rescore)

	analytics := NewDomainGroup("analytics", "/analytics").
		GET("/summary", h.Analytics.Summary)

	return []*DomainGroup{businesses, collection, prospects, analytics}
}
