package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/uniedit/fintoc-gateway/cmd/server/docs" // swagger docs
	ginadapter "github.com/uniedit/fintoc-gateway/internal/adapter/inbound/gin"
	"github.com/uniedit/fintoc-gateway/internal/infra/auth"
	"github.com/uniedit/fintoc-gateway/internal/infra/config"
	"github.com/uniedit/fintoc-gateway/internal/infra/wire"
	"github.com/uniedit/fintoc-gateway/internal/utils/middleware"
)

const webhookSyncTimeout = 30 * time.Second

// App represents the application.
type App struct {
	deps    *wire.Dependencies
	router  *gin.Engine
	cleanup func()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := wire.InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	app := &App{
		deps:    deps,
		router:  newRouter(deps),
		cleanup: cleanup,
	}

	if cfg.Fintoc.SyncWebhookOnStart {
		app.syncWebhookEndpoint()
	}

	return app, nil
}

// syncWebhookEndpoint registers the webhook endpoint at Fintoc. Failures are logged
// and do not prevent startup; the admin sync route can be retried later.
func (a *App) syncWebhookEndpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), webhookSyncTimeout)
	defer cancel()

	endpoint, err := a.deps.FintocDomain.SyncWebhookEndpoint(ctx)
	if err != nil {
		a.deps.ZapLogger.Warn("fintoc webhook endpoint sync failed", zap.Error(err))
		return
	}
	a.deps.ZapLogger.Info("fintoc webhook endpoint ready", zap.String("endpoint_id", endpoint.EndpointID))
}

// newRouter creates the Gin router and registers all routes.
func newRouter(deps *wire.Dependencies) *gin.Engine {
	cfg := deps.Config

	// Set Gin mode based on environment
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(deps.Logger, "/health", "/metrics"))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	// Public routes called by Fintoc and returning customers
	var returnMiddleware []gin.HandlerFunc
	if deps.RateLimiter != nil {
		returnMiddleware = append(returnMiddleware,
			middleware.RateLimitByIP(deps.RateLimiter, cfg.RateLimit.Limit, cfg.RateLimit.Window))
	}
	ginadapter.RegisterFintocWebhookRoutes(r, deps.WebhookRoutes, returnMiddleware...)

	// Admin API
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RequireScope(deps.JWTManager, auth.ScopeAdmin))
	v1.Use(middleware.Idempotency(deps.IdempotencyStore, middleware.IdempotencyConfig{
		TTL:     cfg.Idempotency.TTL,
		Metrics: deps.Metrics,
	}))
	ginadapter.RegisterFintocAdminRoutes(v1, deps.AdminRoutes)

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application zap logger.
func (a *App) Logger() *zap.Logger {
	return a.deps.ZapLogger
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	if a.cleanup != nil {
		a.cleanup()
	}
}
