package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beatshub/interaction-service/internal/api/handler"
	"github.com/beatshub/interaction-service/internal/api/middleware"
	"github.com/beatshub/interaction-service/internal/core/domain"
	"github.com/beatshub/interaction-service/internal/core/ports"
)

// RouterConfig carries everything the route layer needs.
type RouterConfig struct {
	Reports          ports.ReportService
	Mongo            *mongo.Database
	Redis            *redis.Client
	Broker           handler.BrokerProbe
	JWTSecret        string
	ProjectionChecks bool
	Logger           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("interaction"))

	// --- Dependencies ---
	reportHandler := handler.NewReportHandler(cfg.Reports)
	auth := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Moderation report routes ---
	reports := e.Group("/v1/reports", auth)
	reports.POST("", reportHandler.Create)
	reports.GET("/me", reportHandler.ListMine)
	reports.GET("/:id", reportHandler.Get)
	reports.GET("", reportHandler.ListAll, adminOnly)
	reports.GET("/user/:userId", reportHandler.ListByReportedUser, adminOnly)
	reports.PATCH("/:id/state", reportHandler.UpdateState, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.Mongo, cfg.Redis, cfg.Broker, cfg.ProjectionChecks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
