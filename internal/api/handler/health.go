package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// BrokerProbe reports broker reachability with a short-lived connection,
// independent of the long-lived consumer.
type BrokerProbe interface {
	Reachable(ctx context.Context) bool
}

// HealthHandler handles GET /health — liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready. MongoDB and Redis are always
// checked; the broker probe only runs when projection checks are enabled,
// since a service with the projection engine switched off has no broker
// dependency to be ready for.
type ReadinessHandler struct {
	mongo            *mongo.Database
	redis            *redis.Client
	broker           BrokerProbe
	projectionChecks bool
}

func NewReadinessHandler(db *mongo.Database, rdb *redis.Client, broker BrokerProbe, projectionChecks bool) *ReadinessHandler {
	return &ReadinessHandler{
		mongo:            db,
		redis:            rdb,
		broker:           broker,
		projectionChecks: projectionChecks,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	// --- MongoDB ping ---
	if err := h.mongo.Client().Ping(ctx, nil); err != nil {
		deps["mongodb"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["mongodb"] = dependencyStatus{Status: "ok"}
	}

	// --- Redis ping ---
	if _, err := h.redis.Ping(ctx).Result(); err != nil {
		deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["redis"] = dependencyStatus{Status: "ok"}
	}

	// --- Projection-dependent checks ---
	if h.projectionChecks {
		if h.broker.Reachable(ctx) {
			deps["broker"] = dependencyStatus{Status: "ok"}
		} else {
			deps["broker"] = dependencyStatus{Status: "unhealthy", Error: "cluster metadata request failed"}
			healthy = false
		}

		if _, err := h.mongo.Collection("track_projections").EstimatedDocumentCount(ctx); err != nil {
			deps["projections"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps["projections"] = dependencyStatus{Status: "ok"}
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
