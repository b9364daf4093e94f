package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/db/mongodb"
	redisdb "github.com/proptycoon/backend/internal/db/redis"
)

// HealthHandler handles health check requests. Probes run through the
// circuit breaker clients so a dead backend fails fast instead of holding
// the request open.
type HealthHandler struct {
	mongoClient *mongodb.CircuitBreakerClient
	redisClient *redisdb.CircuitBreakerClient
	logger      *zap.SugaredLogger
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"responseTimeMs"`
	Error        string `json:"error,omitempty"`
}

// SystemHealth represents the health of the entire system
type SystemHealth struct {
	Status     string                  `json:"status"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mongoClient *mongodb.CircuitBreakerClient, redisClient *redisdb.CircuitBreakerClient, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Liveness is the cheap probe: the process is up and serving.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Check pings every backing service and reports per-component status.
func (h *HealthHandler) Check(c echo.Context) error {
	health := SystemHealth{
		Status:     "healthy",
		Timestamp:  time.Now().Format(time.RFC3339),
		Components: make(map[string]HealthStatus),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	record := func(name string, status HealthStatus) {
		mu.Lock()
		defer mu.Unlock()
		health.Components[name] = status
		if status.Status != "healthy" {
			health.Status = "degraded"
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		record("mongodb", h.checkMongoDB())
	}()
	go func() {
		defer wg.Done()
		record("redis", h.checkRedis())
	}()
	wg.Wait()

	statusCode := http.StatusOK
	if health.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

func (h *HealthHandler) checkMongoDB() HealthStatus {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		h.logger.Warnw("mongodb health check failed", "error", err)
		return HealthStatus{
			Status:       "unhealthy",
			ResponseTime: time.Since(start).Milliseconds(),
			Error:        err.Error(),
		}
	}
	return HealthStatus{
		Status:       "healthy",
		ResponseTime: time.Since(start).Milliseconds(),
	}
}

func (h *HealthHandler) checkRedis() HealthStatus {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx); err != nil {
		h.logger.Warnw("redis health check failed", "error", err)
		return HealthStatus{
			Status:       "unhealthy",
			ResponseTime: time.Since(start).Milliseconds(),
			Error:        err.Error(),
		}
	}
	return HealthStatus{
		Status:       "healthy",
		ResponseTime: time.Since(start).Milliseconds(),
	}
}
