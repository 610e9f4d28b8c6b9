package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	logger      *zap.Logger
	environment string
	dbPing      func(ctx context.Context) error
	redisPing   func(ctx context.Context) error
}

func NewHealthHandler(logger *zap.Logger, environment string, dbPing, redisPing func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{
		logger:      logger,
		environment: environment,
		dbPing:      dbPing,
		redisPing:   redisPing,
	}
}

// Root handles GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "WhatsApp Bot API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// Health handles GET /health. It reports 503 when the database is
// unreachable; Redis is optional and only reported.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "connected"
	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			h.logger.Error("health check: db ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
			return
		}
	}

	redisStatus := "not configured"
	if h.redisPing != nil {
		redisStatus = "connected"
		if err := h.redisPing(ctx); err != nil {
			h.logger.Warn("health check: redis ping failed", zap.Error(err))
			redisStatus = "disconnected"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"database":    dbStatus,
		"redis":       redisStatus,
		"environment": h.environment,
	})
}
