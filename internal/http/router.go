package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configures the gin router with middlewares and routes.
func NewRouter(
	logger *zap.Logger,
	appSecret string,
	webhookH *WebhookHandler,
	healthH *HealthHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/", healthH.Root)
	r.GET("/health", healthH.Health)

	webhook := r.Group("/webhook")
	webhook.GET("", webhookH.Verify)
	webhook.POST("", SignatureMiddleware(appSecret), webhookH.Receive)

	r.GET("/stats", adminH.Stats)
	r.GET("/conversations/:phone", adminH.Conversation)

	return r
}

// zapLoggerMiddleware logs one line per request with zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
