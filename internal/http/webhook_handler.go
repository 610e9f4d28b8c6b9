package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wabot/internal/whatsapp"
)

// Processor handles parsed webhook messages and status updates.
type Processor interface {
	ProcessMessage(ctx context.Context, msg whatsapp.IncomingMessage, value whatsapp.ChangeValue)
	ProcessStatus(ctx context.Context, status whatsapp.StatusUpdate)
}

// WebhookHandler receives the Cloud API verification handshake and message
// deliveries.
type WebhookHandler struct {
	logger      *zap.Logger
	verifyToken string
	processor   Processor
}

func NewWebhookHandler(logger *zap.Logger, verifyToken string, processor Processor) *WebhookHandler {
	return &WebhookHandler{
		logger:      logger,
		verifyToken: verifyToken,
		processor:   processor,
	}
}

// Verify handles GET /webhook, the registration handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	h.logger.Info("webhook verification request", zap.String("mode", mode))

	if mode != "subscribe" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hub.mode"})
		return
	}
	if token != h.verifyToken {
		h.logger.Warn("webhook verification failed: invalid token")
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid verify token"})
		return
	}

	h.logger.Info("webhook verified")
	c.String(http.StatusOK, challenge)
}

// Receive handles POST /webhook. It always acknowledges with 200 so the
// provider does not retry delivery.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload whatsapp.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Error("decode webhook payload failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "error"})
		return
	}

	ctx := c.Request.Context()
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				h.processor.ProcessMessage(ctx, msg, change.Value)
			}
			for _, status := range change.Value.Statuses {
				h.processor.ProcessStatus(ctx, status)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
