package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wabot/internal/repository"
)

// AdminHandler exposes read-only views over stored conversations.
type AdminHandler struct {
	logger   *zap.Logger
	messages repository.MessageRepository
	users    repository.UserRepository
}

func NewAdminHandler(logger *zap.Logger, messages repository.MessageRepository, users repository.UserRepository) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		messages: messages,
		users:    users,
	}
}

// Stats handles GET /stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.messages.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("message stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Conversation handles GET /conversations/:phone.
func (h *AdminHandler) Conversation(c *gin.Context) {
	phone := c.Param("phone")

	user, err := h.users.GetByPhone(c.Request.Context(), phone)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown phone"})
		return
	}
	if err != nil {
		h.logger.Error("get user failed", zap.String("phone", phone), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	messages, err := h.messages.ListByPhone(c.Request.Context(), phone, limit)
	if err != nil {
		h.logger.Error("list messages failed", zap.String("phone", phone), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "messages": messages})
}
