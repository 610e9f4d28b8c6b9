package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wabot/internal/domain"
)

func setupHealthRouter(dbPing, redisPing func(ctx context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	webhookH := NewWebhookHandler(logger, "secret-token", &mockProcessor{})
	healthH := NewHealthHandler(logger, "test", dbPing, redisPing)
	adminH := NewAdminHandler(logger, &mockMessageRepo{}, &mockUserRepo{byPhone: map[string]domain.User{}})
	return NewRouter(logger, "", webhookH, healthH, adminH)
}

func TestHealthOK(t *testing.T) {
	r := setupHealthRouter(
		func(context.Context) error { return nil },
		func(context.Context) error { return nil },
	)

	rec := performRequest(r, http.MethodGet, "/health", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Fatalf("expected healthy status, got %q", rec.Body.String())
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	r := setupHealthRouter(
		func(context.Context) error { return errors.New("connection refused") },
		nil,
	)

	rec := performRequest(r, http.MethodGet, "/health", nil, nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestHealthRedisDownStaysHealthy(t *testing.T) {
	r := setupHealthRouter(
		func(context.Context) error { return nil },
		func(context.Context) error { return errors.New("redis down") },
	)

	rec := performRequest(r, http.MethodGet, "/health", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":"disconnected"`) {
		t.Fatalf("expected redis reported disconnected, got %q", rec.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	r := setupHealthRouter(nil, nil)

	rec := performRequest(r, http.MethodGet, "/", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "WhatsApp Bot API") {
		t.Fatalf("unexpected root body %q", rec.Body.String())
	}
}
