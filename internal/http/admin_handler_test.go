package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wabot/internal/domain"
	"wabot/internal/repository"
)

type mockMessageRepo struct {
	messages []domain.Message
	stats    domain.MessageStats
}

func (m *mockMessageRepo) Create(_ context.Context, message domain.Message) error {
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockMessageRepo) UpdateStatus(_ context.Context, _, _, _ string) (bool, error) {
	return false, nil
}

func (m *mockMessageRepo) GetByWaID(_ context.Context, _ string) (domain.Message, error) {
	return domain.Message{}, repository.ErrNotFound
}

func (m *mockMessageRepo) ListByPhone(_ context.Context, phone string, _ int) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.Phone == phone {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) Stats(_ context.Context) (domain.MessageStats, error) {
	return m.stats, nil
}

type mockUserRepo struct {
	byPhone map[string]domain.User
}

func (m *mockUserRepo) Upsert(_ context.Context, user domain.User) error {
	m.byPhone[user.Phone] = user
	return nil
}

func (m *mockUserRepo) GetByPhone(_ context.Context, phone string) (domain.User, error) {
	user, ok := m.byPhone[phone]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func setupAdminRouter(messages *mockMessageRepo, users *mockUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	webhookH := NewWebhookHandler(logger, "secret-token", &mockProcessor{})
	healthH := NewHealthHandler(logger, "test", nil, nil)
	adminH := NewAdminHandler(logger, messages, users)
	return NewRouter(logger, "", webhookH, healthH, adminH)
}

func TestStatsEndpoint(t *testing.T) {
	messages := &mockMessageRepo{stats: domain.MessageStats{Total: 5, Incoming: 3, Outgoing: 2}}
	r := setupAdminRouter(messages, &mockUserRepo{byPhone: map[string]domain.User{}})

	rec := performRequest(r, http.MethodGet, "/stats", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total":5`) {
		t.Fatalf("unexpected stats body %q", rec.Body.String())
	}
}

func TestConversationEndpoint(t *testing.T) {
	messages := &mockMessageRepo{
		messages: []domain.Message{
			{ID: "1", Phone: "5215550001", Direction: domain.DirectionIncoming, Type: "text", Body: "hello"},
			{ID: "2", Phone: "5215559999", Direction: domain.DirectionIncoming, Type: "text", Body: "other"},
		},
	}
	users := &mockUserRepo{byPhone: map[string]domain.User{
		"5215550001": {ID: "u1", Phone: "5215550001", ProfileName: "Ana", CreatedAt: time.Now().UTC()},
	}}
	r := setupAdminRouter(messages, users)

	rec := performRequest(r, http.MethodGet, "/conversations/5215550001", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"Ana"`) || !strings.Contains(body, `"hello"`) {
		t.Fatalf("unexpected conversation body %q", body)
	}
	if strings.Contains(body, `"other"`) {
		t.Fatalf("expected only the requested phone's messages, got %q", body)
	}
}

func TestConversationUnknownPhone(t *testing.T) {
	r := setupAdminRouter(&mockMessageRepo{}, &mockUserRepo{byPhone: map[string]domain.User{}})

	rec := performRequest(r, http.MethodGet, "/conversations/0000000000", nil, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
