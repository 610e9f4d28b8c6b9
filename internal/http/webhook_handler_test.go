package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wabot/internal/domain"
	"wabot/internal/whatsapp"
)

type mockProcessor struct {
	messages []whatsapp.IncomingMessage
	statuses []whatsapp.StatusUpdate
}

func (m *mockProcessor) ProcessMessage(_ context.Context, msg whatsapp.IncomingMessage, _ whatsapp.ChangeValue) {
	m.messages = append(m.messages, msg)
}

func (m *mockProcessor) ProcessStatus(_ context.Context, status whatsapp.StatusUpdate) {
	m.statuses = append(m.statuses, status)
}

func setupWebhookRouter(verifyToken, appSecret string, processor Processor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	webhookH := NewWebhookHandler(logger, verifyToken, processor)
	healthH := NewHealthHandler(logger, "test", nil, nil)
	adminH := NewAdminHandler(logger, &mockMessageRepo{}, &mockUserRepo{byPhone: map[string]domain.User{}})
	return NewRouter(logger, appSecret, webhookH, healthH, adminH)
}

func performRequest(r http.Handler, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func webhookBody(messages []whatsapp.IncomingMessage, statuses []whatsapp.StatusUpdate) []byte {
	payload := whatsapp.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []whatsapp.Entry{
			{
				ID: "123456789",
				Changes: []whatsapp.Change{
					{
						Field: "messages",
						Value: whatsapp.ChangeValue{
							MessagingProduct: "whatsapp",
							Messages:         messages,
							Statuses:         statuses,
						},
					},
				},
			},
		},
	}
	body, _ := json.Marshal(payload)
	return body
}

func TestWebhookVerifyEchoesChallenge(t *testing.T) {
	r := setupWebhookRouter("secret-token", "", &mockProcessor{})

	rec := performRequest(r, http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=challenge-42", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "challenge-42" {
		t.Fatalf("expected challenge echoed, got %q", rec.Body.String())
	}
}

func TestWebhookVerifyRejectsWrongToken(t *testing.T) {
	r := setupWebhookRouter("secret-token", "", &mockProcessor{})

	rec := performRequest(r, http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=challenge-42", nil, nil)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestWebhookVerifyRejectsWrongMode(t *testing.T) {
	r := setupWebhookRouter("secret-token", "", &mockProcessor{})

	rec := performRequest(r, http.MethodGet,
		"/webhook?hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=x", nil, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWebhookReceiveDispatchesMessages(t *testing.T) {
	processor := &mockProcessor{}
	r := setupWebhookRouter("secret-token", "", processor)

	body := webhookBody([]whatsapp.IncomingMessage{
		{
			From: "5215550001",
			ID:   "wamid.1",
			Type: "text",
			Text: &whatsapp.IncomingText{Body: "hello"},
		},
	}, nil)
	rec := performRequest(r, http.MethodPost, "/webhook", body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(processor.messages) != 1 || processor.messages[0].ID != "wamid.1" {
		t.Fatalf("expected one message dispatched, got %+v", processor.messages)
	}
}

func TestWebhookReceiveDispatchesStatuses(t *testing.T) {
	processor := &mockProcessor{}
	r := setupWebhookRouter("secret-token", "", processor)

	body := webhookBody(nil, []whatsapp.StatusUpdate{
		{ID: "wamid.9", Status: "delivered", Timestamp: "1700000000"},
	})
	rec := performRequest(r, http.MethodPost, "/webhook", body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(processor.statuses) != 1 || processor.statuses[0].Status != "delivered" {
		t.Fatalf("expected one status dispatched, got %+v", processor.statuses)
	}
}

func TestWebhookReceiveEmptyBodyAcknowledged(t *testing.T) {
	processor := &mockProcessor{}
	r := setupWebhookRouter("secret-token", "", processor)

	rec := performRequest(r, http.MethodPost, "/webhook", []byte(`{}`), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("expected ok acknowledgment, got %q", rec.Body.String())
	}
	if len(processor.messages) != 0 || len(processor.statuses) != 0 {
		t.Fatalf("expected nothing dispatched for empty payload")
	}
}

func TestWebhookReceiveMalformedJSONStillAcknowledged(t *testing.T) {
	r := setupWebhookRouter("secret-token", "", &mockProcessor{})

	rec := performRequest(r, http.MethodPost, "/webhook", []byte(`{"entry":`), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 so the provider does not retry, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"error"`) {
		t.Fatalf("expected error acknowledgment, got %q", rec.Body.String())
	}
}
