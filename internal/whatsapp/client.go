package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client defines the outbound operations against the WhatsApp Cloud API.
type Client interface {
	SendText(ctx context.Context, to, body string, previewURL bool) (string, error)
	SendImage(ctx context.Context, to string, image Media) (string, error)
	SendDocument(ctx context.Context, to string, doc Document) (string, error)
	SendButtons(ctx context.Context, to, body string, buttons []Button, header, footer string) (string, error)
	SendList(ctx context.Context, to, body, buttonText string, sections []Section, header, footer string) (string, error)
	SendTemplate(ctx context.Context, to, name, language string, components []TemplateComponent) (string, error)
	MarkAsRead(ctx context.Context, messageID string) error
}

// HTTPClient implements Client against graph.facebook.com.
type HTTPClient struct {
	messagesURL string
	token       string
	client      *http.Client
	logger      *zap.Logger
}

// NewHTTPClient builds a client pointed at
// {baseURL}/{apiVersion}/{phoneNumberID}/messages.
func NewHTTPClient(baseURL, apiVersion, phoneNumberID, token string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		messagesURL: fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(baseURL, "/"), apiVersion, phoneNumberID),
		token:       token,
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

func (c *HTTPClient) SendText(ctx context.Context, to, body string, previewURL bool) (string, error) {
	return c.send(ctx, &outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &outboundText{PreviewURL: previewURL, Body: body},
	})
}

func (c *HTTPClient) SendImage(ctx context.Context, to string, image Media) (string, error) {
	if image.Link == "" && image.ID == "" {
		return "", fmt.Errorf("whatsapp: image needs a link or a media id")
	}
	return c.send(ctx, &outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "image",
		Image:            &outboundMedia{Link: image.Link, ID: image.ID, Caption: image.Caption},
	})
}

func (c *HTTPClient) SendDocument(ctx context.Context, to string, doc Document) (string, error) {
	if doc.Link == "" && doc.ID == "" {
		return "", fmt.Errorf("whatsapp: document needs a link or a media id")
	}
	return c.send(ctx, &outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "document",
		Document:         &outboundDocument{Link: doc.Link, ID: doc.ID, Filename: doc.Filename, Caption: doc.Caption},
	})
}

func (c *HTTPClient) SendButtons(ctx context.Context, to, body string, buttons []Button, header, footer string) (string, error) {
	if len(buttons) == 0 || len(buttons) > 3 {
		return "", fmt.Errorf("whatsapp: between 1 and 3 buttons required, got %d", len(buttons))
	}
	action := &interactiveAction{}
	for _, b := range buttons {
		action.Buttons = append(action.Buttons, interactiveButton{
			Type:  "reply",
			Reply: Reply{ID: b.ID, Title: b.Title},
		})
	}
	interactive := &outboundInteractive{
		Type:   "button",
		Body:   &interactiveText{Text: body},
		Action: action,
	}
	if header != "" {
		interactive.Header = &interactiveHeader{Type: "text", Text: header}
	}
	if footer != "" {
		interactive.Footer = &interactiveText{Text: footer}
	}
	return c.send(ctx, &outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive:      interactive,
	})
}

func (c *HTTPClient) SendList(ctx context.Context, to, body, buttonText string, sections []Section, header, footer string) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("whatsapp: list needs at least one section")
	}
	interactive := &outboundInteractive{
		Type:   "list",
		Body:   &interactiveText{Text: body},
		Action: &interactiveAction{Button: buttonText, Sections: sections},
	}
	if header != "" {
		interactive.Header = &interactiveHeader{Type: "text", Text: header}
	}
	if footer != "" {
		interactive.Footer = &interactiveText{Text: footer}
	}
	return c.send(ctx, &outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive:      interactive,
	})
}

func (c *HTTPClient) SendTemplate(ctx context.Context, to, name, language string, components []TemplateComponent) (string, error) {
	if language == "" {
		language = "en_US"
	}
	return c.send(ctx, &outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "template",
		Template: &outboundTemplate{
			Name:       name,
			Language:   templateLanguage{Code: language},
			Components: components,
		},
	})
}

func (c *HTTPClient) MarkAsRead(ctx context.Context, messageID string) error {
	_, err := c.send(ctx, &outboundMessage{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	})
	return err
}

func (c *HTTPClient) send(ctx context.Context, msg *outboundMessage) (string, error) {
	bodyBytes, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messagesURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var er errorResponse
		if jsonErr := json.Unmarshal(respBody, &er); jsonErr == nil && er.Error.Message != "" {
			c.logger.Error("whatsapp api error",
				zap.Int("status", resp.StatusCode),
				zap.Int("code", er.Error.Code),
				zap.String("fbtrace_id", er.Error.FbtraceID),
			)
			return "", fmt.Errorf("whatsapp api error: %s (code=%d)", er.Error.Message, er.Error.Code)
		}
		return "", fmt.Errorf("whatsapp http error: status=%d", resp.StatusCode)
	}

	var sr sendResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(sr.Messages) == 0 {
		return "", nil
	}
	return sr.Messages[0].ID, nil
}
