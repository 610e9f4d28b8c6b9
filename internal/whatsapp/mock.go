package whatsapp

import "context"

// SentMessage records one outbound call made through the MockClient.
type SentMessage struct {
	Op   string
	To   string
	Body string
}

// MockClient allows tests without calling the real Cloud API.
type MockClient struct {
	Sent       []SentMessage
	MarkedRead []string
	Err        error
}

func (m *MockClient) record(op, to, body string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Sent = append(m.Sent, SentMessage{Op: op, To: to, Body: body})
	return "wamid.mock", nil
}

func (m *MockClient) SendText(_ context.Context, to, body string, _ bool) (string, error) {
	return m.record("text", to, body)
}

func (m *MockClient) SendImage(_ context.Context, to string, image Media) (string, error) {
	return m.record("image", to, image.Caption)
}

func (m *MockClient) SendDocument(_ context.Context, to string, doc Document) (string, error) {
	return m.record("document", to, doc.Filename)
}

func (m *MockClient) SendButtons(_ context.Context, to, body string, _ []Button, _, _ string) (string, error) {
	return m.record("buttons", to, body)
}

func (m *MockClient) SendList(_ context.Context, to, body, _ string, _ []Section, _, _ string) (string, error) {
	return m.record("list", to, body)
}

func (m *MockClient) SendTemplate(_ context.Context, to, name, _ string, _ []TemplateComponent) (string, error) {
	return m.record("template", to, name)
}

func (m *MockClient) MarkAsRead(_ context.Context, messageID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.MarkedRead = append(m.MarkedRead, messageID)
	return nil
}
