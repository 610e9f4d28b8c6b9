package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wabot/internal/domain"
	"wabot/internal/repository"
	"wabot/internal/whatsapp"
)

const greetingReply = "Hello! Welcome to the WhatsApp bot.\n\nType 'help' to see available commands."

const helpReply = `Available commands:

- hello: greet the bot
- help: show this help message
- menu: show the interactive menu
- buttons: demo button message
- info: bot information

Type any command to get started.`

const infoReply = `Bot information

Name: WhatsApp Bot Starter
Version: 1.0.0

A webhook-driven bot on top of the WhatsApp Cloud API.`

// MessageService processes inbound webhook messages and drives replies.
type MessageService struct {
	logger   *zap.Logger
	wa       whatsapp.Client
	messages repository.MessageRepository
	users    repository.UserRepository
	sessions SessionStore
	limiter  RateLimiter
	maxLen   int
}

func NewMessageService(
	logger *zap.Logger,
	wa whatsapp.Client,
	messages repository.MessageRepository,
	users repository.UserRepository,
	sessions SessionStore,
	limiter RateLimiter,
	maxMessageLength int,
) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxMessageLength <= 0 {
		maxMessageLength = 4096
	}
	return &MessageService{
		logger:   logger,
		wa:       wa,
		messages: messages,
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		maxLen:   maxMessageLength,
	}
}

// ProcessMessage handles one inbound message: rate limit, mark as read,
// persist, then dispatch on the declared type. Errors are logged and
// swallowed so the webhook always acknowledges.
func (s *MessageService) ProcessMessage(ctx context.Context, msg whatsapp.IncomingMessage, value whatsapp.ChangeValue) {
	logger := s.logger.With(
		zap.String("wa_message_id", msg.ID),
		zap.String("from", msg.From),
		zap.String("type", msg.Type),
	)
	logger.Info("processing message")

	limited := s.limiter != nil && !s.limiter.Allow(msg.From)

	if err := s.wa.MarkAsRead(ctx, msg.ID); err != nil {
		logger.Warn("mark as read failed", zap.Error(err))
	}

	s.upsertUser(ctx, msg.From, profileName(value, msg.From))
	s.saveIncoming(ctx, msg)

	if limited {
		logger.Warn("sender over rate limit, dropping message")
		return
	}

	s.touchSession(ctx, msg)

	switch msg.Type {
	case "text":
		s.handleText(ctx, msg)
	case "image":
		s.reply(ctx, msg.From, "I received your image. Image processing is not implemented yet.")
	case "video":
		s.reply(ctx, msg.From, "I received your video.")
	case "audio":
		s.reply(ctx, msg.From, "I received your audio message.")
	case "document":
		filename := "unknown"
		if msg.Document != nil && msg.Document.Filename != "" {
			filename = msg.Document.Filename
		}
		s.reply(ctx, msg.From, "I received your document: "+filename)
	case "location":
		if msg.Location != nil {
			s.reply(ctx, msg.From, fmt.Sprintf("I received your location:\nLat: %v\nLon: %v", msg.Location.Latitude, msg.Location.Longitude))
		}
	case "interactive":
		s.handleInteractive(ctx, msg)
	default:
		logger.Warn("unsupported message type")
	}
}

// ProcessStatus applies a delivery status update to the stored record.
func (s *MessageService) ProcessStatus(ctx context.Context, status whatsapp.StatusUpdate) {
	updated, err := s.messages.UpdateStatus(ctx, status.ID, status.Status, status.Timestamp)
	if err != nil {
		s.logger.Error("update message status failed",
			zap.String("wa_message_id", status.ID),
			zap.Error(err),
		)
		return
	}
	if !updated {
		s.logger.Warn("status update for unknown message", zap.String("wa_message_id", status.ID))
		return
	}
	s.logger.Info("message status updated",
		zap.String("wa_message_id", status.ID),
		zap.String("status", status.Status),
	)
}

func (s *MessageService) handleText(ctx context.Context, msg whatsapp.IncomingMessage) {
	text := ""
	if msg.Text != nil {
		text = strings.TrimSpace(msg.Text.Body)
	}
	command := strings.ToLower(text)

	switch command {
	case "hello", "hi", "hey":
		s.reply(ctx, msg.From, greetingReply)
	case "help":
		s.reply(ctx, msg.From, helpReply)
	case "menu":
		s.sendMenu(ctx, msg.From)
	case "buttons":
		s.sendDemoButtons(ctx, msg.From)
	case "info":
		s.reply(ctx, msg.From, infoReply)
	default:
		s.reply(ctx, msg.From, fmt.Sprintf("I received your message: '%s'\n\nType 'help' to see available commands.", text))
	}
}

func (s *MessageService) handleInteractive(ctx context.Context, msg whatsapp.IncomingMessage) {
	if msg.Interactive == nil {
		return
	}
	switch msg.Interactive.Type {
	case "button_reply":
		if msg.Interactive.ButtonReply != nil {
			s.reply(ctx, msg.From, "You clicked: "+msg.Interactive.ButtonReply.Title)
		}
	case "list_reply":
		if msg.Interactive.ListReply != nil {
			s.reply(ctx, msg.From, "You selected: "+msg.Interactive.ListReply.Title)
		}
	default:
		s.logger.Warn("unsupported interactive type", zap.String("interactive_type", msg.Interactive.Type))
	}
}

func (s *MessageService) sendMenu(ctx context.Context, to string) {
	sections := []whatsapp.Section{
		{
			Title: "Main Menu",
			Rows: []whatsapp.Reply{
				{ID: "option_1", Title: "Option 1", Description: "Description for option 1"},
				{ID: "option_2", Title: "Option 2", Description: "Description for option 2"},
				{ID: "option_3", Title: "Option 3", Description: "Description for option 3"},
			},
		},
	}
	waID, err := s.wa.SendList(ctx, to, "Select an option from the menu:", "View Options", sections, "", "")
	if err != nil {
		s.logger.Error("send list failed", zap.String("to", to), zap.Error(err))
		return
	}
	s.saveOutgoing(ctx, waID, to, "interactive", "Select an option from the menu:")
}

func (s *MessageService) sendDemoButtons(ctx context.Context, to string) {
	buttons := []whatsapp.Button{
		{ID: "btn_1", Title: "Button 1"},
		{ID: "btn_2", Title: "Button 2"},
		{ID: "btn_3", Title: "Button 3"},
	}
	waID, err := s.wa.SendButtons(ctx, to, "Choose an action:", buttons, "Demo Buttons", "Select one option")
	if err != nil {
		s.logger.Error("send buttons failed", zap.String("to", to), zap.Error(err))
		return
	}
	s.saveOutgoing(ctx, waID, to, "interactive", "Choose an action:")
}

func (s *MessageService) reply(ctx context.Context, to, body string) {
	if len(body) > s.maxLen {
		body = body[:s.maxLen]
	}
	waID, err := s.wa.SendText(ctx, to, body, false)
	if err != nil {
		s.logger.Error("send text failed", zap.String("to", to), zap.Error(err))
		return
	}
	s.saveOutgoing(ctx, waID, to, "text", body)
}

func (s *MessageService) saveIncoming(ctx context.Context, msg whatsapp.IncomingMessage) {
	body := incomingBody(msg)
	if len(body) > s.maxLen {
		body = body[:s.maxLen]
	}
	record := domain.Message{
		ID:          uuid.NewString(),
		WaMessageID: msg.ID,
		Phone:       msg.From,
		Direction:   domain.DirectionIncoming,
		Type:        msg.Type,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, record); err != nil {
		s.logger.Error("save incoming message failed", zap.String("wa_message_id", msg.ID), zap.Error(err))
	}
}

func (s *MessageService) saveOutgoing(ctx context.Context, waID, to, msgType, body string) {
	record := domain.Message{
		ID:          uuid.NewString(),
		WaMessageID: waID,
		Phone:       to,
		Direction:   domain.DirectionOutgoing,
		Type:        msgType,
		Body:        body,
		Status:      domain.StatusAccepted,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, record); err != nil {
		s.logger.Error("save outgoing message failed", zap.String("to", to), zap.Error(err))
	}
}

func (s *MessageService) upsertUser(ctx context.Context, phone, name string) {
	now := time.Now().UTC()
	user := domain.User{
		ID:          uuid.NewString(),
		Phone:       phone,
		ProfileName: name,
		LastSeenAt:  now,
		CreatedAt:   now,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Error("upsert user failed", zap.String("phone", phone), zap.Error(err))
	}
}

func (s *MessageService) touchSession(ctx context.Context, msg whatsapp.IncomingMessage) {
	if s.sessions == nil {
		return
	}
	sess, _, err := s.sessions.Get(ctx, msg.From)
	if err != nil {
		s.logger.Warn("load session failed", zap.String("phone", msg.From), zap.Error(err))
	}
	sess.Phone = msg.From
	sess.MessageCount++
	sess.UpdatedAt = time.Now().UTC()
	if msg.Type == "text" && msg.Text != nil {
		sess.LastCommand = strings.ToLower(strings.TrimSpace(msg.Text.Body))
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Warn("save session failed", zap.String("phone", msg.From), zap.Error(err))
	}
}

func incomingBody(msg whatsapp.IncomingMessage) string {
	switch msg.Type {
	case "text":
		if msg.Text != nil {
			return msg.Text.Body
		}
	case "image":
		if msg.Image != nil {
			return msg.Image.Caption
		}
	case "video":
		if msg.Video != nil {
			return msg.Video.Caption
		}
	case "document":
		if msg.Document != nil {
			return msg.Document.Filename
		}
	case "location":
		if msg.Location != nil {
			return fmt.Sprintf("%v,%v", msg.Location.Latitude, msg.Location.Longitude)
		}
	case "interactive":
		if msg.Interactive != nil {
			if msg.Interactive.ButtonReply != nil {
				return msg.Interactive.ButtonReply.Title
			}
			if msg.Interactive.ListReply != nil {
				return msg.Interactive.ListReply.Title
			}
		}
	}
	return ""
}

func profileName(value whatsapp.ChangeValue, waID string) string {
	for _, contact := range value.Contacts {
		if contact.WaID == waID {
			return contact.Profile.Name
		}
	}
	return ""
}
