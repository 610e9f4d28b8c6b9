package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session keeps lightweight conversational context per phone number. It
// expires after the configured session timeout without inbound traffic.
type Session struct {
	Phone        string    `json:"phone"`
	LastCommand  string    `json:"last_command,omitempty"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionStore persists sessions keyed by phone number.
type SessionStore interface {
	Get(ctx context.Context, phone string) (Session, bool, error)
	Save(ctx context.Context, session Session) error
}

type memorySessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]Session
}

// NewMemorySessionStore is the fallback when Redis is not configured.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &memorySessionStore{
		ttl:   ttl,
		items: make(map[string]Session),
	}
}

func (s *memorySessionStore) Get(_ context.Context, phone string) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[phone]
	if !ok {
		return Session{}, false, nil
	}
	if time.Now().UTC().After(sess.UpdatedAt.Add(s.ttl)) {
		delete(s.items, phone)
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *memorySessionStore) Save(_ context.Context, session Session) error {
	if strings.TrimSpace(session.Phone) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.Phone] = session
	return nil
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisSessionStore stores sessions as JSON blobs with the session TTL.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisSessionStore{
		client: client,
		ttl:    ttl,
		prefix: "session:",
	}
}

func (s *redisSessionStore) Get(ctx context.Context, phone string) (Session, bool, error) {
	if strings.TrimSpace(phone) == "" {
		return Session{}, false, nil
	}
	raw, err := s.client.Get(ctx, s.prefix+phone).Result()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

func (s *redisSessionStore) Save(ctx context.Context, session Session) error {
	if strings.TrimSpace(session.Phone) == "" {
		return nil
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+session.Phone, raw, s.ttl).Err()
}
