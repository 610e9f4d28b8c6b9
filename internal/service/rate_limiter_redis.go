package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisInboundAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

// RateLimiter caps the number of inbound messages handled per sender.
type RateLimiter interface {
	Allow(phone string) bool
}

type redisInboundRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisInboundRateLimiter builds a fixed-window limiter keyed by sender
// phone number. It fails open on Redis errors so delivery never stalls on a
// cache outage.
func NewRedisInboundRateLimiter(client *redis.Client, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisInboundRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "inbound:rl:",
	}
}

func (l *redisInboundRateLimiter) Allow(phone string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + normalized
	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisInboundAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
