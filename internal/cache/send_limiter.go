package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"donorhub/internal/logger"
)

const (
	cooldownPrefix  = "otp_cooldown:"
	hourlyCapPrefix = "otp_hourly:"
)

// SendLimiter throttles OTP emails per (email, purpose): a fixed cooldown
// between sends plus a rolling hourly cap. A Redis outage degrades open —
// issuance must not be blocked by the limiter being unreachable.
type SendLimiter struct {
	client   *redis.Client
	cooldown time.Duration
	cap      int
}

func NewSendLimiter(client *redis.Client, cooldown time.Duration, hourlyCap int) *SendLimiter {
	return &SendLimiter{
		client:   client,
		cooldown: cooldown,
		cap:      hourlyCap,
	}
}

// Allow checks the cooldown and hourly cap for the key. It returns
// (allowed, withinCooldown): callers distinguish the two refusal
// reasons for the client-facing message.
func (l *SendLimiter) Allow(ctx context.Context, email, purpose string) (bool, bool) {
	key := email + ":" + purpose

	ok, err := l.client.SetNX(ctx, cooldownPrefix+key, "1", l.cooldown).Result()
	if err != nil {
		logger.Get().Warn("otp send limiter unreachable, allowing send",
			zap.String("email", email), zap.Error(err))
		return true, false
	}
	if !ok {
		return false, true
	}

	count, err := l.client.Incr(ctx, hourlyCapPrefix+key).Result()
	if err != nil {
		logger.Get().Warn("otp hourly counter unreachable, allowing send",
			zap.String("email", email), zap.Error(err))
		return true, false
	}
	if count == 1 {
		l.client.Expire(ctx, hourlyCapPrefix+key, time.Hour)
	}

	return count <= int64(l.cap), false
}
