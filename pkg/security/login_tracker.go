package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-recruiting-platform/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before a block
	AttemptWindow time.Duration // window the counter lives for
	BlockDuration time.Duration
	UseIPTracking bool
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
		UseIPTracking: true,
	}
}

// LoginTracker counts failed logins in Redis and blocks the email (and IP)
// once MaxAttempts is reached. Without Redis it fails open.
type LoginTracker struct {
	config LoginTrackerConfig
	logger *SecurityLogger
	client func() *goredis.Client
}

func NewLoginTracker(config LoginTrackerConfig, logger *SecurityLogger) *LoginTracker {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{config: config, logger: logger, client: redis.Client}
}

const (
	failLoginUserPrefix    = "fail:login:user:"
	failLoginIPPrefix      = "fail:login:ip:"
	blockedLoginUserPrefix = "blocked:login:user:"
	blockedLoginIPPrefix   = "blocked:login:ip:"
)

// KEYS[1] counter, ARGV[1] ttl seconds. Returns the count after INCR.
var incrWithTTL = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (lt *LoginTracker) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	client := lt.client()
	if client == nil {
		return false, nil
	}

	keys := []string{blockedLoginUserPrefix + normalizeEmail(email)}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, blockedLoginIPPrefix+ip)
	}
	n, err := client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	return n > 0, nil
}

// RecordFailedAttempt returns whether the attempt created a block and the
// current attempt count for the email.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error) {
	lt.logger.LogLoginFailed(ctx, email, ip, userAgent, requestID, "invalid_credentials")

	client := lt.client()
	if client == nil {
		return false, 0, nil
	}

	email = normalizeEmail(email)
	ttlSeconds := int(lt.config.AttemptWindow.Seconds())

	userCount, err := incrWithTTL.Run(ctx, client, []string{failLoginUserPrefix + email}, ttlSeconds).Int()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment user counter: %w", err)
	}
	if lt.config.UseIPTracking && ip != "" {
		_ = incrWithTTL.Run(ctx, client, []string{failLoginIPPrefix + ip}, ttlSeconds).Err()
	}

	if userCount < lt.config.MaxAttempts {
		return false, userCount, nil
	}
	if err := lt.createBlock(ctx, client, email, ip, requestID); err != nil {
		return true, userCount, fmt.Errorf("failed to create block: %w", err)
	}
	lt.logger.LogLoginBlocked(ctx, email, ip, userAgent, requestID)
	return true, userCount, nil
}

func (lt *LoginTracker) createBlock(ctx context.Context, client *goredis.Client, email, ip, requestID string) error {
	if client == nil {
		return errors.New("redis not available")
	}
	ttl := lt.config.BlockDuration

	if err := client.Set(ctx, blockedLoginUserPrefix+email, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set user block: %w", err)
	}
	if lt.config.UseIPTracking && ip != "" {
		if err := client.Set(ctx, blockedLoginIPPrefix+ip, "1", ttl).Err(); err != nil {
			lt.logger.zapLogger.Warn("failed to set IP block", zap.Error(err))
		}
	}

	lt.logger.LogBlockCreated(ctx, "email", email, ip, requestID, int(ttl.Minutes()))
	return nil
}

// ClearAttempts resets the counters after a successful login.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email, ip string) error {
	client := lt.client()
	if client == nil {
		return nil
	}

	if err := client.Del(ctx, failLoginUserPrefix+normalizeEmail(email)).Err(); err != nil {
		return fmt.Errorf("failed to clear user attempts: %w", err)
	}
	if lt.config.UseIPTracking && ip != "" {
		_ = client.Del(ctx, failLoginIPPrefix+ip).Err()
	}
	return nil
}
