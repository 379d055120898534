package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/delphinium/delphinium/infrastructure/service/logger"
)

// RateLimitService counts attempts per key in fixed windows and blocks abusive keys.
type RateLimitService interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) error
	Block(ctx context.Context, key string, duration time.Duration, reason string) error
	IsBlocked(ctx context.Context, key string) (bool, error)
	GetAttempts(ctx context.Context, key string) (int, error)
}

// rateLimitService implements RateLimitService with Redis counters.
type rateLimitService struct {
	redisClient *redis.Client
	logger      logger.Logger
}

// RateLimitConfig configures the limiter applied to public endpoints.
type RateLimitConfig struct {
	Enabled       bool
	IPAttempts    int
	IPWindow      time.Duration
	BlockDuration time.Duration
}

// NewRateLimitService returns a Redis-backed limiter, or a no-op one when disabled or client is nil.
func NewRateLimitService(config RateLimitConfig, client *redis.Client, log logger.Logger) RateLimitService {
	if !config.Enabled || client == nil {
		log.Info(context.Background(), "Rate limiting disabled", nil)
		return NewNoopRateLimitService()
	}

	log.Info(context.Background(), "Rate limiting service initialized", map[string]interface{}{
		"ip_attempts":    config.IPAttempts,
		"ip_window":      config.IPWindow.String(),
		"block_duration": config.BlockDuration.String(),
	})

	return &rateLimitService{
		redisClient: client,
		logger:      log,
	}
}

// NewNoopRateLimitService returns a limiter that allows everything.
func NewNoopRateLimitService() RateLimitService {
	return &noopRateLimitService{}
}

func counterKey(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

func blockKey(key string) string {
	return fmt.Sprintf("ratelimit:blocked:%s", key)
}

// CheckLimit reports whether key is still under limit.
func (s *rateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	currentCount, err := s.GetAttempts(ctx, key)
	if err != nil {
		return false, err
	}

	isUnderLimit := currentCount < limit
	s.logger.Debug(ctx, "Rate limit check", map[string]interface{}{
		"key":         key,
		"current":     currentCount,
		"limit":       limit,
		"under_limit": isUnderLimit,
	})

	return isUnderLimit, nil
}

// Increment bumps the counter of key and restarts its window.
func (s *rateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	pipeline := s.redisClient.TxPipeline()
	incrCmd := pipeline.Incr(ctx, counterKey(key))
	pipeline.Expire(ctx, counterKey(key), window)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.Error(ctx, "Failed to increment rate limit counter", err, nil)
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}

	s.logger.Debug(ctx, "Rate limit incremented", map[string]interface{}{
		"key":    key,
		"count":  incrCmd.Val(),
		"window": window.String(),
	})
	return nil
}

// Block rejects key for duration.
func (s *rateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	blockData := map[string]interface{}{
		"reason":         reason,
		"blocked_at":     time.Now().Unix(),
		"duration":       duration.Seconds(),
		"correlation_id": logger.CorrelationIDFromContext(ctx),
	}

	pipeline := s.redisClient.TxPipeline()
	pipeline.HSet(ctx, blockKey(key), blockData)
	pipeline.Expire(ctx, blockKey(key), duration)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.Error(ctx, "Failed to block key", err, nil)
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.logger.Warn(ctx, "Key blocked due to rate limit exceeded", map[string]interface{}{
		"key":      key,
		"duration": duration.String(),
		"reason":   reason,
	})
	return nil
}

// IsBlocked reports whether key is currently blocked.
func (s *rateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, blockKey(key)).Result()
	if err != nil {
		s.logger.Error(ctx, "Failed to check block status", err, nil)
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}

// GetAttempts returns the attempts of key in the current window.
func (s *rateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	count, err := s.redisClient.Get(ctx, counterKey(key)).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		s.logger.Error(ctx, "Failed to get attempts count", err, nil)
		return 0, fmt.Errorf("failed to get attempts: %w", err)
	}
	return count, nil
}

// noopRateLimitService is used when rate limiting is disabled.
type noopRateLimitService struct{}

func (n *noopRateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

func (n *noopRateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	return nil
}

func (n *noopRateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	return nil
}

func (n *noopRateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func (n *noopRateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	return 0, nil
}
