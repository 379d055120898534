package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delphinium/delphinium/infrastructure/service/logger"
)

func TestNewRateLimitService_DisabledIsNoop(t *testing.T) {
	svc := NewRateLimitService(RateLimitConfig{Enabled: false}, nil, logger.NewNopLogger())
	ctx := context.Background()

	ok, err := svc.CheckLimit(ctx, "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, svc.Increment(ctx, "ip:1.2.3.4", time.Minute))
	blocked, err := svc.IsBlocked(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestRateLimitService_Redis(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	key := "ip:test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.Del(ctx, counterKey(key), blockKey(key)) })

	svc := NewRateLimitService(RateLimitConfig{Enabled: true, IPAttempts: 2, IPWindow: time.Minute}, client, logger.NewNopLogger())

	for i := 0; i < 2; i++ {
		ok, err := svc.CheckLimit(ctx, key, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, svc.Increment(ctx, key, time.Minute))
	}
	ok, err := svc.CheckLimit(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Block(ctx, key, time.Minute, "test"))
	blocked, err := svc.IsBlocked(ctx, key)
	require.NoError(t, err)
	assert.True(t, blocked)
}
