package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/delphinium/delphinium/infrastructure/config"
	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/internal/adapter/persistence"
	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

// app holds the process-wide dependencies shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger logger.Logger
	store  ports.RecordStore
	redis  *redis.Client
}

type tables struct {
	accessRequests *persistence.Table[domain.AccessRequest]
	threads        *persistence.Table[domain.Thread]
	posts          *persistence.Table[domain.BlogPost]
	events         *persistence.Table[domain.CalendarEvent]
	documents      *persistence.Table[domain.Document]
	incidents      *persistence.Table[domain.Incident]
	users          *persistence.Table[domain.User]
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

// bootstrap loads configuration, the logger and the record store.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	log := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "delphinium",
	})

	a := &app{cfg: cfg, logger: log}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var store ports.RecordStore
	switch a.cfg.StoreDriver {
	case config.StoreRedis:
		rs, err := persistence.OpenRedisStore(connectCtx, a.cfg.RedisURL)
		if err != nil {
			return err
		}
		a.redis = rs.Client()
		store = rs
	case config.StoreBolt:
		bs, err := persistence.OpenBoltStore(a.cfg.BoltPath)
		if err != nil {
			return err
		}
		store = bs
	case config.StorePostgres:
		ps, err := persistence.OpenPostgresStore(connectCtx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		store = ps
	case config.StoreMemory:
		store = persistence.NewMemoryStore()
	default:
		return fmt.Errorf("unknown store driver %q", a.cfg.StoreDriver)
	}

	a.logger.Info(ctx, "Record store connected", map[string]interface{}{
		"driver": a.cfg.StoreDriver,
	})
	a.store = persistence.Instrument(store)
	return nil
}

// redisClient returns the store's Redis client, or dials REDIS_URL for the
// limiter and pub/sub notifications. It returns nil when Redis is unreachable.
func (a *app) redisClient(ctx context.Context) *redis.Client {
	if a.redis != nil {
		return a.redis
	}
	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		a.logger.Warn(ctx, "Invalid Redis URL, Redis features disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.logger.Warn(ctx, "Redis unreachable, Redis features disabled", map[string]interface{}{"error": err.Error()})
		_ = client.Close()
		return nil
	}
	a.redis = client
	return client
}

func (a *app) tables() tables {
	t := a.cfg.Tables
	retries := a.cfg.StoreMaxRetries
	return tables{
		accessRequests: persistence.NewTable[domain.AccessRequest](a.store, t.AccessRequests, retries),
		threads:        persistence.NewTable[domain.Thread](a.store, t.Newsgroup, retries),
		posts:          persistence.NewTable[domain.BlogPost](a.store, t.Blog, retries),
		events:         persistence.NewTable[domain.CalendarEvent](a.store, t.Calendar, retries),
		documents:      persistence.NewTable[domain.Document](a.store, t.Documents, retries),
		incidents:      persistence.NewTable[domain.Incident](a.store, t.Incidents, retries),
		users:          persistence.NewTable[domain.User](a.store, t.Users, retries),
	}
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn(context.Background(), "Failed to close record store", map[string]interface{}{"error": err.Error()})
	}
	// RedisStore.Close already closed a shared client.
	if a.redis != nil && a.cfg.StoreDriver != config.StoreRedis {
		_ = a.redis.Close()
	}
}

const bcryptCost = 12
