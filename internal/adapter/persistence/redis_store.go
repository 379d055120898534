package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/delphinium/delphinium/internal/ports"
)

// tablesKey is the set of provisioned table names.
const tablesKey = "delphinium:tables"

// RedisStore keeps each record in a hash (data, version) and indexes ids per table in a set.
type RedisStore struct {
	client *redis.Client
	known  sync.Map
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedisStore parses redisURL, connects and pings.
func OpenRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(client), nil
}

// Client exposes the underlying client so other Redis-backed services can share it.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func recordKey(table, id string) string {
	return fmt.Sprintf("%s:record:%s", table, id)
}

func idsKey(table string) string {
	return fmt.Sprintf("%s:ids", table)
}

// Provision registers the tables so the serving path accepts them.
func (s *RedisStore) Provision(ctx context.Context, tables []string) error {
	if len(tables) == 0 {
		return nil
	}
	members := make([]interface{}, len(tables))
	for i, t := range tables {
		members[i] = t
	}
	if err := s.client.SAdd(ctx, tablesKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to register tables: %w", err)
	}
	return nil
}

func (s *RedisStore) ensureTable(ctx context.Context, table string) error {
	if _, ok := s.known.Load(table); ok {
		return nil
	}
	ok, err := s.client.SIsMember(ctx, tablesKey, table).Result()
	if err != nil {
		return fmt.Errorf("failed to check table %s: %w", table, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrTableNotProvisioned, table)
	}
	s.known.Store(table, struct{}{})
	return nil
}

// Put creates or overwrites a record and bumps its version.
func (s *RedisStore) Put(ctx context.Context, table, id string, data []byte) error {
	if err := s.ensureTable(ctx, table); err != nil {
		return err
	}
	key := recordKey(table, id)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "data", data)
	pipe.HIncrBy(ctx, key, "version", 1)
	pipe.SAdd(ctx, idsKey(table), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}
	return nil
}

// Get retrieves a record by id.
func (s *RedisStore) Get(ctx context.Context, table, id string) (*ports.Record, error) {
	if err := s.ensureTable(ctx, table); err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, recordKey(table, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return decodeRedisRecord(id, fields)
}

// Scan returns every record indexed for the table.
func (s *RedisStore) Scan(ctx context.Context, table string) ([]*ports.Record, error) {
	if err := s.ensureTable(ctx, table); err != nil {
		return nil, err
	}
	ids, err := s.client.SMembers(ctx, idsKey(table)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list ids: %w", err)
	}
	if len(ids) == 0 {
		return []*ports.Record{}, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, recordKey(table, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	records := make([]*ports.Record, 0, len(ids))
	for i, cmd := range cmds {
		rec, err := decodeRedisRecord(ids[i], cmd.Val())
		if errors.Is(err, ports.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Swap overwrites the record inside a WATCH transaction if the version matches.
func (s *RedisStore) Swap(ctx context.Context, table, id string, version int64, data []byte) error {
	if err := s.ensureTable(ctx, table); err != nil {
		return err
	}
	key := recordKey(table, id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, "version").Int64()
		if err == redis.Nil {
			return ports.ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		if current != version {
			return ports.ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "data", data)
			pipe.HIncrBy(ctx, key, "version", 1)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ports.ErrVersionConflict
	case errors.Is(err, ports.ErrRecordNotFound), errors.Is(err, ports.ErrVersionConflict):
		return err
	default:
		return fmt.Errorf("failed to swap record: %w", err)
	}
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeRedisRecord(id string, fields map[string]string) (*ports.Record, error) {
	data, ok := fields["data"]
	if !ok {
		return nil, ports.ErrRecordNotFound
	}
	version, err := strconv.ParseInt(fields["version"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt version for record %s: %w", id, err)
	}
	return &ports.Record{ID: id, Version: version, Data: []byte(data)}, nil
}
