package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/delphinium/delphinium/internal/ports"
)

// BoltStore keeps every table in its own bbolt bucket.
type BoltStore struct {
	Path string
	db   *bolt.DB
}

type boltEnvelope struct {
	Version int64           `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// OpenBoltStore opens or creates the database file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open boltdb %s: %w", path, err)
	}
	return &BoltStore{Path: path, db: db}, nil
}

// Provision creates missing buckets.
func (s *BoltStore) Provision(ctx context.Context, tables []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, t := range tables {
			if _, err := tx.CreateBucketIfNotExists([]byte(t)); err != nil {
				return fmt.Errorf("unable to create bucket %s: %w", t, err)
			}
		}
		return nil
	})
}

func bucket(tx *bolt.Tx, table string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(table))
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrTableNotProvisioned, table)
	}
	return b, nil
}

func readEnvelope(b *bolt.Bucket, id string) (*boltEnvelope, error) {
	raw := b.Get([]byte(id))
	if raw == nil {
		return nil, ports.ErrRecordNotFound
	}
	var env boltEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("corrupt record %s: %w", id, err)
	}
	return &env, nil
}

func writeEnvelope(b *bolt.Bucket, id string, version int64, data []byte) error {
	raw, err := json.Marshal(boltEnvelope{Version: version, Data: data})
	if err != nil {
		return err
	}
	return b.Put([]byte(id), raw)
}

// Put creates or overwrites a record.
func (s *BoltStore) Put(ctx context.Context, table, id string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, table)
		if err != nil {
			return err
		}
		var version int64 = 1
		if env, err := readEnvelope(b, id); err == nil {
			version = env.Version + 1
		}
		return writeEnvelope(b, id, version, data)
	})
}

// Get retrieves a record by id.
func (s *BoltStore) Get(ctx context.Context, table, id string) (*ports.Record, error) {
	var rec *ports.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, table)
		if err != nil {
			return err
		}
		env, err := readEnvelope(b, id)
		if err != nil {
			return err
		}
		rec = &ports.Record{ID: id, Version: env.Version, Data: clone(env.Data)}
		return nil
	})
	return rec, err
}

// Scan returns every record in the bucket.
func (s *BoltStore) Scan(ctx context.Context, table string) ([]*ports.Record, error) {
	records := []*ports.Record{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, table)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var env boltEnvelope
			if err := json.Unmarshal(v, &env); err != nil {
				return fmt.Errorf("corrupt record %s: %w", k, err)
			}
			records = append(records, &ports.Record{ID: string(k), Version: env.Version, Data: clone(env.Data)})
			return nil
		})
	})
	return records, err
}

// Swap overwrites the record if its version matches. Write transactions are serialized by bbolt.
func (s *BoltStore) Swap(ctx context.Context, table, id string, version int64, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, table)
		if err != nil {
			return err
		}
		env, err := readEnvelope(b, id)
		if err != nil {
			return err
		}
		if env.Version != version {
			return ports.ErrVersionConflict
		}
		return writeEnvelope(b, id, version+1, data)
	})
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
