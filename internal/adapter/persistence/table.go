package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/delphinium/delphinium/internal/ports"
)

// DefaultMaxRetries bounds compare-and-swap attempts in Table.Update.
const DefaultMaxRetries = 5

// Table is a typed, JSON-encoded view over one logical table of a RecordStore.
type Table[T any] struct {
	store      ports.RecordStore
	name       string
	maxRetries int
}

// NewTable creates a typed view of table name. maxRetries <= 0 selects DefaultMaxRetries.
func NewTable[T any](store ports.RecordStore, name string, maxRetries int) *Table[T] {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Table[T]{store: store, name: name, maxRetries: maxRetries}
}

// Name returns the logical table name.
func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) Put(ctx context.Context, id string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", t.name, err)
	}
	return t.store.Put(ctx, t.name, id, data)
}

func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := t.store.Get(ctx, t.name, id)
	if err != nil {
		return nil, err
	}
	return t.decode(rec)
}

func (t *Table[T]) Scan(ctx context.Context) ([]*T, error) {
	recs, err := t.store.Scan(ctx, t.name)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(recs))
	for _, rec := range recs {
		v, err := t.decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *Table[T]) Update(ctx context.Context, id string, mutate func(*T) error) (*T, error) {
	for attempt := 0; attempt < t.maxRetries; attempt++ {
		rec, err := t.store.Get(ctx, t.name, id)
		if err != nil {
			return nil, err
		}
		v, err := t.decode(rec)
		if err != nil {
			return nil, err
		}
		if err := mutate(v); err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s record: %w", t.name, err)
		}
		err = t.store.Swap(ctx, t.name, id, rec.Version, data)
		if errors.Is(err, ports.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("%s record %s: %w after %d attempts", t.name, id, ports.ErrVersionConflict, t.maxRetries)
}

func (t *Table[T]) decode(rec *ports.Record) (*T, error) {
	var v T
	if err := json.Unmarshal(rec.Data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s record %s: %w", t.name, rec.ID, err)
	}
	return &v, nil
}
