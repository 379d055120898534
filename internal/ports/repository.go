package ports

import (
	"context"
	"errors"
)

// Record store errors
var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrVersionConflict     = errors.New("record version conflict")
	ErrTableNotProvisioned = errors.New("table not provisioned")
)

// Record is a stored JSON document with its store-managed version.
type Record struct {
	ID      string
	Version int64
	Data    []byte
}

// RecordStore is the key-value store behind every resource table.
// A table is a logical namespace of records keyed by identifier.
type RecordStore interface {
	// Put writes data under id, creating the record or overwriting it and bumping its version.
	Put(ctx context.Context, table, id string, data []byte) error

	// Get returns the record or ErrRecordNotFound.
	Get(ctx context.Context, table, id string) (*Record, error)

	// Scan returns every record of the table in no particular order.
	Scan(ctx context.Context, table string) ([]*Record, error)

	// Swap overwrites the record only if its version still equals version.
	// It returns ErrVersionConflict when another writer got there first.
	Swap(ctx context.Context, table, id string, version int64, data []byte) error

	// Close releases the underlying connection.
	Close() error
}

// Provisioner creates tables ahead of serving. It is run once per deployment.
type Provisioner interface {
	Provision(ctx context.Context, tables []string) error
}

// Repository is a typed view over one table.
type Repository[T any] interface {
	// Put persists v under id.
	Put(ctx context.Context, id string, v *T) error

	// Get returns the entity or ErrRecordNotFound.
	Get(ctx context.Context, id string) (*T, error)

	// Scan returns every entity of the table.
	Scan(ctx context.Context) ([]*T, error)

	// Update reads the entity, applies mutate and writes it back with compare-and-swap,
	// retrying on conflicting writes. Errors from mutate abort the update unchanged.
	Update(ctx context.Context, id string, mutate func(*T) error) (*T, error)
}
