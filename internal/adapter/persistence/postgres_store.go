package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/delphinium/delphinium/internal/ports"
)

const createRecordsTable = `
	CREATE TABLE IF NOT EXISTS delphinium_records (
		tbl     TEXT   NOT NULL,
		id      TEXT   NOT NULL,
		version BIGINT NOT NULL,
		data    JSONB  NOT NULL,
		PRIMARY KEY (tbl, id)
	)
`

// PostgresStore keeps every logical table as rows of one JSONB table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgresStore on an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgresStore opens databaseURL with the lib/pq driver and pings it.
func OpenPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPostgresStore(db), nil
}

// Provision creates the records table. Logical tables need no DDL of their own.
func (s *PostgresStore) Provision(ctx context.Context, tables []string) error {
	if _, err := s.db.ExecContext(ctx, createRecordsTable); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

// Put creates or overwrites a record.
func (s *PostgresStore) Put(ctx context.Context, table, id string, data []byte) error {
	query := `
		INSERT INTO delphinium_records (tbl, id, version, data)
		VALUES ($1, $2, 1, $3::jsonb)
		ON CONFLICT (tbl, id) DO UPDATE
		SET data = EXCLUDED.data, version = delphinium_records.version + 1
	`
	if _, err := s.db.ExecContext(ctx, query, table, id, string(data)); err != nil {
		return mapPostgresError("put record", err)
	}
	return nil
}

// Get retrieves a record by id.
func (s *PostgresStore) Get(ctx context.Context, table, id string) (*ports.Record, error) {
	query := `SELECT version, data FROM delphinium_records WHERE tbl = $1 AND id = $2`
	rec := &ports.Record{ID: id}
	err := s.db.QueryRowContext(ctx, query, table, id).Scan(&rec.Version, &rec.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrRecordNotFound
		}
		return nil, mapPostgresError("get record", err)
	}
	return rec, nil
}

// Scan returns every record of the logical table.
func (s *PostgresStore) Scan(ctx context.Context, table string) ([]*ports.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, version, data FROM delphinium_records WHERE tbl = $1`, table)
	if err != nil {
		return nil, mapPostgresError("scan records", err)
	}
	defer rows.Close()

	records := []*ports.Record{}
	for rows.Next() {
		var rec ports.Record
		if err := rows.Scan(&rec.ID, &rec.Version, &rec.Data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// Swap overwrites the record if its version matches.
func (s *PostgresStore) Swap(ctx context.Context, table, id string, version int64, data []byte) error {
	query := `
		UPDATE delphinium_records
		SET data = $4::jsonb, version = version + 1
		WHERE tbl = $1 AND id = $2 AND version = $3
	`
	result, err := s.db.ExecContext(ctx, query, table, id, version, string(data))
	if err != nil {
		return mapPostgresError("swap record", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}
	if _, err := s.Get(ctx, table, id); err != nil {
		return err
	}
	return ports.ErrVersionConflict
}

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// undefinedTable is the SQLSTATE raised when the records table has not been provisioned.
const undefinedTable = "42P01"

func mapPostgresError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%w: delphinium_records", ports.ErrTableNotProvisioned)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
