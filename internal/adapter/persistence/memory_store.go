package persistence

import (
	"context"
	"sync"

	"github.com/delphinium/delphinium/internal/ports"
)

// MemoryStore keeps records in process memory. It backs tests and local development;
// tables spring into existence on first write.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]*ports.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]map[string]*ports.Record)}
}

// Provision creates the given tables.
func (s *MemoryStore) Provision(ctx context.Context, tables []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tables {
		if _, ok := s.tables[t]; !ok {
			s.tables[t] = make(map[string]*ports.Record)
		}
	}
	return nil
}

// Put creates or overwrites a record.
func (s *MemoryStore) Put(ctx context.Context, table, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, ok := s.tables[table]
	if !ok {
		records = make(map[string]*ports.Record)
		s.tables[table] = records
	}
	var version int64 = 1
	if existing, ok := records[id]; ok {
		version = existing.Version + 1
	}
	records[id] = &ports.Record{ID: id, Version: version, Data: clone(data)}
	return nil
}

// Get returns a copy of the record.
func (s *MemoryStore) Get(ctx context.Context, table, id string) (*ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tables[table][id]
	if !ok {
		return nil, ports.ErrRecordNotFound
	}
	return &ports.Record{ID: rec.ID, Version: rec.Version, Data: clone(rec.Data)}, nil
}

// Scan returns copies of every record in the table.
func (s *MemoryStore) Scan(ctx context.Context, table string) ([]*ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.tables[table]
	out := make([]*ports.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, &ports.Record{ID: rec.ID, Version: rec.Version, Data: clone(rec.Data)})
	}
	return out, nil
}

// Swap overwrites the record if its version matches.
func (s *MemoryStore) Swap(ctx context.Context, table, id string, version int64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tables[table][id]
	if !ok {
		return ports.ErrRecordNotFound
	}
	if rec.Version != version {
		return ports.ErrVersionConflict
	}
	s.tables[table][id] = &ports.Record{ID: id, Version: version + 1, Data: clone(data)}
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
