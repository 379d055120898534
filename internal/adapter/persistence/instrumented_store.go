package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/delphinium/delphinium/infrastructure/service/metrics"
	"github.com/delphinium/delphinium/internal/ports"
)

// InstrumentedStore records latency and failures of another store.
type InstrumentedStore struct {
	next ports.RecordStore
}

// Instrument wraps store with Prometheus instrumentation.
func Instrument(store ports.RecordStore) *InstrumentedStore {
	return &InstrumentedStore{next: store}
}

func observe(op, table string, start time.Time, err error) {
	metrics.StoreOperationDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
	switch {
	case err == nil, errors.Is(err, ports.ErrRecordNotFound):
	case errors.Is(err, ports.ErrVersionConflict):
		metrics.StoreConflicts.WithLabelValues(table).Inc()
	default:
		metrics.StoreErrors.WithLabelValues(op, table).Inc()
	}
}

func (s *InstrumentedStore) Put(ctx context.Context, table, id string, data []byte) (err error) {
	defer func(start time.Time) { observe("put", table, start, err) }(time.Now())
	return s.next.Put(ctx, table, id, data)
}

func (s *InstrumentedStore) Get(ctx context.Context, table, id string) (rec *ports.Record, err error) {
	defer func(start time.Time) { observe("get", table, start, err) }(time.Now())
	return s.next.Get(ctx, table, id)
}

func (s *InstrumentedStore) Scan(ctx context.Context, table string) (recs []*ports.Record, err error) {
	defer func(start time.Time) { observe("scan", table, start, err) }(time.Now())
	return s.next.Scan(ctx, table)
}

func (s *InstrumentedStore) Swap(ctx context.Context, table, id string, version int64, data []byte) (err error) {
	defer func(start time.Time) { observe("swap", table, start, err) }(time.Now())
	return s.next.Swap(ctx, table, id, version, data)
}

// Provision forwards to the wrapped store when it supports provisioning.
func (s *InstrumentedStore) Provision(ctx context.Context, tables []string) error {
	p, ok := s.next.(ports.Provisioner)
	if !ok {
		return nil
	}
	return p.Provision(ctx, tables)
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
