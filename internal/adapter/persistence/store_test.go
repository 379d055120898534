package persistence

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delphinium/delphinium/internal/ports"
)

type storeProvisioner interface {
	ports.RecordStore
	ports.Provisioner
}

// runStoreContract exercises the RecordStore behaviour every driver must share.
func runStoreContract(t *testing.T, store storeProvisioner, table string) {
	ctx := context.Background()
	require.NoError(t, store.Provision(ctx, []string{table}))

	t.Run("get missing record", func(t *testing.T) {
		_, err := store.Get(ctx, table, "missing")
		assert.ErrorIs(t, err, ports.ErrRecordNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, table, "a", []byte(`{"n":1}`)))
		rec, err := store.Get(ctx, table, "a")
		require.NoError(t, err)
		assert.Equal(t, "a", rec.ID)
		assert.JSONEq(t, `{"n":1}`, string(rec.Data))
		assert.Equal(t, int64(1), rec.Version)
	})

	t.Run("put overwrites and bumps version", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, table, "a", []byte(`{"n":2}`)))
		rec, err := store.Get(ctx, table, "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":2}`, string(rec.Data))
		assert.Equal(t, int64(2), rec.Version)
	})

	t.Run("swap with current version", func(t *testing.T) {
		rec, err := store.Get(ctx, table, "a")
		require.NoError(t, err)
		require.NoError(t, store.Swap(ctx, table, "a", rec.Version, []byte(`{"n":3}`)))
		after, err := store.Get(ctx, table, "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":3}`, string(after.Data))
		assert.Equal(t, rec.Version+1, after.Version)
	})

	t.Run("swap with stale version", func(t *testing.T) {
		err := store.Swap(ctx, table, "a", 1, []byte(`{"n":4}`))
		assert.ErrorIs(t, err, ports.ErrVersionConflict)
	})

	t.Run("swap missing record", func(t *testing.T) {
		err := store.Swap(ctx, table, "nope", 1, []byte(`{}`))
		assert.ErrorIs(t, err, ports.ErrRecordNotFound)
	})

	t.Run("scan", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, table, "b", []byte(`{"n":10}`)))
		recs, err := store.Scan(ctx, table)
		require.NoError(t, err)
		ids := make([]string, 0, len(recs))
		for _, r := range recs {
			ids = append(ids, r.ID)
		}
		assert.ElementsMatch(t, []string{"a", "b"}, ids)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	runStoreContract(t, store, "things")
}

func TestBoltStore(t *testing.T) {
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()
	runStoreContract(t, store, "things")
}

func TestBoltStore_TableNotProvisioned(t *testing.T) {
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	err = store.Put(ctx, "unknown", "a", []byte(`{}`))
	assert.ErrorIs(t, err, ports.ErrTableNotProvisioned)
	_, err = store.Scan(ctx, "unknown")
	assert.ErrorIs(t, err, ports.ErrTableNotProvisioned)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	store, err := OpenRedisStore(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	table := "test-" + t.Name()
	t.Cleanup(func() {
		ids, _ := store.Client().SMembers(ctx, idsKey(table)).Result()
		for _, id := range ids {
			store.Client().Del(ctx, recordKey(table, id))
		}
		store.Client().Del(ctx, idsKey(table))
		store.Client().SRem(ctx, tablesKey, table)
	})
	runStoreContract(t, store, table)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := OpenPostgresStore(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	table := "test-" + t.Name()
	t.Cleanup(func() {
		_, _ = store.db.ExecContext(ctx, `DELETE FROM delphinium_records WHERE tbl = $1`, table)
	})
	runStoreContract(t, store, table)
}

type counter struct {
	N int `json:"n"`
}

func TestTable_UpdateConcurrent(t *testing.T) {
	store := NewMemoryStore()
	table := NewTable[counter](store, "counters", 100)
	ctx := context.Background()
	require.NoError(t, table.Put(ctx, "c", &counter{}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := table.Update(ctx, "c", func(c *counter) error {
				c.N++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := table.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 20, got.N)
}

// conflictingStore always reports a lost race on Swap.
type conflictingStore struct {
	*MemoryStore
	swaps int
}

func (s *conflictingStore) Swap(ctx context.Context, table, id string, version int64, data []byte) error {
	s.swaps++
	return ports.ErrVersionConflict
}

func TestTable_UpdateExhaustsRetries(t *testing.T) {
	store := &conflictingStore{MemoryStore: NewMemoryStore()}
	table := NewTable[counter](store, "counters", 3)
	ctx := context.Background()
	require.NoError(t, table.Put(ctx, "c", &counter{}))

	_, err := table.Update(ctx, "c", func(c *counter) error {
		c.N++
		return nil
	})
	assert.ErrorIs(t, err, ports.ErrVersionConflict)
	assert.Equal(t, 3, store.swaps)
}

func TestTable_UpdateMissing(t *testing.T) {
	table := NewTable[counter](NewMemoryStore(), "counters", 0)
	_, err := table.Update(context.Background(), "nope", func(c *counter) error { return nil })
	assert.ErrorIs(t, err, ports.ErrRecordNotFound)
}

func TestInstrumentedStore_Forwards(t *testing.T) {
	store := Instrument(NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, store.Provision(ctx, []string{"things"}))
	require.NoError(t, store.Put(ctx, "things", "a", []byte(`{}`)))
	rec, err := store.Get(ctx, "things", "a")
	require.NoError(t, err)
	assert.ErrorIs(t, store.Swap(ctx, "things", "a", rec.Version+5, []byte(`{}`)), ports.ErrVersionConflict)
}
