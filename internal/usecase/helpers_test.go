package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/delphinium/delphinium/internal/adapter/persistence"
	"github.com/delphinium/delphinium/internal/ports"
)

// steppingClock advances one second on every call, starting at a fixed instant.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTable[T any](name string) *persistence.Table[T] {
	return persistence.NewTable[T](persistence.NewMemoryStore(), name, 0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, subject, message string) error {
	return m.Called(ctx, subject, message).Error(0)
}

type MockBlobSigner struct {
	mock.Mock
}

func (m *MockBlobSigner) SignedPutURL(ctx context.Context, key, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobSigner) SignedGetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockBlobSigner) TTL() time.Duration {
	return time.Hour
}

var _ ports.BlobSigner = (*MockBlobSigner)(nil)
