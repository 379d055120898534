// Package usecase implements the operations behind every HTTP resource.
package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/internal/ports"
)

// Option configures a use case.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger logger.Logger
}

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets the logger used for best-effort side effects.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNopLogger()
	}
	return o
}

// sortByDesc orders items newest first by key, keeping scan order for ties.
func sortByDesc[T any](items []*T, key func(*T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) > key(items[j])
	})
}

// notify publishes a message without letting delivery failures reach the caller.
func notify(ctx context.Context, notifier ports.Notifier, log logger.Logger, subject, message string) {
	if notifier == nil {
		return
	}
	if err := notifier.Publish(ctx, subject, message); err != nil {
		log.Warn(ctx, "Failed to send notification", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ports.ErrRecordNotFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
