package ports

import (
	"context"
)

// Notifier delivers a short message to the site administrators.
// Callers treat delivery as best effort.
type Notifier interface {
	Publish(ctx context.Context, subject, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, subject, message string) error

// Publish calls f.
func (f NotifierFunc) Publish(ctx context.Context, subject, message string) error {
	return f(ctx, subject, message)
}
