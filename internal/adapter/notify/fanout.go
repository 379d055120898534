package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/delphinium/delphinium/infrastructure/service/metrics"
	"github.com/delphinium/delphinium/internal/ports"
)

type channel struct {
	name     string
	notifier ports.Notifier
}

// Fanout delivers every message to all registered channels.
type Fanout struct {
	channels []channel
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers notifier under name, the label used in metrics and errors.
func (f *Fanout) Add(name string, notifier ports.Notifier) *Fanout {
	f.channels = append(f.channels, channel{name: name, notifier: notifier})
	return f
}

// Len returns the number of registered channels.
func (f *Fanout) Len() int {
	return len(f.channels)
}

// Publish tries every channel and joins their errors. A failing channel does not stop the others.
func (f *Fanout) Publish(ctx context.Context, subject, message string) error {
	var errs []error
	for _, c := range f.channels {
		if err := c.notifier.Publish(ctx, subject, message); err != nil {
			metrics.NotificationsTotal.WithLabelValues(c.name, "failed").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(c.name, "sent").Inc()
	}
	return errors.Join(errs...)
}
