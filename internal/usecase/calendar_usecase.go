package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

type CalendarUseCase struct {
	events ports.Repository[domain.CalendarEvent]
	opts   options
}

func NewCalendarUseCase(events ports.Repository[domain.CalendarEvent], opts ...Option) *CalendarUseCase {
	return &CalendarUseCase{events: events, opts: newOptions(opts)}
}

// List returns events in date order. When both year and month are given only that month is returned.
func (uc *CalendarUseCase) List(ctx context.Context, year, month string) ([]*domain.CalendarEvent, error) {
	events, err := uc.events.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if year != "" && month != "" {
		filtered := make([]*domain.CalendarEvent, 0, len(events))
		for _, e := range events {
			if e.InMonth(year, month) {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DateKey() < events[j].DateKey()
	})
	return events, nil
}

func (uc *CalendarUseCase) Create(ctx context.Context, in domain.CalendarEventInput, caller string) (*domain.CalendarEvent, error) {
	event := domain.NewCalendarEvent(in, caller, domain.Millis(uc.opts.now()))
	if err := uc.events.Put(ctx, event.EventID, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}
