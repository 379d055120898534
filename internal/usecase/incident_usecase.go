package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
	"github.com/delphinium/delphinium/pkg/apperror"
)

// IncidentSubject is the notification subject for new incidents.
const IncidentSubject = "New incident - Delphinium"

// IncidentUseCase tracks building incidents.
type IncidentUseCase struct {
	incidents ports.Repository[domain.Incident]
	notifier  ports.Notifier
	opts      options
}

func NewIncidentUseCase(incidents ports.Repository[domain.Incident], notifier ports.Notifier, opts ...Option) *IncidentUseCase {
	return &IncidentUseCase{incidents: incidents, notifier: notifier, opts: newOptions(opts)}
}

func (uc *IncidentUseCase) List(ctx context.Context) ([]*domain.Incident, error) {
	incidents, err := uc.incidents.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	sortByDesc(incidents, func(i *domain.Incident) int64 { return i.CreatedAt })
	return incidents, nil
}

func (uc *IncidentUseCase) Create(ctx context.Context, in domain.IncidentInput, caller string) (*domain.Incident, error) {
	incident := domain.NewIncident(in, caller, domain.Millis(uc.opts.now()))
	if err := uc.incidents.Put(ctx, incident.IncidentID, incident); err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	message := fmt.Sprintf("New incident reported:\nTitle: %s\nPriority: %s\nReported by: %s\n",
		deref(incident.Title), deref(incident.Priority), incident.CreatedBy)
	notify(ctx, uc.notifier, uc.opts.logger, IncidentSubject, message)

	return incident, nil
}

// Update applies patch with compare-and-swap, re-applying it on top of concurrent changes.
func (uc *IncidentUseCase) Update(ctx context.Context, incidentID string, patch domain.IncidentPatch, caller string) (*domain.Incident, error) {
	if incidentID == "" {
		return nil, ErrIncidentIDRequired
	}

	incident, err := uc.incidents.Update(ctx, incidentID, func(i *domain.Incident) error {
		i.Apply(patch, caller, domain.Millis(uc.opts.now()))
		return nil
	})
	switch {
	case err == nil:
		return incident, nil
	case isNotFound(err):
		return nil, ErrIncidentNotFound
	case errors.Is(err, ports.ErrVersionConflict):
		return nil, apperror.Wrap(ErrIncidentConflict, err)
	default:
		return nil, fmt.Errorf("failed to update incident: %w", err)
	}
}
