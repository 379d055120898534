package usecase

import (
	"context"
	"fmt"

	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

// AccessRequestSubject is the notification subject for new access requests.
const AccessRequestSubject = "New access request - Delphinium"

// AccessRequestUseCase records requests for site accounts and alerts the administrators.
type AccessRequestUseCase struct {
	repo     ports.Repository[domain.AccessRequest]
	notifier ports.Notifier
	opts     options
}

func NewAccessRequestUseCase(repo ports.Repository[domain.AccessRequest], notifier ports.Notifier, opts ...Option) *AccessRequestUseCase {
	return &AccessRequestUseCase{repo: repo, notifier: notifier, opts: newOptions(opts)}
}

// List returns every access request, newest first.
func (uc *AccessRequestUseCase) List(ctx context.Context) ([]*domain.AccessRequest, error) {
	requests, err := uc.repo.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list access requests: %w", err)
	}
	sortByDesc(requests, func(r *domain.AccessRequest) int64 { return r.CreatedAt })
	return requests, nil
}

// Create stores a pending request and notifies the administrators.
func (uc *AccessRequestUseCase) Create(ctx context.Context, in domain.AccessRequestInput) (*domain.AccessRequest, error) {
	req := domain.NewAccessRequest(in, domain.Millis(uc.opts.now()))
	if err := uc.repo.Put(ctx, req.RequestID, req); err != nil {
		return nil, fmt.Errorf("failed to create access request: %w", err)
	}

	message := fmt.Sprintf("New access request received:\nName: %s %s\nEmail: %s\nType: %s\n",
		deref(req.FirstName), deref(req.LastName), deref(req.Email), deref(req.UserType))
	notify(ctx, uc.notifier, uc.opts.logger, AccessRequestSubject, message)

	return req, nil
}
