package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
	"github.com/delphinium/delphinium/pkg/apperror"
)

// ForumUseCase manages newsgroup threads and their embedded replies.
type ForumUseCase struct {
	threads ports.Repository[domain.Thread]
	opts    options
}

func NewForumUseCase(threads ports.Repository[domain.Thread], opts ...Option) *ForumUseCase {
	return &ForumUseCase{threads: threads, opts: newOptions(opts)}
}

// ListThreads returns every thread, most recent first.
func (uc *ForumUseCase) ListThreads(ctx context.Context) ([]*domain.Thread, error) {
	threads, err := uc.threads.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	sortByDesc(threads, func(t *domain.Thread) int64 { return t.Timestamp })
	return threads, nil
}

// CreateThread starts a thread with no replies.
func (uc *ForumUseCase) CreateThread(ctx context.Context, in domain.ThreadInput, caller string) (*domain.Thread, error) {
	thread := domain.NewThread(in, caller, domain.Millis(uc.opts.now()))
	if err := uc.threads.Put(ctx, thread.ThreadID, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

// AddReply appends a reply to the thread with compare-and-swap, so concurrent replies are all kept.
func (uc *ForumUseCase) AddReply(ctx context.Context, threadID string, in domain.ReplyInput, caller string) (*domain.Reply, error) {
	if threadID == "" {
		return nil, ErrThreadIDRequired
	}

	reply := domain.NewReply(in, caller, domain.Millis(uc.opts.now()))
	_, err := uc.threads.Update(ctx, threadID, func(t *domain.Thread) error {
		t.AppendReply(reply)
		return nil
	})
	switch {
	case err == nil:
		return &reply, nil
	case isNotFound(err):
		return nil, ErrThreadNotFound
	case errors.Is(err, ports.ErrVersionConflict):
		return nil, apperror.Wrap(ErrThreadConflict, err)
	default:
		return nil, fmt.Errorf("failed to add reply: %w", err)
	}
}
