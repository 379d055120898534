package usecase

import (
	"context"
	"fmt"

	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

type BlogUseCase struct {
	posts ports.Repository[domain.BlogPost]
	opts  options
}

func NewBlogUseCase(posts ports.Repository[domain.BlogPost], opts ...Option) *BlogUseCase {
	return &BlogUseCase{posts: posts, opts: newOptions(opts)}
}

func (uc *BlogUseCase) List(ctx context.Context) ([]*domain.BlogPost, error) {
	posts, err := uc.posts.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	sortByDesc(posts, func(p *domain.BlogPost) int64 { return p.CreatedAt })
	return posts, nil
}

func (uc *BlogUseCase) Create(ctx context.Context, in domain.BlogPostInput, caller string) (*domain.BlogPost, error) {
	post := domain.NewBlogPost(in, caller, domain.Millis(uc.opts.now()))
	if err := uc.posts.Put(ctx, post.PostID, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}
