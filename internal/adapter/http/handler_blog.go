package http

import (
	"context"
	"net/http"

	"github.com/delphinium/delphinium/infrastructure/http/middleware"
	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/internal/domain"
)

type BlogService interface {
	List(ctx context.Context) ([]*domain.BlogPost, error)
	Create(ctx context.Context, in domain.BlogPostInput, caller string) (*domain.BlogPost, error)
}

type BlogHandler struct {
	service BlogService
	errors  errorWriter
}

func NewBlogHandler(service BlogService, errs errorWriter) *BlogHandler {
	return &BlogHandler{service: service, errors: errs}
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"posts": posts})
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.BlogPostInput
	if err := decodeBody(r, &in); err != nil {
		h.errors.write(w, r, err)
		return
	}
	post, err := h.service.Create(r.Context(), in, middleware.CallerName(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"post": post})
}
