package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/delphinium/delphinium/infrastructure/http/middleware"
	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/internal/domain"
)

type ForumService interface {
	ListThreads(ctx context.Context) ([]*domain.Thread, error)
	CreateThread(ctx context.Context, in domain.ThreadInput, caller string) (*domain.Thread, error)
	AddReply(ctx context.Context, threadID string, in domain.ReplyInput, caller string) (*domain.Reply, error)
}

type ForumHandler struct {
	service ForumService
	errors  errorWriter
}

func NewForumHandler(service ForumService, errs errorWriter) *ForumHandler {
	return &ForumHandler{service: service, errors: errs}
}

func (h *ForumHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.service.ListThreads(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"threads": threads})
}

func (h *ForumHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var in domain.ThreadInput
	if err := decodeBody(r, &in); err != nil {
		h.errors.write(w, r, err)
		return
	}
	thread, err := h.service.CreateThread(r.Context(), in, middleware.CallerName(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"thread": thread})
}

func (h *ForumHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	var in domain.ReplyInput
	if err := decodeBody(r, &in); err != nil {
		h.errors.write(w, r, err)
		return
	}
	reply, err := h.service.AddReply(r.Context(), mux.Vars(r)["threadId"], in, middleware.CallerName(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"reply": reply})
}
