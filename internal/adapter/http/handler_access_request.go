package http

import (
	"context"
	"net/http"

	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/internal/domain"
)

// AccessRequestService is what AccessRequestHandler needs from the use case layer.
type AccessRequestService interface {
	List(ctx context.Context) ([]*domain.AccessRequest, error)
	Create(ctx context.Context, in domain.AccessRequestInput) (*domain.AccessRequest, error)
}

type AccessRequestHandler struct {
	service AccessRequestService
	errors  errorWriter
}

func NewAccessRequestHandler(service AccessRequestService, errs errorWriter) *AccessRequestHandler {
	return &AccessRequestHandler{service: service, errors: errs}
}

func (h *AccessRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.List(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"requests": requests})
}

func (h *AccessRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.AccessRequestInput
	if err := decodeBody(r, &in); err != nil {
		h.errors.write(w, r, err)
		return
	}
	req, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"request": req})
}
