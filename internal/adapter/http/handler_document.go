package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/delphinium/delphinium/infrastructure/http/middleware"
	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/usecase"
)

type DocumentService interface {
	List(ctx context.Context) ([]*domain.Document, error)
	Create(ctx context.Context, in domain.DocumentInput, caller string) (*domain.Document, error)
	CreateUploadURL(ctx context.Context, req usecase.UploadURLRequest) (*usecase.UploadURL, error)
	DownloadURL(ctx context.Context, documentID string) (string, error)
}

type DocumentHandler struct {
	service DocumentService
	errors  errorWriter
}

func NewDocumentHandler(service DocumentService, errs errorWriter) *DocumentHandler {
	return &DocumentHandler{service: service, errors: errs}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"documents": docs})
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.DocumentInput
	if err := decodeBody(r, &in); err != nil {
		h.errors.write(w, r, err)
		return
	}
	doc, err := h.service.Create(r.Context(), in, middleware.CallerName(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"document": doc})
}

func (h *DocumentHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req usecase.UploadURLRequest
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	out, err := h.service.CreateUploadURL(r.Context(), req)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, out)
}

func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.DownloadURL(r.Context(), mux.Vars(r)["documentId"])
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, map[string]string{"downloadUrl": url})
}
