package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/delphinium/delphinium/infrastructure/http/middleware"
	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/internal/domain"
)

type IncidentService interface {
	List(ctx context.Context) ([]*domain.Incident, error)
	Create(ctx context.Context, in domain.IncidentInput, caller string) (*domain.Incident, error)
	Update(ctx context.Context, incidentID string, patch domain.IncidentPatch, caller string) (*domain.Incident, error)
}

type IncidentHandler struct {
	service IncidentService
	errors  errorWriter
}

func NewIncidentHandler(service IncidentService, errs errorWriter) *IncidentHandler {
	return &IncidentHandler{service: service, errors: errs}
}

func (h *IncidentHandler) List(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.service.List(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"incidents": incidents})
}

func (h *IncidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.IncidentInput
	if err := decodeBody(r, &in); err != nil {
		h.errors.write(w, r, err)
		return
	}
	incident, err := h.service.Create(r.Context(), in, middleware.CallerName(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"incident": incident})
}

func (h *IncidentHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, err := decodeIncidentPatch(r)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	incident, err := h.service.Update(r.Context(), mux.Vars(r)["incidentId"], patch, middleware.CallerName(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"incident": incident})
}

// decodeIncidentPatch records which keys are present so an explicit null can clear a field.
func decodeIncidentPatch(r *http.Request) (domain.IncidentPatch, error) {
	var patch domain.IncidentPatch
	var raw map[string]json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		return patch, err
	}

	fields := []struct {
		key string
		dst **string
		set *bool
	}{
		{"status", &patch.Status, &patch.StatusSet},
		{"priority", &patch.Priority, &patch.PrioritySet},
		{"assignedTo", &patch.AssignedTo, &patch.AssignedToSet},
		{"note", &patch.Note, nil},
		{"author", &patch.Author, nil},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return patch, err
		}
		if f.set != nil {
			*f.set = true
		}
	}
	return patch, nil
}
