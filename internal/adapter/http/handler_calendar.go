package http

import (
	"context"
	"net/http"

	"github.com/delphinium/delphinium/infrastructure/http/middleware"
	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/internal/domain"
)

type CalendarService interface {
	List(ctx context.Context, year, month string) ([]*domain.CalendarEvent, error)
	Create(ctx context.Context, in domain.CalendarEventInput, caller string) (*domain.CalendarEvent, error)
}

type CalendarHandler struct {
	service CalendarService
	errors  errorWriter
}

func NewCalendarHandler(service CalendarService, errs errorWriter) *CalendarHandler {
	return &CalendarHandler{service: service, errors: errs}
}

// List accepts optional year and month query parameters.
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.service.List(r.Context(), q.Get("year"), q.Get("month"))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"events": events})
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.CalendarEventInput
	if err := decodeBody(r, &in); err != nil {
		h.errors.write(w, r, err)
		return
	}
	event, err := h.service.Create(r.Context(), in, middleware.CallerName(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"event": event})
}
