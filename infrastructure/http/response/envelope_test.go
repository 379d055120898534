package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriters(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantBody   string
	}{
		{"created", func(w http.ResponseWriter) { Created(w, map[string]string{"id": "1"}) }, http.StatusCreated, `{"id":"1"}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "Thread not found") }, http.StatusNotFound, `{"error":"Thread not found"}`},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, errors.New("boom")) }, http.StatusInternalServerError, `{"error":"boom"}`},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, http.MethodGet, http.MethodPost) }, http.StatusMethodNotAllowed, `{"message":"Method not allowed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.write(rr)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestMethodNotAllowed_AllowHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	MethodNotAllowed(rr, http.MethodGet, http.MethodPost)
	assert.Equal(t, "GET, POST", rr.Header().Get("Allow"))
}
