package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/pkg/apperror"
)

func TestMethodRouter_DispatchesAndRejects(t *testing.T) {
	handled := ""
	router := collection(
		func(w http.ResponseWriter, r *http.Request) { handled = "list" },
		func(w http.ResponseWriter, r *http.Request) { handled = "create" },
	)

	tests := []struct {
		method         string
		expectedStatus int
		expectedCall   string
	}{
		{http.MethodGet, http.StatusOK, "list"},
		{http.MethodPost, http.StatusOK, "create"},
		{http.MethodDelete, http.StatusMethodNotAllowed, ""},
		{http.MethodPatch, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			handled = ""
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, "/", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedCall, handled)
			if tt.expectedStatus == http.StatusMethodNotAllowed {
				assert.Equal(t, "GET, POST", rr.Header().Get("Allow"))
				assert.JSONEq(t, `{"message":"Method not allowed"}`, rr.Body.String())
			}
		})
	}
}

func TestOnly_AllowHeaderNamesSingleMethod(t *testing.T) {
	rr := httptest.NewRecorder()
	only(http.MethodPut, func(w http.ResponseWriter, r *http.Request) {}).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "PUT", rr.Header().Get("Allow"))
}

func TestDecodeBody(t *testing.T) {
	type payload struct {
		Title *string `json:"title"`
	}

	t.Run("empty body decodes as empty object", func(t *testing.T) {
		var p payload
		err := decodeBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  \n")), &p)
		require.NoError(t, err)
		assert.Nil(t, p.Title)
	})

	t.Run("fields are copied", func(t *testing.T) {
		var p payload
		err := decodeBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Roof"}`)), &p)
		require.NoError(t, err)
		require.NotNil(t, p.Title)
		assert.Equal(t, "Roof", *p.Title)
	})

	t.Run("malformed body fails", func(t *testing.T) {
		var p payload
		err := decodeBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`)), &p)
		assert.Error(t, err)
	})
}

func TestErrorWriter(t *testing.T) {
	errs := errorWriter{logger: logger.NewNopLogger()}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "client error keeps its message",
			err:            apperror.NewNotFound("Incident not found"),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Incident not found"}`,
		},
		{
			name:           "wrapped client error",
			err:            apperror.Wrap(apperror.NewConflict("Incident was modified concurrently"), errors.New("version conflict")),
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Incident was modified concurrently"}`,
		},
		{
			name:           "unhandled error exposes raw text",
			err:            errors.New("scan incidents: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"scan incidents: connection refused"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			errs.write(rr, httptest.NewRequest(http.MethodGet, "/incidents", nil), tt.err)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}

func TestDecodeIncidentPatch(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		assert func(t *testing.T, raw string)
	}{
		{
			name: "absent keys stay unset",
			body: `{"note":"Plumber called"}`,
			assert: func(t *testing.T, body string) {
				patch, err := decodeIncidentPatch(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)))
				require.NoError(t, err)
				assert.False(t, patch.StatusSet)
				assert.False(t, patch.PrioritySet)
				assert.False(t, patch.AssignedToSet)
				require.NotNil(t, patch.Note)
				assert.Equal(t, "Plumber called", *patch.Note)
			},
		},
		{
			name: "explicit null clears assignedTo",
			body: `{"assignedTo":null,"status":"closed"}`,
			assert: func(t *testing.T, body string) {
				patch, err := decodeIncidentPatch(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)))
				require.NoError(t, err)
				assert.True(t, patch.AssignedToSet)
				assert.Nil(t, patch.AssignedTo)
				assert.True(t, patch.StatusSet)
				assert.Equal(t, "closed", *patch.Status)
			},
		},
		{
			name: "empty body is an empty patch",
			body: ``,
			assert: func(t *testing.T, body string) {
				patch, err := decodeIncidentPatch(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)))
				require.NoError(t, err)
				assert.False(t, patch.StatusSet)
				assert.Nil(t, patch.Note)
			},
		},
		{
			name: "wrong type fails",
			body: `{"priority":3}`,
			assert: func(t *testing.T, body string) {
				_, err := decodeIncidentPatch(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)))
				var typeErr *json.UnmarshalTypeError
				assert.ErrorAs(t, err, &typeErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assert(t, tt.body)
		})
	}
}
