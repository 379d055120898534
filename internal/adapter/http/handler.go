package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/pkg/apperror"
)

// methodRouter dispatches on the request method and answers 405 with an Allow header otherwise.
type methodRouter map[string]http.HandlerFunc

func (m methodRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := m[r.Method]; ok {
		h(w, r)
		return
	}
	allowed := make([]string, 0, len(m))
	for method := range m {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	response.MethodNotAllowed(w, allowed...)
}

// collection serves a resource listing on GET and record creation on POST.
func collection(list, create http.HandlerFunc) methodRouter {
	return methodRouter{
		http.MethodGet:  list,
		http.MethodPost: create,
	}
}

// only serves h for a single method.
func only(method string, h http.HandlerFunc) methodRouter {
	return methodRouter{method: h}
}

// decodeBody reads a JSON body into v. An empty body decodes as {}.
func decodeBody(r *http.Request, v interface{}) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// errorWriter maps use case errors to responses. Client errors keep their message;
// anything else is logged and answered with 500 and the raw error text.
type errorWriter struct {
	logger logger.Logger
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperror.As(err); ok {
		response.Error(w, appErr.Status, appErr.Message)
		return
	}
	e.logger.Error(r.Context(), "Request failed", err, map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	response.InternalServerError(w, err)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	response.NotFound(w, "Not found")
}
