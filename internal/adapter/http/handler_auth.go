package http

import (
	"context"
	"net/http"

	"github.com/delphinium/delphinium/infrastructure/http/middleware"
	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/internal/ports"
	"github.com/delphinium/delphinium/internal/usecase"
)

type IdentityService interface {
	Login(ctx context.Context, req usecase.LoginRequest, ip string) (*usecase.LoginResult, error)
	Me(ctx context.Context, claims ports.TokenClaims) (*usecase.Profile, error)
}

type AuthHandler struct {
	service IdentityService
	errors  errorWriter
}

func NewAuthHandler(service IdentityService, errs errorWriter) *AuthHandler {
	return &AuthHandler{service: service, errors: errs}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req usecase.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	res, err := h.service.Login(r.Context(), req, middleware.ClientIP(r))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, res)
}

// Me describes the caller identified by the verified access token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "User not authenticated")
		return
	}
	profile, err := h.service.Me(r.Context(), *claims)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	response.OK(w, profile)
}
