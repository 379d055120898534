package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

type authUserKey struct{}

type AuthMiddleware struct {
	tokenService ports.TokenService
	logger       logger.Logger
}

func NewAuthMiddleware(tokenService ports.TokenService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		logger:       log,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		token := parts[1]
		if token == "" {
			response.Unauthorized(w, "Token cannot be empty")
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUserClaims(r.Context(), claims)))
	}
}

// RequireGroups authenticates the caller and requires membership in one of groups.
func (m *AuthMiddleware) RequireGroups(groups []string, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserClaims(r.Context())
		if claims == nil {
			response.Unauthorized(w, "User not authenticated")
			return
		}

		if !domain.InAnyGroup(claims.Groups, groups...) {
			logger.LogSecurityEvent(r.Context(), m.logger, "group_membership_denied", "MEDIUM", map[string]interface{}{
				"username": claims.Username,
				"path":     r.URL.Path,
				"method":   r.Method,
				"required": groups,
			})
			response.Forbidden(w, "Insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin allows admin and superadmin members.
func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireGroups(domain.AdminGroups, next)
}

// RequireMember allows residents and administrators.
func (m *AuthMiddleware) RequireMember(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireGroups(domain.MemberGroups, next)
}

// ContextWithUserClaims stores verified claims in ctx.
func ContextWithUserClaims(ctx context.Context, claims *ports.TokenClaims) context.Context {
	return context.WithValue(ctx, authUserKey{}, claims)
}

// GetUserClaims retrieves user claims from context
func GetUserClaims(ctx context.Context) *ports.TokenClaims {
	if claims, ok := ctx.Value(authUserKey{}).(*ports.TokenClaims); ok {
		return claims
	}
	return nil
}

// CallerName returns the authenticated username, or "" for anonymous requests.
func CallerName(ctx context.Context) string {
	if claims := GetUserClaims(ctx); claims != nil {
		return claims.Username
	}
	return ""
}
