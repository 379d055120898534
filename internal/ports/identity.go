package ports

import (
	"context"
	"errors"

	"github.com/delphinium/delphinium/internal/domain"
)

// Identity errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IdentityProvider is the canonical source of user attributes and group membership.
type IdentityProvider interface {
	GetUser(ctx context.Context, username string) (*domain.User, error)
	ListGroupsForUser(ctx context.Context, username string) ([]string, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Register(ctx context.Context, user *domain.User, password string) error
}

// TokenClaims are the verified claims of an access token.
type TokenClaims struct {
	Username string
	Email    string
	Groups   []string
}

// TokenService issues and verifies access tokens.
type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// PasswordService hashes and checks directory passwords.
type PasswordService interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
	NeedsRehash(hash string) bool
}
