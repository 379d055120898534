package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

// LoginRequest carries directory credentials.
type LoginRequest struct {
	UserID   string `json:"userid" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is an issued access token.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Profile describes the authenticated caller.
type Profile struct {
	Username       string                 `json:"username"`
	Email          string                 `json:"email"`
	Groups         []string               `json:"groups"`
	UserAttributes []domain.UserAttribute `json:"userAttributes"`
}

// IdentityUseCase authenticates directory users and describes the caller.
type IdentityUseCase struct {
	directory ports.IdentityProvider
	tokens    ports.TokenService
	tokenTTL  time.Duration
	validate  *validator.Validate
	opts      options
}

func NewIdentityUseCase(directory ports.IdentityProvider, tokens ports.TokenService, tokenTTL time.Duration, opts ...Option) *IdentityUseCase {
	return &IdentityUseCase{
		directory: directory,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		validate:  validator.New(),
		opts:      newOptions(opts),
	}
}

// Login checks the credentials and issues an access token carrying the user's groups.
func (uc *IdentityUseCase) Login(ctx context.Context, req LoginRequest, ip string) (*LoginResult, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, ErrCredentialsRequired
	}

	user, err := uc.directory.Authenticate(ctx, req.UserID, req.Password)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidCredentials) {
			logger.LogAuthEvent(ctx, uc.opts.logger, "login", req.UserID, ip, false, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	token, err := uc.tokens.GenerateAccessToken(ports.TokenClaims{
		Username: user.Username,
		Email:    user.Email,
		Groups:   user.Groups,
	})
	if err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.opts.logger, "login", user.Username, ip, true, nil)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(uc.tokenTTL.Seconds()),
	}, nil
}

// Me returns the caller's profile. Groups and attributes come from the directory, not the token.
func (uc *IdentityUseCase) Me(ctx context.Context, claims ports.TokenClaims) (*Profile, error) {
	user, err := uc.directory.GetUser(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	groups, err := uc.directory.ListGroupsForUser(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	email := claims.Email
	if email == "" {
		email = user.Email
	}
	return &Profile{
		Username:       user.Username,
		Email:          email,
		Groups:         groups,
		UserAttributes: user.AttributeList(),
	}, nil
}
