package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/delphinium/delphinium/infrastructure/service/jwt"
	"github.com/delphinium/delphinium/infrastructure/service/password"
	"github.com/delphinium/delphinium/internal/adapter/persistence"
	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

func newIdentityUseCase(t *testing.T) (*IdentityUseCase, *jwt.JWTService) {
	t.Helper()
	dir := persistence.NewUserDirectory(newTable[domain.User]("users"), password.NewBcryptPasswordService(bcrypt.MinCost))
	require.NoError(t, dir.Register(context.Background(), &domain.User{
		Username:   "rita",
		Email:      "rita@example.com",
		Groups:     []string{domain.GroupResident},
		Attributes: map[string]string{"name": "Rita"},
	}, "s3cret"))

	tokens, err := jwt.NewJWTService("test-secret", "delphinium", time.Hour)
	require.NoError(t, err)
	return NewIdentityUseCase(dir, tokens, time.Hour), tokens
}

func TestIdentityUseCase_Login(t *testing.T) {
	uc, tokens := newIdentityUseCase(t)
	ctx := context.Background()

	res, err := uc.Login(ctx, LoginRequest{UserID: "rita", Password: "s3cret"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := tokens.ValidateAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "rita", claims.Username)
	assert.Equal(t, []string{domain.GroupResident}, claims.Groups)

	_, err = uc.Login(ctx, LoginRequest{UserID: "rita", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Login(ctx, LoginRequest{UserID: "rita"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrCredentialsRequired)
}

func TestIdentityUseCase_Me(t *testing.T) {
	uc, _ := newIdentityUseCase(t)
	ctx := context.Background()

	profile, err := uc.Me(ctx, ports.TokenClaims{Username: "rita"})
	require.NoError(t, err)
	assert.Equal(t, "rita", profile.Username)
	assert.Equal(t, "rita@example.com", profile.Email)
	assert.Equal(t, []string{domain.GroupResident}, profile.Groups)
	assert.Equal(t, []domain.UserAttribute{
		{Name: "email", Value: "rita@example.com"},
		{Name: "name", Value: "Rita"},
	}, profile.UserAttributes)

	_, err = uc.Me(ctx, ports.TokenClaims{Username: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
