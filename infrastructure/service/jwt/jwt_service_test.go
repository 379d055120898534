package jwt

import (
	"testing"
	"time"

	"github.com/delphinium/delphinium/internal/ports"
)

func TestJWTService(t *testing.T) {
	service, err := NewJWTService("test-secret", "delphinium", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create JWT service: %v", err)
	}

	claims := ports.TokenClaims{Username: "alice", Email: "alice@example.com", Groups: []string{"resident"}}

	t.Run("GenerateAccessToken", func(t *testing.T) {
		token, err := service.GenerateAccessToken(claims)
		if err != nil {
			t.Errorf("Failed to generate access token: %v", err)
		}
		if token == "" {
			t.Error("Access token should not be empty")
		}
	})

	t.Run("ValidateAccessToken", func(t *testing.T) {
		tokenString, err := service.GenerateAccessToken(claims)
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}

		got, err := service.ValidateAccessToken(tokenString)
		if err != nil {
			t.Fatalf("Failed to validate token: %v", err)
		}
		if got.Username != "alice" || got.Email != "alice@example.com" {
			t.Errorf("Unexpected claims: %+v", got)
		}
		if len(got.Groups) != 1 || got.Groups[0] != "resident" {
			t.Errorf("Expected groups [resident], got %v", got.Groups)
		}
	})

	t.Run("ValidateInvalidToken", func(t *testing.T) {
		if _, err := service.ValidateAccessToken("invalid-token"); err != ErrInvalidToken {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("ValidateWrongSecret", func(t *testing.T) {
		other, err := NewJWTService("other-secret", "delphinium", time.Hour)
		if err != nil {
			t.Fatalf("Failed to create JWT service: %v", err)
		}
		token, err := other.GenerateAccessToken(claims)
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}
		if _, err := service.ValidateAccessToken(token); err != ErrInvalidToken {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("ValidateWrongIssuer", func(t *testing.T) {
		other, err := NewJWTService("test-secret", "someone-else", time.Hour)
		if err != nil {
			t.Fatalf("Failed to create JWT service: %v", err)
		}
		token, err := other.GenerateAccessToken(claims)
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}
		if _, err := service.ValidateAccessToken(token); err == nil {
			t.Error("Should reject a token from another issuer")
		}
	})

	t.Run("ValidateExpiredToken", func(t *testing.T) {
		issued := time.Now().Add(-2 * time.Hour)
		past, err := NewJWTService("test-secret", "delphinium", time.Hour)
		if err != nil {
			t.Fatalf("Failed to create JWT service: %v", err)
		}
		past.now = func() time.Time { return issued }

		token, err := past.GenerateAccessToken(claims)
		if err != nil {
			t.Fatalf("Failed to generate access token: %v", err)
		}

		if _, err := service.ValidateAccessToken(token); err != ErrTokenExpired {
			t.Errorf("Expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("RejectsEmptySecret", func(t *testing.T) {
		if _, err := NewJWTService("", "delphinium", time.Hour); err == nil {
			t.Error("Should require a secret")
		}
	})
}
