package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/delphinium/delphinium/internal/ports"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// accessClaims is the payload of an access token.
type accessClaims struct {
	Email  string   `json:"email,omitempty"`
	Groups []string `json:"groups"`
	Type   string   `json:"type"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 access tokens.
type JWTService struct {
	hmacSecret []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

func NewJWTService(secret, issuer string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid access token TTL: %s", ttl)
	}
	return &JWTService{
		hmacSecret: []byte(secret),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// TTL returns the access token lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

func (s *JWTService) GenerateAccessToken(claims ports.TokenClaims) (string, error) {
	now := s.now()
	groups := claims.Groups
	if groups == nil {
		groups = []string{}
	}
	tokenClaims := accessClaims{
		Email:  claims.Email,
		Groups: groups,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*ports.TokenClaims, error) {
	claims := &accessClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.hmacSecret, nil
	}, opts...)
	if err != nil {
		return nil, s.handleValidationError(err)
	}
	if !token.Valid || claims.Type != "access" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &ports.TokenClaims{
		Username: claims.Subject,
		Email:    claims.Email,
		Groups:   claims.Groups,
	}, nil
}

func (s *JWTService) handleValidationError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}
