package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(claims ports.TokenClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateAccessToken(token string) (*ports.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.TokenClaims), args.Error(1)
}

type MockRateLimitService struct {
	mock.Mock
}

func (m *MockRateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	return m.Called(ctx, key, window).Error(0)
}

func (m *MockRateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	return m.Called(ctx, key, duration, reason).Error(0)
}

func (m *MockRateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(CallerName(r.Context())))
}

func TestAuthMiddleware_RequireGroups(t *testing.T) {
	tokens := new(MockTokenService)
	tokens.On("ValidateAccessToken", "resident-token").Return(&ports.TokenClaims{Username: "rita", Groups: []string{"resident"}}, nil)
	tokens.On("ValidateAccessToken", "admin-token").Return(&ports.TokenClaims{Username: "adam", Groups: []string{"Admin"}}, nil)
	tokens.On("ValidateAccessToken", "bad-token").Return(nil, errors.New("invalid token"))

	auth := NewAuthMiddleware(tokens, logger.NewNopLogger())
	handler := auth.RequireGroups(domain.AdminGroups, okHandler)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad-token", wantStatus: http.StatusUnauthorized},
		{name: "not in group", header: "Bearer resident-token", wantStatus: http.StatusForbidden},
		{name: "admin", header: "Bearer admin-token", wantStatus: http.StatusOK, wantBody: "adam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/incidents", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	var seen string
	handler := CorrelationIDMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "given-id")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", rr.Header().Get(CorrelationIDHeader))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get(CorrelationIDHeader))
	assert.Equal(t, rr.Header().Get(CorrelationIDHeader), seen)
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware(CORSPolicy{
		AllowedOrigins:   []string{"https://delphinium.example/"},
		AllowCredentials: true,
	})(http.HandlerFunc(okHandler))

	t.Run("preflight from listed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/blog/posts", nil)
		req.Header.Set("Origin", "https://delphinium.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "https://delphinium.example", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET,POST,PUT,OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), RecaptchaHeader)
		assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("preflight from unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/blog/posts", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("simple request exposes correlation header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/blog/posts", nil)
		req.Header.Set("Origin", "https://delphinium.example")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, CorrelationIDHeader, rr.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "Origin", rr.Header().Get("Vary"))
	})

	t.Run("plain OPTIONS reaches the router", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/blog/posts", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	policy := RateLimitPolicy{Name: "login", Attempts: 2, Window: time.Minute, BlockDuration: 15 * time.Minute}
	key := "login:ip:10.0.0.1"

	t.Run("allowed", func(t *testing.T) {
		svc := new(MockRateLimitService)
		svc.On("IsBlocked", mock.Anything, key).Return(false, nil)
		svc.On("CheckLimit", mock.Anything, key, 2, time.Minute).Return(true, nil)
		svc.On("Increment", mock.Anything, key, time.Minute).Return(nil)

		handler := NewRateLimitMiddleware(svc, logger.NewNopLogger()).Limit(policy, okHandler)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("exceeded", func(t *testing.T) {
		svc := new(MockRateLimitService)
		svc.On("IsBlocked", mock.Anything, key).Return(false, nil)
		svc.On("CheckLimit", mock.Anything, key, 2, time.Minute).Return(false, nil)
		svc.On("Block", mock.Anything, key, 15*time.Minute, "Rate limit exceeded").Return(nil)

		handler := NewRateLimitMiddleware(svc, logger.NewNopLogger()).Limit(policy, okHandler)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "900", rr.Header().Get("Retry-After"))
		svc.AssertExpectations(t)
	})

	t.Run("blocked", func(t *testing.T) {
		svc := new(MockRateLimitService)
		svc.On("IsBlocked", mock.Anything, key).Return(true, nil)

		handler := NewRateLimitMiddleware(svc, logger.NewNopLogger()).Limit(policy, okHandler)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		svc.AssertNotCalled(t, "CheckLimit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(logger.NewNopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
}

func TestStatusRecorder_DefaultsToOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	assert.Equal(t, http.StatusOK, rec.code())
	rec.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rec.code())
}
