package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/infrastructure/service/ratelimit"
)

// RateLimitPolicy bounds attempts per client IP on one group of endpoints.
type RateLimitPolicy struct {
	Name          string
	Attempts      int
	Window        time.Duration
	BlockDuration time.Duration
}

type RateLimitMiddleware struct {
	rateLimitService ratelimit.RateLimitService
	logger           logger.Logger
}

func NewRateLimitMiddleware(rateLimitService ratelimit.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           log,
	}
}

// Limit counts every request of the client IP against policy. Store errors let the request through.
func (m *RateLimitMiddleware) Limit(policy RateLimitPolicy, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimitService == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientIP := ClientIP(r)
		key := fmt.Sprintf("%s:ip:%s", policy.Name, clientIP)
		fields := map[string]interface{}{
			"ip":        clientIP,
			"path":      r.URL.Path,
			"key":       key,
			"userAgent": r.UserAgent(),
		}

		isBlocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err != nil {
			m.logger.Error(ctx, "Failed to check block status", err, fields)
		}
		if isBlocked {
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", fields)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.BlockDuration.Seconds())))
			response.TooManyRequests(w, "Too many requests. Please try again later.")
			return
		}

		allowed, err := m.rateLimitService.CheckLimit(ctx, key, policy.Attempts, policy.Window)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, fields)
			allowed = true
		}
		if !allowed {
			if err := m.rateLimitService.Block(ctx, key, policy.BlockDuration, "Rate limit exceeded"); err != nil {
				m.logger.Error(ctx, "Failed to block IP", err, fields)
			}
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", fields)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.BlockDuration.Seconds())))
			response.TooManyRequests(w, "Too many requests. Please try again later.")
			return
		}

		if err := m.rateLimitService.Increment(ctx, key, policy.Window); err != nil {
			m.logger.Error(ctx, "Failed to increment rate limit", err, fields)
		}

		next.ServeHTTP(w, r)
	}
}

// ClientIP extracts the client IP, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
