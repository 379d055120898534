package middleware

import (
	"errors"
	"net/http"

	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/infrastructure/service/recaptcha"
)

// RecaptchaHeader carries the token produced by the client-side widget.
const RecaptchaHeader = "X-Recaptcha-Token"

type RecaptchaMiddleware struct {
	recaptchaService recaptcha.RecaptchaService
	logger           logger.Logger
}

func NewRecaptchaMiddleware(recaptchaService recaptcha.RecaptchaService, log logger.Logger) *RecaptchaMiddleware {
	return &RecaptchaMiddleware{
		recaptchaService: recaptchaService,
		logger:           log,
	}
}

// Verify rejects submissions whose token does not pass verification.
func (m *RecaptchaMiddleware) Verify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.recaptchaService == nil || !m.recaptchaService.IsEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		err := m.recaptchaService.VerifyToken(r.Context(), r.Header.Get(RecaptchaHeader), ClientIP(r))
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, recaptcha.ErrTokenRequired), errors.Is(err, recaptcha.ErrVerificationFailed):
			logger.LogSecurityEvent(r.Context(), m.logger, "recaptcha_rejected", "medium", map[string]interface{}{
				"path": r.URL.Path,
				"ip":   ClientIP(r),
			})
			response.BadRequest(w, err.Error())
		default:
			m.logger.Error(r.Context(), "reCAPTCHA verification unavailable", err, nil)
			response.InternalServerError(w, err)
		}
	}
}
