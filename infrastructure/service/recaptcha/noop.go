package recaptcha

import (
	"context"

	"github.com/delphinium/delphinium/infrastructure/service/logger"
)

// disabledService is used when RECAPTCHA_ENABLED is off. Public forms go straight through.
type disabledService struct {
	log logger.Logger
}

// NewNoopRecaptchaService returns a RecaptchaService that never rejects.
func NewNoopRecaptchaService(log logger.Logger) RecaptchaService {
	return &disabledService{log: log}
}

func (d *disabledService) VerifyToken(ctx context.Context, token, remoteIP string) error {
	d.log.Debug(ctx, "reCAPTCHA disabled, skipping verification", map[string]interface{}{
		"remote_ip": remoteIP,
		"has_token": token != "",
	})
	return nil
}

func (d *disabledService) IsEnabled() bool { return false }
