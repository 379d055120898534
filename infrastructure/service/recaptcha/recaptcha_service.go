package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/delphinium/delphinium/infrastructure/service/logger"
)

// DefaultVerifyURL is Google's siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var (
	ErrTokenRequired      = errors.New("reCAPTCHA token is required")
	ErrVerificationFailed = errors.New("reCAPTCHA verification failed")
)

// RecaptchaService verifies the human check attached to public form submissions.
type RecaptchaService interface {
	VerifyToken(ctx context.Context, token, remoteIP string) error
	IsEnabled() bool
}

// RecaptchaConfig configures NewRecaptchaService.
type RecaptchaConfig struct {
	Enabled   bool
	SecretKey string
	// MinScore applies to v3 tokens; v2 responses carry no score.
	MinScore  float64
	Timeout   time.Duration
	VerifyURL string
}

type recaptchaService struct {
	config     RecaptchaConfig
	logger     logger.Logger
	httpClient *http.Client
}

// siteVerifyResponse is the body returned by siteverify.
type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// NewRecaptchaService returns a siteverify client, or a no-op service when disabled.
func NewRecaptchaService(config RecaptchaConfig, log logger.Logger) RecaptchaService {
	if !config.Enabled {
		return NewNoopRecaptchaService(log)
	}
	if config.VerifyURL == "" {
		config.VerifyURL = DefaultVerifyURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &recaptchaService{
		config:     config,
		logger:     log,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

func (s *recaptchaService) VerifyToken(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		s.logger.Warn(ctx, "reCAPTCHA token is empty", nil)
		return ErrTokenRequired
	}

	form := url.Values{}
	form.Set("secret", s.config.SecretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create reCAPTCHA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reCAPTCHA service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reCAPTCHA service returned status %d", resp.StatusCode)
	}

	var result siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode reCAPTCHA response: %w", err)
	}

	fields := map[string]interface{}{
		"success":     result.Success,
		"action":      result.Action,
		"hostname":    result.Hostname,
		"error_codes": result.ErrorCodes,
	}
	if result.Score != nil {
		fields["score"] = *result.Score
	}

	if !result.Success || (result.Score != nil && *result.Score < s.config.MinScore) {
		s.logger.Warn(ctx, "reCAPTCHA verification failed", fields)
		return ErrVerificationFailed
	}
	s.logger.Debug(ctx, "reCAPTCHA verification successful", fields)
	return nil
}

func (s *recaptchaService) IsEnabled() bool {
	return true
}
