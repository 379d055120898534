package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Supported record store drivers.
const (
	StoreRedis    = "redis"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Tables names the logical table of every resource.
type Tables struct {
	AccessRequests string `env:"ACCESS_REQUESTS_TABLE" validate:"required"`
	Newsgroup      string `env:"NEWSGROUP_TABLE" validate:"required"`
	Blog           string `env:"BLOG_TABLE" validate:"required"`
	Calendar       string `env:"CALENDAR_TABLE" validate:"required"`
	Documents      string `env:"DOCUMENTS_TABLE" validate:"required"`
	Incidents      string `env:"INCIDENTS_TABLE" validate:"required"`
	Users          string `env:"USERS_TABLE" validate:"required"`
}

// All returns every table name, in provisioning order.
func (t Tables) All() []string {
	return []string{t.AccessRequests, t.Newsgroup, t.Blog, t.Calendar, t.Documents, t.Incidents, t.Users}
}

type Config struct {
	ServerPort  string `env:"SERVER_PORT" validate:"required,numeric"`
	ServerHost  string `env:"SERVER_HOST"`
	Environment string `env:"ENV"`

	StoreDriver     string `env:"STORE_DRIVER" validate:"oneof=redis bolt postgres memory"`
	RedisURL        string `env:"REDIS_URL" validate:"required_if=StoreDriver redis"`
	BoltPath        string `env:"BOLT_PATH" validate:"required_if=StoreDriver bolt"`
	DatabaseURL     string `env:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`
	StoreMaxRetries int    `env:"STORE_MAX_RETRIES" validate:"min=1"`
	Tables          Tables

	DocumentsBucket     string `env:"DOCUMENTS_BUCKET" validate:"required"`
	BlobCredentialsFile string `env:"BLOB_CREDENTIALS_FILE"`
	BlobSignerEmail     string `env:"BLOB_SIGNER_EMAIL"`
	BlobURLTTL          time.Duration

	JWTSecret      string `env:"JWT_SECRET" validate:"required"`
	JWTIssuer      string `env:"JWT_ISSUER"`
	AccessTokenTTL time.Duration

	NotifySlackWebhookURL string   `env:"NOTIFY_SLACK_WEBHOOK_URL" validate:"omitempty,url"`
	ResendAPIKey          string   `env:"RESEND_API_KEY"`
	NotifyEmailFrom       string   `env:"NOTIFY_EMAIL_FROM" validate:"required_with=ResendAPIKey"`
	NotifyEmailTo         []string `env:"NOTIFY_EMAIL_TO" validate:"required_with=ResendAPIKey"`
	NotifyRedisChannel    string   `env:"NOTIFY_REDIS_CHANNEL"`

	RateLimitEnabled       bool
	RateLimitIPAttempts    int `env:"RATE_LIMIT_IP_ATTEMPTS" validate:"min=1"`
	RateLimitIPWindow      time.Duration
	RateLimitBlockDuration time.Duration

	RecaptchaEnabled  bool
	RecaptchaSecret   string  `env:"RECAPTCHA_SECRET" validate:"required_if=RecaptchaEnabled true"`
	RecaptchaMinScore float64 `env:"RECAPTCHA_MIN_SCORE" validate:"min=0,max=1"`
	RecaptchaTimeout  time.Duration

	LogLevel               string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat              string `env:"LOG_FORMAT" validate:"oneof=json text"`
	LogCorrelationIDHeader string `env:"LOG_CORRELATION_ID_HEADER" validate:"required"`
	LogEnableRequestLog    bool

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

var (
	ErrInvalidTokenTTL = errors.New("invalid token TTL format")
	ErrInvalidDuration = errors.New("invalid duration format")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		Environment: getEnvOrDefault("ENV", "development"),

		StoreDriver:     getEnvOrDefault("STORE_DRIVER", StoreRedis),
		RedisURL:        getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		BoltPath:        getEnvOrDefault("BOLT_PATH", "delphinium.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StoreMaxRetries: getEnvOrDefaultInt("STORE_MAX_RETRIES", 5),
		Tables: Tables{
			AccessRequests: getEnvOrDefault("ACCESS_REQUESTS_TABLE", "delphinium-access-requests"),
			Newsgroup:      getEnvOrDefault("NEWSGROUP_TABLE", "delphinium-newsgroup"),
			Blog:           getEnvOrDefault("BLOG_TABLE", "delphinium-blog"),
			Calendar:       getEnvOrDefault("CALENDAR_TABLE", "delphinium-calendar"),
			Documents:      getEnvOrDefault("DOCUMENTS_TABLE", "delphinium-documents"),
			Incidents:      getEnvOrDefault("INCIDENTS_TABLE", "delphinium-incidents"),
			Users:          getEnvOrDefault("USERS_TABLE", "delphinium-users"),
		},

		DocumentsBucket:     getEnvOrDefault("DOCUMENTS_BUCKET", "delphinium-documents"),
		BlobCredentialsFile: os.Getenv("BLOB_CREDENTIALS_FILE"),
		BlobSignerEmail:     os.Getenv("BLOB_SIGNER_EMAIL"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getEnvOrDefault("JWT_ISSUER", "delphinium"),

		NotifySlackWebhookURL: os.Getenv("NOTIFY_SLACK_WEBHOOK_URL"),
		ResendAPIKey:          os.Getenv("RESEND_API_KEY"),
		NotifyEmailFrom:       os.Getenv("NOTIFY_EMAIL_FROM"),
		NotifyEmailTo:         parseList(os.Getenv("NOTIFY_EMAIL_TO")),
		NotifyRedisChannel:    os.Getenv("NOTIFY_REDIS_CHANNEL"),

		RateLimitEnabled:    getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		RateLimitIPAttempts: getEnvOrDefaultInt("RATE_LIMIT_IP_ATTEMPTS", 20),

		RecaptchaEnabled:  getEnvOrDefaultBool("RECAPTCHA_ENABLED", false),
		RecaptchaSecret:   os.Getenv("RECAPTCHA_SECRET"),
		RecaptchaMinScore: getEnvOrDefaultFloat("RECAPTCHA_MIN_SCORE", 0.5),

		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		LogCorrelationIDHeader: getEnvOrDefault("LOG_CORRELATION_ID_HEADER", "X-Correlation-ID"),
		LogEnableRequestLog:    getEnvOrDefaultBool("LOG_ENABLE_REQUEST_LOG", true),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),
	}

	var err error
	if cfg.AccessTokenTTL, err = parseTokenTTL(getEnvOrDefault("JWT_ACCESS_TOKEN_TTL", "3600")); err != nil {
		return nil, ErrInvalidTokenTTL
	}
	if cfg.BlobURLTTL, err = parseTokenTTL(getEnvOrDefault("BLOB_URL_TTL", "3600")); err != nil {
		return nil, fmt.Errorf("BLOB_URL_TTL: %w", ErrInvalidDuration)
	}
	if cfg.RateLimitIPWindow, err = parseTokenTTL(getEnvOrDefault("RATE_LIMIT_IP_WINDOW", "900")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_IP_WINDOW: %w", ErrInvalidDuration)
	}
	if cfg.RateLimitBlockDuration, err = parseTokenTTL(getEnvOrDefault("RATE_LIMIT_BLOCK_DURATION", "900")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BLOCK_DURATION: %w", ErrInvalidDuration)
	}

	if cfg.RecaptchaTimeout, err = parseTokenTTL(getEnvOrDefault("RECAPTCHA_TIMEOUT", "5")); err != nil {
		return nil, fmt.Errorf("RECAPTCHA_TIMEOUT: %w", ErrInvalidDuration)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct rules and reports offending settings by their environment names.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if", "required_with":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Address is the listen address of the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// BlobSigningEnabled reports whether signed URL credentials are configured.
func (c *Config) BlobSigningEnabled() bool {
	return c.BlobCredentialsFile != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// parseTokenTTL reads a whole number of seconds.
func parseTokenTTL(value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

// parseList splits a comma separated setting. It returns nil when nothing is listed.
func parseList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}
