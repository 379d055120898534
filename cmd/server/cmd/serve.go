package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/resend/resend-go/v2"
	"github.com/spf13/cobra"

	"github.com/delphinium/delphinium/infrastructure/http/middleware"
	"github.com/delphinium/delphinium/infrastructure/service/jwt"
	"github.com/delphinium/delphinium/infrastructure/service/password"
	"github.com/delphinium/delphinium/infrastructure/service/ratelimit"
	"github.com/delphinium/delphinium/infrastructure/service/recaptcha"
	"github.com/delphinium/delphinium/internal/adapter/blob"
	httpadapter "github.com/delphinium/delphinium/internal/adapter/http"
	"github.com/delphinium/delphinium/internal/adapter/notify"
	"github.com/delphinium/delphinium/internal/adapter/persistence"
	"github.com/delphinium/delphinium/internal/ports"
	"github.com/delphinium/delphinium/internal/usecase"
)

var (
	// Server flags (override env)
	serverHost string
	serverPort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server and handle graceful shutdown on SIGINT/SIGTERM.

Examples:
  # Start with configuration from the environment
  delphinium serve

  # Start on a specific port with debug logging
  delphinium serve --port 9090 --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address, overrides SERVER_HOST")
	serveCmd.Flags().StringVar(&serverPort, "port", "", "server port, overrides SERVER_PORT")
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	if serverHost != "" {
		cfg.ServerHost = serverHost
	}
	if serverPort != "" {
		cfg.ServerPort = serverPort
	}
	log := a.logger
	log.Info(ctx, "Application starting", map[string]interface{}{
		"env":   cfg.Environment,
		"store": cfg.StoreDriver,
	})

	tokens, err := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	signer, err := newBlobSigner(a)
	if err != nil {
		return err
	}

	rateLimitService := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:       cfg.RateLimitEnabled,
		IPAttempts:    cfg.RateLimitIPAttempts,
		IPWindow:      cfg.RateLimitIPWindow,
		BlockDuration: cfg.RateLimitBlockDuration,
	}, rateLimitClient(ctx, a), log)

	notifier := newNotifier(ctx, a)
	t := a.tables()
	directory := persistence.NewUserDirectory(t.users, password.NewBcryptPasswordService(bcryptCost))
	opts := []usecase.Option{usecase.WithLogger(log)}

	services := httpadapter.Services{
		AccessRequests: usecase.NewAccessRequestUseCase(t.accessRequests, notifier, opts...),
		Forum:          usecase.NewForumUseCase(t.threads, opts...),
		Blog:           usecase.NewBlogUseCase(t.posts, opts...),
		Calendar:       usecase.NewCalendarUseCase(t.events, opts...),
		Documents:      usecase.NewDocumentUseCase(t.documents, signer, opts...),
		Incidents:      usecase.NewIncidentUseCase(t.incidents, notifier, opts...),
		Identity:       usecase.NewIdentityUseCase(directory, tokens, cfg.AccessTokenTTL, opts...),
	}

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:                 cfg.ServerHost,
			Port:                 cfg.ServerPort,
			ReadTimeout:          15 * time.Second,
			WriteTimeout:         15 * time.Second,
			IdleTimeout:          60 * time.Second,
			CorrelationIDHeader:  cfg.LogCorrelationIDHeader,
			RequestLog:           cfg.LogEnableRequestLog,
			CORSEnabled:          cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0,
			CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
			CORSAllowCredentials: cfg.CORSAllowCredentials,
			PublicRateLimit: middleware.RateLimitPolicy{
				Name:          "public",
				Attempts:      cfg.RateLimitIPAttempts,
				Window:        cfg.RateLimitIPWindow,
				BlockDuration: cfg.RateLimitBlockDuration,
			},
		},
		services,
		httpadapter.Guards{
			Auth:      middleware.NewAuthMiddleware(tokens, log),
			RateLimit: middleware.NewRateLimitMiddleware(rateLimitService, log),
			Recaptcha: middleware.NewRecaptchaMiddleware(recaptcha.NewRecaptchaService(recaptcha.RecaptchaConfig{
				Enabled:   cfg.RecaptchaEnabled,
				SecretKey: cfg.RecaptchaSecret,
				MinScore:  cfg.RecaptchaMinScore,
				Timeout:   cfg.RecaptchaTimeout,
			}, log), log),
		},
		log,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "Server forced to shutdown", err, nil)
		return err
	}
	log.Info(ctx, "Server exited", nil)
	return nil
}

func newBlobSigner(a *app) (ports.BlobSigner, error) {
	cfg := a.cfg
	if !cfg.BlobSigningEnabled() {
		a.logger.Warn(context.Background(), "BLOB_CREDENTIALS_FILE not set, document URLs disabled", nil)
		return blob.DisabledSigner{}, nil
	}
	creds, err := blob.LoadCredentials(cfg.BlobCredentialsFile, cfg.BlobSignerEmail)
	if err != nil {
		return nil, err
	}
	return blob.NewGCSSigner(cfg.DocumentsBucket, creds, cfg.BlobURLTTL), nil
}

func rateLimitClient(ctx context.Context, a *app) *redis.Client {
	if !a.cfg.RateLimitEnabled {
		return nil
	}
	return a.redisClient(ctx)
}

func newNotifier(ctx context.Context, a *app) ports.Notifier {
	cfg := a.cfg
	fanout := notify.NewFanout()
	if cfg.NotifySlackWebhookURL != "" {
		fanout.Add("slack", notify.NewSlackNotifier(cfg.NotifySlackWebhookURL))
	}
	if cfg.ResendAPIKey != "" {
		fanout.Add("email", notify.NewEmailNotifier(resend.NewClient(cfg.ResendAPIKey), cfg.NotifyEmailFrom, cfg.NotifyEmailTo))
	}
	if cfg.NotifyRedisChannel != "" {
		if client := a.redisClient(ctx); client != nil {
			fanout.Add("redis", notify.NewRedisNotifier(client, cfg.NotifyRedisChannel))
		}
	}
	if fanout.Len() == 0 {
		a.logger.Warn(ctx, "No notification channel configured", nil)
	}
	return fanout
}
