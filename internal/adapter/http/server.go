package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/delphinium/delphinium/infrastructure/http/middleware"
	"github.com/delphinium/delphinium/infrastructure/http/response"
	"github.com/delphinium/delphinium/infrastructure/service/logger"
	"github.com/delphinium/delphinium/infrastructure/service/metrics"
)

// Server represents the HTTP server
type Server struct {
	addr    string
	handler http.Handler
	server  *http.Server
	logger  logger.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	CorrelationIDHeader string
	RequestLog          bool

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// PublicRateLimit guards the endpoints reachable without a token.
	PublicRateLimit middleware.RateLimitPolicy
}

// Services are the use cases served by the router.
type Services struct {
	AccessRequests AccessRequestService
	Forum          ForumService
	Blog           BlogService
	Calendar       CalendarService
	Documents      DocumentService
	Incidents      IncidentService
	Identity       IdentityService
}

// Guards are the request checks applied per route.
type Guards struct {
	Auth      *middleware.AuthMiddleware
	RateLimit *middleware.RateLimitMiddleware
	Recaptcha *middleware.RecaptchaMiddleware
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, services Services, guards Guards, log logger.Logger) *Server {
	router := NewRouter(config, services, guards, log)

	var handler http.Handler = router
	if config.CORSEnabled {
		handler = middleware.CORSMiddleware(middleware.CORSPolicy{
			AllowedOrigins:    config.CORSAllowedOrigins,
			AllowCredentials:  config.CORSAllowCredentials,
			CorrelationHeader: config.CorrelationIDHeader,
		})(handler)
	}
	if config.RequestLog {
		handler = middleware.RequestLogMiddleware(log)(handler)
	}
	handler = middleware.CorrelationIDMiddleware(config.CorrelationIDHeader)(handler)
	handler = middleware.RecoveryMiddleware(log)(handler)

	addr := net.JoinHostPort(config.Host, config.Port)
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  log,
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// NewRouter registers every route with its group requirements.
func NewRouter(config ServerConfig, services Services, guards Guards, log logger.Logger) *mux.Router {
	errs := errorWriter{logger: log}
	auth := guards.Auth
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.Use(middleware.MetricsMiddleware(routeTemplate))

	router.Handle("/health", only(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "healthy"})
	}))
	router.Handle("/metrics", metrics.Handler())

	public := func(next http.HandlerFunc) http.HandlerFunc {
		return guards.RateLimit.Limit(config.PublicRateLimit, next)
	}

	access := NewAccessRequestHandler(services.AccessRequests, errs)
	router.Handle("/access-requests", collection(auth.RequireAdmin(access.List), public(guards.Recaptcha.Verify(access.Create))))

	forum := NewForumHandler(services.Forum, errs)
	router.Handle("/newsgroup/threads", collection(auth.RequireMember(forum.ListThreads), auth.RequireMember(forum.CreateThread)))
	router.Handle("/newsgroup/threads/{threadId}/replies", only(http.MethodPost, auth.RequireMember(forum.AddReply)))

	blog := NewBlogHandler(services.Blog, errs)
	router.Handle("/blog/posts", collection(auth.RequireMember(blog.List), auth.RequireAdmin(blog.Create)))

	calendar := NewCalendarHandler(services.Calendar, errs)
	router.Handle("/calendar/events", collection(auth.RequireMember(calendar.List), auth.RequireAdmin(calendar.Create)))

	documents := NewDocumentHandler(services.Documents, errs)
	router.Handle("/documents", collection(auth.RequireMember(documents.List), auth.RequireAdmin(documents.Create)))
	router.Handle("/documents/upload-url", only(http.MethodPost, auth.RequireAdmin(documents.UploadURL)))
	router.Handle("/documents/{documentId}/download-url", only(http.MethodGet, auth.RequireMember(documents.DownloadURL)))

	incidents := NewIncidentHandler(services.Incidents, errs)
	router.Handle("/incidents", collection(auth.RequireMember(incidents.List), auth.RequireAdmin(incidents.Create)))
	router.Handle("/incidents/{incidentId}", only(http.MethodPut, auth.RequireAdmin(incidents.Update)))

	identity := NewAuthHandler(services.Identity, errs)
	router.Handle("/auth/login", only(http.MethodPost, public(identity.Login)))
	router.Handle("/auth/me", only(http.MethodGet, auth.RequireAuth(identity.Me)))

	return router
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{"addr": s.addr})
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
