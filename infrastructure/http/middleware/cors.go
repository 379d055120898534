package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy describes which browser origins may call the API.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowCredentials bool
	// CorrelationHeader is exposed to scripts so clients can quote it in reports.
	CorrelationHeader string
	MaxAge            time.Duration
}

// The site only ever reads, creates and updates.
var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}

// CORSMiddleware answers preflights and stamps allow headers for listed origins.
// An origin not in the list gets no CORS headers; the browser then blocks the response.
func CORSMiddleware(policy CORSPolicy) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(policy.AllowedOrigins))
	for _, o := range policy.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	correlation := policy.CorrelationHeader
	if correlation == "" {
		correlation = CorrelationIDHeader
	}
	allowHeaders := strings.Join([]string{"Content-Type", "Authorization", RecaptchaHeader, correlation}, ", ")
	maxAge := policy.MaxAge
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			_, ok := allowed[origin]
			if origin != "" && ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", correlation)
				if policy.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			if ok {
				h.Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ","))
				h.Set("Access-Control-Allow-Headers", allowHeaders)
				h.Set("Access-Control-Max-Age", strconv.Itoa(int(maxAge.Seconds())))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
