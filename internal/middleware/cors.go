package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists exact origins or "*.domain" subdomain patterns.
	// An empty list denies every cross-origin request.
	AllowedOrigins []string

	AllowedMethods []string

	// AllowedHeaders must include the token header or browsers cannot
	// call private routes.
	AllowedHeaders []string

	ExposedHeaders []string

	// AllowCredentials must stay false while tokens travel in headers.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// DefaultCORSConfig returns the defaults for the DevConnect API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			DefaultTokenHeader,
			"X-Request-ID",
			"Accept",
			"Accept-Language",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 86400,
	}
}

// corsPolicy is a CORSConfig compiled into header values and origin sets.
type corsPolicy struct {
	exact     map[string]struct{}
	suffixes  []string // ".example.com" for "*.example.com"
	methods   string
	headers   string
	exposed   string
	maxAge    string
	withCreds bool
}

func compileCORS(cfg CORSConfig) *corsPolicy {
	p := &corsPolicy{
		exact:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods:   strings.Join(cfg.AllowedMethods, ", "),
		headers:   strings.Join(cfg.AllowedHeaders, ", "),
		exposed:   strings.Join(cfg.ExposedHeaders, ", "),
		withCreds: cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}

	for _, origin := range cfg.AllowedOrigins {
		origin = strings.ToLower(strings.TrimSpace(origin))
		if rest, ok := strings.CutPrefix(origin, "*."); ok {
			p.suffixes = append(p.suffixes, "."+rest)
			continue
		}
		p.exact[origin] = struct{}{}
	}
	return p
}

// allows reports whether origin may read responses. A "*.example.com"
// pattern matches "https://api.example.com" but not "https://notexample.com".
func (p *corsPolicy) allows(origin string) bool {
	origin = strings.ToLower(origin)
	if _, ok := p.exact[origin]; ok {
		return true
	}

	_, host, found := strings.Cut(origin, "://")
	if !found {
		return false
	}
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// CORS returns a middleware that handles Cross-Origin Resource Sharing,
// including preflight OPTIONS requests. Requests without an Origin header
// pass through untouched.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := compileCORS(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !policy.allows(origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				// The browser blocks the response without CORS headers.
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if policy.withCreds {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if policy.exposed != "" {
				h.Set("Access-Control-Expose-Headers", policy.exposed)
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", policy.methods)
				h.Set("Access-Control-Allow-Headers", policy.headers)
				if policy.maxAge != "" {
					h.Set("Access-Control-Max-Age", policy.maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
