package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devconnect/devconnect/internal/auth"
	"github.com/devconnect/devconnect/internal/metrics"
)

// DefaultTokenHeader is the request header that carries the bearer token.
const DefaultTokenHeader = "x-auth-token"

// TokenVerifier checks a token and returns the identity it was issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
	Metrics  metrics.Recorder
	// Header is the token header. Defaults to DefaultTokenHeader.
	Header string
}

// Auth returns a middleware that authenticates private requests.
// It reads the token from the configured header, falling back to
// "Authorization: Bearer <token>", verifies it, and binds the identity
// into the request context. It performs no storage lookups.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	header := cfg.Header
	if header == "" {
		header = DefaultTokenHeader
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, header)
			if token == "" {
				reject(cfg.Logger, recorder, r, metrics.ReasonMissingToken)
				writeAuthError(w, "UNAUTHENTICATED", "No token, authorization denied")
				return
			}

			userID, err := cfg.Verifier.Verify(token)
			if err != nil {
				reason := rejectionReason(err)
				reject(cfg.Logger, recorder, r, reason)
				if reason == metrics.ReasonExpired {
					writeAuthError(w, "TOKEN_EXPIRED", "Token has expired")
				} else {
					writeAuthError(w, "INVALID_TOKEN", "Token is not valid")
				}
				return
			}

			noteUserID(r.Context(), userID)
			ctx := auth.ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken returns the configured header value as sent, or the
// credentials of an "Authorization: Bearer <token>" header when the former
// is absent. The scheme is matched case-insensitively; the token itself is
// never trimmed or rewritten before verification.
func extractToken(r *http.Request, header string) string {
	if token := r.Header.Get(header); token != "" {
		return token
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return token
	}
	return ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return metrics.ReasonExpired
	case errors.Is(err, auth.ErrInvalidSignature):
		return metrics.ReasonInvalidSignature
	default:
		return metrics.ReasonMalformed
	}
}

func reject(logger *slog.Logger, recorder metrics.Recorder, r *http.Request, reason string) {
	recorder.IncAuthRejected(reason)
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
func writeAuthError(w http.ResponseWriter, code, message string) {
	writeJSONError(w, http.StatusUnauthorized, code, message)
}
