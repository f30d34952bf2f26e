package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userIDKey is the context key for the authenticated user ID.
	userIDKey contextKey = "user_id"
)

// ContextWithUserID binds the authenticated identity to the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated identity.
// The second result is false when the request did not pass the auth gate.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// MustUserIDFromContext returns the authenticated identity.
// Panics if not present (use only behind the auth gate).
func MustUserIDFromContext(ctx context.Context) string {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		panic("user id not found in context - ensure auth middleware is applied")
	}
	return id
}
