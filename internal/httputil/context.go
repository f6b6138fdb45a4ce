package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey      contextKey = "userID"
	userNameKey    contextKey = "userName"
	userEmailKey   contextKey = "userEmail"
	bearerTokenKey contextKey = "bearerToken"
)

// WithUser adds the authenticated user's identity and raw bearer token to
// the request context. The token is forwarded verbatim to the draft
// backend by the REST repository.
func WithUser(r *http.Request, userID, userName, userEmail, token string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userNameKey, userName)
	ctx = context.WithValue(ctx, userEmailKey, userEmail)
	ctx = context.WithValue(ctx, bearerTokenKey, token)
	return r.WithContext(ctx)
}

// BearerToken retrieves the raw bearer token from a context.
func BearerToken(ctx context.Context) string {
	token, _ := ctx.Value(bearerTokenKey).(string)
	return token
}

// UserFromContext retrieves the authenticated user's identity from a
// context. Empty strings when unauthenticated.
func UserFromContext(ctx context.Context) (id, name, email string) {
	id, _ = ctx.Value(userIDKey).(string)
	name, _ = ctx.Value(userNameKey).(string)
	email, _ = ctx.Value(userEmailKey).(string)
	return id, name, email
}

// WithBearerToken returns a context carrying a raw bearer token, for
// callers that do not start from an authenticated request.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}
