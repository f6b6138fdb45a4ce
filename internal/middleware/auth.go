package middleware

import (
	"net/http"
	"strings"

	"draftdeck/internal/auth"
	"draftdeck/internal/httputil"
)

// AuthMiddleware validates the Authorization bearer token on every request
// and stores the user identity plus the raw token in the request context.
// The token is forwarded verbatim to the draft backend, so the gateway
// never mints credentials of its own.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health checks stay unauthenticated
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithUser(r, claims.GetUserID(), claims.DisplayName(), claims.Email, token)
			next.ServeHTTP(w, r)
		})
	}
}
