package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clouddelivery/backend/internal/service/models/claims"
	"github.com/clouddelivery/backend/internal/service/models/role"
	"github.com/clouddelivery/backend/internal/transport/http/httperr"
)

type ctxKey struct{}

// verifier validates a session token and returns its claims.
type verifier interface {
	VerifyToken(token string) (*claims.Claims, error)
}

// NewContext returns a context carrying the verified claims.
func NewContext(ctx context.Context, c *claims.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext extracts the verified claims attached by the middleware.
func FromContext(ctx context.Context) (*claims.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*claims.Claims)
	return c, ok
}

// NewAuthMiddleware gates requests on a bearer token. A missing token is
// rejected with 401, a present but invalid one with 403; the asymmetry is
// part of the API contract.
func NewAuthMiddleware(v verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httperr.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "token required"})
				return
			}

			decoded, err := v.VerifyToken(token)
			if err != nil {
				slog.Warn("Token verification failed", "error", err)
				httperr.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "invalid token"})
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), decoded)))
		})
	}
}

// RequireRole rejects authenticated requests whose claims carry a
// different role.
func RequireRole(required role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := FromContext(r.Context())
			if !ok {
				httperr.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "token required"})
				return
			}
			if c.Role != required {
				httperr.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
