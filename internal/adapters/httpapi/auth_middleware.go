package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/tokenstore"
)

// NewAuthMiddleware enforces Authorization: Bearer <token>.
//
// The token is resolved once per request; the identity snapshot bound to it at login is stored in the
// request context.
func NewAuthMiddleware(tokens tokenstore.Store, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header", nil)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}

			id, ok, err := tokens.Resolve(r.Context(), raw)
			if err != nil {
				writeAppError(w, r, log, err)
				return
			}
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), raw, id)))
		})
	}
}

// RequireRole admits identities holding any of roles. It must run after the auth middleware.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity", nil)
				return
			}
			if !id.HasRole(roles...) {
				writeError(w, r, http.StatusForbidden, "ACCESS_DENIED", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
