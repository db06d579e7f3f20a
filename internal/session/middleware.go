package session

import (
	"net/http"
	"strings"
)

// ErrorFunc writes an authentication/authorization error response.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, status int, code string)

// Authenticate validates the bearer token on every request and stores the
// session claims on the context for handlers and later middleware.
func Authenticate(m *Manager, onError ErrorFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				onError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				onError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			tok := strings.TrimSpace(authz[len("Bearer "):])
			claims, err := m.Validate(r.Context(), tok)
			if err != nil {
				onError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
		})
	}
}

// RequirePermissions gates a route on the caller's role permissions, all of
// which must be present.
func RequirePermissions(onError ErrorFunc, required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := CurrentSession(r.Context())
			if !ok {
				onError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			held := make(map[string]struct{}, len(claims.Permissions))
			for _, p := range claims.Permissions {
				held[p] = struct{}{}
			}

			for _, p := range required {
				if _, ok := held[p]; !ok {
					onError(w, r, http.StatusForbidden, "forbidden")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the raw bearer token from a request, for handlers
// that need it verbatim (logout, display decode).
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("Bearer "):])
}
