package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/condo-admin/internal/security"
	"github.com/example/condo-admin/internal/session"
)

type loginResponse struct {
	CorrelationID string           `json:"correlation_id"`
	Session       *session.Session `json:"session"`
}

type meResponse struct {
	CorrelationID string   `json:"correlation_id"`
	Subject       string   `json:"subject"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Permissions   []string `json:"permissions"`
}

func handleLogin(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Sessions == nil {
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "sessions_unavailable")
			return
		}

		var creds session.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		sess, err := deps.Sessions.Login(r.Context(), creds)
		if err != nil {
			if errors.Is(err, session.ErrInvalidCredentials) || errors.Is(err, session.ErrUserNotFound) {
				security.WriteJSONError(w, r, http.StatusUnauthorized, "invalid_credentials")
				return
			}
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}

		writeJSON(w, r, http.StatusOK, loginResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Session:       sess,
		})
	}
}

func handleLogout(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := session.BearerToken(r)
		if token == "" {
			security.WriteJSONError(w, r, http.StatusUnauthorized, "missing_token")
			return
		}

		if err := deps.Sessions.Logout(r.Context(), token); err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMe(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := session.CurrentSession(r.Context())
		if !ok {
			security.WriteJSONError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		writeJSON(w, r, http.StatusOK, meResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Subject:       claims.Subject,
			Name:          claims.Name,
			Role:          claims.Role,
			Permissions:   claims.Permissions,
		})
	}
}
