package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/example/condo-admin/internal/security"
	"github.com/example/condo-admin/internal/session"
)

// UserAdmin manages console users and exposes the role catalogue.
// *session.PostgresUserStore satisfies it.
type UserAdmin interface {
	CreateUser(ctx context.Context, u *session.User) error
	ListUsers(ctx context.Context) ([]*session.User, error)
	ListRoles(ctx context.Context) (map[string][]string, error)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func handleCreateUser(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Users == nil {
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "users_unavailable")
			return
		}

		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		hash, err := session.HashPassword(req.Password)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}

		user := &session.User{
			ID:           uuid.NewString(),
			Email:        req.Email,
			Name:         req.Name,
			Role:         req.Role,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := deps.Users.CreateUser(r.Context(), user); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, user)
	}
}

func handleListUsers(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Users == nil {
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "users_unavailable")
			return
		}

		users, err := deps.Users.ListUsers(r.Context())
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, users)
	}
}

func handleListRoles(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Users == nil {
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "users_unavailable")
			return
		}

		roles, err := deps.Users.ListRoles(r.Context())
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, roles)
	}
}
