package http

import (
	"encoding/json"
	"net/http"

	"github.com/examforge/examforge/internal/apperr"
	auth "github.com/examforge/examforge/internal/auth/middleware"
	"github.com/examforge/examforge/internal/rbac"
	"github.com/examforge/examforge/internal/users"
)

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(store *users.SQLStore, authSvc *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		u, err := store.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			writeErr(w, err)
			return
		}
		tok, err := authSvc.IssueJWT(u.ID, u.Username, u.Role)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": tok,
			"userInfo":     u,
		})
	}
}

// POST /auth/register  { "username": "...", "password": "...", "fullName": "..." }
func RegisterHandler(store *users.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			FullName string `json:"fullName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		u, err := store.Register(r.Context(), req.Username, req.Password, req.FullName)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"userInfo": u})
	}
}

// POST /auth/change-password (authenticated)
func ChangePasswordHandler(store *users.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		username := rbac.UsernameFromContext(r.Context())
		if err := store.ChangePassword(r.Context(), username, req.CurrentPassword, req.NewPassword); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
	}
}

// DELETE /auth/account (authenticated)
func DeleteAccountHandler(store *users.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.InvalidArgument("bad json"))
			return
		}
		username := rbac.UsernameFromContext(r.Context())
		if err := store.Delete(r.Context(), username, req.Password); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
	}
}
