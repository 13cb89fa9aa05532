package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"changehub/backend/internal/repository"
)

type updateProfileRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type profileResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	user, err := s.users.FindByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeErr(w, http.StatusNotFound, "user not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"user": profileResponse{
			ID:        user.ID,
			Username:  user.Username,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
			UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
		},
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.FindByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeErr(w, http.StatusNotFound, "user not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	newUsername := strings.TrimSpace(req.Username)
	if newUsername != "" && newUsername != user.Username {
		if err := s.users.UpdateUsername(r.Context(), user.ID, newUsername); err != nil {
			if errors.Is(err, repository.ErrDuplicateUsername) {
				writeErr(w, http.StatusConflict, "username already taken")
				return
			}
			writeErr(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
		user.Username = newUsername
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			writeErr(w, http.StatusBadRequest, "current password is required")
			return
		}
		if !CheckPassword(user.PasswordHash, req.CurrentPassword) {
			writeErr(w, http.StatusBadRequest, "current password is incorrect")
			return
		}
		if len(req.NewPassword) < minPasswordLength {
			writeErr(w, http.StatusBadRequest, fmt.Sprintf("new password must be at least %d characters", minPasswordLength))
			return
		}
		hash, err := HashPassword(req.NewPassword)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
		if err := s.users.UpdatePassword(r.Context(), user.ID, hash); err != nil {
			writeErr(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"message": "profile updated",
		"user": userResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
		},
	})
}

func (s *Server) handleAdminPing(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"message":  "welcome admin",
		"username": identity.Username,
	})
}

func (s *Server) handleUserPing(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"message":  "welcome user",
		"username": identity.Username,
	})
}
