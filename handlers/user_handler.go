package handlers

import (
	"errors"
	"net/http"

	"todoapi/apperrors"
	"todoapi/auth"
	"todoapi/models"
	"todoapi/repository"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	Users  repository.UserRepository
	Hasher PasswordHasher
}

type userResponse struct {
	User *models.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// identity returns the caller attached by the auth middleware. Routes that
// reach these handlers are always wrapped, so a miss is a wiring fault.
func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return auth.Identity{}, apperrors.Authentication("no token provided")
	}
	return id, nil
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("user not found")
	}
	return apperrors.Internal("load user", err)
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Users.GetUserByID(storeContext(r), id.UserID)
	if err != nil {
		writeError(w, r, userLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// UpdateMe handles PUT /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Users.UpdateUser(storeContext(r), id.UserID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeError(w, r, apperrors.Conflict("email already registered"))
			return
		}
		writeError(w, r, userLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// ChangePassword handles POST /api/users/me/change-password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, r, apperrors.Validation("currentPassword and newPassword are required"))
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Users.GetUserByID(storeContext(r), id.UserID)
	if err != nil {
		writeError(w, r, userLookupError(err))
		return
	}
	ok, err := h.Hasher.Verify(storeContext(r), req.CurrentPassword, user.PasswordHash)
	if err != nil {
		writeError(w, r, apperrors.Internal("verify password", err))
		return
	}
	if !ok {
		writeError(w, r, apperrors.Authentication("current password is incorrect"))
		return
	}

	hash, err := h.Hasher.Hash(storeContext(r), req.NewPassword)
	if err != nil {
		writeError(w, r, apperrors.Internal("hash password", err))
		return
	}
	if err := h.Users.UpdatePassword(storeContext(r), user.ID, hash); err != nil {
		writeError(w, r, userLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}
