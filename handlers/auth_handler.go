package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"todoapi/apperrors"
	"todoapi/models"
	"todoapi/repository"
)

// errBadCredentials is shared by unknown-email and wrong-password logins so
// both produce the same response.
var errBadCredentials = apperrors.Authentication("invalid email or password")

// AuthHandler serves registration and login.
type AuthHandler struct {
	Users  repository.UserRepository
	Hasher PasswordHasher
	Tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// dummy returns a hash made with the same Hasher, verified against on
// unknown emails so both login failures cost one bcrypt comparison.
func (h *AuthHandler) dummy(ctx context.Context) string {
	h.dummyOnce.Do(func() {
		hash, err := h.Hasher.Hash(ctx, "not-a-real-password")
		if err != nil {
			slog.ErrorContext(ctx, "Unable to prepare login dummy hash", slog.Any("error", err))
			return
		}
		h.dummyHash = hash
	})
	return h.dummyHash
}

type registerResponse struct {
	UserID int64 `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := h.Hasher.Hash(storeContext(r), req.Password)
	if err != nil {
		writeError(w, r, apperrors.Internal("hash password", err))
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Role:         *req.Role,
	}
	if err := h.Users.CreateUser(storeContext(r), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeError(w, r, apperrors.Conflict("email already registered"))
			return
		}
		writeError(w, r, apperrors.Internal("create user", err))
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{UserID: user.ID})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || strings.TrimSpace(req.Password) == "" {
		writeError(w, r, apperrors.Validation("email and password are required"))
		return
	}

	ctx := storeContext(r)
	user, err := h.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if hash := h.dummy(ctx); hash != "" {
				_, _ = h.Hasher.Verify(ctx, req.Password, hash)
			}
			writeError(w, r, errBadCredentials)
			return
		}
		writeError(w, r, apperrors.Internal("load user", err))
		return
	}

	ok, err := h.Hasher.Verify(ctx, req.Password, user.PasswordHash)
	if err != nil {
		writeError(w, r, apperrors.Internal("verify password", err))
		return
	}
	if !ok {
		writeError(w, r, errBadCredentials)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		writeError(w, r, apperrors.Internal("issue token", err))
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}
