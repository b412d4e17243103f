package handlers

import (
	"context"

	"todoapi/models"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// TokenIssuer signs bearer tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, email string, role models.Role) (string, error)
}
