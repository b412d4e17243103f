package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"todoapi/models"
)

const userColumns = `id, name, email, phone_number, password_hash, role, created_at, updated_at`

// SQLUserRepo stores users in postgres or sqlite.
type SQLUserRepo struct {
	DB *sqlx.DB
}

func NewSQLUserRepo(db *sqlx.DB) *SQLUserRepo {
	return &SQLUserRepo{DB: db}
}

// CreateUser creates a user after validating email uniqueness
func (r *SQLUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	existing, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	err = r.DB.QueryRowxContext(ctx, r.DB.Rebind(`
		INSERT INTO users (name, email, phone_number, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), user.Name, user.Email, user.PhoneNumber, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail fetches user by email
func (r *SQLUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *SQLUserRepo) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	if err := r.DB.GetContext(ctx, user, r.DB.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *SQLUserRepo) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if patch.Email != nil {
		other, err := r.GetUserByEmail(ctx, *patch.Email)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, ErrEmailTaken
		}
	}

	if sets := userAssignments(patch, time.Now().UTC()); len(sets) > 0 {
		n, err := updateRow(ctx, r.DB, "users", sets, "id = ?", id)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetUserByID(ctx, id)
}

func (r *SQLUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	sets := []assignment{{"password_hash", hash}, {"updated_at", time.Now().UTC()}}
	n, err := updateRow(ctx, r.DB, "users", sets, "id = ?", id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLUserRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := r.DB.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *SQLUserRepo) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM todos WHERE user_id = ?`), id); err != nil {
		return fmt.Errorf("delete user todos: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *SQLUserRepo) CountUsers(ctx context.Context) (total, admins int64, err error) {
	err = r.DB.QueryRowxContext(ctx, r.DB.Rebind(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0)
		FROM users
	`), models.RoleAdmin).Scan(&total, &admins)
	if err != nil {
		return 0, 0, fmt.Errorf("count users: %w", err)
	}
	return total, admins, nil
}
