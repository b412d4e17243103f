package repository

import (
	"context"
	"errors"
	"time"

	"todoapi/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already exists")
)

// UserRepository defines the interface for user operations
type UserRepository interface {
	// CreateUser checks the email is free, then inserts and sets user.ID.
	// The check and insert are separate statements; the unique index is the
	// final arbiter when two registrations race.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	// DeleteUser removes the user and every todo they own.
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (total, admins int64, err error)
}

// TodoRepository defines the interface for todo operations. Every read and
// write is filtered by a Scope; a scoped miss is ErrNotFound whether the row
// is absent or owned by someone else.
type TodoRepository interface {
	CreateTodo(ctx context.Context, todo *models.Todo) error
	ListTodos(ctx context.Context, scope Scope) ([]*models.Todo, error)
	GetTodo(ctx context.Context, scope Scope, id int64) (*models.Todo, error)
	UpdateTodo(ctx context.Context, scope Scope, id int64, patch models.TodoPatch) (*models.Todo, error)
	DeleteTodo(ctx context.Context, scope Scope, id int64) error
	CountTodos(ctx context.Context) (total, completed int64, err error)
}

// Scope restricts todo queries to one owner, or to none for admin views.
type Scope struct {
	userID int64
	all    bool
}

func OwnedBy(userID int64) Scope { return Scope{userID: userID} }

func AllOwners() Scope { return Scope{all: true} }

// UserID returns the owner the scope filters by and whether it filters at all.
func (s Scope) UserID() (int64, bool) {
	return s.userID, !s.all
}

// assignment is one column = value pair of a partial update. Both backends
// build their update from the same ordered list.
type assignment struct {
	column string
	value  any
}

func userAssignments(p models.UserPatch, now time.Time) []assignment {
	var sets []assignment
	if p.Name != nil {
		sets = append(sets, assignment{"name", *p.Name})
	}
	if p.Email != nil {
		sets = append(sets, assignment{"email", *p.Email})
	}
	if p.PhoneNumber != nil {
		// An empty phone number clears the column.
		var phone any
		if *p.PhoneNumber != "" {
			phone = *p.PhoneNumber
		}
		sets = append(sets, assignment{"phone_number", phone})
	}
	if len(sets) == 0 {
		return nil
	}
	return append(sets, assignment{"updated_at", now})
}

func todoAssignments(p models.TodoPatch) []assignment {
	var sets []assignment
	if p.Title != nil {
		sets = append(sets, assignment{"title", *p.Title})
	}
	if p.Completed != nil {
		sets = append(sets, assignment{"completed", *p.Completed})
	}
	return sets
}
