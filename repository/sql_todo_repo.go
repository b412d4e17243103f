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

const todoColumns = `id, user_id, title, completed, created_at`

// SQLTodoRepo stores todos in postgres or sqlite.
type SQLTodoRepo struct {
	DB *sqlx.DB
}

func NewSQLTodoRepo(db *sqlx.DB) *SQLTodoRepo {
	return &SQLTodoRepo{DB: db}
}

// scopeClause returns the WHERE fragment matching id within scope.
func scopeClause(scope Scope, id int64) (string, []any) {
	if userID, ok := scope.UserID(); ok {
		return "id = ? AND user_id = ?", []any{id, userID}
	}
	return "id = ?", []any{id}
}

func (r *SQLTodoRepo) CreateTodo(ctx context.Context, todo *models.Todo) error {
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now().UTC()
	}
	err := r.DB.QueryRowxContext(ctx, r.DB.Rebind(`
		INSERT INTO todos (user_id, title, completed, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), todo.UserID, todo.Title, todo.Completed, todo.CreatedAt).Scan(&todo.ID)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *SQLTodoRepo) ListTodos(ctx context.Context, scope Scope) ([]*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos`
	var args []any
	if userID, ok := scope.UserID(); ok {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY id`

	todos := []*models.Todo{}
	if err := r.DB.SelectContext(ctx, &todos, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *SQLTodoRepo) GetTodo(ctx context.Context, scope Scope, id int64) (*models.Todo, error) {
	where, args := scopeClause(scope, id)
	todo := &models.Todo{}
	err := r.DB.GetContext(ctx, todo, r.DB.Rebind(`SELECT `+todoColumns+` FROM todos WHERE `+where), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

func (r *SQLTodoRepo) UpdateTodo(ctx context.Context, scope Scope, id int64, patch models.TodoPatch) (*models.Todo, error) {
	if sets := todoAssignments(patch); len(sets) > 0 {
		where, args := scopeClause(scope, id)
		n, err := updateRow(ctx, r.DB, "todos", sets, where, args...)
		if err != nil {
			return nil, fmt.Errorf("update todo: %w", err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetTodo(ctx, scope, id)
}

func (r *SQLTodoRepo) DeleteTodo(ctx context.Context, scope Scope, id int64) error {
	where, args := scopeClause(scope, id)
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM todos WHERE `+where), args...)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLTodoRepo) CountTodos(ctx context.Context) (total, completed int64, err error) {
	err = r.DB.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0)
		FROM todos
	`).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("count todos: %w", err)
	}
	return total, completed, nil
}
