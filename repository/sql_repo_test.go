package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapi/db"
	"todoapi/db/sqlite"
	"todoapi/models"
)

func openTempStore(t *testing.T) *sqlx.DB {
	t.Helper()
	store := sqlite.NewSQLiteDB(filepath.Join(t.TempDir(), "todoapi.db"))
	require.NoError(t, store.Connect(context.Background()))
	t.Cleanup(func() { _ = store.Disconnect() })
	require.NoError(t, db.RunMigrations(store.Conn.DB, db.SQLite))
	return store.Conn
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func createUser(t *testing.T, repo *SQLUserRepo, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: "Test User", Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	conn := openTempStore(t)
	repo := NewSQLUserRepo(conn)
	ctx := context.Background()

	createUser(t, repo, "jo@x.com", models.RoleStandard)

	err := repo.CreateUser(ctx, &models.User{Name: "Other", Email: "jo@x.com", PasswordHash: "h", Role: models.RoleStandard})
	assert.ErrorIs(t, err, ErrEmailTaken)

	total, _, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCreateUserConcurrentSameEmail(t *testing.T) {
	conn := openTempStore(t)
	repo := NewSQLUserRepo(conn)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateUser(ctx, &models.User{Name: "Racer", Email: "race@x.com", PasswordHash: "h", Role: models.RoleStandard})
		}(i)
	}
	wg.Wait()

	total, _, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestGetUserNotFound(t *testing.T) {
	repo := NewSQLUserRepo(openTempStore(t))

	_, err := repo.GetUserByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetUserByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserMergesPatch(t *testing.T) {
	repo := NewSQLUserRepo(openTempStore(t))
	ctx := context.Background()
	u := createUser(t, repo, "jo@x.com", models.RoleStandard)

	got, err := repo.UpdateUser(ctx, u.ID, models.UserPatch{PhoneNumber: strPtr("5551234")})
	require.NoError(t, err)
	assert.Equal(t, "Test User", got.Name)
	assert.Equal(t, "jo@x.com", got.Email)
	require.NotNil(t, got.PhoneNumber)
	assert.Equal(t, "5551234", *got.PhoneNumber)

	got, err = repo.UpdateUser(ctx, u.ID, models.UserPatch{Name: strPtr("Jo Lee"), PhoneNumber: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Jo Lee", got.Name)
	assert.Nil(t, got.PhoneNumber)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	repo := NewSQLUserRepo(openTempStore(t))
	ctx := context.Background()
	a := createUser(t, repo, "a@x.com", models.RoleStandard)
	createUser(t, repo, "b@x.com", models.RoleStandard)

	_, err := repo.UpdateUser(ctx, a.ID, models.UserPatch{Email: strPtr("b@x.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := repo.UpdateUser(ctx, a.ID, models.UserPatch{Email: strPtr("a@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestUpdateMissingUser(t *testing.T) {
	repo := NewSQLUserRepo(openTempStore(t))
	ctx := context.Background()

	_, err := repo.UpdateUser(ctx, 42, models.UserPatch{Name: strPtr("Ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, 42, "h"), ErrNotFound)
}

func TestDeleteUserRemovesTodos(t *testing.T) {
	conn := openTempStore(t)
	users := NewSQLUserRepo(conn)
	todos := NewSQLTodoRepo(conn)
	ctx := context.Background()

	a := createUser(t, users, "a@x.com", models.RoleStandard)
	b := createUser(t, users, "b@x.com", models.RoleAdmin)
	require.NoError(t, todos.CreateTodo(ctx, &models.Todo{UserID: a.ID, Title: "a1"}))
	require.NoError(t, todos.CreateTodo(ctx, &models.Todo{UserID: b.ID, Title: "b1"}))

	require.NoError(t, users.DeleteUser(ctx, a.ID))
	assert.ErrorIs(t, users.DeleteUser(ctx, a.ID), ErrNotFound)

	all, err := todos.ListTodos(ctx, AllOwners())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].UserID)

	total, admins, err := users.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.EqualValues(t, 1, admins)
}

func TestTodoOwnershipScope(t *testing.T) {
	conn := openTempStore(t)
	users := NewSQLUserRepo(conn)
	todos := NewSQLTodoRepo(conn)
	ctx := context.Background()

	a := createUser(t, users, "a@x.com", models.RoleStandard)
	b := createUser(t, users, "b@x.com", models.RoleStandard)
	todo := &models.Todo{UserID: a.ID, Title: "Buy milk"}
	require.NoError(t, todos.CreateTodo(ctx, todo))

	_, err := todos.GetTodo(ctx, OwnedBy(b.ID), todo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = todos.UpdateTodo(ctx, OwnedBy(b.ID), todo.ID, models.TodoPatch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, todos.DeleteTodo(ctx, OwnedBy(b.ID), todo.ID), ErrNotFound)

	list, err := todos.ListTodos(ctx, OwnedBy(b.ID))
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := todos.UpdateTodo(ctx, OwnedBy(a.ID), todo.ID, models.TodoPatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "Buy milk", got.Title)

	admin, err := todos.GetTodo(ctx, AllOwners(), todo.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, admin.UserID)

	total, completed, err := todos.CountTodos(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.EqualValues(t, 1, completed)

	require.NoError(t, todos.DeleteTodo(ctx, AllOwners(), todo.ID))
	_, err = todos.GetTodo(ctx, OwnedBy(a.ID), todo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserAssignmentsEmptyPatch(t *testing.T) {
	assert.Nil(t, userAssignments(models.UserPatch{}, time.Time{}))
	assert.Empty(t, todoAssignments(models.TodoPatch{}))
}

