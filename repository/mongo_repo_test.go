package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"todoapi/models"
)

func TestScopeFilter(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		want  bson.M
	}{
		{"owned", OwnedBy(7), bson.M{"_id": int64(3), "user_id": int64(7)}},
		{"all owners", AllOwners(), bson.M{"_id": int64(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scopeFilter(tt.scope, 3))
		})
	}
}

func TestSetDocument(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	got := setDocument(userAssignments(models.UserPatch{Name: strPtr("Jo"), PhoneNumber: strPtr("")}, now))
	assert.Equal(t, bson.M{"$set": bson.M{"name": "Jo", "phone_number": nil, "updated_at": now}}, got)

	got = setDocument(todoAssignments(models.TodoPatch{Completed: boolPtr(true)}))
	assert.Equal(t, bson.M{"$set": bson.M{"completed": true}}, got)
}

func newMockTest(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func emptyCursor(mt *mtest.T, coll string) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+"."+coll, mtest.FirstBatch)
}

func TestMongoTodoRepoForeignOwnerIsNotFound(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("get", func(mt *mtest.T) {
		repo := NewMongoTodoRepo(mt.DB)
		mt.AddMockResponses(emptyCursor(mt, "todos"))

		_, err := repo.GetTodo(context.Background(), OwnedBy(2), 5)
		require.ErrorIs(mt, err, ErrNotFound)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, int64(2), evt.Command.Lookup("filter", "user_id").Int64())
		assert.Equal(mt, int64(5), evt.Command.Lookup("filter", "_id").Int64())
	})

	mt.Run("update", func(mt *mtest.T) {
		repo := NewMongoTodoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		_, err := repo.UpdateTodo(context.Background(), OwnedBy(2), 5, models.TodoPatch{Completed: boolPtr(true)})
		require.ErrorIs(mt, err, ErrNotFound)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoTodoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteTodo(context.Background(), OwnedBy(2), 5)
		require.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoTodoRepoCreateAllocatesID(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoTodoRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: "todos"},
				{Key: "seq", Value: int64(7)},
			}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		todo := &models.Todo{UserID: 2, Title: "Buy milk"}
		require.NoError(mt, repo.CreateTodo(context.Background(), todo))
		assert.Equal(mt, int64(7), todo.ID)
		assert.False(mt, todo.CreatedAt.IsZero())

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, "counters", evt.Command.Lookup("findAndModify").StringValue())
	})
}

func TestMongoUserRepoDuplicateEmail(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("insert race", func(mt *mtest.T) {
		repo := NewMongoUserRepo(mt.DB)
		mt.AddMockResponses(
			emptyCursor(mt, "users"),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: "users"},
				{Key: "seq", Value: int64(1)},
			}}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}),
		)

		err := repo.CreateUser(context.Background(), &models.User{Name: "Jo", Email: "jo@x.com", Role: models.RoleStandard})
		assert.ErrorIs(mt, err, ErrEmailTaken)
	})
}

func TestMongoUserRepoDeleteCascadesTodosFirst(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoUserRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		require.NoError(mt, repo.DeleteUser(context.Background(), 4))

		first := mt.GetStartedEvent()
		require.NotNil(mt, first)
		assert.Equal(mt, "delete", first.CommandName)
		assert.Equal(mt, "todos", first.Command.Lookup("delete").StringValue())

		second := mt.GetStartedEvent()
		require.NotNil(mt, second)
		assert.Equal(mt, "users", second.Command.Lookup("delete").StringValue())
	})

	mt.Run("todo failure keeps user", func(mt *mtest.T) {
		repo := NewMongoUserRepo(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 0}, {Key: "errmsg", Value: "boom"}, {Key: "code", Value: 1}})

		err := repo.DeleteUser(context.Background(), 4)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)

		first := mt.GetStartedEvent()
		require.NotNil(mt, first)
		assert.Equal(mt, "todos", first.Command.Lookup("delete").StringValue())
		assert.Nil(mt, mt.GetStartedEvent())
	})
}
