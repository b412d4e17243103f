package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"todoapi/models"
)

type MongoTodoRepo struct {
	DB *mongo.Database
}

func NewMongoTodoRepo(db *mongo.Database) *MongoTodoRepo {
	return &MongoTodoRepo{DB: db}
}

func (r *MongoTodoRepo) todos() *mongo.Collection {
	return r.DB.Collection("todos")
}

func (r *MongoTodoRepo) CreateTodo(ctx context.Context, todo *models.Todo) error {
	id, err := nextID(ctx, r.DB, "todos")
	if err != nil {
		return err
	}
	todo.ID = id
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now().UTC()
	}
	if _, err := r.todos().InsertOne(ctx, todo); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *MongoTodoRepo) ListTodos(ctx context.Context, scope Scope) ([]*models.Todo, error) {
	filter := bson.M{}
	if userID, ok := scope.UserID(); ok {
		filter["user_id"] = userID
	}
	cur, err := r.todos().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	todos := []*models.Todo{}
	if err := cur.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	return todos, nil
}

func (r *MongoTodoRepo) GetTodo(ctx context.Context, scope Scope, id int64) (*models.Todo, error) {
	todo := &models.Todo{}
	if err := r.todos().FindOne(ctx, scopeFilter(scope, id)).Decode(todo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

func (r *MongoTodoRepo) UpdateTodo(ctx context.Context, scope Scope, id int64, patch models.TodoPatch) (*models.Todo, error) {
	if sets := todoAssignments(patch); len(sets) > 0 {
		res, err := r.todos().UpdateOne(ctx, scopeFilter(scope, id), setDocument(sets))
		if err != nil {
			return nil, fmt.Errorf("update todo: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetTodo(ctx, scope, id)
}

func (r *MongoTodoRepo) DeleteTodo(ctx context.Context, scope Scope, id int64) error {
	res, err := r.todos().DeleteOne(ctx, scopeFilter(scope, id))
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTodoRepo) CountTodos(ctx context.Context) (total, completed int64, err error) {
	if total, err = r.todos().CountDocuments(ctx, bson.M{}); err != nil {
		return 0, 0, fmt.Errorf("count todos: %w", err)
	}
	if completed, err = r.todos().CountDocuments(ctx, bson.M{"completed": true}); err != nil {
		return 0, 0, fmt.Errorf("count completed todos: %w", err)
	}
	return total, completed, nil
}
