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

type MongoUserRepo struct {
	DB *mongo.Database
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{DB: db}
}

func (r *MongoUserRepo) users() *mongo.Collection {
	return r.DB.Collection("users")
}

func (r *MongoUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	existing, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	id, err := nextID(ctx, r.DB, "users")
	if err != nil {
		return err
	}
	user.ID = id
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt

	if _, err := r.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	user := &models.User{}
	if err := r.users().FindOne(ctx, filter).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepo) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
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
		res, err := r.users().UpdateOne(ctx, bson.M{"_id": id}, setDocument(sets))
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetUserByID(ctx, id)
}

func (r *MongoUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	sets := []assignment{{"password_hash", hash}, {"updated_at", time.Now().UTC()}}
	res, err := r.users().UpdateOne(ctx, bson.M{"_id": id}, setDocument(sets))
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	cur, err := r.users().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := []*models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepo) DeleteUser(ctx context.Context, id int64) error {
	// Todos go first so a failure never leaves todos without an owner.
	if _, err := r.DB.Collection("todos").DeleteMany(ctx, bson.M{"user_id": id}); err != nil {
		return fmt.Errorf("delete user todos: %w", err)
	}
	res, err := r.users().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepo) CountUsers(ctx context.Context) (total, admins int64, err error) {
	if total, err = r.users().CountDocuments(ctx, bson.M{}); err != nil {
		return 0, 0, fmt.Errorf("count users: %w", err)
	}
	if admins, err = r.users().CountDocuments(ctx, bson.M{"role": models.RoleAdmin}); err != nil {
		return 0, 0, fmt.Errorf("count admins: %w", err)
	}
	return total, admins, nil
}
