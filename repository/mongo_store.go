package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// nextID allocates the next integer id for a collection from the counters
// collection, so document ids match the SQL backends.
func nextID(ctx context.Context, db *mongo.Database, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", collection, err)
	}
	return counter.Seq, nil
}

func setDocument(sets []assignment) bson.M {
	doc := bson.M{}
	for _, s := range sets {
		doc[s.column] = s.value
	}
	return bson.M{"$set": doc}
}

func scopeFilter(scope Scope, id int64) bson.M {
	filter := bson.M{"_id": id}
	if userID, ok := scope.UserID(); ok {
		filter["user_id"] = userID
	}
	return filter
}
