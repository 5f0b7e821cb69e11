package repo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func perfumeIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "brand", Value: "text"}, {Key: "description", Value: "text"}}},
		{Keys: bson.D{{Key: "scentFamily", Value: 1}}},
		{Keys: bson.D{{Key: "gender", Value: 1}}},
		{Keys: bson.D{{Key: "rating", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	}
}

// EnsureIndexes 启动时建索引，已存在则无操作
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(perfumeCollection).Indexes().CreateMany(ctx, perfumeIndexes()); err != nil {
		return errors.Wrap(err, "perfume indexes")
	}
	if _, err := db.Collection(userCollection).Indexes().CreateMany(ctx, userIndexes()); err != nil {
		return errors.Wrap(err, "user indexes")
	}
	return nil
}
