package bootstrap

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// EnsurePostIndexes creates the indexes the listing queries depend on:
// per-author and per-thread streams, both ordered by date_posted.
func EnsurePostIndexes(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("posts")

	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "author_id", Value: 1},
				{Key: "reply_to_id", Value: 1},
				{Key: "date_posted", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "reply_to_id", Value: 1},
				{Key: "date_posted", Value: -1},
			},
		},
	})
	return err
}
