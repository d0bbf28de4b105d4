package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"postsvc/model"
)

// ErrNotFound is returned by store operations that require an existing post.
var ErrNotFound = errors.New("post not found")

// ErrDuplicateID is returned by Create when the id is already taken.
var ErrDuplicateID = errors.New("post id already exists")

// PostRepository is the content store contract. All listings are sorted by
// date_posted descending with the id as a stable tiebreak, offset by
// page*pageSize and limited to pageSize.
type PostRepository interface {
	Create(ctx context.Context, post model.Post) (model.Post, error)
	// FindByID returns (nil, nil) when no post has the given id; absence is
	// not an error at this layer.
	FindByID(ctx context.Context, id string) (*model.Post, error)
	DeleteByID(ctx context.Context, id string) error
	// EditText replaces the text content and stamps date_edited.
	EditText(ctx context.Context, id string, newText string) (*model.Post, error)
	// ListByAuthor returns top-level posts only.
	ListByAuthor(ctx context.Context, page, pageSize int, authorID string) ([]model.Post, error)
	// ListLatest returns top-level posts across all authors.
	ListLatest(ctx context.Context, page, pageSize int) ([]model.Post, error)
	ListReplies(ctx context.Context, page, pageSize int, parentID string) ([]model.Post, error)
	// CountReplies is exact at call time; nothing is cached.
	CountReplies(ctx context.Context, parentID string) (int64, error)
}

type mongoPostRepo struct {
	col *mongo.Collection
}

// NewMongoPostRepo builds a PostRepository over the posts collection.
func NewMongoPostRepo(db *mongo.Database) PostRepository {
	return &mongoPostRepo{col: db.Collection("posts")}
}

func (r *mongoPostRepo) Create(ctx context.Context, post model.Post) (model.Post, error) {
	if _, err := r.col.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Post{}, ErrDuplicateID
		}
		return model.Post{}, err
	}
	return post, nil
}

func (r *mongoPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *mongoPostRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoPostRepo) EditText(ctx context.Context, id string, newText string) (*model.Post, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"text_content": newText,
		"date_edited":  now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post model.Post
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *mongoPostRepo) ListByAuthor(ctx context.Context, page, pageSize int, authorID string) ([]model.Post, error) {
	filter := bson.M{
		"author_id":   authorID,
		"reply_to_id": bson.M{"$exists": false},
	}
	return r.list(ctx, filter, page, pageSize)
}

func (r *mongoPostRepo) ListLatest(ctx context.Context, page, pageSize int) ([]model.Post, error) {
	filter := bson.M{"reply_to_id": bson.M{"$exists": false}}
	return r.list(ctx, filter, page, pageSize)
}

func (r *mongoPostRepo) ListReplies(ctx context.Context, page, pageSize int, parentID string) ([]model.Post, error) {
	return r.list(ctx, bson.M{"reply_to_id": parentID}, page, pageSize)
}

func (r *mongoPostRepo) CountReplies(ctx context.Context, parentID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"reply_to_id": parentID})
}

func (r *mongoPostRepo) list(ctx context.Context, filter bson.M, page, pageSize int) ([]model.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date_posted", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page) * int64(pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := []model.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
