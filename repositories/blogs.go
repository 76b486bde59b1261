package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogforge/apperrors"
	"blogforge/models"
)

type BlogRepository struct {
	col *mongo.Collection
}

// NewBlogRepository binds the repository to the "blogs" collection of db.
func NewBlogRepository(db *mongo.Database) *BlogRepository {
	return &BlogRepository{col: db.Collection("blogs")}
}

// NewBlogRepositoryWithCollection binds the repository to an already
// resolved collection handle. Used by tests and callers that manage their
// own database selection.
func NewBlogRepositoryWithCollection(col *mongo.Collection) *BlogRepository {
	return &BlogRepository{col: col}
}

// FindByID returns the blog with the given identity.
func (r *BlogRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var b models.Blog
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &apperrors.NotFoundError{Kind: "blog", ID: id.Hex()}
		}
		return nil, &apperrors.ExternalServiceError{Service: "mongo", Op: "blogs.findOne", Err: err}
	}
	return &b, nil
}

// FindByCreatorAndURL returns the blog owned by creator with the given
// url slug.
func (r *BlogRepository) FindByCreatorAndURL(ctx context.Context, creator primitive.ObjectID, url string) (*models.Blog, error) {
	var b models.Blog
	if err := r.col.FindOne(ctx, bson.M{"creatorId": creator, "url": url}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &apperrors.NotFoundError{Kind: "blog", ID: url}
		}
		return nil, &apperrors.ExternalServiceError{Service: "mongo", Op: "blogs.findOne", Err: err}
	}
	return &b, nil
}

// Insert stores a new blog and assigns its identity.
func (r *BlogRepository) Insert(ctx context.Context, b *models.Blog) error {
	now := time.Now()
	if b.CreatedOn.IsZero() {
		b.CreatedOn = now
	}
	b.ModifiedOn = now
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return &apperrors.ExternalServiceError{Service: "mongo", Op: "blogs.insertOne", Err: err}
	}
	return nil
}

// UpsertByID persists the whole blog record keyed by its identity.
func (r *BlogRepository) UpsertByID(ctx context.Context, b *models.Blog) error {
	if b.ID.IsZero() {
		return &apperrors.ValidationError{Field: "id", Reason: "blog identity is unassigned"}
	}
	b.ModifiedOn = time.Now()
	if b.CreatedOn.IsZero() {
		b.CreatedOn = b.ModifiedOn
	}

	filter := bson.M{"_id": b.ID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"createdOn": b.CreatedOn,
		},
		"$set": bson.M{
			"modifiedOn":     b.ModifiedOn,
			"title":          b.Title,
			"url":            b.URL,
			"description":    b.Description,
			"keywords":       b.Keywords,
			"public":         b.Public,
			"creatorId":      b.CreatorID,
			"creatorName":    b.CreatorName,
			"headerImageUrl": b.HeaderImageURL,
			"posts":          b.Posts,
			"postCount":      b.PostCount,
			"streamId":       b.RecencyStreamID,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.col.UpdateOne(ctx, filter, update, opts); err != nil {
		return &apperrors.ExternalServiceError{Service: "mongo", Op: "blogs.updateOne", Err: err}
	}
	return nil
}

// DeleteByID removes the blog record and returns the deleted count.
func (r *BlogRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, &apperrors.ExternalServiceError{Service: "mongo", Op: "blogs.deleteOne", Err: err}
	}
	return res.DeletedCount, nil
}

// VisibilityCounts groups blogs into public/private buckets.
type VisibilityCounts struct {
	Public  int64
	Private int64
}

// CountByVisibility aggregates the blog collection grouped by the public
// flag.
func (r *BlogRepository) CountByVisibility(ctx context.Context) (VisibilityCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$public"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return VisibilityCounts{}, &apperrors.ExternalServiceError{Service: "mongo", Op: "blogs.aggregate", Err: err}
	}
	defer cur.Close(ctx)

	var out VisibilityCounts
	for cur.Next(ctx) {
		var bucket struct {
			ID    bool  `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&bucket); err != nil {
			return VisibilityCounts{}, fmt.Errorf("decode visibility bucket: %w", err)
		}
		if bucket.ID {
			out.Public = bucket.Count
		} else {
			out.Private = bucket.Count
		}
	}
	if err := cur.Err(); err != nil {
		return VisibilityCounts{}, &apperrors.ExternalServiceError{Service: "mongo", Op: "blogs.aggregate", Err: err}
	}
	return out, nil
}
