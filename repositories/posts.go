package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogforge/apperrors"
	"blogforge/models"
)

type PostRepository struct {
	col *mongo.Collection
}

// NewPostRepository binds the repository to the "posts" collection of db.
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// NewPostRepositoryWithCollection binds the repository to an already
// resolved collection handle.
func NewPostRepositoryWithCollection(col *mongo.Collection) *PostRepository {
	return &PostRepository{col: col}
}

// FindByIDForBlog returns the post only when it is owned by the given
// blog. A post that exists under a different blog reads as not found;
// ownership mismatches must not be distinguishable from absence.
func (r *PostRepository) FindByIDForBlog(ctx context.Context, id, blogID primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "blogId": blogID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &apperrors.NotFoundError{Kind: "post", ID: id.Hex()}
		}
		return nil, &apperrors.ExternalServiceError{Service: "mongo", Op: "posts.findOne", Err: err}
	}
	return &p, nil
}

// Insert stores a new post and assigns its identity.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return &apperrors.ExternalServiceError{Service: "mongo", Op: "posts.insertOne", Err: err}
	}
	return nil
}

// Replace persists the full post record keyed by its identity.
func (r *PostRepository) Replace(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		return &apperrors.ValidationError{Field: "id", Reason: "post identity is unassigned"}
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace())
	if err != nil {
		return &apperrors.ExternalServiceError{Service: "mongo", Op: "posts.replaceOne", Err: err}
	}
	if res.MatchedCount == 0 {
		return &apperrors.NotFoundError{Kind: "post", ID: p.ID.Hex()}
	}
	return nil
}

// DeleteByID removes the post record and returns the deleted count.
func (r *PostRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, &apperrors.ExternalServiceError{Service: "mongo", Op: "posts.deleteOne", Err: err}
	}
	return res.DeletedCount, nil
}

// ListByBlog returns every post owned by the given blog, newest first.
func (r *PostRepository) ListByBlog(ctx context.Context, blogID primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"blogId": blogID}, opts)
	if err != nil {
		return nil, &apperrors.ExternalServiceError{Service: "mongo", Op: "posts.find", Err: err}
	}
	defer cur.Close(ctx)

	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, &apperrors.ExternalServiceError{Service: "mongo", Op: "posts.find", Err: err}
	}
	return out, nil
}
