package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogforge/models"
)

// BlogStore is the narrow persistence capability the services need for
// blog records. Implemented by repositories.BlogRepository and by
// in-memory fakes in tests.
type BlogStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	Insert(ctx context.Context, b *models.Blog) error
	UpsertByID(ctx context.Context, b *models.Blog) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// PostStore is the narrow persistence capability for post records.
// Implemented by repositories.PostRepository.
type PostStore interface {
	FindByIDForBlog(ctx context.Context, id, blogID primitive.ObjectID) (*models.Post, error)
	Insert(ctx context.Context, p *models.Post) error
	Replace(ctx context.Context, p *models.Post) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
	ListByBlog(ctx context.Context, blogID primitive.ObjectID) ([]models.Post, error)
}
