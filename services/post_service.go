package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogforge/apperrors"
	"blogforge/logger"
	"blogforge/models"
)

// PostService is the post lifecycle manager. Its operations are atomic
// with respect to the post collection only; folding the resulting
// summary into the owning blog is BlogService's job.
type PostService struct {
	posts PostStore
	log   logger.Logger
	now   func() time.Time
}

func NewPostService(posts PostStore, log logger.Logger) *PostService {
	return &PostService{posts: posts, log: log, now: time.Now}
}

// PostUpdate lists the updatable post fields. Nil fields are left
// untouched; the owning blog id is immutable and deliberately absent.
type PostUpdate struct {
	Title       *string
	Slug        *string
	Description *string
	Content     *string
	Keywords    []string
	Authors     []string
	Public      *bool
}

// Create assigns a new identity, stamps createdOn, persists the post and
// returns its summary projection.
func (s *PostService) Create(ctx context.Context, blog *models.Blog, cfg models.PostConfig) (models.PostSummary, error) {
	if blog.ID.IsZero() {
		return models.PostSummary{}, &apperrors.ValidationError{Field: "blogId", Reason: "blog identity is unassigned"}
	}

	cfg.BlogID = blog.ID
	cfg.CreatedOn = s.now()
	cfg.EditedOn = cfg.CreatedOn
	p := models.NewPost(cfg)

	if err := s.posts.Insert(ctx, p); err != nil {
		return models.PostSummary{}, err
	}
	s.log.Infof("post %s created in blog %s", p.ID.Hex(), blog.ID.Hex())
	return p.Summarize(), nil
}

// Update loads the post, verifies it is owned by the given blog, applies
// the provided fields, stamps editedOn and persists. An ownership
// mismatch reads as not found.
func (s *PostService) Update(ctx context.Context, blog *models.Blog, id primitive.ObjectID, upd PostUpdate) (models.PostSummary, error) {
	if id.IsZero() {
		return models.PostSummary{}, &apperrors.ValidationError{Field: "id", Reason: "post identity is required"}
	}

	p, err := s.posts.FindByIDForBlog(ctx, id, blog.ID)
	if err != nil {
		return models.PostSummary{}, err
	}

	if upd.Title != nil {
		p.Title = *upd.Title
		if upd.Slug == nil {
			p.Slug = models.Slugify(p.Title, models.SlugMaxLength)
		}
	}
	if upd.Slug != nil {
		p.Slug = *upd.Slug
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Keywords != nil {
		p.Keywords = models.DedupKeywords(upd.Keywords)
	}
	if upd.Authors != nil {
		p.Authors = upd.Authors
	}
	if upd.Public != nil {
		p.Public = *upd.Public
	}
	p.EditedOn = s.now()

	if err := s.posts.Replace(ctx, p); err != nil {
		return models.PostSummary{}, err
	}
	s.log.Infof("post %s updated in blog %s", p.ID.Hex(), blog.ID.Hex())
	return p.Summarize(), nil
}

// Get loads a post owned by the given blog.
func (s *PostService) Get(ctx context.Context, blog *models.Blog, id primitive.ObjectID) (*models.Post, error) {
	return s.posts.FindByIDForBlog(ctx, id, blog.ID)
}

// List returns the blog's posts, newest first.
func (s *PostService) List(ctx context.Context, blog *models.Blog) ([]models.Post, error) {
	return s.posts.ListByBlog(ctx, blog.ID)
}

// Delete removes the post record after an ownership check. It does not
// touch the blog's embedded summary array; callers must follow up with
// BlogService.RemovePost or the blog is left detectably inconsistent.
func (s *PostService) Delete(ctx context.Context, blog *models.Blog, id primitive.ObjectID) error {
	if _, err := s.posts.FindByIDForBlog(ctx, id, blog.ID); err != nil {
		return err
	}
	n, err := s.posts.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if n != 1 {
		return &apperrors.NotFoundError{Kind: "post", ID: id.Hex()}
	}
	s.log.Infof("post %s deleted from blog %s", id.Hex(), blog.ID.Hex())
	return nil
}
