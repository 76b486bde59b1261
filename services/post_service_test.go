package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogforge/apperrors"
	"blogforge/logger"
	"blogforge/models"
	"blogforge/services"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func newPostService(posts *fakePostStore) *services.PostService {
	return services.NewPostService(posts, logger.NewLogger("error"))
}

func TestCreatePostStampsAndSummarizes(t *testing.T) {
	ctx := context.Background()
	posts := newFakePostStore()
	svc := newPostService(posts)
	blog := models.NewBlog(models.BlogConfig{ID: primitive.NewObjectID(), Title: "B"})

	before := time.Now()
	sum, err := svc.Create(ctx, blog, models.PostConfig{
		Title:    "Hello World",
		Content:  "body",
		Keywords: []string{"go", "go", "web"},
	})
	require.NoError(t, err)

	assert.False(t, sum.ID.IsZero())
	assert.Equal(t, "Hello World", sum.Title)
	assert.Equal(t, "hello-world", sum.Slug)
	assert.False(t, sum.Public)
	assert.Equal(t, sum.CreatedOn, sum.EditedOn)
	assert.False(t, sum.CreatedOn.Before(before))

	stored, err := posts.FindByIDForBlog(ctx, sum.ID, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, blog.ID, stored.BlogID)
	assert.Equal(t, []string{"go", "web"}, stored.Keywords)
}

func TestCreatePostRequiresBlogIdentity(t *testing.T) {
	svc := newPostService(newFakePostStore())

	_, err := svc.Create(context.Background(), models.NewBlog(models.BlogConfig{Title: "B"}), models.PostConfig{Title: "P"})

	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestUpdatePostAppliesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	posts := newFakePostStore()
	svc := newPostService(posts)
	blog := models.NewBlog(models.BlogConfig{ID: primitive.NewObjectID(), Title: "B"})

	sum, err := svc.Create(ctx, blog, models.PostConfig{Title: "Original", Content: "keep me"})
	require.NoError(t, err)
	created := sum.CreatedOn

	sum, err = svc.Update(ctx, blog, sum.ID, services.PostUpdate{
		Title:  strPtr("Renamed Post"),
		Public: boolPtr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed Post", sum.Title)
	assert.Equal(t, "renamed-post", sum.Slug, "slug follows the title when not pinned")
	assert.True(t, sum.Public)
	assert.Equal(t, created, sum.CreatedOn)
	assert.True(t, sum.EditedOn.After(created) || sum.EditedOn.Equal(created))

	stored, err := posts.FindByIDForBlog(ctx, sum.ID, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", stored.Content, "untouched fields survive")
}

func TestUpdatePostExplicitSlugWins(t *testing.T) {
	ctx := context.Background()
	svc := newPostService(newFakePostStore())
	blog := models.NewBlog(models.BlogConfig{ID: primitive.NewObjectID(), Title: "B"})

	sum, err := svc.Create(ctx, blog, models.PostConfig{Title: "Original"})
	require.NoError(t, err)

	sum, err = svc.Update(ctx, blog, sum.ID, services.PostUpdate{
		Title: strPtr("Renamed"),
		Slug:  strPtr("pinned-slug"),
	})
	require.NoError(t, err)
	assert.Equal(t, "pinned-slug", sum.Slug)
}

func TestUpdatePostOwnershipMismatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newPostService(newFakePostStore())
	owner := models.NewBlog(models.BlogConfig{ID: primitive.NewObjectID(), Title: "owner"})
	other := models.NewBlog(models.BlogConfig{ID: primitive.NewObjectID(), Title: "other"})

	sum, err := svc.Create(ctx, owner, models.PostConfig{Title: "P"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other, sum.ID, services.PostUpdate{Title: strPtr("hijack")})
	var nf *apperrors.NotFoundError
	require.True(t, errors.As(err, &nf), "cross-blog access must read as not found")
}

func TestDeletePostChecksOwnership(t *testing.T) {
	ctx := context.Background()
	posts := newFakePostStore()
	svc := newPostService(posts)
	owner := models.NewBlog(models.BlogConfig{ID: primitive.NewObjectID(), Title: "owner"})
	other := models.NewBlog(models.BlogConfig{ID: primitive.NewObjectID(), Title: "other"})

	sum, err := svc.Create(ctx, owner, models.PostConfig{Title: "P"})
	require.NoError(t, err)

	var nf *apperrors.NotFoundError
	require.True(t, errors.As(svc.Delete(ctx, other, sum.ID), &nf))

	// still there for the rightful owner
	_, err = svc.Get(ctx, owner, sum.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, sum.ID))
	_, err = svc.Get(ctx, owner, sum.ID)
	require.True(t, errors.As(err, &nf))
}

func TestDeleteMissingPostIsNotFound(t *testing.T) {
	svc := newPostService(newFakePostStore())
	blog := models.NewBlog(models.BlogConfig{ID: primitive.NewObjectID(), Title: "B"})

	var nf *apperrors.NotFoundError
	require.True(t, errors.As(svc.Delete(context.Background(), blog, primitive.NewObjectID()), &nf))
}
