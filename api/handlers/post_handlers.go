package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogforge/dto"
	"blogforge/models"
	"blogforge/services"
)

// CreatePostHandler creates a post, then folds its summary into the
// owning blog through the consistency engine. The two steps are separate
// stores; a failure between them leaves a detectable inconsistency that
// Verify reports.
func CreatePostHandler(blogs *services.BlogService, posts *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := blogID(c)
		if !ok {
			return
		}
		var in dto.PostDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		b, err := blogs.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}

		sum, err := posts.Create(c.Request.Context(), b, models.PostConfig{
			Title:       in.Title,
			Slug:        in.Slug,
			Description: in.Description,
			Content:     in.Content,
			Keywords:    in.Keywords,
			Authors:     in.Authors,
			Public:      in.Public,
		})
		if err != nil {
			fail(c, err)
			return
		}
		if err := blogs.SavePost(c.Request.Context(), b, sum); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"post_id": sum.ID.Hex(), "blog": dto.NewBlogDTO(*b)})
	}
}

// ListPostsHandler returns the blog's posts, newest first.
func ListPostsHandler(blogs *services.BlogService, posts *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := blogID(c)
		if !ok {
			return
		}
		b, err := blogs.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		list, err := posts.List(c.Request.Context(), b)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]dto.PostDTO, 0, len(list))
		for _, p := range list {
			out = append(out, dto.NewPostDTO(p))
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetPostHandler returns one post with its gallery.
func GetPostHandler(blogs *services.BlogService, posts *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := blogID(c)
		if !ok {
			return
		}
		pid, ok := postID(c)
		if !ok {
			return
		}
		b, err := blogs.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		p, err := posts.Get(c.Request.Context(), b, pid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPostDTO(*p))
	}
}

// UpdatePostHandler applies provided fields to a post and re-syncs the
// blog's summary array.
func UpdatePostHandler(blogs *services.BlogService, posts *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := blogID(c)
		if !ok {
			return
		}
		pid, ok := postID(c)
		if !ok {
			return
		}
		var in services.PostUpdate
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		b, err := blogs.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		sum, err := posts.Update(c.Request.Context(), b, pid, in)
		if err != nil {
			fail(c, err)
			return
		}
		if err := blogs.SavePost(c.Request.Context(), b, sum); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewBlogDTO(*b))
	}
}

// DeletePostHandler removes the post record and then its summary from
// the blog.
func DeletePostHandler(blogs *services.BlogService, posts *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := blogID(c)
		if !ok {
			return
		}
		pid, ok := postID(c)
		if !ok {
			return
		}
		b, err := blogs.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		if err := posts.Delete(c.Request.Context(), b, pid); err != nil {
			fail(c, err)
			return
		}
		if err := blogs.RemovePost(c.Request.Context(), b, pid); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewBlogDTO(*b))
	}
}
