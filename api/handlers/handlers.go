package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogforge/apperrors"
	"blogforge/dto"
	"blogforge/models"
	"blogforge/recency"
	"blogforge/repositories"
	"blogforge/services"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var ve *apperrors.ValidationError
	var nf *apperrors.NotFoundError
	var dv *apperrors.DivergenceError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &dv):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func blogID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blog id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func postID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// CreateBlogHandler creates a blog from its JSON projection.
func CreateBlogHandler(blogs *services.BlogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.BlogDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		m, err := in.ToModel()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		b, err := blogs.Create(c.Request.Context(), models.BlogConfig{
			Title:          m.Title,
			URL:            m.URL,
			Description:    m.Description,
			Keywords:       m.Keywords,
			Public:         m.Public,
			CreatorID:      m.CreatorID,
			CreatorName:    m.CreatorName,
			HeaderImageURL: m.HeaderImageURL,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewBlogDTO(*b))
	}
}

// GetBlogHandler returns a blog by id.
func GetBlogHandler(blogs *services.BlogService) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, dto.NewBlogDTO(*b))
	}
}

// SaveBlogHandler applies updatable blog fields and saves. Visibility
// changes synchronize recency index membership as part of the save.
func SaveBlogHandler(blogs *services.BlogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := blogID(c)
		if !ok {
			return
		}
		var in dto.BlogDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		b, err := blogs.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		b.Title = in.Title
		b.Description = in.Description
		b.Keywords = models.DedupKeywords(in.Keywords)
		b.Public = in.Public
		b.HeaderImageURL = in.HeaderImageURL

		if err := blogs.Save(c.Request.Context(), b); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewBlogDTO(*b))
	}
}

// DeleteBlogHandler removes the blog, its gallery tree and its index
// entry. Non-fatal sub-step failures are reported alongside success.
func DeleteBlogHandler(blogs *services.BlogService) gin.HandlerFunc {
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
		res, err := blogs.DeleteBlog(c.Request.Context(), b)
		if err != nil {
			fail(c, err)
			return
		}
		out := gin.H{"deleted": true}
		if res.IndexErr != nil {
			out["index_error"] = res.IndexErr.Error()
		}
		if res.FilesErr != nil {
			out["files_error"] = res.FilesErr.Error()
		}
		c.JSON(http.StatusOK, out)
	}
}

// BlogByURLHandler resolves a blog by owner identity and url slug, the
// unique pair backing public-facing blog addresses.
func BlogByURLHandler(blogs *repositories.BlogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		creator, err := primitive.ObjectIDFromHex(c.Query("creator"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
			return
		}
		url := c.Query("url")
		if url == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}
		b, err := blogs.FindByCreatorAndURL(c.Request.Context(), creator, url)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewBlogDTO(*b))
	}
}

// BlogStatsHandler reports how many blogs sit in each visibility bucket.
func BlogStatsHandler(blogs *repositories.BlogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := blogs.CountByVisibility(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"public": counts.Public, "private": counts.Private})
	}
}

// RecentBlogsHandler reads the most recent k public blogs off the
// recency index.
func RecentBlogsHandler(rec *recency.Adapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		k, _ := strconv.ParseInt(c.DefaultQuery("count", "10"), 10, 64)
		entries, err := rec.Recent(c.Request.Context(), k)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
