package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogforge/dto"
	"blogforge/models"
	"blogforge/services"
)

// AddImageHandler registers an already-uploaded gallery file and runs
// the derivative pipeline.
func AddImageHandler(blogs *services.BlogService, posts *services.PostService, gallery *services.GalleryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, p, ok := loadPost(c, blogs, posts)
		if !ok {
			return
		}

		var in dto.ImageDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		img, err := gallery.AddImage(c.Request.Context(), p, models.ImageConfig{
			Name:        in.Name,
			Title:       in.Title,
			Description: in.Description,
			Keywords:    in.Keywords,
			Creator:     in.Creator,
			Hide:        in.Hide,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewImageDTO(*img))
	}
}

// RotateImageHandler rotates the source image and rebuilds its
// derivative set.
func RotateImageHandler(blogs *services.BlogService, posts *services.PostService, gallery *services.GalleryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, p, ok := loadPost(c, blogs, posts)
		if !ok {
			return
		}

		var in struct {
			Degrees int `json:"degrees"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		img, err := gallery.RotateImage(c.Request.Context(), p, c.Param("name"), in.Degrees)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewImageDTO(*img))
	}
}

// RegenerateImageHandler re-runs the derivative pipeline for an existing
// gallery image, rebuilding any missing derivative files.
func RegenerateImageHandler(blogs *services.BlogService, posts *services.PostService, gallery *services.GalleryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, p, ok := loadPost(c, blogs, posts)
		if !ok {
			return
		}

		force := c.Query("force_thumbnail") == "true"
		img, err := gallery.RegenerateImage(c.Request.Context(), p, c.Param("name"), force)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewImageDTO(*img))
	}
}

// DeleteImageHandler removes a gallery image together with all files
// sharing its stem. Unknown names report found=false, not an error.
func DeleteImageHandler(blogs *services.BlogService, posts *services.PostService, gallery *services.GalleryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, p, ok := loadPost(c, blogs, posts)
		if !ok {
			return
		}

		found, err := gallery.DeleteImage(c.Request.Context(), p, c.Param("name"))
		if err != nil {
			fail(c, err)
			return
		}
		if !found {
			c.JSON(http.StatusOK, gin.H{"found": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"found": true, "post": dto.NewPostDTO(*p)})
	}
}

func loadPost(c *gin.Context, blogs *services.BlogService, posts *services.PostService) (*models.Blog, *models.Post, bool) {
	id, ok := blogID(c)
	if !ok {
		return nil, nil, false
	}
	pid, ok := postID(c)
	if !ok {
		return nil, nil, false
	}
	b, err := blogs.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, nil, false
	}
	p, err := posts.Get(c.Request.Context(), b, pid)
	if err != nil {
		fail(c, err)
		return nil, nil, false
	}
	return b, p, true
}
