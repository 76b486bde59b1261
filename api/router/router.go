package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"blogforge/api/handlers"
	"blogforge/db"
	"blogforge/recency"
	"blogforge/repositories"
	"blogforge/services"
)

// Deps carries the wired services the routes delegate to.
type Deps struct {
	Blogs    *services.BlogService
	Posts    *services.PostService
	Gallery  *services.GalleryService
	Recency  *recency.Adapter
	BlogRepo *repositories.BlogRepository
}

func New(d Deps) *gin.Engine {
	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		// Try ping MongoDB
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/blogs/recent", handlers.RecentBlogsHandler(d.Recency))
		api.GET("/blogs/stats", handlers.BlogStatsHandler(d.BlogRepo))
		api.GET("/blogs/by-url", handlers.BlogByURLHandler(d.BlogRepo))
		api.POST("/blogs", handlers.CreateBlogHandler(d.Blogs))
		api.GET("/blogs/:id", handlers.GetBlogHandler(d.Blogs))
		api.PUT("/blogs/:id", handlers.SaveBlogHandler(d.Blogs))
		api.DELETE("/blogs/:id", handlers.DeleteBlogHandler(d.Blogs))

		api.GET("/blogs/:id/posts", handlers.ListPostsHandler(d.Blogs, d.Posts))
		api.POST("/blogs/:id/posts", handlers.CreatePostHandler(d.Blogs, d.Posts))
		api.GET("/blogs/:id/posts/:postId", handlers.GetPostHandler(d.Blogs, d.Posts))
		api.PUT("/blogs/:id/posts/:postId", handlers.UpdatePostHandler(d.Blogs, d.Posts))
		api.DELETE("/blogs/:id/posts/:postId", handlers.DeletePostHandler(d.Blogs, d.Posts))

		api.POST("/blogs/:id/posts/:postId/images", handlers.AddImageHandler(d.Blogs, d.Posts, d.Gallery))
		api.POST("/blogs/:id/posts/:postId/images/:name/rotate", handlers.RotateImageHandler(d.Blogs, d.Posts, d.Gallery))
		api.POST("/blogs/:id/posts/:postId/images/:name/regenerate", handlers.RegenerateImageHandler(d.Blogs, d.Posts, d.Gallery))
		api.DELETE("/blogs/:id/posts/:postId/images/:name", handlers.DeleteImageHandler(d.Blogs, d.Posts, d.Gallery))
	}

	return r
}
