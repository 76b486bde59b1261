package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a single blog post with its image gallery.
// Collection: posts
type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BlogID      primitive.ObjectID `bson:"blogId" json:"blog_id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Content     string             `bson:"content" json:"content"`
	Keywords    []string           `bson:"keywords" json:"keywords"`
	Authors     []string           `bson:"authors" json:"authors"`
	Images      []Image            `bson:"images" json:"images"`
	Public      bool               `bson:"public" json:"public"`
	CreatedOn   time.Time          `bson:"createdOn" json:"created_on"`
	EditedOn    time.Time          `bson:"editedOn" json:"edited_on"`
}

// PostConfig lists every field recognized when constructing a Post.
// BlogID is immutable after creation and is not part of the updatable set.
type PostConfig struct {
	ID          primitive.ObjectID
	BlogID      primitive.ObjectID
	Title       string
	Slug        string
	Description string
	Content     string
	Keywords    []string
	Authors     []string
	Images      []Image
	Public      bool
	CreatedOn   time.Time
	EditedOn    time.Time
}

// NewPost builds a fully-defaulted Post from cfg. The slug is derived from
// the title when not given explicitly.
func NewPost(cfg PostConfig) *Post {
	slug := cfg.Slug
	if slug == "" {
		slug = Slugify(cfg.Title, SlugMaxLength)
	}
	authors := cfg.Authors
	if authors == nil {
		authors = []string{}
	}
	images := cfg.Images
	if images == nil {
		images = []Image{}
	}
	return &Post{
		ID:          cfg.ID,
		BlogID:      cfg.BlogID,
		Title:       cfg.Title,
		Slug:        slug,
		Description: cfg.Description,
		Content:     cfg.Content,
		Keywords:    DedupKeywords(cfg.Keywords),
		Authors:     authors,
		Images:      images,
		Public:      cfg.Public,
		CreatedOn:   cfg.CreatedOn,
		EditedOn:    cfg.EditedOn,
	}
}

// Summarize projects the post into the shape embedded in Blog.Posts.
func (p *Post) Summarize() PostSummary {
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		CreatedOn: p.CreatedOn,
		EditedOn:  p.EditedOn,
		Public:    p.Public,
	}
}

// Image locates a gallery image by its source file name, or nil.
func (p *Post) Image(name string) *Image {
	for i := range p.Images {
		if p.Images[i].Name == name {
			return &p.Images[i]
		}
	}
	return nil
}
