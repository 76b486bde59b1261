package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog represents a user-owned blog with its denormalized post summaries.
// Collection: blogs
type Blog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedOn      time.Time          `bson:"createdOn" json:"created_on"`
	ModifiedOn     time.Time          `bson:"modifiedOn" json:"modified_on"`
	Title          string             `bson:"title" json:"title"`
	URL            string             `bson:"url" json:"url"`
	Description    string             `bson:"description" json:"description"`
	Keywords       []string           `bson:"keywords" json:"keywords"`
	Public         bool               `bson:"public" json:"public"`
	CreatorID      primitive.ObjectID `bson:"creatorId,omitempty" json:"creator_id"`
	CreatorName    string             `bson:"creatorName" json:"creator_name"`
	HeaderImageURL string             `bson:"headerImageUrl" json:"header_image_url"`
	Posts          []PostSummary      `bson:"posts" json:"posts"`
	PostCount      int                `bson:"postCount" json:"post_count"`

	// RecencyStreamID is the token returned by the recency index on
	// insertion. Empty when the blog holds no live index entry.
	RecencyStreamID string `bson:"streamId,omitempty" json:"stream_id,omitempty"`
}

// PostSummary is the denormalized projection of a Post embedded in
// Blog.Posts. It is mutated only through the blog service, never directly.
type PostSummary struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Slug      string             `bson:"slug" json:"slug"`
	CreatedOn time.Time          `bson:"createdOn" json:"created_on"`
	EditedOn  time.Time          `bson:"editedOn" json:"edited_on"`
	Public    bool               `bson:"public" json:"public"`
}

// BlogConfig lists every field recognized when constructing a Blog.
// Unset fields take their defaults: private visibility, empty keyword set,
// zero post count, unassigned identity.
type BlogConfig struct {
	ID             primitive.ObjectID
	Title          string
	URL            string
	Description    string
	Keywords       []string
	Public         bool
	CreatorID      primitive.ObjectID
	CreatorName    string
	HeaderImageURL string
	Posts          []PostSummary
	CreatedOn      time.Time
	ModifiedOn     time.Time
}

// NewBlog builds a fully-defaulted Blog from cfg. The url slug is derived
// from the title when not given explicitly.
func NewBlog(cfg BlogConfig) *Blog {
	url := cfg.URL
	if url == "" {
		url = Slugify(cfg.Title, SlugMaxLength)
	}
	posts := cfg.Posts
	if posts == nil {
		posts = []PostSummary{}
	}
	return &Blog{
		ID:             cfg.ID,
		CreatedOn:      cfg.CreatedOn,
		ModifiedOn:     cfg.ModifiedOn,
		Title:          cfg.Title,
		URL:            url,
		Description:    cfg.Description,
		Keywords:       DedupKeywords(cfg.Keywords),
		Public:         cfg.Public,
		CreatorID:      cfg.CreatorID,
		CreatorName:    cfg.CreatorName,
		HeaderImageURL: cfg.HeaderImageURL,
		Posts:          posts,
		PostCount:      len(posts),
	}
}

// Summary returns a pointer to the embedded summary with the given post
// id, or nil when no summary carries that id.
func (b *Blog) Summary(id primitive.ObjectID) *PostSummary {
	for i := range b.Posts {
		if b.Posts[i].ID == id {
			return &b.Posts[i]
		}
	}
	return nil
}
