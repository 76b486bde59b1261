package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogforge/models"
)

// BlogDTO is the JSON projection of a blog. Identities travel as hex
// strings; the recency token is internal and deliberately absent.
type BlogDTO struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	URL            string           `json:"url"`
	Description    string           `json:"description"`
	Keywords       []string         `json:"keywords"`
	Public         bool             `json:"public"`
	CreatorID      string           `json:"creator_id"`
	CreatorName    string           `json:"creator_name"`
	HeaderImageURL string           `json:"header_image_url"`
	Posts          []PostSummaryDTO `json:"posts"`
	PostCount      int              `json:"post_count"`
	CreatedOn      time.Time        `json:"created_on"`
	ModifiedOn     time.Time        `json:"modified_on"`
}

// PostSummaryDTO mirrors the embedded summary array element.
type PostSummaryDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedOn time.Time `json:"created_on"`
	EditedOn  time.Time `json:"edited_on"`
	Public    bool      `json:"public"`
}

// NewBlogDTO projects a blog into its transport shape.
func NewBlogDTO(b models.Blog) BlogDTO {
	posts := make([]PostSummaryDTO, 0, len(b.Posts))
	for _, p := range b.Posts {
		posts = append(posts, PostSummaryDTO{
			ID:        p.ID.Hex(),
			Title:     p.Title,
			Slug:      p.Slug,
			CreatedOn: p.CreatedOn,
			EditedOn:  p.EditedOn,
			Public:    p.Public,
		})
	}
	return BlogDTO{
		ID:             hexOrEmpty(b.ID),
		Title:          b.Title,
		URL:            b.URL,
		Description:    b.Description,
		Keywords:       b.Keywords,
		Public:         b.Public,
		CreatorID:      hexOrEmpty(b.CreatorID),
		CreatorName:    b.CreatorName,
		HeaderImageURL: b.HeaderImageURL,
		Posts:          posts,
		PostCount:      b.PostCount,
		CreatedOn:      b.CreatedOn,
		ModifiedOn:     b.ModifiedOn,
	}
}

// ToModel rebuilds the blog record this projection describes.
func (d BlogDTO) ToModel() (*models.Blog, error) {
	id, err := parseHex(d.ID)
	if err != nil {
		return nil, err
	}
	creator, err := parseHex(d.CreatorID)
	if err != nil {
		return nil, err
	}

	posts := make([]models.PostSummary, 0, len(d.Posts))
	for _, p := range d.Posts {
		pid, err := parseHex(p.ID)
		if err != nil {
			return nil, err
		}
		posts = append(posts, models.PostSummary{
			ID:        pid,
			Title:     p.Title,
			Slug:      p.Slug,
			CreatedOn: p.CreatedOn,
			EditedOn:  p.EditedOn,
			Public:    p.Public,
		})
	}

	return models.NewBlog(models.BlogConfig{
		ID:             id,
		Title:          d.Title,
		URL:            d.URL,
		Description:    d.Description,
		Keywords:       d.Keywords,
		Public:         d.Public,
		CreatorID:      creator,
		CreatorName:    d.CreatorName,
		HeaderImageURL: d.HeaderImageURL,
		Posts:          posts,
		CreatedOn:      d.CreatedOn,
		ModifiedOn:     d.ModifiedOn,
	}), nil
}

func hexOrEmpty(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

func parseHex(s string) (primitive.ObjectID, error) {
	if s == "" {
		return primitive.NilObjectID, nil
	}
	return primitive.ObjectIDFromHex(s)
}
