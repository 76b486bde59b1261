package dto

import (
	"time"

	"blogforge/models"
)

// PostDTO is the JSON projection of a post including its gallery.
type PostDTO struct {
	ID          string     `json:"id"`
	BlogID      string     `json:"blog_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Keywords    []string   `json:"keywords"`
	Authors     []string   `json:"authors"`
	Images      []ImageDTO `json:"images"`
	Public      bool       `json:"public"`
	CreatedOn   time.Time  `json:"created_on"`
	EditedOn    time.Time  `json:"edited_on"`
}

// ImageDTO mirrors a gallery image record.
type ImageDTO struct {
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	BigURL       string   `json:"big_url,omitempty"`
	MedURL       string   `json:"med_url,omitempty"`
	SmlURL       string   `json:"sml_url,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	Creator      string   `json:"creator"`
	Hide         bool     `json:"hide"`
}

// NewPostDTO projects a post into its transport shape.
func NewPostDTO(p models.Post) PostDTO {
	images := make([]ImageDTO, 0, len(p.Images))
	for _, im := range p.Images {
		images = append(images, NewImageDTO(im))
	}
	return PostDTO{
		ID:          hexOrEmpty(p.ID),
		BlogID:      hexOrEmpty(p.BlogID),
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Content:     p.Content,
		Keywords:    p.Keywords,
		Authors:     p.Authors,
		Images:      images,
		Public:      p.Public,
		CreatedOn:   p.CreatedOn,
		EditedOn:    p.EditedOn,
	}
}

func NewImageDTO(im models.Image) ImageDTO {
	return ImageDTO{
		Name:         im.Name,
		URL:          im.URL,
		BigURL:       im.BigURL,
		MedURL:       im.MedURL,
		SmlURL:       im.SmlURL,
		ThumbnailURL: im.ThumbnailURL,
		Title:        im.Title,
		Description:  im.Description,
		Keywords:     im.Keywords,
		Creator:      im.Creator,
		Hide:         im.Hide,
	}
}

// ToModel rebuilds the post record this projection describes.
func (d PostDTO) ToModel() (*models.Post, error) {
	id, err := parseHex(d.ID)
	if err != nil {
		return nil, err
	}
	blogID, err := parseHex(d.BlogID)
	if err != nil {
		return nil, err
	}

	images := make([]models.Image, 0, len(d.Images))
	for _, im := range d.Images {
		images = append(images, *im.ToModel())
	}

	return models.NewPost(models.PostConfig{
		ID:          id,
		BlogID:      blogID,
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		Content:     d.Content,
		Keywords:    d.Keywords,
		Authors:     d.Authors,
		Images:      images,
		Public:      d.Public,
		CreatedOn:   d.CreatedOn,
		EditedOn:    d.EditedOn,
	}), nil
}

func (d ImageDTO) ToModel() *models.Image {
	return models.NewImage(models.ImageConfig{
		Name:         d.Name,
		URL:          d.URL,
		BigURL:       d.BigURL,
		MedURL:       d.MedURL,
		SmlURL:       d.SmlURL,
		ThumbnailURL: d.ThumbnailURL,
		Title:        d.Title,
		Description:  d.Description,
		Keywords:     d.Keywords,
		Creator:      d.Creator,
		Hide:         d.Hide,
	})
}
