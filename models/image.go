package models

// Image is one gallery image and the urls of its generated derivative set.
// The big/med/sml/thumbnail urls stay empty until the imaging pipeline has
// produced the corresponding files.
type Image struct {
	Name         string   `bson:"name" json:"name"`
	URL          string   `bson:"url" json:"url"`
	BigURL       string   `bson:"bigUrl,omitempty" json:"big_url,omitempty"`
	MedURL       string   `bson:"medUrl,omitempty" json:"med_url,omitempty"`
	SmlURL       string   `bson:"smlUrl,omitempty" json:"sml_url,omitempty"`
	ThumbnailURL string   `bson:"thumbnailUrl,omitempty" json:"thumbnail_url,omitempty"`
	Title        string   `bson:"title" json:"title"`
	Description  string   `bson:"description" json:"description"`
	Keywords     []string `bson:"keywords" json:"keywords"`
	Creator      string   `bson:"creator" json:"creator"`
	Hide         bool     `bson:"hide" json:"hide"`
}

// ImageConfig lists every field recognized when constructing an Image.
type ImageConfig struct {
	Name         string
	URL          string
	BigURL       string
	MedURL       string
	SmlURL       string
	ThumbnailURL string
	Title        string
	Description  string
	Keywords     []string
	Creator      string
	Hide         bool
}

// NewImage builds a fully-defaulted Image from cfg.
func NewImage(cfg ImageConfig) *Image {
	return &Image{
		Name:         cfg.Name,
		URL:          cfg.URL,
		BigURL:       cfg.BigURL,
		MedURL:       cfg.MedURL,
		SmlURL:       cfg.SmlURL,
		ThumbnailURL: cfg.ThumbnailURL,
		Title:        cfg.Title,
		Description:  cfg.Description,
		Keywords:     DedupKeywords(cfg.Keywords),
		Creator:      cfg.Creator,
		Hide:         cfg.Hide,
	}
}

// HasDerivatives reports whether all derivative urls are populated.
func (im *Image) HasDerivatives() bool {
	return im.BigURL != "" && im.MedURL != "" && im.SmlURL != "" && im.ThumbnailURL != ""
}
