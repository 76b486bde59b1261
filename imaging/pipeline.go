// Package imaging derives the fixed variant set (big, med, sml,
// thumbnail) from a gallery source image. The pipeline is deterministic
// and safely re-runnable: feeding it the same source again rewrites the
// same files and urls.
package imaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blogforge/apperrors"
	"blogforge/logger"
	"blogforge/models"
)

// Geometry is a bounding box a derivative must fit inside.
type Geometry struct {
	Width  int
	Height int
}

// sizeTable maps the three logical size labels onto pixel boxes. The
// landscape and portrait tables differ on purpose: the same label gets
// aspect-appropriate framing instead of one letterboxed target.
type sizeTable struct {
	Big Geometry
	Med Geometry
	Sml Geometry
}

var (
	landscapeSizes = sizeTable{
		Big: Geometry{1024, 768},
		Med: Geometry{800, 600},
		Sml: Geometry{504, 378},
	}
	portraitSizes = sizeTable{
		Big: Geometry{768, 1024},
		Med: Geometry{600, 800},
		Sml: Geometry{378, 504},
	}
	thumbnailGeometry = Geometry{200, 200}
)

// LandscapeSizes and PortraitSizes expose the geometry tables.
func LandscapeSizes() (big, med, sml Geometry) {
	return landscapeSizes.Big, landscapeSizes.Med, landscapeSizes.Sml
}

func PortraitSizes() (big, med, sml Geometry) {
	return portraitSizes.Big, portraitSizes.Med, portraitSizes.Sml
}

// ThumbnailGeometry exposes the fixed thumbnail box.
func ThumbnailGeometry() Geometry { return thumbnailGeometry }

// FitDimensions scales (w, h) down to fit inside box, preserving aspect
// ratio. Sources already inside the box keep their geometry.
func FitDimensions(w, h int, box Geometry) (int, int) {
	if w <= box.Width && h <= box.Height {
		return w, h
	}
	rw := float64(box.Width) / float64(w)
	rh := float64(box.Height) / float64(h)
	r := rw
	if rh < rw {
		r = rh
	}
	nw := int(float64(w) * r)
	nh := int(float64(h) * r)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// Request carries one derivative run.
type Request struct {
	// SourcePath is the original file inside the gallery directory.
	SourcePath string
	// GalleryDir receives the derivative files.
	GalleryDir string
	// PublicURLPrefix is joined with each derivative filename to form
	// its public url.
	PublicURLPrefix string
	// NewlyAdded marks the first run for this image: metadata seeds the
	// record's textual fields and an embedded preview may serve as the
	// thumbnail fast path.
	NewlyAdded bool
	// ForceRegenerateThumbnail rebuilds the thumbnail even when the
	// record already carries one. Required after rotation.
	ForceRegenerateThumbnail bool
}

// DerivativeSet is the url set of one completed run.
type DerivativeSet struct {
	BigURL       string
	MedURL       string
	SmlURL       string
	ThumbnailURL string
}

// Pipeline derives variant sets. It holds no per-image state; callers
// serialize runs per image name.
type Pipeline struct {
	meta MetadataExtractor
	log  logger.Logger
}

func NewPipeline(meta MetadataExtractor, log logger.Logger) *Pipeline {
	return &Pipeline{meta: meta, log: log}
}

// Process builds the derivative set for img, updating the record's urls
// in place and returning them. Any failing stage aborts the whole set;
// partial sets are never reported as success.
func (p *Pipeline) Process(ctx context.Context, img *models.Image, req Request) (DerivativeSet, error) {
	if img.Name == "" {
		return DerivativeSet{}, &apperrors.ValidationError{Field: "name", Reason: "image name is required"}
	}

	// Metadata is extracted once per image: on first add, or again when
	// an earlier run left the derivative urls incomplete.
	var meta Metadata
	needMeta := req.NewlyAdded || !img.HasDerivatives()
	if needMeta {
		m, err := p.meta.Extract(ctx, req.SourcePath)
		if err != nil {
			return DerivativeSet{}, &apperrors.ImageProcessingError{Name: img.Name, Stage: "extract", Err: err}
		}
		meta = m
	}
	if req.NewlyAdded {
		seedFromMetadata(img, meta)
	}

	frame, err := LoadFrame(req.SourcePath)
	if err != nil {
		return DerivativeSet{}, &apperrors.ImageProcessingError{Name: img.Name, Stage: "decode", Err: err}
	}

	table := landscapeSizes
	if frame.Height() >= frame.Width() {
		table = portraitSizes
	}

	stem := stemOf(img.Name)
	ext := frame.Ext()

	var set DerivativeSet
	for _, variant := range []struct {
		label string
		box   Geometry
		dst   *string
	}{
		{"big", table.Big, &set.BigURL},
		{"med", table.Med, &set.MedURL},
		{"sml", table.Sml, &set.SmlURL},
	} {
		w, h := FitDimensions(frame.Width(), frame.Height(), variant.box)
		name := fmt.Sprintf("%s_%s%s", stem, variant.label, ext)
		out := frame.Resize(w, h)
		if err := out.WriteFile(filepath.Join(req.GalleryDir, name)); err != nil {
			return DerivativeSet{}, &apperrors.ImageProcessingError{Name: img.Name, Stage: "write", Err: err}
		}
		*variant.dst = joinURL(req.PublicURLPrefix, name)
		p.log.Debugf("derivative %s written (%dx%d)", name, w, h)
	}

	set.ThumbnailURL = img.ThumbnailURL
	if img.ThumbnailURL == "" || req.ForceRegenerateThumbnail {
		url, err := p.writeThumbnail(frame, meta, stem, ext, req)
		if err != nil {
			return DerivativeSet{}, err
		}
		set.ThumbnailURL = url
	}

	img.BigURL = set.BigURL
	img.MedURL = set.MedURL
	img.SmlURL = set.SmlURL
	img.ThumbnailURL = set.ThumbnailURL
	return set, nil
}

// writeThumbnail produces the thumbnail file. On first add an embedded
// preview from the source metadata is persisted directly; otherwise the
// working frame is stripped of auxiliary data and resized to the fixed
// thumbnail geometry.
func (p *Pipeline) writeThumbnail(frame *Frame, meta Metadata, stem, ext string, req Request) (string, error) {
	name := stem + "_thumbnail" + ext

	if req.NewlyAdded {
		preview, err := meta.Preview()
		if err != nil {
			p.log.Warnf("embedded preview unusable, falling back to resize: %v", err)
		} else if preview != nil {
			if err := os.WriteFile(filepath.Join(req.GalleryDir, name), preview, 0o644); err != nil {
				return "", &apperrors.ImageProcessingError{Name: stem, Stage: "write", Err: err}
			}
			return joinURL(req.PublicURLPrefix, name), nil
		}
	}

	w, h := FitDimensions(frame.Width(), frame.Height(), thumbnailGeometry)
	thumb := frame.Strip().Resize(w, h)
	if err := thumb.WriteFile(filepath.Join(req.GalleryDir, name)); err != nil {
		return "", &apperrors.ImageProcessingError{Name: stem, Stage: "write", Err: err}
	}
	return joinURL(req.PublicURLPrefix, name), nil
}

// Rotate rewrites the source file in place, turned clockwise by the given
// degrees. Rotation invalidates every existing derivative; callers must
// re-run Process with ForceRegenerateThumbnail set.
func (p *Pipeline) Rotate(path string, degrees int) error {
	name := filepath.Base(path)
	frame, err := LoadFrame(path)
	if err != nil {
		return &apperrors.ImageProcessingError{Name: name, Stage: "decode", Err: err}
	}
	rotated, err := frame.Rotate(degrees)
	if err != nil {
		return &apperrors.ImageProcessingError{Name: name, Stage: "rotate", Err: err}
	}
	if err := rotated.WriteFile(path); err != nil {
		return &apperrors.ImageProcessingError{Name: name, Stage: "write", Err: err}
	}
	return nil
}

// seedFromMetadata fills empty textual fields of a newly added image from
// the extracted tags. Explicitly provided values win over tags.
func seedFromMetadata(img *models.Image, meta Metadata) {
	if img.Title == "" {
		img.Title = meta.Title()
	}
	if img.Description == "" {
		img.Description = meta.Description()
	}
	if img.Creator == "" {
		img.Creator = meta.Artist()
	}
	if len(img.Keywords) == 0 {
		img.Keywords = models.DedupKeywords(meta.Keywords())
	}
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func joinURL(prefix, name string) string {
	return strings.TrimRight(prefix, "/") + "/" + name
}
