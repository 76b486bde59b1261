package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blogforge/apperrors"
	"blogforge/imaging"
	"blogforge/logger"
	"blogforge/models"
)

// GalleryService manages a post's on-disk gallery and its image records.
// Operations touching the same image name within a gallery are
// serialized: the multi-file derivative set is not written atomically.
type GalleryService struct {
	posts    PostStore
	pipeline *imaging.Pipeline

	rootDir   string
	urlPrefix string

	locks *keyedMutex
	log   logger.Logger
}

func NewGalleryService(posts PostStore, pipeline *imaging.Pipeline, rootDir, urlPrefix string, log logger.Logger) *GalleryService {
	return &GalleryService{
		posts:     posts,
		pipeline:  pipeline,
		rootDir:   rootDir,
		urlPrefix: urlPrefix,
		locks:     newKeyedMutex(),
		log:       log,
	}
}

// Dir returns the gallery directory of a post.
func (s *GalleryService) Dir(p *models.Post) string {
	return filepath.Join(s.rootDir, p.BlogID.Hex(), p.ID.Hex())
}

// PublicPrefix returns the public url prefix of a post's gallery.
func (s *GalleryService) PublicPrefix(p *models.Post) string {
	return strings.TrimRight(s.urlPrefix, "/") + "/" + p.BlogID.Hex() + "/" + p.ID.Hex()
}

func (s *GalleryService) imageKey(p *models.Post, name string) string {
	return p.ID.Hex() + "/" + name
}

// AddImage registers a new gallery image whose source file already sits
// in the post's gallery directory, runs the derivative pipeline and
// persists the post. A pipeline failure aborts before the record is
// touched. A record save failure after the derivative files were written
// is surfaced as DivergenceError so the caller can retry the save or
// clean up the orphaned files.
func (s *GalleryService) AddImage(ctx context.Context, p *models.Post, cfg models.ImageConfig) (*models.Image, error) {
	if cfg.Name == "" {
		return nil, &apperrors.ValidationError{Field: "name", Reason: "image name is required"}
	}
	if p.Image(cfg.Name) != nil {
		return nil, &apperrors.ValidationError{Field: "name", Reason: fmt.Sprintf("image %q already in gallery", cfg.Name)}
	}

	unlock := s.locks.Lock(s.imageKey(p, cfg.Name))
	defer unlock()

	dir := s.Dir(p)
	img := models.NewImage(cfg)
	img.URL = s.PublicPrefix(p) + "/" + img.Name

	_, err := s.pipeline.Process(ctx, img, imaging.Request{
		SourcePath:      filepath.Join(dir, img.Name),
		GalleryDir:      dir,
		PublicURLPrefix: s.PublicPrefix(p),
		NewlyAdded:      true,
	})
	if err != nil {
		return nil, err
	}

	p.Images = append(p.Images, *img)
	if err := s.posts.Replace(ctx, p); err != nil {
		return nil, &apperrors.DivergenceError{
			Op:    "addImage",
			Paths: s.derivativePaths(dir, img.Name),
			Err:   err,
		}
	}
	s.log.Infof("image %s added to post %s", img.Name, p.ID.Hex())
	return img, nil
}

// RegenerateImage re-runs the derivative pipeline for a known image.
// Safe to repeat; missing urls are rebuilt from the source file.
func (s *GalleryService) RegenerateImage(ctx context.Context, p *models.Post, name string, forceThumbnail bool) (*models.Image, error) {
	img := p.Image(name)
	if img == nil {
		return nil, &apperrors.NotFoundError{Kind: "image", ID: name}
	}

	unlock := s.locks.Lock(s.imageKey(p, name))
	defer unlock()

	dir := s.Dir(p)
	_, err := s.pipeline.Process(ctx, img, imaging.Request{
		SourcePath:               filepath.Join(dir, name),
		GalleryDir:               dir,
		PublicURLPrefix:          s.PublicPrefix(p),
		ForceRegenerateThumbnail: forceThumbnail,
	})
	if err != nil {
		return nil, err
	}

	if err := s.posts.Replace(ctx, p); err != nil {
		return nil, &apperrors.DivergenceError{
			Op:    "regenerateImage",
			Paths: s.derivativePaths(dir, name),
			Err:   err,
		}
	}
	return img, nil
}

// RotateImage rewrites the source file turned by the given degrees and
// rebuilds the whole derivative set: rotation invalidates every
// existing derivative, so the thumbnail regeneration is forced.
func (s *GalleryService) RotateImage(ctx context.Context, p *models.Post, name string, degrees int) (*models.Image, error) {
	img := p.Image(name)
	if img == nil {
		return nil, &apperrors.NotFoundError{Kind: "image", ID: name}
	}

	unlock := s.locks.Lock(s.imageKey(p, name))
	defer unlock()

	dir := s.Dir(p)
	if err := s.pipeline.Rotate(filepath.Join(dir, name), degrees); err != nil {
		return nil, err
	}

	_, err := s.pipeline.Process(ctx, img, imaging.Request{
		SourcePath:               filepath.Join(dir, name),
		GalleryDir:               dir,
		PublicURLPrefix:          s.PublicPrefix(p),
		ForceRegenerateThumbnail: true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.posts.Replace(ctx, p); err != nil {
		return nil, &apperrors.DivergenceError{
			Op:    "rotateImage",
			Paths: s.derivativePaths(dir, name),
			Err:   err,
		}
	}
	return img, nil
}

// DeleteImage removes every gallery file sharing the image's stem (the
// source plus all derivatives) and drops the record from the post. The
// record is only mutated once every file removal succeeded: unlike the
// add path, the delete path never lets file and record state diverge.
// Deleting an unknown name reports found=false without an error.
func (s *GalleryService) DeleteImage(ctx context.Context, p *models.Post, name string) (bool, error) {
	img := p.Image(name)
	if img == nil {
		return false, nil
	}

	unlock := s.locks.Lock(s.imageKey(p, name))
	defer unlock()

	dir := s.Dir(p)
	matches, err := filepath.Glob(filepath.Join(dir, stemOf(name)+"*"))
	if err != nil {
		return false, &apperrors.ExternalServiceError{Service: "filesystem", Op: "glob", Err: err}
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return false, &apperrors.ExternalServiceError{Service: "filesystem", Op: "remove " + path, Err: err}
		}
	}

	kept := p.Images[:0]
	for i := range p.Images {
		if p.Images[i].Name == name {
			continue
		}
		kept = append(kept, p.Images[i])
	}
	p.Images = kept

	if err := s.posts.Replace(ctx, p); err != nil {
		return false, err
	}
	s.log.Infof("image %s deleted from post %s (%d files)", name, p.ID.Hex(), len(matches))
	return true, nil
}

// derivativePaths lists the files a pipeline run may have written for an
// image, existing ones only.
func (s *GalleryService) derivativePaths(dir, name string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, stemOf(name)+"_*"))
	if err != nil {
		return nil
	}
	return matches
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
