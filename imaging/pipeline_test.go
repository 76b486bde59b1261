package imaging_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogforge/apperrors"
	"blogforge/imaging"
	"blogforge/logger"
	"blogforge/models"
)

type fakeExtractor struct {
	meta imaging.Metadata
	err  error
}

func (f fakeExtractor) Extract(ctx context.Context, path string) (imaging.Metadata, error) {
	if f.err != nil {
		return imaging.Metadata{}, f.err
	}
	return f.meta, nil
}

func newPipeline(meta imaging.Metadata) *imaging.Pipeline {
	return imaging.NewPipeline(fakeExtractor{meta: meta}, logger.NewLogger("error"))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	return img, format
}

func TestProcessLandscapeProducesFullSet(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "vista.png")
	writePNG(t, src, 2048, 1365)

	img := models.NewImage(models.ImageConfig{Name: "vista.png"})
	p := newPipeline(imaging.Metadata{})

	set, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:      src,
		GalleryDir:      dir,
		PublicURLPrefix: "/images/g1",
		NewlyAdded:      true,
	})
	require.NoError(t, err)

	big, med, sml := imaging.LandscapeSizes()
	for _, c := range []struct {
		file string
		box  imaging.Geometry
		url  string
	}{
		{"vista_big.png", big, set.BigURL},
		{"vista_med.png", med, set.MedURL},
		{"vista_sml.png", sml, set.SmlURL},
		{"vista_thumbnail.png", imaging.ThumbnailGeometry(), set.ThumbnailURL},
	} {
		out, format := decodeFile(t, filepath.Join(dir, c.file))
		assert.True(t, imaging.AcceptedEncoding(format), "%s encoded as %s", c.file, format)
		wantW, wantH := imaging.FitDimensions(2048, 1365, c.box)
		assert.Equal(t, wantW, out.Bounds().Dx(), c.file)
		assert.Equal(t, wantH, out.Bounds().Dy(), c.file)
		assert.Equal(t, "/images/g1/"+c.file, c.url)
	}

	assert.True(t, img.HasDerivatives())
	assert.Equal(t, set.BigURL, img.BigURL)
	assert.Equal(t, set.ThumbnailURL, img.ThumbnailURL)
}

func TestProcessPortraitUsesPortraitTable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tower.png")
	writePNG(t, src, 1365, 2048)

	img := models.NewImage(models.ImageConfig{Name: "tower.png"})
	p := newPipeline(imaging.Metadata{})

	_, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:      src,
		GalleryDir:      dir,
		PublicURLPrefix: "/images/g1",
		NewlyAdded:      true,
	})
	require.NoError(t, err)

	big, _, _ := imaging.PortraitSizes()
	out, _ := decodeFile(t, filepath.Join(dir, "tower_big.png"))
	wantW, wantH := imaging.FitDimensions(1365, 2048, big)
	assert.Equal(t, wantW, out.Bounds().Dx())
	assert.Equal(t, wantH, out.Bounds().Dy())
	assert.Greater(t, out.Bounds().Dy(), out.Bounds().Dx(), "portrait derivative stays portrait")
}

func TestGeometryTablesDiffer(t *testing.T) {
	lb, lm, ls := imaging.LandscapeSizes()
	pb, pm, ps := imaging.PortraitSizes()
	assert.NotEqual(t, []imaging.Geometry{lb, lm, ls}, []imaging.Geometry{pb, pm, ps},
		"landscape and portrait tables must differ for at least one size label")
}

func TestProcessConvertsUnacceptedEncoding(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "anim.gif")

	frame := image.NewPaletted(image.Rect(0, 0, 1400, 900), []color.Color{
		color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255},
	})
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, gif.Encode(f, frame, nil))
	require.NoError(t, f.Close())

	img := models.NewImage(models.ImageConfig{Name: "anim.gif"})
	p := newPipeline(imaging.Metadata{})

	set, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:      src,
		GalleryDir:      dir,
		PublicURLPrefix: "/images/g1",
		NewlyAdded:      true,
	})
	require.NoError(t, err)

	_, format := decodeFile(t, filepath.Join(dir, "anim_big.jpg"))
	assert.Equal(t, "jpeg", format, "gif source converts to the default output encoding")
	assert.Equal(t, "/images/g1/anim_big.jpg", set.BigURL)
}

func TestProcessSeedsRecordFromMetadata(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 600, 400)

	img := models.NewImage(models.ImageConfig{Name: "pic.png"})
	p := newPipeline(imaging.Metadata{Tags: map[string]string{
		"Title":            "Harbor",
		"ImageDescription": "boats at dusk",
		"Artist":           "ana",
		"Keywords":         "harbor, boats, harbor",
	}})

	_, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:      src,
		GalleryDir:      dir,
		PublicURLPrefix: "/images/g1",
		NewlyAdded:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Harbor", img.Title)
	assert.Equal(t, "boats at dusk", img.Description)
	assert.Equal(t, "ana", img.Creator)
	assert.Equal(t, []string{"harbor", "boats"}, img.Keywords)
}

func TestProcessPreviewFastPath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "shot.png")
	writePNG(t, src, 600, 400)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	preview := buf.Bytes()

	img := models.NewImage(models.ImageConfig{Name: "shot.png"})
	p := newPipeline(imaging.Metadata{Tags: map[string]string{
		"ThumbnailImage": "base64:" + base64.StdEncoding.EncodeToString(preview),
	}})

	_, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:      src,
		GalleryDir:      dir,
		PublicURLPrefix: "/images/g1",
		NewlyAdded:      true,
	})
	require.NoError(t, err)

	// The embedded preview is persisted verbatim; big/med/sml still go
	// through the resize path.
	got, err := os.ReadFile(filepath.Join(dir, "shot_thumbnail.png"))
	require.NoError(t, err)
	assert.Equal(t, preview, got)
	assert.FileExists(t, filepath.Join(dir, "shot_big.png"))
}

func TestProcessKeepsExistingThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "keep.png")
	writePNG(t, src, 600, 400)

	img := models.NewImage(models.ImageConfig{Name: "keep.png", ThumbnailURL: "/images/g1/keep_thumbnail.png"})
	p := newPipeline(imaging.Metadata{})

	set, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:      src,
		GalleryDir:      dir,
		PublicURLPrefix: "/images/g1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/images/g1/keep_thumbnail.png", set.ThumbnailURL)
	assert.NoFileExists(t, filepath.Join(dir, "keep_thumbnail.png"))
}

func TestProcessForceRegeneratesThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "redo.png")
	writePNG(t, src, 600, 400)

	img := models.NewImage(models.ImageConfig{Name: "redo.png", ThumbnailURL: "/images/g1/redo_thumbnail.png"})
	p := newPipeline(imaging.Metadata{})

	_, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:               src,
		GalleryDir:               dir,
		PublicURLPrefix:          "/images/g1",
		ForceRegenerateThumbnail: true,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "redo_thumbnail.png"))
}

func TestProcessMissingSourceIsFatal(t *testing.T) {
	dir := t.TempDir()
	img := models.NewImage(models.ImageConfig{Name: "ghost.png"})
	p := newPipeline(imaging.Metadata{})

	_, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:      filepath.Join(dir, "ghost.png"),
		GalleryDir:      dir,
		PublicURLPrefix: "/images/g1",
		NewlyAdded:      true,
	})
	require.Error(t, err)

	var ipe *apperrors.ImageProcessingError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "ghost.png", ipe.Name)
	assert.Equal(t, "decode", ipe.Stage)
	assert.False(t, img.HasDerivatives(), "no partial set on failure")
}

func TestProcessExtractionFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.png")
	writePNG(t, src, 100, 80)

	img := models.NewImage(models.ImageConfig{Name: "bad.png"})
	p := imaging.NewPipeline(fakeExtractor{err: errors.New("tool crashed")}, logger.NewLogger("error"))

	_, err := p.Process(context.Background(), img, imaging.Request{
		SourcePath:      src,
		GalleryDir:      dir,
		PublicURLPrefix: "/images/g1",
		NewlyAdded:      true,
	})
	var ipe *apperrors.ImageProcessingError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "extract", ipe.Stage)
}

func TestProcessRequiresName(t *testing.T) {
	p := newPipeline(imaging.Metadata{})
	img := models.NewImage(models.ImageConfig{})

	_, err := p.Process(context.Background(), img, imaging.Request{})
	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestRotateRewritesSourceInPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "turn.png")
	writePNG(t, src, 30, 20)

	p := newPipeline(imaging.Metadata{})
	require.NoError(t, p.Rotate(src, 90))

	out, _ := decodeFile(t, src)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())
}

func TestRotateRejectsNonQuarterTurns(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "turn.png")
	writePNG(t, src, 30, 20)

	p := newPipeline(imaging.Metadata{})
	err := p.Rotate(src, 45)

	var ipe *apperrors.ImageProcessingError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "rotate", ipe.Stage)
}
