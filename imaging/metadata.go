package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	exiftool "github.com/barasher/go-exiftool"

	"blogforge/apperrors"
)

// previewPrefix tags binary tag values returned by exiftool as base64.
const previewPrefix = "base64:"

// Metadata is the tag→value map extracted from one source file.
type Metadata struct {
	FileName string
	Tags     map[string]string
}

// Tag returns the named tag value or "".
func (m Metadata) Tag(name string) string { return m.Tags[name] }

// Title, Keywords, Description and Artist read the textual tags that seed
// a newly added image record.
func (m Metadata) Title() string       { return m.Tags["Title"] }
func (m Metadata) Description() string { return m.Tags["ImageDescription"] }
func (m Metadata) Artist() string      { return m.Tags["Artist"] }

func (m Metadata) Keywords() []string {
	raw := m.Tags["Keywords"]
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Preview returns the embedded preview image bytes when the source
// carried one, decoding the fixed-prefix base64 scheme exiftool uses for
// binary tags.
func (m Metadata) Preview() ([]byte, error) {
	raw := m.Tags["ThumbnailImage"]
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, previewPrefix) {
		return nil, fmt.Errorf("preview tag of %s lacks the %q prefix", m.FileName, previewPrefix)
	}
	data, err := base64.StdEncoding.DecodeString(raw[len(previewPrefix):])
	if err != nil {
		return nil, fmt.Errorf("decode preview of %s: %w", m.FileName, err)
	}
	return data, nil
}

// MetadataExtractor is the narrow boundary to the external metadata tool.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string) (Metadata, error)
}

// ExiftoolExtractor runs a resident exiftool process via go-exiftool.
type ExiftoolExtractor struct {
	et *exiftool.Exiftool
}

// NewExiftoolExtractor starts the resident exiftool process. binaryPath
// overrides the PATH lookup when non-empty. Close must be called when the
// extractor is no longer needed.
func NewExiftoolExtractor(binaryPath string) (*ExiftoolExtractor, error) {
	opts := []func(*exiftool.Exiftool) error{
		exiftool.ExtractAllBinaryMetadata(),
	}
	if binaryPath != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binaryPath))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, &apperrors.ExternalServiceError{Service: "exiftool", Op: "start", Err: err}
	}
	return &ExiftoolExtractor{et: et}, nil
}

func (x *ExiftoolExtractor) Extract(ctx context.Context, path string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	fms := x.et.ExtractMetadata(path)
	if len(fms) == 0 {
		return Metadata{}, &apperrors.ExternalServiceError{
			Service: "exiftool", Op: "extract",
			Err: fmt.Errorf("no result for %s", path),
		}
	}
	fm := fms[0]
	if fm.Err != nil {
		return Metadata{}, &apperrors.ExternalServiceError{Service: "exiftool", Op: "extract", Err: fm.Err}
	}

	tags := make(map[string]string, len(fm.Fields))
	for k := range fm.Fields {
		if v, err := fm.GetString(k); err == nil {
			tags[k] = v
		}
	}
	return Metadata{FileName: path, Tags: tags}, nil
}

func (x *ExiftoolExtractor) Close() error {
	return x.et.Close()
}
