package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Encodings accepted for derivative output. Sources in any other
// encoding are converted to EncodingDefault before resizing.
const (
	EncodingJPEG = "jpeg"
	EncodingPNG  = "png"

	EncodingDefault = EncodingJPEG

	jpegQuality = 85
)

// AcceptedEncoding reports whether enc may appear in a derivative set.
func AcceptedEncoding(enc string) bool {
	return enc == EncodingJPEG || enc == EncodingPNG
}

// Frame is one decoded image plus its target encoding. All pipeline
// transformations operate on frames.
type Frame struct {
	Img      image.Image
	Encoding string
}

// LoadFrame decodes the file at path. GIF and WebP sources decode fine
// but are not accepted outputs, so their frames convert to the default
// encoding up front.
func LoadFrame(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if !AcceptedEncoding(format) {
		format = EncodingDefault
	}
	return &Frame{Img: img, Encoding: format}, nil
}

// Width and Height report the decoded pixel geometry.
func (fr *Frame) Width() int  { return fr.Img.Bounds().Dx() }
func (fr *Frame) Height() int { return fr.Img.Bounds().Dy() }

// Resize scales the frame to exactly w x h using CatmullRom resampling.
func (fr *Frame) Resize(w, h int) *Frame {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), fr.Img, fr.Img.Bounds(), draw.Over, nil)
	return &Frame{Img: dst, Encoding: fr.Encoding}
}

// Strip rewrites the frame onto a bare RGBA canvas, dropping every
// auxiliary channel and leaving only pixel data. Re-encoding such a frame
// carries no metadata segments.
func (fr *Frame) Strip() *Frame {
	dst := image.NewRGBA(fr.Img.Bounds())
	draw.Draw(dst, dst.Bounds(), fr.Img, fr.Img.Bounds().Min, draw.Src)
	return &Frame{Img: dst, Encoding: fr.Encoding}
}

// Rotate turns the frame clockwise by the given degrees. Only quarter
// turns are supported; rotation exists to fix camera orientation, not for
// arbitrary transforms.
func (fr *Frame) Rotate(degrees int) (*Frame, error) {
	degrees = ((degrees % 360) + 360) % 360
	if degrees%90 != 0 {
		return nil, fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", degrees)
	}
	out := fr.Img
	for i := 0; i < degrees/90; i++ {
		out = rotate90(out)
	}
	return &Frame{Img: out, Encoding: fr.Encoding}, nil
}

func rotate90(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.Y-1-y, x-b.Min.X, src.At(x, y))
		}
	}
	return dst
}

// Encode serializes the frame in its encoding.
func (fr *Frame) Encode() ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch fr.Encoding {
	case EncodingPNG:
		err = png.Encode(&buf, fr.Img)
	case EncodingJPEG:
		err = jpeg.Encode(&buf, fr.Img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = fmt.Errorf("unsupported output encoding %q", fr.Encoding)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes the frame and writes it to path.
func (fr *Frame) WriteFile(path string) error {
	data, err := fr.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Ext returns the filename extension for the frame's encoding.
func (fr *Frame) Ext() string {
	if fr.Encoding == EncodingPNG {
		return ".png"
	}
	return ".jpg"
}
