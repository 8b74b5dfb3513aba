package convert

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/squeeze/internal/format"
)

var errEmptyImage = errors.New("image has zero width or height")

// Source is a decoded input together with what its bytes say about it.
type Source struct {
	Image image.Image
	// Format comes from the byte signature, not from the decoder. The two
	// normally agree; GIF, BMP and TIFF inputs decode but detect as Unknown.
	Format format.Format
	// Size is the encoded input length in bytes.
	Size int
}

// Load decodes data and classifies its signature.
func Load(data []byte) (*Source, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Err: errEmptyImage}
	}

	return &Source{
		Image:  img,
		Format: format.Detect(data),
		Size:   len(data),
	}, nil
}

func (s *Source) Width() int  { return s.Image.Bounds().Dx() }
func (s *Source) Height() int { return s.Image.Bounds().Dy() }

// Pixels returns width × height.
func (s *Source) Pixels() uint64 {
	return uint64(s.Width()) * uint64(s.Height())
}

// HasAlpha reports whether any pixel is not fully opaque.
func (s *Source) HasAlpha() bool {
	if o, ok := s.Image.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := s.Image.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := s.Image.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
