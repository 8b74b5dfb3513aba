package encoder

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/AnyUserName/squeeze/internal/format"
)

// defaultJPEGQuality is used when Settings.Quality is outside 1-100.
const defaultJPEGQuality = 82

// JPEGEncoder encodes images to baseline JPEG using Go's standard library.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Target() format.Target { return format.TargetJPEG }

// Encode writes img as JPEG. Alpha is always discarded: see FlattenRGB.
func (e *JPEGEncoder) Encode(img image.Image, s Settings) ([]byte, error) {
	quality := s.Quality
	if quality <= 0 || quality > 100 {
		quality = defaultJPEGQuality
	}

	rgb := FlattenRGB(img)

	var buf bytes.Buffer
	buf.Grow(256 * 1024)

	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(err, "jpeg encode")
	}
	return buf.Bytes(), nil
}

// FlattenRGB converts img to 8-bit opaque RGB for JPEG output.
//
// This is a lossy step: the alpha channel is dropped, not composited. Colour
// channels keep their straight (un-premultiplied) values, so a translucent red
// pixel becomes solid red rather than a darker blend against black.
func FlattenRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
