package encoder

import (
	"bytes"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/AnyUserName/squeeze/internal/format"
)

// defaultWebPQuality is used on the lossy path when Settings.Quality is
// outside 1-100.
const defaultWebPQuality = 82

// WebPEncoder encodes images to WebP through libwebp (chai2010/webp).
// The image keeps its native color model, including alpha.
type WebPEncoder struct{}

func (e *WebPEncoder) Target() format.Target { return format.TargetWebP }

// Encode writes img as lossless WebP when s.Lossless is set, otherwise as lossy
// WebP at s.Quality.
func (e *WebPEncoder) Encode(img image.Image, s Settings) ([]byte, error) {
	opts := &webp.Options{Lossless: s.Lossless, Exact: s.Lossless}
	if !s.Lossless {
		q := s.Quality
		if q <= 0 || q > 100 {
			q = defaultWebPQuality
		}
		opts.Quality = float32(q)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, straightRGBA(img), opts); err != nil {
		if s.Lossless {
			return nil, errors.Wrap(err, "webp encode (lossless)")
		}
		return nil, errors.Wrapf(err, "webp encode (q=%.0f)", opts.Quality)
	}
	return buf.Bytes(), nil
}

// straightRGBA hands libwebp un-premultiplied samples. The binding reads
// *image.RGBA pixels as straight alpha and premultiplies anything else on the
// way in, so the NRGBA buffer is passed under an RGBA header.
func straightRGBA(img image.Image) image.Image {
	switch img.(type) {
	case *image.Gray, *image.RGBA:
		if isOpaque(img) {
			return img
		}
	}
	n := imaging.Clone(img)
	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}
