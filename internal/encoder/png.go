package encoder

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	"github.com/pkg/errors"

	"github.com/AnyUserName/squeeze/internal/format"
	"github.com/AnyUserName/squeeze/internal/tuning"
)

// PNGEncoder encodes images to PNG in their native color model.
//
// Adaptive filtering goes through image/png, which already selects a filter
// per row. image/png has no way to turn filtering off, so FilterNone is
// handled by writeUnfiltered.
type PNGEncoder struct {
	pool bufferPool
}

func (e *PNGEncoder) Target() format.Target { return format.TargetPNG }

func (e *PNGEncoder) Encode(img image.Image, s Settings) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(512 * 1024)

	if s.PNG.Filter == tuning.FilterNone {
		if err := writeUnfiltered(&buf, img, zlibLevel(s.PNG.Compression)); err != nil {
			return nil, errors.Wrap(err, "png encode (unfiltered)")
		}
		return buf.Bytes(), nil
	}

	enc := &png.Encoder{
		CompressionLevel: pngLevel(s.PNG.Compression),
		BufferPool:       &e.pool,
	}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "png encode")
	}
	return buf.Bytes(), nil
}

func pngLevel(c tuning.Compression) png.CompressionLevel {
	switch c {
	case tuning.CompressionBest:
		return png.BestCompression
	case tuning.CompressionFast:
		return png.BestSpeed
	default:
		return png.DefaultCompression
	}
}

// bufferPool lets concurrent encodes reuse image/png's scratch buffers.
type bufferPool struct {
	p sync.Pool
}

func (bp *bufferPool) Get() *png.EncoderBuffer {
	b, _ := bp.p.Get().(*png.EncoderBuffer)
	return b
}

func (bp *bufferPool) Put(b *png.EncoderBuffer) {
	bp.p.Put(b)
}
