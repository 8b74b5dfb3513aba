package encoder

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/klauspost/compress/zlib"

	"github.com/AnyUserName/squeeze/internal/tuning"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// PNG color types.
const (
	ctGray      = 0
	ctRGB       = 2
	ctRGBAlpha  = 6
	filterNone  = 0
	pngBitDepth = 8
)

// writeUnfiltered writes img as an 8-bit PNG with filter type 0 on every row.
//
// Gray images stay gray, opaque images are written as RGB and everything else
// as non-premultiplied RGBA. 16-bit sources are reduced to 8 bits; this path is
// only chosen for JPEG-origin pixels, which never carry more than 8 bits.
func writeUnfiltered(w io.Writer, img image.Image, level int) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return errEmptyImage
	}

	ct, bpp := ctRGBAlpha, 4
	var gray *image.Gray
	var nrgba *image.NRGBA
	switch m := img.(type) {
	case *image.Gray:
		ct, bpp, gray = ctGray, 1, m
	default:
		nrgba = imaging.Clone(img)
		if isOpaque(img) {
			ct, bpp = ctRGB, 3
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(pngHeader); err != nil {
		return err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = pngBitDepth
	ihdr[9] = byte(ct)
	// compression, filter method and interlace are all 0.
	if err := writeChunk(bw, "IHDR", ihdr[:]); err != nil {
		return err
	}

	idat := &chunkWriter{w: bw, name: "IDAT"}
	zw, err := zlib.NewWriterLevel(idat, level)
	if err != nil {
		return err
	}

	row := make([]byte, 1+width*bpp)
	row[0] = filterNone
	for y := 0; y < height; y++ {
		switch {
		case gray != nil:
			off := gray.PixOffset(b.Min.X, b.Min.Y+y)
			copy(row[1:], gray.Pix[off:off+width])
		case ct == ctRGB:
			src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
			for x := 0; x < width; x++ {
				copy(row[1+x*3:4+x*3], src[x*4:x*4+3])
			}
		default:
			copy(row[1:], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+width*4])
		}
		if _, err := zw.Write(row); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := idat.flush(); err != nil {
		return err
	}

	if err := writeChunk(bw, "IEND", nil); err != nil {
		return err
	}
	return bw.Flush()
}

func writeChunk(w io.Writer, name string, data []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], name)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:8])
	crc.Write(data)

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	_, err := w.Write(sum[:])
	return err
}

// maxIDAT bounds a single IDAT chunk.
const maxIDAT = 1 << 16

// chunkWriter buffers compressed bytes and emits them as IDAT chunks.
type chunkWriter struct {
	w    io.Writer
	name string
	buf  []byte
}

func (c *chunkWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		room := maxIDAT - len(c.buf)
		take := min(room, len(p))
		c.buf = append(c.buf, p[:take]...)
		p = p[take:]
		if len(c.buf) == maxIDAT {
			if err := c.flush(); err != nil {
				return 0, err
			}
		}
	}
	return n, nil
}

func (c *chunkWriter) flush() error {
	if len(c.buf) == 0 {
		return nil
	}
	err := writeChunk(c.w, c.name, c.buf)
	c.buf = c.buf[:0]
	return err
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

func zlibLevel(c tuning.Compression) int {
	switch c {
	case tuning.CompressionBest:
		return zlib.BestCompression
	case tuning.CompressionFast:
		return zlib.BestSpeed
	default:
		return zlib.DefaultCompression
	}
}
