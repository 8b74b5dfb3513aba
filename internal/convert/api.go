package convert

import (
	"strings"

	"github.com/AnyUserName/squeeze/internal/format"
)

const (
	// DefaultQuality applies when the caller passes a non-positive quality.
	DefaultQuality = 80
	// MaxQuality is the largest quality accepted at the boundary.
	MaxQuality = 255

	// webpWorthyJPEGSize is the JPEG size above which WebP conversion pays off.
	webpWorthyJPEGSize = 500 * 1024
)

var std = New(Options{})

// NormalizeQuality maps q ≤ 0 to DefaultQuality and caps it at MaxQuality.
func NormalizeQuality(q int) int {
	switch {
	case q <= 0:
		return DefaultQuality
	case q > MaxQuality:
		return MaxQuality
	}
	return q
}

// ParseTarget parses a target format label. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseTarget(s string) (format.Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return format.TargetJPEG, nil
	case "png":
		return format.TargetPNG, nil
	case "webp":
		return format.TargetWebP, nil
	}
	return 0, &UnsupportedFormatError{Format: s, Allowed: []string{"jpeg", "png", "webp"}}
}

func parseCompressTarget(s string) (format.Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return format.TargetJPEG, nil
	case "png":
		return format.TargetPNG, nil
	}
	return 0, &UnsupportedFormatError{Format: s, Allowed: []string{"jpeg", "png"}}
}

// Compress re-encodes data as JPEG or PNG. Use ConvertToWebP for WebP.
func (c *Converter) Compress(data []byte, formatName string, quality int) ([]byte, error) {
	target, err := parseCompressTarget(formatName)
	if err != nil {
		c.fail(err, 0)
		return nil, err
	}
	return c.Convert(data, target, NormalizeQuality(quality))
}

// ConvertToWebP re-encodes data as WebP.
func (c *Converter) ConvertToWebP(data []byte, quality int) ([]byte, error) {
	return c.Convert(data, format.TargetWebP, NormalizeQuality(quality))
}

// Process converts to WebP when toWebP is set and compresses to JPEG otherwise.
func (c *Converter) Process(data []byte, toWebP bool, quality int) ([]byte, error) {
	if toWebP {
		return c.ConvertToWebP(data, quality)
	}
	return c.Compress(data, "jpeg", quality)
}

// Compress re-encodes data as JPEG or PNG with a silent default Converter.
func Compress(data []byte, formatName string, quality int) ([]byte, error) {
	return std.Compress(data, formatName, quality)
}

// ConvertToWebP re-encodes data as WebP with a silent default Converter.
func ConvertToWebP(data []byte, quality int) ([]byte, error) {
	return std.ConvertToWebP(data, quality)
}

// Process is Converter.Process with a silent default Converter.
func Process(data []byte, toWebP bool, quality int) ([]byte, error) {
	return std.Process(data, toWebP, quality)
}

// GetImageInfo is an alias for Inspect.
func GetImageInfo(data []byte) (ImageInfo, error) {
	return Inspect(data)
}

// ShouldConvertToWebP reports whether WebP conversion is worthwhile: never for
// WebP input, for JPEG only above 500 KiB, otherwise always.
func ShouldConvertToWebP(data []byte) bool {
	switch format.Detect(data) {
	case format.WebP:
		return false
	case format.JPEG:
		return len(data) > webpWorthyJPEGSize
	}
	return true
}
