package format

import "bytes"

// Magic bytes.
var (
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	riffSignature = []byte{0x52, 0x49, 0x46, 0x46} // "RIFF"
	webpSignature = []byte{0x57, 0x45, 0x42, 0x50} // "WEBP" at offset 8
)

// minDetectLen is the shortest buffer Detect will classify.
const minDetectLen = 8

// Detect classifies b by its signature. It never fails: anything shorter than
// eight bytes or not matching a known signature is Unknown.
func Detect(b []byte) Format {
	if len(b) < minDetectLen {
		return Unknown
	}

	if bytes.HasPrefix(b, pngSignature) {
		return PNG
	}
	if bytes.HasPrefix(b, jpegSignature) {
		return JPEG
	}
	if len(b) >= 12 && bytes.HasPrefix(b, riffSignature) && bytes.Equal(b[8:12], webpSignature) {
		return WebP
	}

	return Unknown
}
