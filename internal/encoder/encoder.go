package encoder

import (
	"image"

	"github.com/AnyUserName/squeeze/internal/format"
	"github.com/AnyUserName/squeeze/internal/tuning"
)

// Settings carries the concrete, already-tuned parameters for one encode.
// Each encoder reads only the fields that apply to it.
type Settings struct {
	// Quality is the lossy quality factor (JPEG, lossy WebP).
	Quality int
	// PNG is the compression/filter pair for PNG output.
	PNG tuning.PNGConfig
	// Lossless selects the lossless WebP path; Quality is ignored when set.
	Lossless bool
}

// Encoder encodes a decoded image to one target format.
type Encoder interface {
	// Target returns the output format this encoder produces.
	Target() format.Target

	// Encode converts the image to bytes. The returned slice is owned by the
	// caller; on error it is nil.
	Encode(img image.Image, s Settings) ([]byte, error)
}
