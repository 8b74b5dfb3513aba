package tuning

import "github.com/AnyUserName/squeeze/internal/format"

// JPEG output range.
const (
	JPEGMinQuality = 5
	JPEGMaxQuality = 95
)

// JPEG→JPEG re-encodes re-quantize already lossy data, so the requested
// value is discounted and capped well below the other sources.
const (
	jpegReencodeFactor = 0.6
	jpegReencodeMax    = 70
)

var jpegSteps = sizeSteps{large: 5, medium: 2, small: 5}

// JPEGDecision computes the JPEG quality factor for a request.
func JPEGDecision(src format.Format, requested int, pixels uint64) Decision {
	var base int
	switch src {
	case format.JPEG:
		base = clamp(scaled(requested, jpegReencodeFactor), JPEGMinQuality, jpegReencodeMax)
	case format.PNG:
		base = clamp(requested, 15, 90)
	default:
		base = clamp(requested, 10, JPEGMaxQuality)
	}

	adj := jpegSteps.adjustment(pixels)
	return Decision{
		Requested:  requested,
		Base:       base,
		Adjustment: adj,
		Final:      clamp(base+adj, JPEGMinQuality, JPEGMaxQuality),
	}
}

// JPEGQuality returns a quality in [JPEGMinQuality, JPEGMaxQuality].
func JPEGQuality(src format.Format, requested int, pixels uint64) int {
	return JPEGDecision(src, requested, pixels).Final
}
