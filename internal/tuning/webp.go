package tuning

import "github.com/AnyUserName/squeeze/internal/format"

// WebP output range.
const (
	WebPMinQuality = 10
	WebPMaxQuality = 90
)

const (
	webpReencodeFactor = 0.7
	webpReencodeMax    = 80
)

var webpSteps = sizeSteps{large: 3, medium: 1, small: 3}

// WebPDecision computes the WebP quality factor for a request. The value only
// reaches the encoder on the lossy path; lossless encodes ignore it.
func WebPDecision(src format.Format, requested int, pixels uint64) Decision {
	var base int
	switch src {
	case format.WebP:
		base = clamp(scaled(requested, webpReencodeFactor), WebPMinQuality, webpReencodeMax)
	case format.JPEG:
		base = clamp(requested, 10, 85)
	case format.PNG:
		base = clamp(requested, 20, 90)
	default:
		base = clamp(requested, 15, 90)
	}

	adj := webpSteps.adjustment(pixels)
	return Decision{
		Requested:  requested,
		Base:       base,
		Adjustment: adj,
		Final:      clamp(base+adj, WebPMinQuality, WebPMaxQuality),
	}
}

// WebPQuality returns a quality in [WebPMinQuality, WebPMaxQuality].
func WebPQuality(src format.Format, requested int, pixels uint64) int {
	return WebPDecision(src, requested, pixels).Final
}
