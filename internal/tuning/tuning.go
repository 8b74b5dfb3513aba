// Package tuning maps a conversion request (source format, target format,
// requested quality, pixel count) to concrete encoder settings.
//
// Every function here is pure. Quality is a heuristic proxy scalar: nothing in
// this package measures the perceptual result of an encode.
package tuning

import "math"

// Pixel-count thresholds shared by the lossy heuristics.
const (
	LargePixels  = 2_000_000
	MediumPixels = 1_000_000
	SmallPixels  = 100_000
)

// Decision records how a lossy quality value was derived.
type Decision struct {
	Requested  int
	Base       int
	Adjustment int
	Final      int
}

// sizeSteps holds the quality delta applied for each pixel-count band.
type sizeSteps struct {
	large, medium, small int
}

// adjustment returns the delta for pixels: negative for large images,
// positive for very small ones.
func (s sizeSteps) adjustment(pixels uint64) int {
	switch {
	case pixels > LargePixels:
		return -s.large
	case pixels > MediumPixels:
		return -s.medium
	case pixels < SmallPixels:
		return s.small
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// scaled returns round(q × factor).
func scaled(q int, factor float64) int {
	return int(math.Round(float64(q) * factor))
}
