package tuning

import "github.com/AnyUserName/squeeze/internal/format"

// Compression is the zlib effort used for PNG output.
type Compression int

const (
	CompressionDefault Compression = iota
	CompressionFast
	CompressionBest
)

func (c Compression) String() string {
	switch c {
	case CompressionFast:
		return "Fast"
	case CompressionBest:
		return "Best"
	default:
		return "Default"
	}
}

// Filter is the per-scanline prediction strategy used for PNG output.
type Filter int

const (
	// FilterAdaptive picks the best predictor per row.
	FilterAdaptive Filter = iota
	// FilterNone writes every row unfiltered.
	FilterNone
)

func (f Filter) String() string {
	if f == FilterNone {
		return "NoFilter"
	}
	return "Adaptive"
}

// PNGConfig is the (compression level, filter mode) pair for a PNG encode.
type PNGConfig struct {
	Compression Compression
	Filter      Filter
}

// PNGSettings chooses PNG encoder settings. PNG output is lossless, so there
// is no quality input: compression is always Best and only the filter varies.
//
// JPEG-origin pixels skip filtering unless the image is above MediumPixels,
// where adaptive filtering is forced regardless of source.
func PNGSettings(src format.Format, pixels uint64) PNGConfig {
	cfg := PNGConfig{Compression: CompressionBest, Filter: FilterAdaptive}
	if src == format.JPEG {
		cfg.Filter = FilterNone
	}
	if pixels > MediumPixels {
		cfg.Filter = FilterAdaptive
	}
	return cfg
}
