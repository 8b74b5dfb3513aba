package manifest

// FileName is the manifest written at the root of a batch output directory.
const FileName = "squeeze.manifest.json"

// Manifest is the top-level output of a squeeze batch run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers   int      `json:"workers"`
	Quality   int      `json:"quality"`
	WebPLossy bool     `json:"webp_lossy,omitempty"`
	Encoders  []string `json:"encoders,omitempty"`
}

// Asset describes a single source image and all outputs produced from it.
type Asset struct {
	Original    OriginalInfo `json:"original"`
	AspectRatio float64      `json:"aspect_ratio"` // width / height
	Outputs     []Output     `json:"outputs"`

	// FailedTargets lists targets whose encode failed for this asset.
	FailedTargets []string `json:"failed_targets,omitempty"`
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"` // detected signature: PNG, JPEG, WebP or Unknown
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
	Hash     string `json:"hash"`
}

// Output is one encoded rendition of an asset.
type Output struct {
	Target   string  `json:"target"`            // "webp", "jpeg", "png"
	Quality  int     `json:"quality,omitempty"` // tuned quality; absent for png
	Lossless bool    `json:"lossless,omitempty"`
	Size     int64   `json:"size"`  // bytes on disk
	Hash     string  `json:"hash"`  // 16 hex chars of xxhash64
	Path     string  `json:"path"`  // relative to base_path
	Ratio    float64 `json:"ratio"` // original size / output size
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalAssets      int   `json:"total_assets"`
	TotalOutputs     int   `json:"total_outputs"`
	SkippedRegress   int   `json:"skipped_regress,omitempty"` // outputs not smaller than the source
	Failed           int   `json:"failed,omitempty"`          // sources that could not be processed
	FailedOutputs    int   `json:"failed_outputs,omitempty"`  // targets that failed to encode
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
