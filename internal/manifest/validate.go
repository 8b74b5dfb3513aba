package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/squeeze/internal/hasher"
)

var knownTargets = map[string]bool{"webp": true, "jpeg": true, "png": true}

// Validate checks m against the files under baseDir and returns one message
// per problem, sorted by asset key.
func Validate(m *Manifest, baseDir string) []string {
	var errs []string

	if m.Version != SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seenPaths := map[string]string{}
	for _, key := range keys {
		asset := m.Assets[key]

		if asset.Original.Width <= 0 || asset.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, asset.Original.Width, asset.Original.Height))
		}
		if asset.AspectRatio <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid aspect ratio %.4f", key, asset.AspectRatio))
		}
		// An asset whose every output was skipped by no-regress is valid.

		for i, o := range asset.Outputs {
			if !knownTargets[o.Target] {
				errs = append(errs, fmt.Sprintf("asset %q output[%d]: unknown target %q", key, i, o.Target))
			}
			if o.Hash == "" {
				errs = append(errs, fmt.Sprintf("asset %q output[%d]: missing hash", key, i))
			}
			if o.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q output[%d]: missing path", key, i))
				continue
			}

			if owner, dup := seenPaths[o.Path]; dup {
				errs = append(errs, fmt.Sprintf("asset %q output[%d]: duplicate path %q (also in %q)", key, i, o.Path, owner))
			}
			seenPaths[o.Path] = key

			errs = append(errs, checkFile(filepath.Join(baseDir, filepath.FromSlash(o.Path)), key, i, o)...)
		}
	}

	outputs, failedOutputs := 0, 0
	for _, a := range m.Assets {
		outputs += len(a.Outputs)
		failedOutputs += len(a.FailedTargets)
	}
	if m.Stats.TotalAssets != len(m.Assets) {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, len(m.Assets)))
	}
	if m.Stats.TotalOutputs != outputs {
		errs = append(errs, fmt.Sprintf("stats.total_outputs mismatch: %d != %d", m.Stats.TotalOutputs, outputs))
	}
	if m.Stats.FailedOutputs != failedOutputs {
		errs = append(errs, fmt.Sprintf("stats.failed_outputs mismatch: %d != %d", m.Stats.FailedOutputs, failedOutputs))
	}

	return errs
}

// checkFile streams one output file and compares its size and hash with the
// manifest entry.
func checkFile(path, key string, i int, o Output) []string {
	f, err := os.Open(path)
	if err != nil {
		return []string{fmt.Sprintf("asset %q output[%d]: file not found: %s", key, i, o.Path)}
	}
	defer f.Close()

	var errs []string
	info, err := f.Stat()
	if err != nil {
		return []string{fmt.Sprintf("asset %q output[%d]: stat %s: %v", key, i, o.Path, err)}
	}
	if o.Size > 0 && info.Size() != o.Size {
		errs = append(errs, fmt.Sprintf("asset %q output[%d]: size mismatch: manifest=%d, disk=%d",
			key, i, o.Size, info.Size()))
	}
	if o.Hash != "" {
		sum, err := hasher.SumReader(f, len(o.Hash))
		if err != nil {
			errs = append(errs, fmt.Sprintf("asset %q output[%d]: read %s: %v", key, i, o.Path, err))
		} else if sum != o.Hash {
			errs = append(errs, fmt.Sprintf("asset %q output[%d]: hash mismatch for %s", key, i, o.Path))
		}
	}
	return errs
}
