package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/squeeze/internal/convert"
	"github.com/AnyUserName/squeeze/internal/hasher"
	"github.com/AnyUserName/squeeze/internal/manifest"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key            string
	asset          manifest.Asset
	err            error
	skippedRegress int // outputs skipped because not smaller than the source
	failedOutputs  int // targets whose encode failed
}

// process decodes one source once and writes one output per resolved target.
func (p *Pipeline) process(src Source) processResult {
	result := processResult{key: src.Key}
	log := p.log.WithField("key", src.Key)

	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("read %s: %w", src.RelPath, err)
		return result
	}

	loaded, err := convert.Load(data)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}

	info := loaded.Info()
	hasAlpha := loaded.HasAlpha()
	result.asset = manifest.Asset{
		Original: manifest.OriginalInfo{
			Width:    info.Width,
			Height:   info.Height,
			Format:   info.Format,
			Size:     int64(len(data)),
			HasAlpha: hasAlpha,
			Hash:     hasher.Sum(data, 0),
		},
		AspectRatio: info.AspectRatio,
	}

	prof := p.cfg.Profile
	targets := p.registry.Resolve(prof.TargetsFor(convert.ShouldConvertToWebP(data)), hasAlpha)

	keyDir := filepath.Dir(filepath.FromSlash(src.Key))
	if err := os.MkdirAll(filepath.Join(p.cfg.OutputDir, keyDir), 0o755); err != nil {
		result.err = fmt.Errorf("create output dir for %s: %w", src.Key, err)
		return result
	}

	for _, target := range targets {
		res, err := p.converter.ConvertSource(loaded, target, prof.Quality)
		if err != nil {
			// The converter has already logged the failure.
			result.failedOutputs++
			result.asset.FailedTargets = append(result.asset.FailedTargets, target.Name())
			continue
		}

		if p.cfg.NoRegressSize && len(res.Data) >= len(data) {
			log.WithFields(logrus.Fields{
				"target":       target.Name(),
				"input_bytes":  len(data),
				"output_bytes": len(res.Data),
			}).Debug("skip: output not smaller than source")
			result.skippedRegress++
			continue
		}

		contentHash := hasher.Sum(res.Data, 0)
		fileName := fmt.Sprintf("%s.%s.%s",
			filepath.Base(src.Key), contentHash[:hasher.ShortLen], target.Extension())
		relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))

		if err := os.WriteFile(filepath.Join(p.cfg.OutputDir, filepath.FromSlash(relPath)), res.Data, 0o644); err != nil {
			result.err = fmt.Errorf("write %s: %w", relPath, err)
			return result
		}

		out := manifest.Output{
			Target:   target.Name(),
			Lossless: res.Settings.Lossless,
			Size:     int64(len(res.Data)),
			Hash:     contentHash,
			Path:     relPath,
			Ratio:    res.Ratio(),
		}
		if !res.Settings.Lossless {
			out.Quality = res.Decision.Final
		}
		result.asset.Outputs = append(result.asset.Outputs, out)
	}

	return result
}
