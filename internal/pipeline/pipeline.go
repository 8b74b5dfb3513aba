package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/squeeze/internal/convert"
	"github.com/AnyUserName/squeeze/internal/encoder"
	"github.com/AnyUserName/squeeze/internal/manifest"
	"github.com/AnyUserName/squeeze/internal/profile"
)

// Config holds all parameters for a batch run.
type Config struct {
	InputDir      string
	OutputDir     string
	Profile       profile.Profile
	Workers       int
	NoRegressSize bool // skip outputs not smaller than the source
	WebPLossy     bool
	Logger        logrus.FieldLogger
}

// Pipeline converts every image under a directory.
type Pipeline struct {
	cfg       Config
	log       logrus.FieldLogger
	registry  *encoder.Registry
	converter *convert.Converter
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	registry := encoder.NewRegistry()
	return &Pipeline{
		cfg:      cfg,
		log:      log,
		registry: registry,
		converter: convert.New(convert.Options{
			Logger:    log,
			Registry:  registry,
			WebPLossy: cfg.WebPLossy,
		}),
	}
}

// Run executes the batch and returns the manifest. Individual failures are
// logged and counted; Run fails only when no source could be processed.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	p.log.Debug(p.registry.String())

	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.log.WithField("count", len(sources)).Info("found images")

	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = p.process(s)

			if results[idx].err == nil {
				p.log.WithFields(logrus.Fields{
					"key":     s.Key,
					"outputs": len(results[idx].asset.Outputs),
				}).Debug("done")
			}
		}(i, src)
	}
	wg.Wait()

	m := manifest.New(p.cfg.Profile.Name)

	var failed, skipped, failedOutputs int
	for _, r := range results {
		if r.err != nil {
			failed++
			p.log.WithError(r.err).WithField("key", r.key).Error("source failed")
			continue
		}
		if _, dup := m.Assets[r.key]; dup {
			failed++
			p.log.WithField("key", r.key).Error("source failed: duplicate asset key")
			continue
		}
		m.Assets[r.key] = r.asset
		skipped += r.skippedRegress
		failedOutputs += r.failedOutputs
	}

	if failed > 0 {
		if failed == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", failed)
		}
		p.log.Warnf("%d of %d images had errors", failed, len(sources))
	}
	if failedOutputs > 0 {
		p.log.Warnf("%d outputs failed to encode", failedOutputs)
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers:   p.cfg.Workers,
		Quality:   p.cfg.Profile.Quality,
		WebPLossy: p.cfg.WebPLossy,
	}
	for _, t := range p.registry.Targets() {
		m.BuildInfo.Encoders = append(m.BuildInfo.Encoders, t.Name())
	}
	m.Stats.SkippedRegress = skipped
	m.Stats.Failed = failed
	m.ComputeStats()
	return m, nil
}
