// Package convert decodes an input image, picks encoder parameters from the
// source format, target format and pixel count, and re-encodes it.
package convert

import (
	"io"
	"time"

	metrics "github.com/armon/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/squeeze/internal/encoder"
	"github.com/AnyUserName/squeeze/internal/format"
	"github.com/AnyUserName/squeeze/internal/tuning"
)

// Options configures a Converter.
type Options struct {
	// Logger receives parameter and result records. Nil discards them.
	Logger logrus.FieldLogger
	// Registry supplies the encoders. Nil uses encoder.NewRegistry().
	Registry *encoder.Registry
	// WebPLossy switches WebP output from lossless to lossy at the
	// computed quality.
	WebPLossy bool
}

// Converter re-encodes images. It holds only immutable configuration and is
// safe for concurrent use.
type Converter struct {
	log       logrus.FieldLogger
	registry  *encoder.Registry
	webpLossy bool
}

// New creates a Converter.
func New(opts Options) *Converter {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	reg := opts.Registry
	if reg == nil {
		reg = encoder.NewRegistry()
	}
	return &Converter{
		log:       log,
		registry:  reg,
		webpLossy: opts.WebPLossy,
	}
}

// Result is a finished conversion.
type Result struct {
	Data   []byte
	Source format.Format
	Target format.Target
	Width  int
	Height int
	// InputSize is the encoded source length in bytes.
	InputSize int
	Settings  encoder.Settings
	// Decision is zero for PNG, which has no quality knob.
	Decision tuning.Decision
}

// Ratio returns input size divided by output size, or 0 for empty output.
func (r *Result) Ratio() float64 {
	if len(r.Data) == 0 {
		return 0
	}
	return float64(r.InputSize) / float64(len(r.Data))
}

// Convert decodes data and re-encodes it as target.
func (c *Converter) Convert(data []byte, target format.Target, quality int) ([]byte, error) {
	res, err := c.ConvertDetailed(data, target, quality)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ConvertDetailed is Convert returning the chosen parameters alongside the bytes.
func (c *Converter) ConvertDetailed(data []byte, target format.Target, quality int) (*Result, error) {
	src, err := Load(data)
	if err != nil {
		c.fail(err, target)
		return nil, err
	}
	return c.ConvertSource(src, target, quality)
}

// ConvertSource encodes an already loaded source. The pipeline uses it to
// decode once and emit several targets.
func (c *Converter) ConvertSource(src *Source, target format.Target, quality int) (*Result, error) {
	start := time.Now()

	settings, decision, err := c.settingsFor(src, target, quality)
	if err != nil {
		c.fail(err, target)
		return nil, err
	}

	enc := c.registry.Get(target)
	if enc == nil {
		err := c.unsupported(target)
		c.fail(err, target)
		return nil, err
	}

	// JPEGEncoder flattens to opaque RGB itself; PNG and WebP keep the
	// native color model.
	out, err := enc.Encode(src.Image, settings)
	if err != nil {
		err = &EncodeError{Target: target, Err: err}
		c.fail(err, target)
		return nil, err
	}

	res := &Result{
		Data:      out,
		Source:    src.Format,
		Target:    target,
		Width:     src.Width(),
		Height:    src.Height(),
		InputSize: src.Size,
		Settings:  settings,
		Decision:  decision,
	}

	metrics.MeasureSince([]string{"convert", target.Name()}, start)
	metrics.AddSample([]string{"convert", target.Name(), "ratio"}, float32(res.Ratio()))

	c.log.WithFields(logrus.Fields{
		"source":       src.Format.String(),
		"target":       target.Name(),
		"input_bytes":  src.Size,
		"output_bytes": len(out),
		"ratio":        res.Ratio(),
	}).Info("conversion complete")

	return res, nil
}

func (c *Converter) settingsFor(src *Source, target format.Target, quality int) (encoder.Settings, tuning.Decision, error) {
	pixels := src.Pixels()
	log := c.log.WithFields(logrus.Fields{
		"source": src.Format.String(),
		"target": target.Name(),
		"pixels": pixels,
	})

	switch target {
	case format.TargetJPEG:
		d := tuning.JPEGDecision(src.Format, quality, pixels)
		log.WithFields(decisionFields(d)).Info("jpeg parameters")
		return encoder.Settings{Quality: d.Final}, d, nil

	case format.TargetPNG:
		cfg := tuning.PNGSettings(src.Format, pixels)
		log.WithFields(logrus.Fields{
			"compression": cfg.Compression.String(),
			"filter":      cfg.Filter.String(),
		}).Info("png parameters")
		return encoder.Settings{PNG: cfg}, tuning.Decision{}, nil

	case format.TargetWebP:
		d := tuning.WebPDecision(src.Format, quality, pixels)
		lossless := !c.webpLossy
		log.WithFields(decisionFields(d)).WithField("lossless", lossless).Info("webp parameters")
		if lossless {
			log.WithField("quality", d.Final).Debug("lossless webp ignores the computed quality")
		}
		return encoder.Settings{Quality: d.Final, Lossless: lossless}, d, nil
	}

	return encoder.Settings{}, tuning.Decision{}, c.unsupported(target)
}

func decisionFields(d tuning.Decision) logrus.Fields {
	return logrus.Fields{
		"requested":  d.Requested,
		"base":       d.Base,
		"adjustment": d.Adjustment,
		"quality":    d.Final,
	}
}

func (c *Converter) unsupported(target format.Target) error {
	targets := c.registry.Targets()
	allowed := make([]string, len(targets))
	for i, t := range targets {
		allowed[i] = t.Name()
	}
	return &UnsupportedFormatError{Format: target.Name(), Allowed: allowed}
}

func (c *Converter) fail(err error, target format.Target) {
	metrics.IncrCounter([]string{"convert", "errors", errorKind(err)}, 1)
	c.log.WithError(err).WithField("target", target.Name()).Warn("conversion failed")
}
