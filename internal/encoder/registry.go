package encoder

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/AnyUserName/squeeze/internal/format"
)

var errEmptyImage = errors.New("image has no pixels")

// Registry holds one encoder per target.
type Registry struct {
	encoders map[format.Target]Encoder
}

// NewRegistry creates a registry with the JPEG, PNG and WebP encoders.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[format.Target]Encoder),
	}
	for _, enc := range []Encoder{
		&WebPEncoder{},
		&JPEGEncoder{},
		&PNGEncoder{},
	} {
		r.Register(enc)
	}
	return r
}

// Register adds or replaces the encoder for enc.Target().
func (r *Registry) Register(enc Encoder) {
	r.encoders[enc.Target()] = enc
}

// Get returns the encoder for t, or nil if none is registered.
func (r *Registry) Get(t format.Target) Encoder {
	return r.encoders[t]
}

// Targets returns registered targets in priority order.
func (r *Registry) Targets() []format.Target {
	var result []format.Target
	for _, t := range format.Targets() {
		if _, ok := r.encoders[t]; ok {
			result = append(result, t)
		}
	}
	return result
}

// Resolve filters requested targets to registered ones, dropping duplicates,
// and guarantees at least one output.
//
// JPEG cannot carry alpha, so an image with transparency that would otherwise
// only get JPEG output also gets PNG.
func (r *Registry) Resolve(requested []format.Target, hasAlpha bool) []format.Target {
	var resolved []format.Target
	seen := map[format.Target]bool{}

	for _, t := range requested {
		if _, ok := r.encoders[t]; ok && !seen[t] {
			resolved = append(resolved, t)
			seen[t] = true
		}
	}

	if len(resolved) == 0 {
		fallback := format.TargetJPEG
		if hasAlpha {
			fallback = format.TargetPNG
		}
		if r.encoders[fallback] != nil {
			resolved = append(resolved, fallback)
			seen[fallback] = true
		}
	}

	if hasAlpha && seen[format.TargetJPEG] && !seen[format.TargetPNG] && !seen[format.TargetWebP] &&
		r.encoders[format.TargetPNG] != nil {
		resolved = append(resolved, format.TargetPNG)
	}

	return resolved
}

// String returns a summary of registered encoders.
func (r *Registry) String() string {
	targets := r.Targets()
	if len(targets) == 0 {
		return "no encoders available"
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name()
	}
	return fmt.Sprintf("encoders: %s", strings.Join(names, ", "))
}
