package profile

import (
	"sort"

	"github.com/AnyUserName/squeeze/internal/format"
)

// DefaultName is the profile used when none is requested or the name is unknown.
const DefaultName = "web"

// Profile defines which targets a batch run emits and at what quality.
type Profile struct {
	Name    string
	Targets []format.Target // output targets in priority order
	Quality int             // requested quality before tuning
	// Auto picks a single target per source instead of using Targets:
	// WebP when conversion pays off, JPEG otherwise.
	Auto bool
}

// Built-in profiles.
var profiles = map[string]Profile{
	"web": {
		Name:    "web",
		Targets: []format.Target{format.TargetWebP, format.TargetJPEG},
		Quality: 80,
	},
	"photo": {
		Name:    "photo",
		Targets: []format.Target{format.TargetJPEG},
		Quality: 85,
	},
	"lossless": {
		Name:    "lossless",
		Targets: []format.Target{format.TargetPNG, format.TargetWebP},
		Quality: 100,
	},
	"minimal": {
		Name:    "minimal",
		Targets: []format.Target{format.TargetJPEG},
		Quality: 70,
	},
	"auto": {
		Name:    "auto",
		Quality: 80,
		Auto:    true,
	},
}

// Get returns a profile by name. Falls back to web if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles, sorted.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TargetsFor returns the targets to emit for one source. preferWebP is only
// consulted by auto profiles.
func (p Profile) TargetsFor(preferWebP bool) []format.Target {
	if !p.Auto {
		return p.Targets
	}
	if preferWebP {
		return []format.Target{format.TargetWebP}
	}
	return []format.Target{format.TargetJPEG}
}

// WithQuality returns a copy of p with the requested quality replaced when
// q is positive.
func (p Profile) WithQuality(q int) Profile {
	if q > 0 {
		p.Quality = q
	}
	return p
}
