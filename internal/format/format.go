package format

// Format is the container format of an encoded input, as classified from its
// leading bytes.
type Format int

const (
	Unknown Format = iota
	PNG
	JPEG
	WebP
)

// String returns the label reported by image introspection.
func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case WebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// Target is an output format the converter can encode to.
type Target int

const (
	TargetJPEG Target = iota + 1
	TargetPNG
	TargetWebP
)

// Name returns the lowercase format name (e.g. "jpeg", "png", "webp").
func (t Target) Name() string {
	switch t {
	case TargetJPEG:
		return "jpeg"
	case TargetPNG:
		return "png"
	case TargetWebP:
		return "webp"
	default:
		return "unknown"
	}
}

func (t Target) String() string { return t.Name() }

// Extension returns the file extension without dot.
func (t Target) Extension() string {
	if t == TargetJPEG {
		return "jpg"
	}
	return t.Name()
}

// Valid reports whether t is one of the known targets.
func (t Target) Valid() bool {
	return t >= TargetJPEG && t <= TargetWebP
}

// Targets lists every target in priority order.
func Targets() []Target {
	return []Target{TargetWebP, TargetJPEG, TargetPNG}
}
