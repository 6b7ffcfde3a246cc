// Package describe turns an uploaded image into a textual description at a
// requested level of detail.
//
// The Describer interface is the seam for a future real inference engine:
// upload handling is written against the interface, so swapping the static
// mock for an actual model touches nothing outside this package.
package describe

// Level selects which description tier is generated for an image.
// It is a closed enumeration — see ParseLevel for how unknown inputs
// are handled.
type Level string

const (
	LevelBasic         Level = "basic"
	LevelDetailed      Level = "detailed"
	LevelComprehensive Level = "comprehensive"
)

// ParseLevel sanitizes a client-supplied level string.
//
// FORGIVING BY DESIGN:
// Any unrecognized value — including the empty string — falls back to
// LevelBasic rather than failing the request. This is an intentional
// default, not an oversight: the level only picks a text tier, so a typo'd
// level still produces a useful (if terse) answer. The explicit default
// arm below documents that choice; don't "fix" it into an error path.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelBasic:
		return LevelBasic
	case LevelDetailed:
		return LevelDetailed
	case LevelComprehensive:
		return LevelComprehensive
	default:
		return LevelBasic
	}
}

// Describer produces a description for an image at the given level.
//
// Implementations must be pure with respect to the request: no side
// effects, same level in → same class of text out.
type Describer interface {
	Describe(level Level) string
}

// Static is the current Describer: a fixed lookup table standing in for a
// real image-understanding model. It ignores the image content entirely.
type Static struct{}

// NewStatic returns the table-backed mock describer.
func NewStatic() *Static {
	return &Static{}
}

var staticDescriptions = map[Level]string{
	LevelBasic:         "This is an image showing various objects and elements.",
	LevelDetailed:      "This image contains multiple objects with distinct colors and shapes. The composition includes foreground and background elements with natural lighting.",
	LevelComprehensive: "This is a detailed photograph featuring multiple subjects arranged in a compositionally balanced manner. The image demonstrates good use of natural lighting, creating depth and visual interest. The color palette consists of warm and cool tones that complement each other, while the overall composition follows rule of thirds principles.",
}

// Describe returns the canned text for the level. Callers are expected to
// have sanitized the level via ParseLevel; an out-of-table level still
// degrades to the basic tier rather than returning an empty string.
func (s *Static) Describe(level Level) string {
	if text, ok := staticDescriptions[level]; ok {
		return text
	}
	return staticDescriptions[LevelBasic]
}
