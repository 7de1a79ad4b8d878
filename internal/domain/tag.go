package domain

import (
	"strings"
	"time"
)

// TagColor is the display color of a tag. Colors double as a lightweight
// category system: a few colors are reserved for system-managed tags.
type TagColor string

// Tag colors.
const (
	ColorPrimary   TagColor = "primary"
	ColorSecondary TagColor = "secondary"
	ColorSuccess   TagColor = "success" // reserved: backsolved
	ColorDanger    TagColor = "danger"  // reserved: high priority
	ColorWarning   TagColor = "warning" // reserved: low priority
	ColorInfo      TagColor = "info"    // location tags
	ColorLight     TagColor = "light"
	ColorDark      TagColor = "dark" // reserved: meta tags
)

// ValidTagColor reports whether c is a known tag color.
func ValidTagColor(c TagColor) bool {
	switch c {
	case ColorPrimary, ColorSecondary, ColorSuccess, ColorDanger,
		ColorWarning, ColorInfo, ColorLight, ColorDark:
		return true
	}
	return false
}

// Reserved tag names. These tags are created with every hunt and carry
// derived semantics; they are protected from reaping.
const (
	TagHighPriority = "High priority"
	TagLowPriority  = "Low priority"
	TagBacksolved   = "Backsolved"
)

// Tag is a classification label on puzzles. Names are unique per hunt,
// case-insensitively. Meta tags mirror meta puzzles by name and are
// system-managed.
type Tag struct {
	ID     string   `json:"id"`
	HuntID string   `json:"hunt_id"`
	Name   string   `json:"name"`
	Color  TagColor `json:"color"`
	// IsMeta marks a tag that mirrors a meta puzzle of the same name.
	// Adding or removing such a tag adds or removes the meta edge.
	IsMeta bool `json:"is_meta"`
	// IsDefault marks hunt-bootstrap tags that survive having zero puzzles.
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsHighPri reports whether this is the reserved high-priority tag.
func (t *Tag) IsHighPri() bool {
	return strings.EqualFold(t.Name, TagHighPriority)
}

// IsLowPri reports whether this is the reserved low-priority tag.
func (t *Tag) IsLowPri() bool {
	return strings.EqualFold(t.Name, TagLowPriority)
}

// IsBacksolved reports whether this is the reserved backsolved tag.
func (t *Tag) IsBacksolved() bool {
	return strings.EqualFold(t.Name, TagBacksolved)
}

// IsLocation reports whether the tag marks a physical or virtual location.
func (t *Tag) IsLocation() bool {
	return t.Color == ColorInfo && !t.IsMeta
}

// OpposingTagName returns the reserved tag that is mutually exclusive with
// name, or "" if name has no opposite. High and low priority oppose each
// other: assigning one removes the other.
func OpposingTagName(name string) string {
	switch {
	case strings.EqualFold(name, TagHighPriority):
		return TagLowPriority
	case strings.EqualFold(name, TagLowPriority):
		return TagHighPriority
	}
	return ""
}

// DefaultTags returns the system tags bootstrapped into every hunt.
func DefaultTags() []Tag {
	return []Tag{
		{Name: TagHighPriority, Color: ColorDanger, IsDefault: true},
		{Name: TagLowPriority, Color: ColorWarning, IsDefault: true},
		{Name: TagBacksolved, Color: ColorSuccess, IsDefault: true},
	}
}
