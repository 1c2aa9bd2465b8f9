// Package coords defines the opaque, totally-ordered identity of a build
// artifact: group, name, version, and an optional classifier.
package coords

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Coords is an artifact's identity. Two Coords are equal iff every field
// matches exactly; there is no fuzzy or partial equality.
type Coords struct {
	Group      string
	Name       string
	Version    string
	Classifier string // empty means "no classifier"
}

// New constructs a Coords. Classifier may be empty.
func New(group, name, version, classifier string) Coords {
	return Coords{Group: group, Name: name, Version: version, Classifier: classifier}
}

// Parse decodes a "group:name:version" or "group:name:version:classifier"
// string into a Coords, the inverse of String.
func Parse(s string) (Coords, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		return New(parts[0], parts[1], parts[2], ""), nil
	case 4:
		return New(parts[0], parts[1], parts[2], parts[3]), nil
	default:
		return Coords{}, fmt.Errorf("coords: malformed coordinate %q", s)
	}
}

// String returns the canonical Maven-style coordinate string, used both
// for display and as the canonical form fed into the artifact hash.
func (c Coords) String() string {
	if c.Classifier == "" {
		return fmt.Sprintf("%s:%s:%s", c.Group, c.Name, c.Version)
	}
	return fmt.Sprintf("%s:%s:%s:%s", c.Group, c.Name, c.Version, c.Classifier)
}

// SanitizedKey returns a filesystem-safe rendering of the coordinate,
// suitable as the first component of a cache slot directory name.
func (c Coords) SanitizedKey() string {
	s := c.String()
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\':
			return '-'
		default:
			return r
		}
	}, s)
}

// Equal reports strict field-by-field equality.
func (c Coords) Equal(other Coords) bool {
	return c == other
}

// Compare imposes a total order over Coords: group, then name, then
// version (semver-aware when both sides parse as semver, else lexical —
// Maven coordinates are not guaranteed to be semver), then classifier.
// Returns -1, 0, or 1.
func (c Coords) Compare(other Coords) int {
	if d := strings.Compare(c.Group, other.Group); d != 0 {
		return sign(d)
	}
	if d := strings.Compare(c.Name, other.Name); d != 0 {
		return sign(d)
	}
	if d := compareVersions(c.Version, other.Version); d != 0 {
		return d
	}
	return sign(strings.Compare(c.Classifier, other.Classifier))
}

// compareVersions prefers semver.Compare when both versions are valid
// semver once given a "v" prefix; otherwise falls back to a lexical
// comparison. Maven versions ("1.2.3-SNAPSHOT", "4.0.0.redhat-1") are not
// universally valid semver, so the fallback is load-bearing, not decorative.
func compareVersions(a, b string) int {
	va, vb := asSemver(a), asSemver(b)
	if va != "" && vb != "" {
		return sign(semver.Compare(va, vb))
	}
	return sign(strings.Compare(a, b))
}

func asSemver(v string) string {
	if v == "" {
		return ""
	}
	candidate := v
	if !strings.HasPrefix(candidate, "v") {
		candidate = "v" + candidate
	}
	if semver.IsValid(candidate) {
		return candidate
	}
	return ""
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}
