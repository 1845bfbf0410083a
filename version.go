package nextver

import (
	"fmt"
	"strings"

	"github.com/blang/semver"
)

// BaselineVersion is the current version assumed when no usable tag exists
var BaselineVersion = semver.Version{Major: 0, Minor: 0, Patch: 0}

// ParseTag normalizes a tag such as "v1", "1.2" or "V1.2.3" into a strict
// major.minor.patch version. Missing minor and patch components default to 0.
// Pre-release and build suffixes are rejected.
func ParseTag(tag string) (semver.Version, error) {
	normalised := tag
	if strings.HasPrefix(normalised, "v") || strings.HasPrefix(normalised, "V") {
		normalised = normalised[1:]
	}

	parts := strings.Split(normalised, ".")
	switch len(parts) {
	case 1:
		normalised += ".0.0"
	case 2:
		normalised += ".0"
	case 3:
	default:
		return semver.Version{}, fmt.Errorf("%w: %q has %d components", ErrMalformedVersion, tag, len(parts))
	}

	version, err := semver.Parse(normalised)
	if err != nil {
		return semver.Version{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, tag, err)
	}

	if len(version.Pre) > 0 || len(version.Build) > 0 {
		return semver.Version{}, fmt.Errorf("%w: %q is not a plain major.minor.patch version", ErrMalformedVersion, tag)
	}

	return version, nil
}

// FormatVersion renders a version in its canonical "vX.Y.Z" form
func FormatVersion(v semver.Version) string {
	return "v" + v.String()
}

// bump applies an increment to a copy of v
func bump(v semver.Version, inc Increment) semver.Version {
	next := semver.Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}

	switch inc {
	case IncrementMajor:
		next.Major++
		next.Minor = 0
		next.Patch = 0
	case IncrementMinor:
		next.Minor++
		next.Patch = 0
	default:
		next.Patch++
	}

	return next
}
