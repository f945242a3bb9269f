// Package semver implements version parsing, ordering and resolution for
// card registries. All computation is in-memory; nothing here touches
// storage.
package semver

import (
	"fmt"
	"sort"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"

	"github.com/thorrester/cardstore/internal/core/domain"
)

// VersionType selects which component a version bump increments.
type VersionType string

const (
	Major VersionType = "major"
	Minor VersionType = "minor"
	Patch VersionType = "patch"
)

// CardVersion is a caller-supplied version request. Version may be a full
// version ("1.2.3"), or a partial/range pattern ("1.*", "^1", "~1.2")
// which is treated as a query against existing versions.
type CardVersion struct {
	Version  string
	PreTag   string
	BuildTag string
}

// IsFull reports whether the request pins an exact major.minor.patch
// triple with no range symbols.
func (v CardVersion) IsFull() bool {
	if strings.ContainsAny(v.Version, "^~*xX") {
		return false
	}
	return len(strings.Split(v.Version, ".")) == 3
}

// Parse parses a version string, failing closed with ErrInvalidVersion on
// anything that is not strict semver.
func Parse(s string) (*mmsemver.Version, error) {
	v, err := mmsemver.StrictNewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidVersion, s)
	}
	return v, nil
}

// ParseAll parses every version in the set. A single corrupt entry fails
// the whole call; a corrupt history must not be silently skipped.
func ParseAll(versions []string) ([]*mmsemver.Version, error) {
	parsed := make([]*mmsemver.Version, 0, len(versions))
	for _, s := range versions {
		v, err := Parse(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, v)
	}
	return parsed, nil
}

// SortDesc sorts version strings by semver precedence, highest first.
// Pre-releases sort below their corresponding final release.
func SortDesc(versions []string) ([]string, error) {
	parsed, err := ParseAll(versions)
	if err != nil {
		return nil, err
	}
	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].GreaterThan(parsed[j])
	})
	sorted := make([]string, len(parsed))
	for i, v := range parsed {
		sorted[i] = v.Original()
	}
	return sorted, nil
}

// IsReleaseCandidate reports whether the version carries a pre-release tag.
func IsReleaseCandidate(version string) bool {
	v, err := Parse(version)
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

// IsPattern reports whether the string is a range pattern rather than an
// exact version.
func IsPattern(s string) bool {
	return !CardVersion{Version: s}.IsFull()
}

// Matches reports whether version satisfies the range pattern. Patterns
// use caret/tilde/wildcard syntax; a bare partial version ("1", "1.2") is
// treated as a wildcard prefix.
func Matches(version, pattern string) (bool, error) {
	c, err := mmsemver.NewConstraint(pattern)
	if err != nil {
		return false, fmt.Errorf("%w: version pattern %q", domain.ErrValidation, pattern)
	}
	v, err := Parse(version)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}
