package semver

import (
	"fmt"

	mmsemver "github.com/Masterminds/semver/v3"

	"github.com/thorrester/cardstore/internal/core/domain"
)

const baseVersion = "1.0.0"

// NextVersion resolves the version a new registration receives, given the
// version history for its (name, team).
//
// With no request the maximum existing version is bumped by versionType;
// an empty history starts at 1.0.0. A full requested version must be
// strictly greater than everything in the history. A partial or range
// request is a query: the highest existing match is returned, or
// ErrNotFound when nothing matches.
func NextVersion(existing []string, versionType VersionType, requested *CardVersion) (string, error) {
	parsed, err := ParseAll(existing)
	if err != nil {
		return "", err
	}

	if requested != nil && requested.Version != "" {
		if requested.IsFull() {
			return resolveExplicit(parsed, requested)
		}
		return resolveQuery(parsed, requested.Version)
	}

	if len(parsed) == 0 {
		return applyTags(mmsemver.MustParse(baseVersion), requested)
	}

	next, err := bump(maxOf(parsed), versionType)
	if err != nil {
		return "", err
	}
	return applyTags(next, requested)
}

func resolveExplicit(existing []*mmsemver.Version, requested *CardVersion) (string, error) {
	v, err := Parse(requested.Version)
	if err != nil {
		return "", err
	}
	for _, e := range existing {
		if !v.GreaterThan(e) {
			return "", fmt.Errorf(
				"%w: %s is not greater than existing %s",
				domain.ErrVersionOutOfOrder, v.Original(), e.Original(),
			)
		}
	}
	return applyTags(v, requested)
}

func resolveQuery(existing []*mmsemver.Version, pattern string) (string, error) {
	c, err := mmsemver.NewConstraint(pattern)
	if err != nil {
		return "", fmt.Errorf("%w: version pattern %q", domain.ErrValidation, pattern)
	}

	var best *mmsemver.Version
	for _, v := range existing {
		if !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return "", fmt.Errorf("%w: no version matching %q", domain.ErrNotFound, pattern)
	}
	return best.Original(), nil
}

func bump(v *mmsemver.Version, versionType VersionType) (*mmsemver.Version, error) {
	switch versionType {
	case Major:
		next := v.IncMajor()
		return &next, nil
	case Minor:
		next := v.IncMinor()
		return &next, nil
	case Patch:
		next := v.IncPatch()
		return &next, nil
	default:
		return nil, fmt.Errorf("%w: unknown version type %q", domain.ErrValidation, versionType)
	}
}

func maxOf(versions []*mmsemver.Version) *mmsemver.Version {
	max := versions[0]
	for _, v := range versions[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

func applyTags(v *mmsemver.Version, requested *CardVersion) (string, error) {
	if requested == nil {
		return v.String(), nil
	}
	out := *v
	if requested.PreTag != "" {
		tagged, err := out.SetPrerelease(requested.PreTag)
		if err != nil {
			return "", fmt.Errorf("%w: pre-release tag %q", domain.ErrValidation, requested.PreTag)
		}
		out = tagged
	}
	if requested.BuildTag != "" {
		tagged, err := out.SetMetadata(requested.BuildTag)
		if err != nil {
			return "", fmt.Errorf("%w: build tag %q", domain.ErrValidation, requested.BuildTag)
		}
		out = tagged
	}
	return out.String(), nil
}
