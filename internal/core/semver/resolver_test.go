package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thorrester/cardstore/internal/core/domain"
)

func TestNextVersion_EmptyHistory(t *testing.T) {
	v, err := NextVersion(nil, Minor, nil)
	assert.NoError(t, err)
	assert.Equal(t, "1.0.0", v)
}

func TestNextVersion_BumpsMax(t *testing.T) {
	existing := []string{"1.0.0", "1.2.0", "1.1.0"}

	v, err := NextVersion(existing, Minor, nil)
	assert.NoError(t, err)
	assert.Equal(t, "1.3.0", v)

	v, err = NextVersion(existing, Major, nil)
	assert.NoError(t, err)
	assert.Equal(t, "2.0.0", v)

	v, err = NextVersion(existing, Patch, nil)
	assert.NoError(t, err)
	assert.Equal(t, "1.2.1", v)
}

func TestNextVersion_PrereleaseBelowFinal(t *testing.T) {
	// 1.1.0-rc.1 sorts below 1.1.0, so the bump starts from 1.1.0.
	existing := []string{"1.0.0", "1.1.0-rc.1", "1.1.0"}

	v, err := NextVersion(existing, Minor, nil)
	assert.NoError(t, err)
	assert.Equal(t, "1.2.0", v)
}

func TestNextVersion_ExplicitGreater(t *testing.T) {
	existing := []string{"1.0.0", "1.2.0"}

	v, err := NextVersion(existing, Minor, &CardVersion{Version: "2.0.0"})
	assert.NoError(t, err)
	assert.Equal(t, "2.0.0", v)
}

func TestNextVersion_ExplicitOutOfOrder(t *testing.T) {
	existing := []string{"1.0.0", "1.2.0"}

	_, err := NextVersion(existing, Minor, &CardVersion{Version: "1.1.0"})
	assert.ErrorIs(t, err, domain.ErrVersionOutOfOrder)

	_, err = NextVersion(existing, Minor, &CardVersion{Version: "1.2.0"})
	assert.ErrorIs(t, err, domain.ErrVersionOutOfOrder)
}

func TestNextVersion_RangeQueryReturnsHighestMatch(t *testing.T) {
	existing := []string{"1.0.0", "1.2.0", "1.5.3", "2.0.0"}

	v, err := NextVersion(existing, Minor, &CardVersion{Version: "^1"})
	assert.NoError(t, err)
	assert.Equal(t, "1.5.3", v)

	v, err = NextVersion(existing, Minor, &CardVersion{Version: "1.*"})
	assert.NoError(t, err)
	assert.Equal(t, "1.5.3", v)
}

func TestNextVersion_RangeQueryNoMatch(t *testing.T) {
	existing := []string{"1.0.0", "1.2.0"}

	_, err := NextVersion(existing, Minor, &CardVersion{Version: "^3"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNextVersion_CorruptHistoryFailsClosed(t *testing.T) {
	existing := []string{"1.0.0", "not-a-version"}

	_, err := NextVersion(existing, Minor, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidVersion)
}

func TestNextVersion_PreAndBuildTags(t *testing.T) {
	existing := []string{"1.2.0"}

	v, err := NextVersion(existing, Minor, &CardVersion{PreTag: "rc.1"})
	assert.NoError(t, err)
	assert.Equal(t, "1.3.0-rc.1", v)

	v, err = NextVersion(existing, Minor, &CardVersion{PreTag: "rc.1", BuildTag: "build.2"})
	assert.NoError(t, err)
	assert.Equal(t, "1.3.0-rc.1+build.2", v)
}

func TestNextVersion_UnknownVersionType(t *testing.T) {
	_, err := NextVersion([]string{"1.0.0"}, VersionType("bogus"), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSortDesc(t *testing.T) {
	sorted, err := SortDesc([]string{"1.0.0", "2.1.0", "1.1.0-rc.1", "1.1.0"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"2.1.0", "1.1.0", "1.1.0-rc.1", "1.0.0"}, sorted)
}

func TestParse_Strict(t *testing.T) {
	_, err := Parse("1.2.3")
	assert.NoError(t, err)

	_, err = Parse("1.2")
	assert.ErrorIs(t, err, domain.ErrInvalidVersion)

	_, err = Parse("v1.2.3")
	assert.ErrorIs(t, err, domain.ErrInvalidVersion)
}

func TestIsReleaseCandidate(t *testing.T) {
	assert.True(t, IsReleaseCandidate("1.2.0-rc.1"))
	assert.False(t, IsReleaseCandidate("1.2.0"))
}

func TestIsPattern(t *testing.T) {
	assert.True(t, IsPattern("^1.2"))
	assert.True(t, IsPattern("1.*"))
	assert.True(t, IsPattern("1.2"))
	assert.False(t, IsPattern("1.2.3"))
}

func TestMatches(t *testing.T) {
	ok, err := Matches("1.5.3", "^1.2")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches("2.0.0", "^1.2")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = Matches("1.5.3", "not a pattern")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCardVersion_IsFull(t *testing.T) {
	assert.True(t, CardVersion{Version: "1.2.3"}.IsFull())
	assert.False(t, CardVersion{Version: "1.2"}.IsFull())
	assert.False(t, CardVersion{Version: "^1.2.3"}.IsFull())
	assert.False(t, CardVersion{Version: "1.2.*"}.IsFull())
}
