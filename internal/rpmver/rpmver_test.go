package rpmver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplesurance/fedora-bot/internal/boterr"
)

func mustCompare(t *testing.T, a, b string) int {
	t.Helper()

	res, err := RPM{}.Compare(a, b)
	require.NoError(t, err)

	return res
}

func TestNumericSegmentsAreOrderedNumerically(t *testing.T) {
	assert.Equal(t, 1, mustCompare(t, "10", "9"))
	assert.Equal(t, -1, mustCompare(t, "1.9", "1.10"))
	assert.Equal(t, -1, mustCompare(t, "1.10", "2.0"))
	assert.Equal(t, -1, mustCompare(t, "1.9", "2.0"))
	assert.Equal(t, 1, mustCompare(t, "2.0", "1.9"))
	assert.Equal(t, 1, mustCompare(t, "100", "99.1"))
}

func TestEqualVersions(t *testing.T) {
	assert.Equal(t, 0, mustCompare(t, "1.2", "1.2"))
	assert.Equal(t, 0, mustCompare(t, "1.01", "1.1"))
}

func TestOrderingIsTransitive(t *testing.T) {
	versions := []string{"1.2", "1.9", "1.10", "1.10.1", "2.0", "10"}

	for i := range versions {
		for j := range versions {
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}

			assert.Equalf(t, want, mustCompare(t, versions[i], versions[j]),
				"compare(%s, %s)", versions[i], versions[j])
		}
	}
}

func TestMalformedVersionsAreDataErrors(t *testing.T) {
	for _, v := range []string{"", "-1", "1.0-1", "1.0/2", " ", ".1"} {
		_, err := RPM{}.Compare(v, "1.0")
		require.Errorf(t, err, "version %q", v)
		assert.Truef(t, boterr.IsData(err), "version %q: %s", v, err)

		_, err = RPM{}.Compare("1.0", v)
		assert.Truef(t, boterr.IsData(err), "version %q: %s", v, err)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "1.3", Normalize("v1.3"))
	assert.Equal(t, "1.3", Normalize(" V1.3\n"))
	assert.Equal(t, "103", Normalize("103"))
	assert.Equal(t, "vendor", Normalize("vendor"))
	assert.Equal(t, "v", Normalize("v"))
}
