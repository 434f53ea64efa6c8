package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	cases := []struct {
		in   string
		want Version
	}{
		{"v1.0", Version{1, 0}},
		{"1.0", Version{1, 0}},
		{"v2.13", Version{2, 13}},
		{"  v0.1  ", Version{0, 1}},
	}
	for _, tc := range cases {
		got, err := ParseVersion(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseVersionRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "v1", "1.2.3", "v1.", "va.b", "v-1.0", "1,0"} {
		_, err := ParseVersion(in)
		assert.ErrorIs(t, err, ErrBadVersion, "input %q", in)
	}
}

func TestVersionRoundTrip(t *testing.T) {
	for _, v := range []Version{{0, 0}, {1, 0}, {1, 9}, {12, 345}} {
		parsed, err := ParseVersion(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
}

func TestVersionOrdering(t *testing.T) {
	ordered := []Version{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {1, 10}, {2, 0}}
	for i, lo := range ordered {
		assert.Equal(t, 0, lo.Compare(lo))
		for _, hi := range ordered[i+1:] {
			assert.Equal(t, -1, lo.Compare(hi), "%s < %s", lo, hi)
			assert.Equal(t, 1, hi.Compare(lo), "%s > %s", hi, lo)
		}
	}
}

func TestIncrementMinor(t *testing.T) {
	assert.Equal(t, Version{1, 1}, Version{1, 0}.IncrementMinor())
	assert.Equal(t, Version{3, 8}, Version{3, 7}.IncrementMinor())
}
