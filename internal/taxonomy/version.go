package taxonomy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadVersion is returned for version strings that are not major.minor.
var ErrBadVersion = errors.New("malformed taxonomy version")

// Version identifies one immutable taxonomy snapshot. Ordering is major
// first, then minor.
type Version struct {
	Major uint
	Minor uint
}

// ParseVersion parses "1.2" or "v1.2" into a Version. Anything else is a
// recoverable ErrBadVersion.
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "v")
	parts := strings.Split(trimmed, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	major, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	return Version{Major: uint(major), Minor: uint(minor)}, nil
}

// Compare returns -1, 0 or 1 ordering v against other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		if v.Major < other.Major {
			return -1
		}
		return 1
	case v.Minor != other.Minor:
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// IncrementMinor returns the next minor version, leaving major untouched.
func (v Version) IncrementMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// String renders the canonical form, e.g. "v1.2".
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}
