package feed

import (
	"strconv"
	"strings"
	"unicode"
)

// Version is a dotted numeric version with an optional prerelease suffix
type Version struct {
	Parts      []int
	Prerelease bool
}

// ParseVersion reads versions like "v1.6.0", "1.6" or "1.6.0-beta.2".
// Parsing stops at the first character that is neither a digit nor a dot;
// anything after that marks a prerelease.
func ParseVersion(s string) Version {
	s = strings.TrimLeft(strings.TrimSpace(s), "vV")

	var v Version
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			n, _ := strconv.Atoi(current.String())
			v.Parts = append(v.Parts, n)
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			current.WriteRune(r)
		case r == '.':
			flush()
		default:
			flush()
			v.Prerelease = true
			return v
		}
	}
	flush()
	return v
}

// String renders the numeric parts
func (v Version) String() string {
	parts := make([]string, len(v.Parts))
	for i, p := range v.Parts {
		parts[i] = strconv.Itoa(p)
	}
	s := strings.Join(parts, ".")
	if v.Prerelease {
		s += "-pre"
	}
	return s
}

// CompareNumeric compares numeric parts only; missing parts count as 0
func CompareNumeric(a, b Version) int {
	n := len(a.Parts)
	if len(b.Parts) > n {
		n = len(b.Parts)
	}
	for i := 0; i < n; i++ {
		var l, r int
		if i < len(a.Parts) {
			l = a.Parts[i]
		}
		if i < len(b.Parts) {
			r = b.Parts[i]
		}
		switch {
		case l < r:
			return -1
		case l > r:
			return 1
		}
	}
	return 0
}

// IsNewer reports whether latest should replace current. A stable release
// beats a prerelease with the same numbers.
func IsNewer(latest, current string) bool {
	l, c := ParseVersion(latest), ParseVersion(current)
	switch CompareNumeric(c, l) {
	case -1:
		return true
	case 0:
		return c.Prerelease && !l.Prerelease
	default:
		return false
	}
}
