// Package version compares the version pinned in a server entry with the latest published version.
package version

import (
	"strconv"
	"strings"
)

// Comparison is the relationship between a current and a latest version.
type Comparison string

const (
	UpToDate Comparison = "up-to-date"
	Outdated Comparison = "outdated"
	Ahead    Comparison = "ahead"
	Unknown  Comparison = "unknown"
)

// Compare classifies current against latest.
//
// Versions are equal only when the strings are identical. Otherwise both are split on '.' and compared
// component by component as integers, where a shorter sequence that matches the other's prefix is older.
// Any component that is not purely numeric makes the result Unknown, so pre-release versions such as
// '1.0.0-beta' are never ordered. Such components are deliberately not discarded before comparing,
// which would otherwise report '1.0.0-beta' as outdated against '1.0.0'.
func Compare(current string, latest string) Comparison {
	if current == latest {
		return UpToDate
	}

	c, ok := parse(current)
	if !ok {
		return Unknown
	}
	l, ok := parse(latest)
	if !ok {
		return Unknown
	}

	for i := 0; i < len(c) && i < len(l); i++ {
		switch {
		case c[i] < l[i]:
			return Outdated
		case c[i] > l[i]:
			return Ahead
		}
	}

	switch {
	case len(c) < len(l):
		return Outdated
	case len(c) > len(l):
		return Ahead
	default:
		// Same numbers, different text (e.g. '1.01' and '1.1').
		return Unknown
	}
}

// parse splits v into integer components.
func parse(v string) ([]int, bool) {
	if v == "" {
		return nil, false
	}

	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return nil, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}

	return out, true
}
