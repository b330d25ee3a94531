// Package phpver normalizes and orders PHP version strings. Versions are
// otherwise opaque: the store addresses them verbatim, ordering exists only
// for display.
package phpver

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Normalize trims whitespace and strips a single leading "v", so "v8.3.0"
// and "8.3.0" name the same version. Every version-accepting operation
// (install, use, uninstall, which, exec, auto-switch) runs its input
// through this exactly once.
func Normalize(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.HasPrefix(v, "v") {
		v = v[1:]
	}
	return v
}

// Compare orders two normalized versions, semver-aware when both parse as
// semver and lexicographic otherwise.
func Compare(a, b string) int {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return strings.Compare(a, b)
}

// SortDesc sorts versions newest-first in place.
func SortDesc(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) > 0
	})
}
