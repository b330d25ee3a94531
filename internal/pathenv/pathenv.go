// Package pathenv rewrites a command-search path so that exactly one
// version's bin directory is exposed. Pure string arithmetic; callers apply
// the result to their own environment.
package pathenv

import (
	"os"
	"path/filepath"
	"strings"
)

// Compose builds a new search path from current: every segment living under
// versionsRoot is dropped (all previously injected bin directories, not just
// the latest, so repeated switches within one session never accumulate) and
// binDir is prepended.
func Compose(current, versionsRoot, binDir string) string {
	segments := Strip(current, versionsRoot)
	return strings.Join(append([]string{binDir}, segments...), string(os.PathListSeparator))
}

// Strip returns current's segments with every versionsRoot child removed.
// Everything else passes through verbatim, including empty segments, which
// POSIX reads as the current directory.
func Strip(current, versionsRoot string) []string {
	if current == "" {
		return nil
	}
	cleanRoot := filepath.Clean(versionsRoot)
	prefix := cleanRoot + string(os.PathSeparator)
	segments := make([]string, 0, 16)
	for _, seg := range strings.Split(current, string(os.PathListSeparator)) {
		if seg != "" {
			if clean := filepath.Clean(seg); clean == cleanRoot || strings.HasPrefix(clean, prefix) {
				continue
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

// Contains reports whether the composed path already exposes binDir as a
// versionsRoot entry and nothing else from the store.
func Contains(current, versionsRoot, binDir string) bool {
	cleanRoot := filepath.Clean(versionsRoot)
	prefix := cleanRoot + string(os.PathSeparator)
	found := false
	for _, seg := range strings.Split(current, string(os.PathListSeparator)) {
		clean := filepath.Clean(seg)
		if clean != cleanRoot && !strings.HasPrefix(clean, prefix) {
			continue
		}
		if clean != filepath.Clean(binDir) {
			return false
		}
		found = true
	}
	return found
}
