package engine

import (
	"path/filepath"

	"phpvm/internal/fsutil"
)

// MarkerFile pins a directory tree to a version. Read-only input from the
// engine's perspective.
const MarkerFile = ".phpversion"

// ReadMarker returns the trimmed marker content of dir, with found=false
// when the directory carries no marker.
func ReadMarker(dir string) (string, bool, error) {
	return fsutil.ReadTrimmed(filepath.Join(dir, MarkerFile))
}
