package store

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"phpvm/internal/fsutil"
)

const ManifestFile = "manifest.toml"

// LoadManifest reads a version's manifest. Missing manifests are not an
// error: (zero, false, nil).
func LoadManifest(root, version string) (Manifest, bool, error) {
	blob, err := os.ReadFile(ManifestPath(root, version))
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, err
	}
	var m Manifest
	if err := toml.Unmarshal(blob, &m); err != nil {
		return Manifest{}, false, fmt.Errorf("STORE_MANIFEST_PARSE: %s: %w", version, err)
	}
	if m.Version == 0 {
		m.Version = ManifestVersion
	}
	if m.Version != ManifestVersion {
		return Manifest{}, false, fmt.Errorf("STORE_MANIFEST_VERSION: unsupported version %d", m.Version)
	}
	return m, true, nil
}

// SaveManifest persists a manifest atomically into the version's install
// root. The directory must already exist (staging dir or committed root).
func SaveManifest(path string, m Manifest) error {
	m.Version = ManifestVersion
	blob, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("STORE_MANIFEST_ENCODE: %w", err)
	}
	return fsutil.AtomicWrite(path, blob, 0o644)
}
