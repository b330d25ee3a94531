package store

import "time"

const ManifestVersion = 1

// Record describes one installed runtime. Existence is defined entirely by
// directory presence under <root>/versions; there is no separate index.
type Record struct {
	Version     string `json:"version"`
	InstallRoot string `json:"installRoot"`
	BinaryPath  string `json:"binaryPath"`
	// Broken marks a version whose directory exists but whose binary does
	// not (interrupted install in an externally-populated store).
	Broken bool `json:"broken,omitempty"`
}

// Manifest is written atomically into a version's install root after a
// successful staged install, so a committed directory always describes a
// runnable version.
type Manifest struct {
	Version     int       `toml:"version"`
	Runtime     string    `toml:"runtime"`
	InstalledAt time.Time `toml:"installed_at"`
	Binary      string    `toml:"binary"`
	BinaryOK    bool      `toml:"binary_ok"`
}
