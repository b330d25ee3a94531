package config

// Config is the frozen v1 global schema.
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	Logging   LoggingConfig   `toml:"logging"`
	Installer InstallerConfig `toml:"installer"`
	Remote    RemoteConfig    `toml:"remote"`
}

type StorageConfig struct {
	Root string `toml:"root"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// InstallerConfig names the external installation backend. Command is a
// template run per install with {version} and {dest} substituted; the
// backend is responsible for populating <dest>/bin/php.
type InstallerConfig struct {
	Command string `toml:"command"`
}

type RemoteConfig struct {
	ReleasesURL string `toml:"releases_url"`
}
