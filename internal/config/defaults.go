package config

const (
	SchemaVersion = 1
)

// Build metadata, overridden at link time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Storage: StorageConfig{
			Root: "~/.phpvm",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Installer: InstallerConfig{
			Command: "php-build {version} {dest}",
		},
		Remote: RemoteConfig{
			ReleasesURL: "https://www.php.net/releases/index.php?json&max=64",
		},
	}
}
