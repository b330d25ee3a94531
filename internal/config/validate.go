package config

import (
	"fmt"
	"strings"
)

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("DOC_CONFIG_VERSION: unsupported version %d", cfg.Version)
	}
	if cfg.Storage.Root == "" {
		return fmt.Errorf("DOC_CONFIG_STORAGE: missing storage root")
	}
	if _, ok := allowedLogLevels[cfg.Logging.Level]; !ok {
		return fmt.Errorf("DOC_CONFIG_LOGGING: invalid logging level %q", cfg.Logging.Level)
	}
	if _, ok := allowedLogFormats[cfg.Logging.Format]; !ok {
		return fmt.Errorf("DOC_CONFIG_LOGGING: invalid logging format %q", cfg.Logging.Format)
	}
	if cfg.Remote.ReleasesURL == "" {
		return fmt.Errorf("DOC_CONFIG_REMOTE: missing releases url")
	}
	if !strings.HasPrefix(cfg.Remote.ReleasesURL, "http://") && !strings.HasPrefix(cfg.Remote.ReleasesURL, "https://") {
		return fmt.Errorf("DOC_CONFIG_REMOTE: releases url must be http(s), got %q", cfg.Remote.ReleasesURL)
	}
	return nil
}
