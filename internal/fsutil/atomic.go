package fsutil

import (
	"fmt"
	"os"
	"strings"
)

// AtomicWrite writes data to path using a tmp+rename strategy.
// If rename fails, the tmp file is cleaned up.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// ReadTrimmed reads a single-value file (ledger entry, alias record,
// project marker) and returns its content without surrounding whitespace.
// A missing file is reported as ("", false, nil).
func ReadTrimmed(path string) (string, bool, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(string(blob)), true, nil
}

// WriteTrimmed persists a single-value file with a trailing newline,
// atomically.
func WriteTrimmed(path, value string) error {
	return AtomicWrite(path, []byte(strings.TrimSpace(value)+"\n"), 0o644)
}
