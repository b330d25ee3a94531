// Package store is the on-disk registry of installed PHP versions. One
// directory per version under <root>/versions, each exposing bin/php.
package store

import (
	"errors"
	"fmt"
	"os"
)

var ErrNotInstalled = errors.New("STORE_NOT_INSTALLED: version is not installed")

func EnsureLayout(root string) error {
	dirs := []string{root, VersionsRoot(root), StagingRoot(root), AliasRoot(root)}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// List enumerates installed versions in directory order. Sorting is a
// presentation concern left to callers. A directory counts as installed
// even when its binary is missing; such entries are flagged Broken.
func List(root string) ([]Record, error) {
	entries, err := os.ReadDir(VersionsRoot(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		version := e.Name()
		rec := Record{
			Version:     version,
			InstallRoot: VersionRoot(root, version),
			BinaryPath:  BinaryPath(root, version),
		}
		if !binaryExists(root, version) {
			rec.Broken = true
		}
		records = append(records, rec)
	}
	return records, nil
}

// Has reports whether <root>/versions/<version> is a directory. Directory
// presence alone makes a version installed; runnability is Validate's job.
func Has(root, version string) bool {
	if version == "" {
		return false
	}
	info, err := os.Stat(VersionRoot(root, version))
	return err == nil && info.IsDir()
}

// Validate checks that an installed version is runnable: its manifest, when
// present, must mark the binary as verified, and the binary itself must
// exist as a regular file or symlink. Stores populated by external tooling
// carry no manifest and are judged on the binary alone.
func Validate(root, version string) error {
	if !Has(root, version) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, version)
	}
	m, found, err := LoadManifest(root, version)
	if err != nil {
		return err
	}
	if found && !m.BinaryOK {
		return fmt.Errorf("STORE_BROKEN: %s was installed without a verified binary", version)
	}
	if !binaryExists(root, version) {
		return fmt.Errorf("STORE_BROKEN: %s is missing %s", version, BinaryPath(root, version))
	}
	return nil
}

// Remove deletes a version's install root recursively. Aliases pointing at
// the removed version are left in place and fail at use-time.
func Remove(root, version string) error {
	if !Has(root, version) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, version)
	}
	return os.RemoveAll(VersionRoot(root, version))
}

func binaryExists(root, version string) bool {
	info, err := os.Lstat(BinaryPath(root, version))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() || info.Mode()&os.ModeSymlink != 0
}

// BinaryExists reports whether the version's binary is present as a regular
// file or a symlink, without resolving symlink targets.
func BinaryExists(root, version string) bool {
	return binaryExists(root, version)
}
