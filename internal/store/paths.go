package store

import "path/filepath"

// BinaryName is the executable every installed version must expose under
// its bin directory.
const BinaryName = "php"

func VersionsRoot(root string) string {
	return filepath.Join(root, "versions")
}

func StagingRoot(root string) string {
	return filepath.Join(root, "staging")
}

func AliasRoot(root string) string {
	return filepath.Join(root, "alias")
}

func CurrentPath(root string) string {
	return filepath.Join(root, "current")
}

func AuditPath(root string) string {
	return filepath.Join(root, "audit.log")
}

func VersionRoot(root, version string) string {
	return filepath.Join(VersionsRoot(root), version)
}

func BinDir(root, version string) string {
	return filepath.Join(VersionRoot(root, version), "bin")
}

// BinaryPath is a deterministic join; it does not check existence.
func BinaryPath(root, version string) string {
	return filepath.Join(BinDir(root, version), BinaryName)
}

func ManifestPath(root, version string) string {
	return filepath.Join(VersionRoot(root, version), ManifestFile)
}
