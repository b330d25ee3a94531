// Package installer commits new versions into the store. The actual
// download/configure/compile work belongs to an external Backend; this
// package owns staging, binary verification, the manifest and the atomic
// rename into the store, so a directory under versions/ always means a
// runnable version.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"phpvm/internal/audit"
	"phpvm/internal/store"
)

// Backend populates dest with one version's install tree, including
// bin/php. Package-manager and source-build pipelines live behind this
// boundary.
type Backend interface {
	Install(ctx context.Context, version, dest string) error
}

type Service struct {
	Root    string
	Backend Backend
	Audit   *audit.Logger
}

type Result struct {
	Version          string `json:"version"`
	InstallRoot      string `json:"installRoot"`
	AlreadyInstalled bool   `json:"alreadyInstalled,omitempty"`
}

// Install places a version into the store. Installing an existing version
// is a no-op reporting AlreadyInstalled; the install root is not touched.
func (s *Service) Install(ctx context.Context, version string) (Result, error) {
	if err := store.EnsureLayout(s.Root); err != nil {
		return Result{}, err
	}
	if store.Has(s.Root, version) {
		return Result{Version: version, InstallRoot: store.VersionRoot(s.Root, version), AlreadyInstalled: true}, nil
	}
	if s.Backend == nil {
		return Result{}, fmt.Errorf("INS_BACKEND: no installer backend configured")
	}
	_ = s.Audit.Log(audit.Event{Operation: "install", Phase: "start", Status: "ok", Version: version})

	stage := filepath.Join(store.StagingRoot(s.Root), fmt.Sprintf("install-%d", time.Now().UnixNano()))
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return Result{}, fmt.Errorf("INS_STAGE_CREATE: %w", err)
	}
	defer os.RemoveAll(stage)

	if err := s.Backend.Install(ctx, version, stage); err != nil {
		_ = s.Audit.Log(audit.Event{Operation: "install", Phase: "backend", Status: "error", Version: version, Message: err.Error()})
		return Result{}, fmt.Errorf("INS_BACKEND: %w", err)
	}

	stagedBinary := filepath.Join(stage, "bin", store.BinaryName)
	info, err := os.Lstat(stagedBinary)
	if err != nil || !(info.Mode().IsRegular() || info.Mode()&os.ModeSymlink != 0) {
		return Result{}, fmt.Errorf("INS_BACKEND_INCOMPLETE: backend did not produce bin/%s for %s", store.BinaryName, version)
	}

	manifest := store.Manifest{
		Runtime:     version,
		InstalledAt: time.Now().UTC(),
		Binary:      filepath.Join("bin", store.BinaryName),
		BinaryOK:    true,
	}
	if err := store.SaveManifest(filepath.Join(stage, store.ManifestFile), manifest); err != nil {
		return Result{}, err
	}

	final := store.VersionRoot(s.Root, version)
	if err := os.Rename(stage, final); err != nil {
		// A concurrent install may have won the rename; treat that as the
		// idempotent case.
		if store.Has(s.Root, version) {
			return Result{Version: version, InstallRoot: final, AlreadyInstalled: true}, nil
		}
		return Result{}, fmt.Errorf("INS_COMMIT_ATOMIC: %w", err)
	}
	_ = s.Audit.Log(audit.Event{Operation: "install", Phase: "commit", Status: "ok", Version: version})
	return Result{Version: version, InstallRoot: final}, nil
}

// Uninstall removes a version from the store. Aliases referencing it are
// deliberately left dangling and fail at use-time.
func (s *Service) Uninstall(version string) error {
	if err := store.Remove(s.Root, version); err != nil {
		return err
	}
	_ = s.Audit.Log(audit.Event{Operation: "uninstall", Phase: "commit", Status: "ok", Version: version})
	return nil
}
