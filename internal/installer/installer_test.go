package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phpvm/internal/audit"
	"phpvm/internal/store"
)

// scriptBackend mimics an external build pipeline by writing a stub
// binary into the staging dest.
type scriptBackend struct {
	fail       error
	skipBinary bool
	calls      int
}

func (b *scriptBackend) Install(_ context.Context, version, dest string) error {
	b.calls++
	if b.fail != nil {
		return b.fail
	}
	if b.skipBinary {
		return nil
	}
	bin := filepath.Join(dest, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(bin, store.BinaryName), []byte("#!/bin/sh\necho PHP "+version+"\n"), 0o755)
}

func newTestService(t *testing.T, backend Backend) *Service {
	t.Helper()
	root := t.TempDir()
	if err := store.EnsureLayout(root); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	return &Service{Root: root, Backend: backend, Audit: audit.New(store.AuditPath(root))}
}

func TestInstallCommitsVersionWithManifest(t *testing.T) {
	backend := &scriptBackend{}
	svc := newTestService(t, backend)

	res, err := svc.Install(context.Background(), "8.3.0")
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if res.AlreadyInstalled {
		t.Error("fresh install reported AlreadyInstalled")
	}
	if res.InstallRoot != store.VersionRoot(svc.Root, "8.3.0") {
		t.Errorf("install root = %q", res.InstallRoot)
	}
	if err := store.Validate(svc.Root, "8.3.0"); err != nil {
		t.Fatalf("committed install should validate: %v", err)
	}
	m, found, err := store.LoadManifest(svc.Root, "8.3.0")
	if err != nil || !found {
		t.Fatalf("expected manifest, found=%v err=%v", found, err)
	}
	if m.Runtime != "8.3.0" || !m.BinaryOK {
		t.Errorf("unexpected manifest %+v", m)
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	backend := &scriptBackend{}
	svc := newTestService(t, backend)

	if _, err := svc.Install(context.Background(), "8.3.0"); err != nil {
		t.Fatalf("first install failed: %v", err)
	}
	marker := filepath.Join(store.VersionRoot(svc.Root, "8.3.0"), "sentinel")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write sentinel: %v", err)
	}

	res, err := svc.Install(context.Background(), "8.3.0")
	if err != nil {
		t.Fatalf("second install failed: %v", err)
	}
	if !res.AlreadyInstalled {
		t.Error("expected AlreadyInstalled on repeat install")
	}
	if backend.calls != 1 {
		t.Errorf("backend ran %d times, want 1", backend.calls)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Error("repeat install touched the existing install root")
	}
}

func TestInstallBackendFailureLeavesNoTrace(t *testing.T) {
	backend := &scriptBackend{fail: errors.New("network unreachable")}
	svc := newTestService(t, backend)

	_, err := svc.Install(context.Background(), "8.3.0")
	if err == nil || !strings.Contains(err.Error(), "INS_BACKEND") {
		t.Fatalf("expected INS_BACKEND, got %v", err)
	}
	if store.Has(svc.Root, "8.3.0") {
		t.Error("failed install must not appear in the store")
	}
	entries, err := os.ReadDir(store.StagingRoot(svc.Root))
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("staging not cleaned up: %v", entries)
	}
}

func TestInstallRejectsIncompleteBackendOutput(t *testing.T) {
	backend := &scriptBackend{skipBinary: true}
	svc := newTestService(t, backend)

	_, err := svc.Install(context.Background(), "8.3.0")
	if err == nil || !strings.Contains(err.Error(), "INS_BACKEND_INCOMPLETE") {
		t.Fatalf("expected INS_BACKEND_INCOMPLETE, got %v", err)
	}
	if store.Has(svc.Root, "8.3.0") {
		t.Error("incomplete install must not appear in the store")
	}
}

func TestInstallWithoutBackend(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Install(context.Background(), "8.3.0")
	if err == nil || !strings.Contains(err.Error(), "INS_BACKEND") {
		t.Fatalf("expected INS_BACKEND, got %v", err)
	}
}

func TestUninstall(t *testing.T) {
	backend := &scriptBackend{}
	svc := newTestService(t, backend)
	if _, err := svc.Install(context.Background(), "8.3.0"); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if err := svc.Uninstall("8.3.0"); err != nil {
		t.Fatalf("uninstall failed: %v", err)
	}
	if store.Has(svc.Root, "8.3.0") {
		t.Error("version survived uninstall")
	}
	if err := svc.Uninstall("8.3.0"); err == nil || !strings.Contains(err.Error(), "STORE_NOT_INSTALLED") {
		t.Fatalf("expected STORE_NOT_INSTALLED, got %v", err)
	}
}
