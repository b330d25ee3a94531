package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phpvm/internal/alias"
	"phpvm/internal/audit"
	"phpvm/internal/ledger"
	"phpvm/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	if err := store.EnsureLayout(root); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	return &Service{
		Root:  root,
		Audit: audit.New(store.AuditPath(root)),
		Getenv: func(key string) string {
			if key == "PATH" {
				return "/usr/local/bin:/usr/bin:/bin"
			}
			return ""
		},
	}
}

func installVersion(t *testing.T, root, version string) {
	t.Helper()
	bin := store.BinDir(root, version)
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	script := "#!/bin/sh\nif [ \"$1\" = \"-v\" ]; then echo \"PHP " + version + " (cli)\"; fi\nexit 0\n"
	if err := os.WriteFile(filepath.Join(bin, store.BinaryName), []byte(script), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
}

func writeMarker(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, MarkerFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
}

func TestActivateCommitsLedgerAndComposesPath(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")

	ctx, err := svc.Activate(t.TempDir(), "8.3.0")
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if ctx.Version != "8.3.0" {
		t.Errorf("version = %q, want 8.3.0", ctx.Version)
	}
	wantBin := store.BinDir(svc.Root, "8.3.0")
	if ctx.BinDir != wantBin {
		t.Errorf("binDir = %q, want %q", ctx.BinDir, wantBin)
	}
	if !strings.HasPrefix(ctx.Path, wantBin+":") {
		t.Errorf("composed path %q should start with %q", ctx.Path, wantBin)
	}
	if ctx.Env["PATH"] != ctx.Path || ctx.Env[EnvVersion] != "8.3.0" {
		t.Errorf("unexpected env %+v", ctx.Env)
	}

	active, err := ledger.Get(svc.Root)
	if err != nil {
		t.Fatalf("ledger get: %v", err)
	}
	if active != "8.3.0" {
		t.Errorf("ledger = %q, want 8.3.0", active)
	}
}

func TestActivateNormalizationInvariance(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")

	plain, err := svc.Activate(t.TempDir(), "8.3.0")
	if err != nil {
		t.Fatalf("activate 8.3.0: %v", err)
	}
	prefixed, err := svc.Activate(t.TempDir(), " v8.3.0 ")
	if err != nil {
		t.Fatalf("activate v8.3.0: %v", err)
	}
	if plain.Version != prefixed.Version || plain.BinDir != prefixed.BinDir {
		t.Errorf("v-prefixed input resolved differently: %+v vs %+v", plain, prefixed)
	}
	active, _ := ledger.Get(svc.Root)
	if active != "8.3.0" {
		t.Errorf("ledger = %q, want 8.3.0", active)
	}
}

func TestActivateNotInstalledLeavesLedgerIntact(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")
	if _, err := svc.Activate(t.TempDir(), "8.3.0"); err != nil {
		t.Fatalf("seed activation failed: %v", err)
	}

	_, err := svc.Activate(t.TempDir(), "8.2.15")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
	if !strings.Contains(err.Error(), "phpvm install 8.2.15") {
		t.Errorf("error should hint at install, got %q", err)
	}

	active, _ := ledger.Get(svc.Root)
	if active != "8.3.0" {
		t.Errorf("failed activation mutated ledger: %q", active)
	}
}

func TestActivateBrokenInstallFailsBeforeLedgerWrite(t *testing.T) {
	svc := newTestService(t)
	// Directory exists but binary missing: Has is true, Validate rejects.
	if err := os.MkdirAll(store.VersionRoot(svc.Root, "8.1.0"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err := svc.Activate(t.TempDir(), "8.1.0")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled for broken install, got %v", err)
	}
	active, _ := ledger.Get(svc.Root)
	if active != "" {
		t.Errorf("ledger should stay unset, got %q", active)
	}
}

func TestActivateMissingArgumentWithoutMarker(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Activate(t.TempDir(), "")
	if !errors.Is(err, ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
}

func TestActivateFallsBackToProjectMarker(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.2.15")
	dir := t.TempDir()
	writeMarker(t, dir, "v8.2.15\n")

	ctx, err := svc.Activate(dir, "")
	if err != nil {
		t.Fatalf("activate from marker failed: %v", err)
	}
	if ctx.Version != "8.2.15" {
		t.Errorf("version = %q, want 8.2.15", ctx.Version)
	}
}

func TestActivateResolvesAliasOneHop(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")
	if err := alias.Set(svc.Root, "stable", "8.3.0"); err != nil {
		t.Fatalf("alias set: %v", err)
	}

	ctx, err := svc.Activate(t.TempDir(), "stable")
	if err != nil {
		t.Fatalf("activate alias failed: %v", err)
	}
	if ctx.Version != "8.3.0" {
		t.Errorf("version = %q, want 8.3.0", ctx.Version)
	}
}

func TestActivateAliasChainIsNotFollowed(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")
	if err := alias.Set(svc.Root, "stable", "8.3.0"); err != nil {
		t.Fatalf("alias set: %v", err)
	}
	// default -> stable: the target is a literal, not another lookup, and
	// no version named "stable" exists.
	if err := alias.Set(svc.Root, "default", "stable"); err != nil {
		t.Fatalf("alias set: %v", err)
	}

	_, err := svc.Activate(t.TempDir(), "default")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled for chained alias, got %v", err)
	}
}

func TestActivateDanglingAlias(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")
	if err := alias.Set(svc.Root, "default", "8.3.0"); err != nil {
		t.Fatalf("alias set: %v", err)
	}
	if err := store.Remove(svc.Root, "8.3.0"); err != nil {
		t.Fatalf("remove version: %v", err)
	}

	// The alias record survives the uninstall by design...
	if _, err := alias.Get(svc.Root, "default"); err != nil {
		t.Fatalf("alias should still exist: %v", err)
	}
	// ...and fails at use-time.
	_, err := svc.Activate(t.TempDir(), "default")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled via dangling alias, got %v", err)
	}
}

func TestCurrentBeforeAnyActivation(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Current()
	if !errors.Is(err, ErrNoActiveVersion) {
		t.Fatalf("expected ErrNoActiveVersion, got %v", err)
	}
}

func TestCurrentAfterActivation(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")
	if _, err := svc.Activate(t.TempDir(), "8.3.0"); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	status, err := svc.Current()
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if status.Version != "8.3.0" {
		t.Errorf("version = %q, want 8.3.0", status.Version)
	}
}

func TestWhichDefaultsToActive(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")
	if _, err := svc.Activate(t.TempDir(), "8.3.0"); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	path, err := svc.Which("")
	if err != nil {
		t.Fatalf("which failed: %v", err)
	}
	if path != store.BinaryPath(svc.Root, "8.3.0") {
		t.Errorf("which = %q", path)
	}
}

func TestWhichNoActiveVersion(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Which("")
	if !errors.Is(err, ErrNoActiveVersion) {
		t.Fatalf("expected ErrNoActiveVersion, got %v", err)
	}
}

func TestWhichIsPurePathArithmetic(t *testing.T) {
	svc := newTestService(t)
	// Nothing installed: which still answers, no existence check.
	path, err := svc.Which("v9.9.9")
	if err != nil {
		t.Fatalf("which failed: %v", err)
	}
	if path != store.BinaryPath(svc.Root, "9.9.9") {
		t.Errorf("which = %q", path)
	}
}

func TestEnvRecomposesFromLedger(t *testing.T) {
	svc := newTestService(t)
	installVersion(t, svc.Root, "8.3.0")
	if _, err := svc.Activate(t.TempDir(), "8.3.0"); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	ctx, ok, err := svc.Env()
	if err != nil {
		t.Fatalf("env failed: %v", err)
	}
	if !ok {
		t.Fatal("expected an active env")
	}
	if ctx.Version != "8.3.0" || !strings.HasPrefix(ctx.Path, store.BinDir(svc.Root, "8.3.0")) {
		t.Errorf("unexpected env context %+v", ctx)
	}
}

func TestEnvUnset(t *testing.T) {
	svc := newTestService(t)
	_, ok, err := svc.Env()
	if err != nil {
		t.Fatalf("env failed: %v", err)
	}
	if ok {
		t.Fatal("expected no active env")
	}
}

func TestExecMissingBinary(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Exec(context.Background(), "8.3.0", []string{"-r", "echo 1;"})
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}

func TestExecPropagatesExitCode(t *testing.T) {
	svc := newTestService(t)
	bin := store.BinDir(svc.Root, "8.3.0")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	script := "#!/bin/sh\nexit 42\n"
	if err := os.WriteFile(filepath.Join(bin, store.BinaryName), []byte(script), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}

	code, err := svc.Exec(context.Background(), "v8.3.0", nil)
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if code != 42 {
		t.Errorf("exit code = %d, want 42", code)
	}
}

func TestReadMarkerMissing(t *testing.T) {
	_, found, err := ReadMarker(t.TempDir())
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if found {
		t.Fatal("expected no marker")
	}
}
