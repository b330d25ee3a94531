// Package engine orchestrates activation: request resolution (direct
// version, alias, or project marker), installation validation, search-path
// composition and the ledger commit, in that order. The engine never
// mutates the process environment; it returns the environment the hosting
// shell should apply.
package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"phpvm/internal/alias"
	"phpvm/internal/audit"
	"phpvm/internal/ledger"
	"phpvm/internal/pathenv"
	"phpvm/internal/phpver"
	"phpvm/internal/store"
)

// EnvVersion exposes the active version to child processes alongside PATH.
const EnvVersion = "PHPVM_VERSION"

type Service struct {
	Root   string
	Audit  *audit.Logger
	Getenv func(string) string // defaults to os.Getenv
}

// Context is the result of a successful activation: the environment the
// hosting shell applies for the rest of the session. Nothing here is
// persisted to profile files; new sessions re-derive it from the ledger.
type Context struct {
	Version string            `json:"version"`
	BinDir  string            `json:"binDir"`
	Path    string            `json:"path"`
	Env     map[string]string `json:"env"`
	Banner  string            `json:"banner,omitempty"`
}

// Status reports the ledger value for current-version queries.
type Status struct {
	Version string `json:"version"`
	BinDir  string `json:"binDir"`
	Banner  string `json:"banner,omitempty"`
}

func (s *Service) getenv(key string) string {
	if s.Getenv != nil {
		return s.Getenv(key)
	}
	return os.Getenv(key)
}

// Resolve normalizes a requested version-or-alias and follows the alias
// indirection one hop.
func (s *Service) Resolve(requested string) string {
	normalized := phpver.Normalize(requested)
	target, _ := alias.Resolve(s.Root, normalized)
	return target
}

// Activate switches the environment to the requested version or alias. An
// empty request falls back to dir's project marker. The ledger is written
// only after validation and path composition succeed, so a failed
// activation leaves the previous state intact.
func (s *Service) Activate(dir, requested string) (Context, error) {
	requested = phpver.Normalize(requested)
	if requested == "" {
		marker, found, err := ReadMarker(dir)
		if err != nil {
			return Context{}, err
		}
		if !found || phpver.Normalize(marker) == "" {
			return Context{}, ErrMissingArgument
		}
		requested = phpver.Normalize(marker)
	}

	version, _ := alias.Resolve(s.Root, requested)

	if !store.Has(s.Root, version) {
		return Context{}, fmt.Errorf("%w: php %s (run 'phpvm install %s' first)", ErrNotInstalled, version, version)
	}
	if err := store.Validate(s.Root, version); err != nil {
		return Context{}, fmt.Errorf("%w: %v (reinstall with 'phpvm install %s')", ErrNotInstalled, err, version)
	}

	binDir := store.BinDir(s.Root, version)
	path := pathenv.Compose(s.getenv("PATH"), store.VersionsRoot(s.Root), binDir)

	if err := ledger.Set(s.Root, version); err != nil {
		return Context{}, err
	}
	_ = s.Audit.Log(audit.Event{Operation: "activate", Phase: "commit", Status: "ok", Version: version})

	return Context{
		Version: version,
		BinDir:  binDir,
		Path:    path,
		Env: map[string]string{
			"PATH":     path,
			EnvVersion: version,
		},
		Banner: s.banner(version),
	}, nil
}

// Current reports the ledger value, failing when nothing was ever
// activated.
func (s *Service) Current() (Status, error) {
	version, err := ledger.Get(s.Root)
	if err != nil {
		return Status{}, err
	}
	if version == "" {
		return Status{}, ErrNoActiveVersion
	}
	return Status{
		Version: version,
		BinDir:  store.BinDir(s.Root, version),
		Banner:  s.banner(version),
	}, nil
}

// Which computes the binary path for the requested version, defaulting to
// the active one. Pure path arithmetic: existence is not checked.
func (s *Service) Which(requested string) (string, error) {
	requested = phpver.Normalize(requested)
	if requested == "" {
		active, err := ledger.Get(s.Root)
		if err != nil {
			return "", err
		}
		if active == "" {
			return "", ErrNoActiveVersion
		}
		return store.BinaryPath(s.Root, active), nil
	}
	version, _ := alias.Resolve(s.Root, requested)
	return store.BinaryPath(s.Root, version), nil
}

// Env recomposes the activation context from the persisted ledger, for
// session startup. ok=false when no version is active.
func (s *Service) Env() (Context, bool, error) {
	version, err := ledger.Get(s.Root)
	if err != nil {
		return Context{}, false, err
	}
	if version == "" {
		return Context{}, false, nil
	}
	binDir := store.BinDir(s.Root, version)
	path := pathenv.Compose(s.getenv("PATH"), store.VersionsRoot(s.Root), binDir)
	return Context{
		Version: version,
		BinDir:  binDir,
		Path:    path,
		Env: map[string]string{
			"PATH":     path,
			EnvVersion: version,
		},
	}, true, nil
}

// Exec runs the version's binary with the given arguments in the caller's
// working directory, with PATH composed for that version. The child's exit
// code is returned unchanged.
func (s *Service) Exec(ctx context.Context, requested string, args []string) (int, error) {
	version, _ := alias.Resolve(s.Root, phpver.Normalize(requested))
	if !store.BinaryExists(s.Root, version) {
		return 1, fmt.Errorf("%w: php %s (run 'phpvm install %s' first)", ErrNotInstalled, version, version)
	}
	bin := store.BinaryPath(s.Root, version)
	path := pathenv.Compose(s.getenv("PATH"), store.VersionsRoot(s.Root), store.BinDir(s.Root, version))

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PATH="+path, EnvVersion+"="+version)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("ACT_EXEC: %w", err)
	}
	return 0, nil
}

// banner asks the runtime to describe itself (first line of `php -v`).
// Best-effort: the engine neither parses nor validates it.
func (s *Service) banner(version string) string {
	bin := store.BinaryPath(s.Root, version)
	if !store.BinaryExists(s.Root, version) {
		return ""
	}
	out, err := exec.Command(bin, "-v").Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}
