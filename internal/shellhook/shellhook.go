// Package shellhook emits the shell integration script. The script is the
// host side of two contracts: invoke the auto-switch monitor after every
// directory change, and re-apply the composed path at session startup from
// the persisted ledger.
package shellhook

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Shell enumerates supported shells.
type Shell string

const (
	ShellUnknown Shell = "unknown"
	ShellBash    Shell = "bash"
	ShellZsh     Shell = "zsh"
)

// Detect maps $SHELL to a supported shell.
func Detect(getenv func(string) string) Shell {
	switch filepath.Base(getenv("SHELL")) {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	default:
		return ShellUnknown
	}
}

// Parse validates an explicit shell name.
func Parse(name string) (Shell, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bash":
		return ShellBash, nil
	case "zsh":
		return ShellZsh, nil
	default:
		return ShellUnknown, fmt.Errorf("SHL_UNSUPPORTED: unsupported shell %q (bash and zsh are supported)", name)
	}
}

const common = `# phpvm shell integration
# Re-apply the active version's PATH in this new session.
eval "$(command %[1]s env)"

%[1]s() {
  command %[1]s "$@" || return $?
  case "$1" in
    use|install|uninstall) eval "$(command %[1]s env)" ;;
  esac
}

_phpvm_autoswitch() {
  eval "$(command %[1]s autoswitch --dir "$PWD")"
}
`

const bashHook = `cd() {
  builtin cd "$@" || return $?
  _phpvm_autoswitch
}
_phpvm_autoswitch
`

const zshHook = `autoload -U add-zsh-hook
add-zsh-hook chpwd _phpvm_autoswitch
_phpvm_autoswitch
`

// Script renders the integration script for a shell. executable is the
// phpvm binary name as the user invokes it.
func Script(shell Shell, executable string) (string, error) {
	if executable == "" {
		executable = "phpvm"
	}
	header := fmt.Sprintf(common, executable)
	switch shell {
	case ShellBash:
		return header + bashHook, nil
	case ShellZsh:
		return header + zshHook, nil
	default:
		return "", fmt.Errorf("SHL_UNSUPPORTED: cannot generate hook for shell %q", shell)
	}
}
