// Package ledger persists the single "currently active version" value at
// <root>/current. The ledger is advisory: command resolution within a shell
// session rides on the session's own composed PATH, the ledger only feeds
// display and auto-switch comparison.
package ledger

import (
	"phpvm/internal/fsutil"
	"phpvm/internal/store"
)

// Get returns the active version, or "" when none has been activated yet.
func Get(root string) (string, error) {
	version, _, err := fsutil.ReadTrimmed(store.CurrentPath(root))
	return version, err
}

// Set overwrites the ledger via tmp+rename, so a concurrent reader never
// observes a half-written value. Callers write only after validation
// succeeds; a failed activation leaves the previous value intact.
func Set(root, version string) error {
	return fsutil.WriteTrimmed(store.CurrentPath(root), version)
}
