// Package autoswitch re-evaluates the active version on directory changes.
// The host shell calls OnDirectoryChange after every cd; the monitor has no
// ambient knowledge of shell internals.
package autoswitch

import (
	"github.com/charmbracelet/log"

	"phpvm/internal/alias"
	"phpvm/internal/audit"
	"phpvm/internal/engine"
	"phpvm/internal/ledger"
	"phpvm/internal/phpver"
)

type Monitor struct {
	Root   string
	Engine *engine.Service
	Audit  *audit.Logger
	Log    *log.Logger
}

// OnDirectoryChange inspects dir's project marker and re-activates when it
// disagrees with the ledger. Rules:
//   - no marker: do nothing; leaving a project tree does not revert the
//     previous version
//   - marker matches the ledger (both sides normalized, alias resolved one
//     hop): zero writes
//   - mismatch: activate the marker's version
//
// Activation failure is reported and swallowed: changing directories must
// never be blocked by a missing pinned version, so the returned error is
// reserved for marker read failures only.
func (m *Monitor) OnDirectoryChange(dir string) (engine.Context, bool) {
	marker, found, err := engine.ReadMarker(dir)
	if err != nil {
		m.warn("reading "+engine.MarkerFile, err)
		return engine.Context{}, false
	}
	if !found {
		return engine.Context{}, false
	}

	desired := phpver.Normalize(marker)
	if desired == "" {
		return engine.Context{}, false
	}
	if resolved, ok := alias.Resolve(m.Root, desired); ok {
		desired = resolved
	}

	current, err := ledger.Get(m.Root)
	if err != nil {
		m.warn("reading ledger", err)
		return engine.Context{}, false
	}
	if desired == phpver.Normalize(current) {
		return engine.Context{}, false
	}

	ctx, err := m.Engine.Activate(dir, marker)
	if err != nil {
		m.warn("switching to "+desired, err)
		_ = m.Audit.Log(audit.Event{Operation: "autoswitch", Phase: "activate", Status: "error", Version: desired, Message: err.Error()})
		return engine.Context{}, false
	}
	_ = m.Audit.Log(audit.Event{Operation: "autoswitch", Phase: "commit", Status: "ok", Version: ctx.Version, Fields: map[string]string{"dir": dir}})
	return ctx, true
}

func (m *Monitor) warn(what string, err error) {
	if m.Log != nil {
		m.Log.Warn("autoswitch skipped", "while", what, "err", err)
	}
}
