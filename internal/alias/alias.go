// Package alias is the named-pointer layer over the version store: one file
// per alias under <root>/alias, file content = target version string.
// Resolution is exactly one hop; a target that happens to name another alias
// is treated as a literal version string.
package alias

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"phpvm/internal/fsutil"
	"phpvm/internal/store"
)

var (
	ErrNotFound = errors.New("ALS_NOT_FOUND: alias does not exist")
	ErrReserved = errors.New("ALS_RESERVED: alias name collides with a command keyword")
)

// reservedNames keeps a user-defined alias from shadowing a built-in
// command.
var reservedNames = map[string]struct{}{
	"install": {}, "use": {}, "list": {}, "list-remote": {},
	"current": {}, "uninstall": {}, "alias": {}, "which": {},
	"exec": {}, "env": {}, "autoswitch": {}, "init": {},
	"doctor": {}, "version": {}, "help": {},
}

type Record struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// validName rejects anything that would resolve outside the alias
// directory when joined, so every entry point addresses exactly one file
// under <root>/alias.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\") && name == filepath.Base(name)
}

// Set creates or overwrites an alias. The target is not validated against
// the store: an alias may point at a not-yet-installed version and fails at
// use-time instead.
func Set(root, name, target string) error {
	name = strings.TrimSpace(name)
	target = strings.TrimSpace(target)
	if name == "" || target == "" {
		return fmt.Errorf("ALS_SET: name and target are required")
	}
	if !validName(name) {
		return fmt.Errorf("ALS_SET: invalid alias name %q", name)
	}
	if _, ok := reservedNames[name]; ok {
		return fmt.Errorf("%w: %q", ErrReserved, name)
	}
	if err := os.MkdirAll(store.AliasRoot(root), 0o755); err != nil {
		return err
	}
	return fsutil.WriteTrimmed(filepath.Join(store.AliasRoot(root), name), target)
}

func Get(root, name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	target, found, err := fsutil.ReadTrimmed(filepath.Join(store.AliasRoot(root), name))
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return target, nil
}

// Remove deletes an alias record. Removing a version never cascades here;
// this is the only way an alias disappears.
func Remove(root, name string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	err := os.Remove(filepath.Join(store.AliasRoot(root), name))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return err
}

func List(root string) ([]Record, error) {
	entries, err := os.ReadDir(store.AliasRoot(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		target, found, err := fsutil.ReadTrimmed(filepath.Join(store.AliasRoot(root), e.Name()))
		if err != nil || !found {
			continue
		}
		records = append(records, Record{Name: e.Name(), Target: target})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// Resolve maps an alias name to its target, one hop only. Inputs that match
// no alias are returned unchanged with found=false and treated by callers
// as literal version strings.
func Resolve(root, nameOrVersion string) (string, bool) {
	target, err := Get(root, nameOrVersion)
	if err != nil {
		return nameOrVersion, false
	}
	return target, true
}
