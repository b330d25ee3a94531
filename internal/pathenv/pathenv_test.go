package pathenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestComposePrependsBinDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "versions")
	binDir := filepath.Join(root, "8.3.0", "bin")
	current := "/usr/local/bin:/usr/bin:/bin"

	got := Compose(current, root, binDir)
	want := binDir + ":/usr/local/bin:/usr/bin:/bin"
	if got != want {
		t.Errorf("Compose = %q, want %q", got, want)
	}
}

func TestComposeRemovesAllStoreEntries(t *testing.T) {
	root := filepath.Join(t.TempDir(), "versions")
	oldBin := filepath.Join(root, "8.2.15", "bin")
	olderBin := filepath.Join(root, "7.4.33", "bin")
	newBin := filepath.Join(root, "8.3.0", "bin")
	// Accumulated state from repeated switches in a buggy manager.
	current := strings.Join([]string{oldBin, "/usr/bin", olderBin, "/bin"}, ":")

	got := Compose(current, root, newBin)
	want := newBin + ":/usr/bin:/bin"
	if got != want {
		t.Errorf("Compose = %q, want %q", got, want)
	}
}

func TestComposePreservesEmptySegments(t *testing.T) {
	root := filepath.Join(t.TempDir(), "versions")
	binDir := filepath.Join(root, "8.3.0", "bin")

	// Empty segments mean the current directory in POSIX path lookup and
	// must survive untouched; only store-rooted entries are removed.
	got := Compose("::/usr/bin::", root, binDir)
	want := binDir + ":::/usr/bin::"
	if got != want {
		t.Errorf("Compose = %q, want %q", got, want)
	}
}

func TestComposeEmptyCurrentPath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "versions")
	binDir := filepath.Join(root, "8.3.0", "bin")

	if got := Compose("", root, binDir); got != binDir {
		t.Errorf("Compose = %q, want bare %q", got, binDir)
	}
}

func TestComposeKeepsSiblingsOfStoreRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "versions")
	sibling := filepath.Join(base, "versions-backup", "bin")
	binDir := filepath.Join(root, "8.3.0", "bin")

	got := Compose(sibling, root, binDir)
	if !strings.Contains(got, sibling) {
		t.Errorf("sibling directory %q was wrongly stripped from %q", sibling, got)
	}
}

// Path hygiene: after any sequence of activations the composed path holds
// exactly one store-rooted entry, the latest version's bin dir.
func TestComposeSequenceLeavesSingleStoreEntry(t *testing.T) {
	root := filepath.Join(t.TempDir(), "versions")
	path := "/usr/local/bin:/usr/bin:/bin"
	versions := []string{"8.1.0", "8.2.15", "8.3.0", "8.2.15"}

	var lastBin string
	for _, v := range versions {
		lastBin = filepath.Join(root, v, "bin")
		path = Compose(path, root, lastBin)
	}

	storeEntries := 0
	for _, seg := range strings.Split(path, string(os.PathListSeparator)) {
		if strings.HasPrefix(seg, root+string(os.PathSeparator)) {
			storeEntries++
			if seg != lastBin {
				t.Errorf("unexpected store entry %q, want only %q", seg, lastBin)
			}
		}
	}
	if storeEntries != 1 {
		t.Errorf("composed path has %d store entries, want exactly 1: %q", storeEntries, path)
	}
	if !Contains(path, root, lastBin) {
		t.Error("Contains should confirm the composed path")
	}
}

func TestContains(t *testing.T) {
	root := filepath.Join(t.TempDir(), "versions")
	binA := filepath.Join(root, "8.3.0", "bin")
	binB := filepath.Join(root, "8.2.15", "bin")

	if Contains("/usr/bin:/bin", root, binA) {
		t.Error("Contains should be false when no store entry is present")
	}
	if !Contains(binA+":/usr/bin", root, binA) {
		t.Error("Contains should be true for the exposed bin dir")
	}
	if Contains(binA+":"+binB+":/usr/bin", root, binA) {
		t.Error("Contains should be false when a stale store entry lingers")
	}
}
