// Package snapshot persists the rendered tree of a schema family between
// runs so the CLI can show what changed in the component tree after a schema
// edit.
//
// Conventions:
//   - The cache root defaults to "tmp/.xcache" unless overridden.
//   - A per-schema cache lives at: <base>/<pathKey>/
//   - The snapshot is stored at:   <base>/<pathKey>/tree.json
//
// Writes are atomic (temp file + rename) so readers never observe a
// partially-written snapshot.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"xsd-navigator/internal/diff"
)

const (
	defaultCacheRoot = "tmp/.xcache"
	treeFileName     = "tree.json"
)

// DocEntry records one document of the family at snapshot time.
type DocEntry struct {
	Path    string `json:"path"`
	ModTime string `json:"modTime,omitempty"` // RFC3339, file sources only
}

// Snapshot captures a schema family's rendered tree at a specific moment.
type Snapshot struct {
	Root          string     `json:"root"` // root schema location
	Created       string     `json:"created"`
	FormatVersion string     `json:"formatVersion,omitempty"`
	Documents     []DocEntry `json:"documents,omitempty"`
	Tree          string     `json:"tree"`
}

// PathKey returns a short, stable identifier for an absolute schema path:
// sha256(absPath) truncated to 12 hex chars.
func PathKey(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:])[:12]
}

// CacheDir resolves the cache directory for the given absolute schema path.
// If base is empty, the default root is used.
func CacheDir(base, abs string) string {
	root := base
	if root == "" {
		root = defaultCacheRoot
	}
	return filepath.Join(root, PathKey(abs))
}

// Load reads the snapshot from <dir>/tree.json. A missing file returns
// (nil, nil) so callers can treat it as "no previous snapshot".
func Load(dir string) (*Snapshot, error) {
	b, err := os.ReadFile(filepath.Join(dir, treeFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the snapshot atomically to <dir>/tree.json.
func Save(dir string, s *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+treeFileName+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, treeFileName))
}

// Clear removes the cache directory for one schema. Safe to call when the
// directory does not exist.
func Clear(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return os.RemoveAll(dir)
}

// DiffTrees renders the unified diff between a previous snapshot's tree and
// the current rendering. A nil previous snapshot diffs against nothing (the
// whole tree reads as added). An empty body means no change.
func DiffTrees(prev *Snapshot, current string, opt diff.Options) (string, bool) {
	if prev == nil {
		return diff.Added("tree", []byte(current), opt)
	}
	return diff.Unified("tree@"+prev.Created, "tree", []byte(prev.Tree), []byte(current), opt)
}
