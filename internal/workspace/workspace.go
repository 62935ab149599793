// Package workspace provides the file-system collaborators consumed by the
// document store: existence checks, reads, modification timestamps and a
// bounded workspace-wide filename search.
//
// Two implementations are provided:
//   - OS: real filesystem, filename search via doublestar globs over the
//     configured roots, bounded in result count to avoid unbounded scans.
//   - Mem: in-memory fixture filesystem for tests.
package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"xsd-navigator/internal/sortutil"
)

// ErrNotExist is returned by Read/Stat for unknown locations.
var ErrNotExist = errors.New("workspace: no such file")

// FS is the narrow file surface the core depends on. All operations are
// external and fallible; the core degrades gracefully when they fail.
type FS interface {
	Exists(path string) bool
	Read(path string) ([]byte, error)
	Stat(path string) (time.Time, error)
	SearchByFilename(name string) []string
}

// OS is the real-filesystem implementation of FS.
type OS struct {
	roots      []string
	exclude    []string
	maxResults int
	log        *log.Logger
}

// Option configures an OS workspace.
type Option func(*OS)

// WithExclude sets glob patterns (matched against root-relative paths) whose
// matches are dropped from search results.
func WithExclude(globs ...string) Option {
	return func(o *OS) { o.exclude = append(o.exclude, globs...) }
}

// WithMaxResults bounds the number of search hits returned per query.
func WithMaxResults(n int) Option {
	return func(o *OS) {
		if n > 0 {
			o.maxResults = n
		}
	}
}

// WithLogger attaches a logger for search diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *OS) { o.log = l }
}

// NewOS creates a workspace over the given search roots. Roots that do not
// exist are tolerated and simply contribute no results.
func NewOS(roots []string, opts ...Option) *OS {
	o := &OS{roots: append([]string(nil), roots...), maxResults: 50, log: log.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OS) Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func (o *OS) Read(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return b, nil
}

func (o *OS) Stat(path string) (time.Time, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrNotExist
		}
		return time.Time{}, err
	}
	return st.ModTime(), nil
}

// SearchByFilename looks for files with the given base name anywhere under
// the configured roots. Results are absolute-ish (root-joined), deduplicated,
// sorted for determinism, and capped at the configured maximum.
func (o *OS) SearchByFilename(name string) []string {
	if name == "" {
		return nil
	}
	var hits []string
	for _, root := range o.roots {
		matches, err := doublestar.Glob(os.DirFS(root), "**/"+name)
		if err != nil {
			o.log.Debug("workspace search failed", "root", root, "name", name, "err", err)
			continue
		}
		for _, rel := range matches {
			if o.excluded(rel) {
				continue
			}
			hits = append(hits, filepath.Join(root, filepath.FromSlash(rel)))
		}
	}
	hits = sortutil.UniqueSorted(hits)
	if len(hits) > o.maxResults {
		hits = hits[:o.maxResults]
	}
	return hits
}

func (o *OS) excluded(rel string) bool {
	for _, g := range o.exclude {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// Mem is an in-memory FS used by tests and by hosts that supply unsaved
// buffers. Paths are matched verbatim.
type Mem struct {
	Files map[string][]byte
	Times map[string]time.Time
}

// NewMem builds a Mem from path -> content pairs with a fixed timestamp.
func NewMem(files map[string]string) *Mem {
	m := &Mem{Files: make(map[string][]byte), Times: make(map[string]time.Time)}
	for p, c := range files {
		m.Files[p] = []byte(c)
		m.Times[p] = time.Unix(1700000000, 0)
	}
	return m
}

func (m *Mem) Exists(path string) bool {
	_, ok := m.Files[path]
	return ok
}

func (m *Mem) Read(path string) ([]byte, error) {
	b, ok := m.Files[path]
	if !ok {
		return nil, ErrNotExist
	}
	return b, nil
}

func (m *Mem) Stat(path string) (time.Time, error) {
	t, ok := m.Times[path]
	if !ok {
		return time.Time{}, ErrNotExist
	}
	return t, nil
}

func (m *Mem) SearchByFilename(name string) []string {
	var hits []string
	for p := range m.Files {
		if filepath.Base(p) == name {
			hits = append(hits, p)
		}
	}
	return sortutil.UniqueSorted(hits)
}

// Touch updates a file's content and bumps its timestamp, simulating an
// external edit.
func (m *Mem) Touch(path, content string) {
	m.Files[path] = []byte(content)
	m.Times[path] = m.Times[path].Add(time.Second)
}
