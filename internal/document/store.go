package document

import (
	"errors"
	"path/filepath"
	"sync"

	"aqwari.net/xml/xmltree"
	"github.com/charmbracelet/log"

	"xsd-navigator/internal/workspace"
)

// ErrNotSchema is returned when the root document does not classify as an
// XML Schema.
var ErrNotSchema = errors.New("document: not a schema document")

// Binding maps one namespace string (or, for namespace-less includes, the
// resolved location) to a loaded document and the location it came from.
type Binding struct {
	Namespace string
	Location  string
	Doc       *SchemaDocument
}

// Set is a fully loaded schema family: the root document plus its import
// bindings in registration order.
type Set struct {
	Root     *SchemaDocument
	Bindings []Binding
}

// Documents returns the family in query order: root first, then imports in
// binding registration order.
func (s *Set) Documents() []*SchemaDocument {
	out := make([]*SchemaDocument, 0, 1+len(s.Bindings))
	out = append(out, s.Root)
	for _, b := range s.Bindings {
		out = append(out, b.Doc)
	}
	return out
}

// Scopes returns the root elements of the family in the same order, the
// shape the query engine consumes.
func (s *Set) Scopes() []*xmltree.Element {
	out := make([]*xmltree.Element, 0, 1+len(s.Bindings))
	for _, d := range s.Documents() {
		out = append(out, d.Root)
	}
	return out
}

// ByNamespace returns the binding for a namespace string, if present.
func (s *Set) ByNamespace(ns string) (Binding, bool) {
	for _, b := range s.Bindings {
		if b.Namespace == ns {
			return b, true
		}
	}
	return Binding{}, false
}

type cacheEntry struct {
	doc     *SchemaDocument
	modTime int64 // unix nanos of the parse the entry was built from
}

// Store loads and caches schema documents through the workspace
// collaborators. The cache is read-mostly shared state; entries are replaced
// wholesale under the lock, never mutated in place.
type Store struct {
	fs  workspace.FS
	log *log.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewStore creates a Store over the given file collaborators.
func NewStore(fs workspace.FS, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{fs: fs, log: logger, cache: make(map[string]cacheEntry)}
}

// ResolveImportLocation turns a schemaLocation hint into a concrete location.
// Candidates are tried in order: the hint joined to the base document's
// directory, the hint as an absolute location, and finally a workspace-wide
// search by the hint's file name. The first existing candidate wins.
func (st *Store) ResolveImportLocation(base, hint string) (string, bool) {
	if hint == "" {
		return "", false
	}
	if base != "" {
		joined := filepath.Join(filepath.Dir(base), filepath.FromSlash(hint))
		if st.fs.Exists(joined) {
			return joined, true
		}
	}
	if filepath.IsAbs(hint) && st.fs.Exists(hint) {
		return hint, true
	}
	if hits := st.fs.SearchByFilename(filepath.Base(filepath.FromSlash(hint))); len(hits) > 0 {
		return hits[0], true
	}
	return "", false
}

// LoadCached returns the parsed document for a file-backed location, reusing
// the cached parse while the modification time still matches and reparsing
// otherwise. The replacement entry is installed as a whole.
func (st *Store) LoadCached(location string) (*SchemaDocument, error) {
	mod, err := st.fs.Stat(location)
	if err != nil {
		return nil, err
	}

	st.mu.RLock()
	entry, ok := st.cache[location]
	st.mu.RUnlock()
	if ok && entry.modTime == mod.UnixNano() {
		return entry.doc, nil
	}

	raw, err := st.fs.Read(location)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	doc.Path = location
	doc.ModTime = mod

	st.mu.Lock()
	st.cache[location] = cacheEntry{doc: doc, modTime: mod.UnixNano()}
	st.mu.Unlock()
	return doc, nil
}

// Invalidate drops any cached parse for a location.
func (st *Store) Invalidate(location string) {
	st.mu.Lock()
	delete(st.cache, location)
	st.mu.Unlock()
}

// LoadSet parses raw root text and assembles the whole schema family.
//
// basePath carries the root document's location; it is used to resolve
// relative schemaLocation hints and recorded as the root's identity. Pass an
// empty basePath for purely in-memory roots (relative hints then fall back
// to the workspace search).
//
// A root parse failure or a non-schema root is fatal to the call; every
// import-level failure is recorded in the Report and skipped.
func (st *Store) LoadSet(raw []byte, basePath string) (*Set, *Report, error) {
	report := &Report{}

	doc, err := Parse(raw)
	if err != nil {
		report.Addf("root document: %v", err)
		return nil, report, err
	}
	doc.Path = basePath
	if basePath != "" {
		if mod, err := st.fs.Stat(basePath); err == nil {
			doc.ModTime = mod
		}
	}
	if !IsSchema(doc) {
		return nil, report, ErrNotSchema
	}

	set := &Set{Root: doc}
	index := make(map[string]int) // binding key -> position in set.Bindings

	for i := range doc.Root.Children {
		dir := &doc.Root.Children[i]
		local := dir.Name.Local
		if local != "import" && local != "include" {
			continue
		}
		hint := dir.Attr("", "schemaLocation")
		if hint == "" {
			report.Addf("%s directive without schemaLocation", local)
			continue
		}
		loc, ok := st.ResolveImportLocation(basePath, hint)
		if !ok {
			report.Addf("unresolved %s location %q", local, hint)
			st.log.Warn("schema import unresolved", "hint", hint, "base", basePath)
			continue
		}
		imported, err := st.LoadCached(loc)
		if err != nil {
			report.Addf("%s %q: %v", local, hint, err)
			st.log.Warn("schema import failed", "location", loc, "err", err)
			continue
		}

		key := dir.Attr("", "namespace")
		if key == "" {
			// include has no namespace attribute; key by location so two
			// includes never clobber one another.
			key = loc
		}
		b := Binding{Namespace: key, Location: loc, Doc: imported}
		if pos, dup := index[key]; dup {
			set.Bindings[pos] = b // later directive replaces, position kept
			continue
		}
		index[key] = len(set.Bindings)
		set.Bindings = append(set.Bindings, b)
	}

	return set, report, nil
}
