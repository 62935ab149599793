// Package explorer wires the core together: it owns the document store and
// the recompute entry point, publishes immutable tree snapshots, and serves
// the node surface and navigation commands consumed by a host UI.
//
// Recomputation is event-driven (source changed, active document changed,
// explicit refresh). "Latest wins": each trigger gets a generation number,
// and a finished computation publishes only while it is still the newest;
// partial state from superseded runs is never surfaced.
package explorer

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"xsd-navigator/internal/annotation"
	"xsd-navigator/internal/decoration"
	"xsd-navigator/internal/document"
	"xsd-navigator/internal/locator"
	"xsd-navigator/internal/tree"
	"xsd-navigator/internal/typeres"
	"xsd-navigator/internal/workspace"
)

// ErrNotFound is the navigation outcome when a locator resolves in no loaded
// document.
var ErrNotFound = errors.New("explorer: construct not found")

// Source identifies the root document of a recompute. Text, when non-nil, is
// an in-memory buffer (always reparsed); otherwise Path is read through the
// workspace.
type Source struct {
	Path string
	Text []byte
}

// Snapshot is one published result of a recompute: the loaded family, its
// load report, and the lazily-queried tree over it. Snapshots are immutable;
// tree queries against them are read-only.
type Snapshot struct {
	Set    *document.Set
	Report *document.Report

	builder *tree.Builder
	res     *typeres.Resolver
	dec     *decoration.Store
}

// Roots returns the root nodes of the tree.
func (s *Snapshot) Roots() []*tree.Node { return s.builder.Roots() }

// Children lazily computes the children of a node.
func (s *Snapshot) Children(n *tree.Node) []*tree.Node { return s.builder.Children(n) }

// Decorations exposes the decoration store populated by tree queries.
func (s *Snapshot) Decorations() *decoration.Store { return s.dec }

// Resolver exposes the family's type resolver.
func (s *Snapshot) Resolver() *typeres.Resolver { return s.res }

// NodeInfo is the per-node surface handed to the UI layer.
type NodeInfo struct {
	Name          string
	TypeDesc      string
	Documentation string
	HasDoc        bool
	Kind          tree.Kind
	Locator       string
	ID            string
}

// Describe assembles the UI surface for one node.
func (s *Snapshot) Describe(n *tree.Node) NodeInfo {
	doc, ok := annotation.Documentation(n.Element())
	return NodeInfo{
		Name:          n.Name,
		TypeDesc:      n.TypeDescription(),
		Documentation: doc,
		HasDoc:        ok,
		Kind:          n.Kind,
		Locator:       n.Locator,
		ID:            n.ID,
	}
}

// Location is a navigation target: the owning document and the 1-based line
// where the construct's start tag begins.
type Location struct {
	Path     string
	Line     int
	InMemory bool
}

// Navigate resolves a locator string across the loaded family and returns
// the jump target, or ErrNotFound when no document matches.
func (s *Snapshot) Navigate(loc string) (Location, error) {
	el, doc, ok := locator.Resolve(loc, s.Set)
	if !ok {
		return Location{}, ErrNotFound
	}
	line := doc.LineOf(el)
	if line == 0 {
		return Location{}, ErrNotFound
	}
	return Location{Path: doc.Path, Line: line, InMemory: doc.InMemory()}, nil
}

// Provider owns the store and the idempotent recompute entry point the host
// subscribes its change events to. It holds no global state; every Provider
// is independent.
type Provider struct {
	fs    workspace.FS
	store *document.Store
	log   *log.Logger

	gen atomic.Uint64

	mu     sync.Mutex
	pubGen uint64 // generation of the published snapshot
	snap   *Snapshot
	subs   []func(*Snapshot)
}

// NewProvider creates a Provider over the given workspace collaborators.
func NewProvider(fs workspace.FS, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.Default()
	}
	return &Provider{fs: fs, store: document.NewStore(fs, logger), log: logger}
}

// Store exposes the underlying document store.
func (p *Provider) Store() *document.Store { return p.store }

// Subscribe registers a callback invoked with every newly published
// snapshot.
func (p *Provider) Subscribe(fn func(*Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Snapshot returns the currently published snapshot, nil before the first
// successful recompute.
func (p *Provider) Snapshot() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Recompute rebuilds the whole document set and tree state for the source.
// The previous snapshot is discarded, never patched. The result is returned
// to the caller in every case, but published (and fanned out to subscribers)
// only when no newer trigger has started meanwhile.
func (p *Provider) Recompute(src Source) (*Snapshot, error) {
	gen := p.gen.Add(1)

	raw := src.Text
	basePath := src.Path
	if raw == nil {
		var err error
		raw, err = p.fs.Read(basePath)
		if err != nil {
			return nil, err
		}
	}

	set, report, err := p.store.LoadSet(raw, basePath)
	if err != nil {
		return nil, err
	}
	for _, issue := range report.Issues() {
		p.log.Warn("schema load issue", "issue", issue)
	}

	res := typeres.New(set, p.log)
	dec := decoration.NewStore()
	snap := &Snapshot{
		Set:     set,
		Report:  report,
		builder: tree.NewBuilder(set, res, dec, p.log),
		res:     res,
		dec:     dec,
	}

	if p.gen.Load() != gen {
		// A newer trigger superseded this computation; its result is the
		// only one that may surface.
		return snap, nil
	}
	// The published generation is re-checked under the lock: the atomic
	// check above is only an early out, and a newer run may have published
	// between it and the lock acquisition.
	p.mu.Lock()
	if gen <= p.pubGen {
		p.mu.Unlock()
		return snap, nil
	}
	p.pubGen = gen
	p.snap = snap
	subs := append([]func(*Snapshot){}, p.subs...)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
	return snap, nil
}
