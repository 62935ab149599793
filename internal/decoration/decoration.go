// Package decoration carries the per-node visual side-channel: occurrence
// badges derived from minOccurs/maxOccurs, the nillable hint, and the
// deterministic node identities decorations are keyed by.
//
// The Store is an explicitly owned component: whoever publishes decorations
// receives it by reference. There is no package-level instance.
package decoration

import (
	"strconv"
	"strings"
	"sync"

	"aqwari.net/xml/xmltree"
)

// Decoration is the renderable hint attached to one tree node.
type Decoration struct {
	Badge    string // e.g. "0∞"; empty when suppressed
	Nillable bool
}

// Empty reports whether the decoration renders nothing.
func (d Decoration) Empty() bool { return d.Badge == "" && !d.Nillable }

// Store keys decorations by node identity. Safe for concurrent use; entries
// are replaced as a whole.
type Store struct {
	mu sync.RWMutex
	m  map[string]Decoration
}

// NewStore creates an empty store.
func NewStore() *Store { return &Store{m: make(map[string]Decoration)} }

// Set records the decoration for a node identity. Empty decorations are not
// stored.
func (s *Store) Set(id string, d Decoration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Empty() {
		delete(s.m, id)
		return
	}
	s.m[id] = d
}

// Get returns the decoration for a node identity.
func (s *Store) Get(id string) (Decoration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.m[id]
	return d, ok
}

// Reset drops all entries; called when a new tree snapshot supersedes the
// previous one.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string]Decoration)
}

// Len returns the number of stored decorations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// For derives the decoration of a construct from its attributes.
func For(el *xmltree.Element) Decoration {
	if el == nil {
		return Decoration{}
	}
	badge, _ := OccurrenceBadge(el.Attr("", "minOccurs"), el.Attr("", "maxOccurs"))
	return Decoration{
		Badge:    badge,
		Nillable: el.Attr("", "nillable") == "true",
	}
}

// OccurrenceBadge maps minOccurs/maxOccurs attribute values onto a
// two-character badge. Per bound: "1" when unset or equal to the default, the literal value
// for any other finite bound, "∞" for unbounded. The badge is suppressed
// entirely (ok == false) when both attributes are absent or both equal their
// default of 1.
func OccurrenceBadge(minOccurs, maxOccurs string) (badge string, ok bool) {
	if (minOccurs == "" || minOccurs == "1") && (maxOccurs == "" || maxOccurs == "1") {
		return "", false
	}
	return boundChar(minOccurs) + boundChar(maxOccurs), true
}

func boundChar(v string) string {
	switch v {
	case "", "1":
		return "1"
	case "unbounded":
		return "∞"
	default:
		return v
	}
}

// NodeID builds the deterministic identity decorations are keyed by: the
// slugified locator plus the node's positional ordinal among its siblings.
// Identical trees therefore yield identical identities run over run.
func NodeID(locator string, ordinal int) string {
	return slugify(locator) + "#" + strconv.Itoa(ordinal)
}

// slugify normalizes a locator for use in identities: ASCII word characters,
// dots, underscores and dashes are kept, every other run of characters
// collapses to a single dash.
func slugify(s string) string {
	if s == "" {
		return "node"
	}
	var b strings.Builder
	b.Grow(len(s))
	lastDash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-' {
			b.WriteByte(c)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "node"
	}
	return out
}
