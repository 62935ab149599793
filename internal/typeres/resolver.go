package typeres

import (
	"fmt"
	"strings"

	"aqwari.net/xml/xmltree"
	"github.com/charmbracelet/log"

	"xsd-navigator/internal/document"
	"xsd-navigator/internal/query"
)

// ErrCycle marks a self- or mutually-referential restriction chain.
var ErrCycle = fmt.Errorf("typeres: restriction cycle")

// Resolver answers type questions against one loaded schema family. It is
// read-only over the document set and safe for concurrent use.
type Resolver struct {
	set *document.Set
	log *log.Logger
}

// New creates a Resolver over a loaded family.
func New(set *document.Set, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{set: set, log: logger}
}

// LocalPart strips any namespace prefix from a type reference:
// "xs:string" -> "string", "OrderType" -> "OrderType".
func LocalPart(ref string) string {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// ResolveBaseType follows a type reference to its ultimate built-in base.
//
//   - A built-in primitive resolves to itself.
//   - A simpleType found anywhere in the family is followed through its
//     restriction base, recursively.
//   - A name with no matching definition is returned as-is: an opaque custom
//     type, not an error.
//   - A restriction cycle terminates with ErrCycle naming the offending type.
func (r *Resolver) ResolveBaseType(ref string) (string, error) {
	cur := LocalPart(ref)
	seen := map[string]struct{}{cur: {}}
	for {
		if _, ok := Builtin(cur); ok {
			return cur, nil
		}
		st := r.findSimpleType(cur)
		if st == nil {
			return cur, nil
		}
		restriction := directChild(st, "restriction")
		if restriction == nil {
			return cur, nil
		}
		base := LocalPart(restriction.Attr("", "base"))
		if base == "" {
			return cur, nil
		}
		if _, looped := seen[base]; looped {
			r.log.Warn("type restriction cycle", "type", base)
			return "", fmt.Errorf("%w involving %q", ErrCycle, base)
		}
		seen[base] = struct{}{}
		cur = base
	}
}

// Category resolves the reference and maps the result onto a built-in
// category; CategoryNone for opaque or cyclic types.
func (r *Resolver) Category(ref string) Category {
	base, err := r.ResolveBaseType(ref)
	if err != nil {
		return CategoryNone
	}
	c, _ := Builtin(base)
	return c
}

// IsEnumerationType reports whether the reference names a simpleType whose
// restriction carries at least one enumeration value. Built-in primitives
// are never enumerations.
func (r *Resolver) IsEnumerationType(ref string) bool {
	bare := LocalPart(ref)
	if _, ok := Builtin(bare); ok {
		return false
	}
	st := r.findSimpleType(bare)
	if st == nil {
		return false
	}
	restriction := directChild(st, "restriction")
	if restriction == nil {
		return false
	}
	return directChild(restriction, "enumeration") != nil
}

// FindSimpleType looks a simpleType definition up by bare name across the
// whole family, root document first.
func (r *Resolver) FindSimpleType(bare string) *xmltree.Element {
	return r.findSimpleType(bare)
}

// FindComplexType looks a complexType definition up by bare name across the
// whole family, root document first.
func (r *Resolver) FindComplexType(bare string) *xmltree.Element {
	return firstMatch(query.New(query.Desc("complexType", query.AttrPred{Name: "name", Value: bare})), r.set)
}

func (r *Resolver) findSimpleType(bare string) *xmltree.Element {
	return firstMatch(query.New(query.Desc("simpleType", query.AttrPred{Name: "name", Value: bare})), r.set)
}

func firstMatch(e query.Expr, set *document.Set) *xmltree.Element {
	if set == nil {
		return nil
	}
	if hits := e.SelectAcross(set.Scopes()...); len(hits) > 0 {
		return hits[0]
	}
	return nil
}

// directChild returns the first direct child with the given local name.
func directChild(el *xmltree.Element, local string) *xmltree.Element {
	for i := range el.Children {
		if el.Children[i].Name.Local == local {
			return &el.Children[i]
		}
	}
	return nil
}
