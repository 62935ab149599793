// Package locator generates and resolves structural addresses for schema
// constructs. An address is built from local names and name/value attribute
// values only, so it survives reformatting and is independent of namespace
// prefixes. Resolution runs over the whole loaded family, root document
// first, imports in binding order.
package locator

import (
	"aqwari.net/xml/xmltree"

	"xsd-navigator/internal/document"
	"xsd-navigator/internal/query"
)

// Generate builds a structural address for a construct inside doc.
//
// Enumeration values anchor at the nearest enclosing named simpleType plus a
// predicate on the literal value; without such an ancestor the address is an
// unanchored global match on the value (ambiguity accepted when the value is
// duplicated elsewhere).
//
// Any other construct anchors at its nearest named ancestor and ends with a
// step for the construct itself, narrowed by its own name attribute when it
// has one. With no named ancestor the address degrades to the unanchored
// final step.
func Generate(doc *document.SchemaDocument, target *xmltree.Element) string {
	if doc == nil || target == nil {
		return ""
	}
	chain := ancestry(doc.Root, target)

	if target.Name.Local == "enumeration" {
		value := target.Attr("", "value")
		enumStep := query.Desc("enumeration", query.AttrPred{Name: "value", Value: value})
		for i := len(chain) - 1; i >= 0; i-- {
			anc := chain[i]
			if anc.Name.Local == "simpleType" && anc.Attr("", "name") != "" {
				return query.New(
					query.Desc("simpleType", query.AttrPred{Name: "name", Value: anc.Attr("", "name")}),
					enumStep,
				).String()
			}
		}
		return query.New(enumStep).String()
	}

	final := query.Desc(target.Name.Local)
	if name := target.Attr("", "name"); name != "" {
		final.Preds = append(final.Preds, query.AttrPred{Name: "name", Value: name})
	}
	for i := len(chain) - 1; i >= 0; i-- {
		anc := chain[i]
		if anc == doc.Root {
			break
		}
		if name := anc.Attr("", "name"); name != "" {
			anchor := query.Desc(anc.Name.Local, query.AttrPred{Name: "name", Value: name})
			return query.New(anchor, final).String()
		}
	}
	return query.New(final).String()
}

// Resolve evaluates an address against the family and returns the first
// matching construct together with its owning document. The boolean is false
// when no document matches or the address does not parse.
func Resolve(path string, set *document.Set) (*xmltree.Element, *document.SchemaDocument, bool) {
	if set == nil {
		return nil, nil, false
	}
	expr, err := query.ParseExpr(path)
	if err != nil {
		return nil, nil, false
	}
	for _, doc := range set.Documents() {
		if hits := expr.Select(doc.Root); len(hits) > 0 {
			return hits[0], doc, true
		}
	}
	return nil, nil, false
}

// ancestry returns the chain of ancestors from just below the root down to
// the target's parent, or nil when the target is not in this tree. The root
// element itself is included as the first entry.
func ancestry(root, target *xmltree.Element) []*xmltree.Element {
	if root == target {
		return nil
	}
	var path []*xmltree.Element
	var walk func(e *xmltree.Element) bool
	walk = func(e *xmltree.Element) bool {
		for i := range e.Children {
			child := &e.Children[i]
			if child == target {
				path = append([]*xmltree.Element{e}, path...)
				return true
			}
			if walk(child) {
				path = append([]*xmltree.Element{e}, path...)
				return true
			}
		}
		return false
	}
	if !walk(root) {
		return nil
	}
	return path
}
