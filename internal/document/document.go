// Package document owns schema document loading: parsing raw text into a
// structural tree, classifying documents as XML Schema, resolving and loading
// the import/include family of a root document, and caching file-backed
// parses keyed by modification time.
//
// Design goals:
//   - Tolerant loading: a broken import never aborts the rest of the family;
//     failures are collected per occurrence into a Report.
//   - Deterministic binding order: imports are registered in directive order,
//     a later directive for the same namespace replaces the earlier binding
//     in place.
//   - Whole-entry cache replacement: a cache entry is swapped atomically, so
//     concurrent readers never observe a half-written parse.
package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"aqwari.net/xml/xmltree"
)

// XSDNamespace is the canonical XML Schema namespace URI.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// SchemaDocument is the parsed structural tree of one source text together
// with its identity. Path is empty for purely in-memory origins; ModTime is
// meaningful for file sources only.
type SchemaDocument struct {
	Root    *xmltree.Element
	Raw     []byte
	Path    string
	ModTime time.Time
}

// InMemory reports whether the document has no file backing.
func (d *SchemaDocument) InMemory() bool { return d.Path == "" }

// Parse turns raw schema text into a SchemaDocument without any file
// identity attached.
func Parse(raw []byte) (*SchemaDocument, error) {
	root, err := xmltree.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	return &SchemaDocument{Root: root, Raw: raw}, nil
}

// Classify reports whether the text parses and its root construct is an XML
// Schema: the root local name is "schema" (any prefix, case-insensitive) and
// either the root namespace is the canonical schema namespace or an
// xmlns:xs / xmlns:xsd binding is declared on the root.
func Classify(raw []byte) bool {
	doc, err := Parse(raw)
	if err != nil {
		return false
	}
	return IsSchema(doc)
}

// IsSchema applies the classification rule to an already-parsed document.
func IsSchema(doc *SchemaDocument) bool {
	if doc == nil || doc.Root == nil {
		return false
	}
	root := doc.Root
	if !strings.EqualFold(root.Name.Local, "schema") {
		return false
	}
	if root.Name.Space == XSDNamespace {
		return true
	}
	for _, a := range root.StartElement.Attr {
		if a.Name.Space == "xmlns" && (a.Name.Local == "xs" || a.Name.Local == "xsd") {
			return true
		}
	}
	return false
}

// LineOf returns the 1-based line on which the given element's start tag
// begins within this document, or 0 when the element cannot be located.
//
// The structural tree carries no source offsets, so the element is located
// by ordinal: its position among same-local-name elements in document order
// is counted in the tree, then the raw bytes are re-tokenized until the
// start element with that ordinal is reached.
func (d *SchemaDocument) LineOf(el *xmltree.Element) int {
	if d == nil || el == nil {
		return 0
	}
	ordinal := -1
	n := 0
	var walk func(e *xmltree.Element)
	walk = func(e *xmltree.Element) {
		if ordinal >= 0 {
			return
		}
		if e.Name.Local == el.Name.Local {
			if e == el {
				ordinal = n
				return
			}
			n++
		}
		for i := range e.Children {
			walk(&e.Children[i])
		}
	}
	walk(d.Root)
	if ordinal < 0 {
		return 0
	}

	dec := xml.NewDecoder(bytes.NewReader(d.Raw))
	seen := 0
	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return 0
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == el.Name.Local {
			if seen == ordinal {
				return 1 + bytes.Count(d.Raw[:off], []byte("\n"))
			}
			seen++
		}
	}
}
