// Package tree computes the navigable component tree of a loaded schema
// family. Nodes are produced lazily: roots on demand, children only for the
// node actually expanded, never eagerly for the whole schema. Every node is
// immutable after creation and regenerated per tree query.
package tree

import (
	"aqwari.net/xml/xmltree"

	"xsd-navigator/internal/document"
)

// Kind is the icon category tag of a node, consumed by the UI layer.
type Kind string

const (
	KindTypeDefinition   Kind = "type-definition"
	KindEnumerationKind  Kind = "enumeration-kind"
	KindField            Kind = "field"
	KindElement          Kind = "element"
	KindChoiceGroup      Kind = "choice-group"
	KindAttribute        Kind = "attribute"
	KindEnumerationValue Kind = "enumeration-value"
	KindDefault          Kind = "default"
)

// Node is one view entity of the tree: a wrapper over an element
// declaration, a choice group, or an enumeration value.
type Node struct {
	// Name is the display name: the element's name (or ref), the literal
	// value for enumeration leaves, or the synthetic choice label.
	Name string
	// TypeRef is the declared type reference as written, "" when absent.
	TypeRef string
	// BaseType is the resolved ultimate built-in base of TypeRef, "" when
	// there is no declared type or resolution failed.
	BaseType string
	// HasChildren is the expandability flag, fixed at creation.
	HasChildren bool
	// Kind selects the icon category.
	Kind Kind
	// Doc is the document owning the underlying construct.
	Doc *document.SchemaDocument
	// Locator is the structural address of the underlying construct.
	Locator string
	// ID is the deterministic identity decorations are keyed by.
	ID string

	el *xmltree.Element
}

// Element exposes the underlying construct.
func (n *Node) Element() *xmltree.Element { return n.el }

// TypeDescription renders the human-readable type column: the declared
// reference, suffixed with the resolved base when it adds information.
func (n *Node) TypeDescription() string {
	if n.TypeRef == "" {
		return ""
	}
	if n.BaseType == "" || n.BaseType == n.TypeRef {
		return n.TypeRef
	}
	return n.TypeRef + " (" + n.BaseType + ")"
}

// choiceLabel is the display name of synthetic choice marker nodes.
const choiceLabel = "choice"
