package tree

import (
	"aqwari.net/xml/xmltree"
	"github.com/charmbracelet/log"

	"xsd-navigator/internal/decoration"
	"xsd-navigator/internal/document"
	"xsd-navigator/internal/locator"
	"xsd-navigator/internal/query"
	"xsd-navigator/internal/typeres"
)

// groupLocals are the model-group constructs the builder understands.
// sequence and all are transparent (their members are promoted); choice is
// opaque (it becomes a synthetic marker node).
var groupLocals = map[string]bool{"sequence": true, "choice": true, "all": true}

// Builder computes tree nodes over one loaded schema family. It is purely
// read-only over the family; concurrently usable once constructed.
type Builder struct {
	set *document.Set
	res *typeres.Resolver
	dec *decoration.Store
	log *log.Logger
}

// NewBuilder creates a Builder. The decoration store is handed in by the
// owner; node decorations are published into it as nodes are created.
func NewBuilder(set *document.Set, res *typeres.Resolver, dec *decoration.Store, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{set: set, res: res, dec: dec, log: logger}
}

// Roots returns one node per element declaration directly under the root
// document's schema element. Imported documents contribute definitions, not
// roots.
func (b *Builder) Roots() []*Node {
	root := b.set.Root
	var out []*Node
	for i := range root.Root.Children {
		child := &root.Root.Children[i]
		if child.Name.Local == "element" {
			out = append(out, b.elementNode(root, child))
		}
	}
	return b.finalize(out)
}

// Children computes the child nodes of n. The result is assembled from the
// applicable branches in fixed order and never deduplicated:
//
//  1. an inline complexType expansion, when it yields members;
//  2. else enumeration leaves, when the declared type is an enumeration;
//  3. else the named complexType expansion;
//  4. always, the construct's own direct members (elements, choice markers,
//     transparently flattened sequence/all groups).
func (b *Builder) Children(n *Node) []*Node {
	if n == nil || n.el == nil || n.Kind == KindEnumerationValue {
		return nil
	}
	if n.Kind == KindChoiceGroup {
		return b.finalize(b.scanMembers(n.Doc, n.el))
	}

	var out []*Node
	if inline := directChild(n.el, "complexType"); inline != nil {
		out = b.typeChildren(n.Doc, inline, map[string]bool{})
	}
	if len(out) == 0 {
		switch {
		case n.TypeRef != "" && b.res.IsEnumerationType(n.TypeRef):
			out = b.enumLeaves(n.TypeRef)
		case n.TypeRef != "":
			if ct, doc := b.findGlobal("complexType", typeres.LocalPart(n.TypeRef)); ct != nil {
				out = b.typeChildren(doc, ct, map[string]bool{})
			}
		}
	}
	out = append(out, b.scanMembers(n.Doc, n.el)...)
	return b.finalize(out)
}

// typeChildren expands a complexType's members in fixed order: inherited
// members of the extension base first, then the extension's own grouped
// members, then the type's own grouped members, then ungrouped direct
// element children. No cross-pass merging.
func (b *Builder) typeChildren(doc *document.SchemaDocument, ct *xmltree.Element, seen map[string]bool) []*Node {
	var out []*Node

	if ext := extensionOf(ct); ext != nil {
		if base := typeres.LocalPart(ext.Attr("", "base")); base != "" && !seen[base] {
			seen[base] = true
			if bct, bdoc := b.findGlobal("complexType", base); bct != nil {
				out = append(out, b.typeChildren(bdoc, bct, seen)...)
			}
		}
		out = append(out, b.groupedMembers(doc, ext)...)
	}
	out = append(out, b.groupedMembers(doc, ct)...)
	for i := range ct.Children {
		child := &ct.Children[i]
		if child.Name.Local == "element" {
			out = append(out, b.elementNode(doc, child))
		}
	}
	return out
}

// groupedMembers yields the members reachable through a container's direct
// model groups: sequence/all contents are promoted, each direct choice
// becomes one marker node.
func (b *Builder) groupedMembers(doc *document.SchemaDocument, container *xmltree.Element) []*Node {
	var out []*Node
	for i := range container.Children {
		child := &container.Children[i]
		switch child.Name.Local {
		case "sequence", "all":
			out = append(out, b.scanMembers(doc, child)...)
		case "choice":
			out = append(out, b.choiceNode(doc, child))
		}
	}
	return out
}

// scanMembers scans a construct's direct children: element declarations
// become nodes, choice groups become markers, sequence/all groups are
// flattened into the current level.
func (b *Builder) scanMembers(doc *document.SchemaDocument, el *xmltree.Element) []*Node {
	var out []*Node
	for i := range el.Children {
		child := &el.Children[i]
		switch child.Name.Local {
		case "element":
			out = append(out, b.elementNode(doc, child))
		case "choice":
			out = append(out, b.choiceNode(doc, child))
		case "sequence", "all":
			out = append(out, b.scanMembers(doc, child)...)
		}
	}
	return out
}

// enumLeaves yields one terminal node per enumeration value of the named
// simpleType.
func (b *Builder) enumLeaves(typeRef string) []*Node {
	st, doc := b.findGlobal("simpleType", typeres.LocalPart(typeRef))
	if st == nil {
		return nil
	}
	restriction := directChild(st, "restriction")
	if restriction == nil {
		return nil
	}
	var out []*Node
	for i := range restriction.Children {
		child := &restriction.Children[i]
		if child.Name.Local != "enumeration" {
			continue
		}
		out = append(out, &Node{
			Name:    child.Attr("", "value"),
			Kind:    KindEnumerationValue,
			Doc:     doc,
			Locator: locator.Generate(doc, child),
			el:      child,
		})
	}
	return out
}

// elementNode wraps one element declaration.
func (b *Builder) elementNode(doc *document.SchemaDocument, el *xmltree.Element) *Node {
	name := el.Attr("", "name")
	if name == "" {
		name = el.Attr("", "ref")
	}
	typeRef := el.Attr("", "type")

	baseType := ""
	if typeRef != "" {
		if base, err := b.res.ResolveBaseType(typeRef); err == nil {
			baseType = base
		} else {
			b.log.Warn("base type resolution failed", "type", typeRef, "err", err)
		}
	}

	return &Node{
		Name:        name,
		TypeRef:     typeRef,
		BaseType:    baseType,
		HasChildren: b.expandable(el, typeRef),
		Kind:        b.kindFor(el, typeRef),
		Doc:         doc,
		Locator:     locator.Generate(doc, el),
		el:          el,
	}
}

// choiceNode wraps a choice group in a synthetic marker node. The marker is
// expandable iff the group directly contains at least one element
// declaration; nested choices do not count.
func (b *Builder) choiceNode(doc *document.SchemaDocument, el *xmltree.Element) *Node {
	return &Node{
		Name:        choiceLabel,
		HasChildren: directChild(el, "element") != nil,
		Kind:        KindChoiceGroup,
		Doc:         doc,
		Locator:     locator.Generate(doc, el),
		el:          el,
	}
}

// expandable decides HasChildren once, at node creation. True when any
// holds: the declared type names a complexType with member elements
// (directly or through inheritance); the construct carries an inline
// complexType or nested groups with an element; the declared type names a
// complexType that uses extension; the declared type is an enumeration.
func (b *Builder) expandable(el *xmltree.Element, typeRef string) bool {
	var named *xmltree.Element
	if typeRef != "" {
		named, _ = b.findGlobal("complexType", typeres.LocalPart(typeRef))
	}
	if named != nil && b.typeHasElements(named, map[string]bool{}) {
		return true
	}
	if directChild(el, "complexType") != nil || groupsHaveElement(el) {
		return true
	}
	if named != nil && extensionOf(named) != nil {
		return true
	}
	return typeRef != "" && b.res.IsEnumerationType(typeRef)
}

// typeHasElements reports whether a complexType's groups contain an element,
// directly or through its extension base chain.
func (b *Builder) typeHasElements(ct *xmltree.Element, seen map[string]bool) bool {
	if groupsHaveElement(ct) {
		return true
	}
	ext := extensionOf(ct)
	if ext == nil {
		return false
	}
	if groupsHaveElement(ext) {
		return true
	}
	base := typeres.LocalPart(ext.Attr("", "base"))
	if base == "" || seen[base] {
		return false
	}
	seen[base] = true
	bct, _ := b.findGlobal("complexType", base)
	return bct != nil && b.typeHasElements(bct, seen)
}

// kindFor selects the icon category of an element declaration.
func (b *Builder) kindFor(el *xmltree.Element, typeRef string) Kind {
	switch el.Name.Local {
	case "attribute":
		return KindAttribute
	case "complexType", "simpleType":
		return KindTypeDefinition
	}
	if typeRef != "" && b.res.IsEnumerationType(typeRef) {
		return KindEnumerationKind
	}
	if directChild(el, "complexType") != nil {
		return KindElement
	}
	if typeRef != "" {
		if ct, _ := b.findGlobal("complexType", typeres.LocalPart(typeRef)); ct != nil {
			return KindElement
		}
		if _, builtin := typeres.Builtin(typeres.LocalPart(typeRef)); builtin {
			return KindField
		}
		if b.res.Category(typeRef) != typeres.CategoryNone {
			return KindField
		}
	}
	return KindDefault
}

// finalize assigns deterministic identities (locator slug + sibling ordinal)
// and publishes decorations for a freshly computed sibling list.
func (b *Builder) finalize(nodes []*Node) []*Node {
	for i, n := range nodes {
		n.ID = decoration.NodeID(n.Locator, i)
		if b.dec != nil {
			b.dec.Set(n.ID, decoration.For(n.el))
		}
	}
	return nodes
}

// findGlobal looks a named definition up by local name across the family,
// root document first, imports in binding order.
func (b *Builder) findGlobal(local, name string) (*xmltree.Element, *document.SchemaDocument) {
	if name == "" {
		return nil, nil
	}
	expr := query.New(query.Desc(local, query.AttrPred{Name: "name", Value: name}))
	for _, doc := range b.set.Documents() {
		if hits := expr.Select(doc.Root); len(hits) > 0 {
			return hits[0], doc
		}
	}
	return nil, nil
}

// extensionOf returns the extension element of a complexType's
// complexContent or simpleContent, if any.
func extensionOf(ct *xmltree.Element) *xmltree.Element {
	for _, content := range []string{"complexContent", "simpleContent"} {
		if c := directChild(ct, content); c != nil {
			if ext := directChild(c, "extension"); ext != nil {
				return ext
			}
		}
	}
	return nil
}

// groupsHaveElement reports whether any direct model group of the container
// holds an element declaration at any nesting depth.
func groupsHaveElement(container *xmltree.Element) bool {
	for i := range container.Children {
		child := &container.Children[i]
		if groupLocals[child.Name.Local] && hasElementDescendant(child) {
			return true
		}
	}
	return false
}

func hasElementDescendant(group *xmltree.Element) bool {
	for i := range group.Children {
		child := &group.Children[i]
		if child.Name.Local == "element" {
			return true
		}
		if groupLocals[child.Name.Local] && hasElementDescendant(child) {
			return true
		}
	}
	return false
}

func directChild(el *xmltree.Element, local string) *xmltree.Element {
	for i := range el.Children {
		if el.Children[i].Name.Local == local {
			return &el.Children[i]
		}
	}
	return nil
}
