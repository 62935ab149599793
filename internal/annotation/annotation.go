// Package annotation extracts human-readable documentation attached to a
// schema construct.
package annotation

import (
	"strings"

	"aqwari.net/xml/xmltree"
)

// Documentation returns the text of the construct's first annotation child:
// the concatenated content of all its documentation children, trimmed. The
// second result is false when the construct carries no annotation or the
// annotation holds no text.
func Documentation(el *xmltree.Element) (string, bool) {
	if el == nil {
		return "", false
	}
	var ann *xmltree.Element
	for i := range el.Children {
		if el.Children[i].Name.Local == "annotation" {
			ann = &el.Children[i]
			break
		}
	}
	if ann == nil {
		return "", false
	}
	var b strings.Builder
	for i := range ann.Children {
		if ann.Children[i].Name.Local == "documentation" {
			b.Write(ann.Children[i].Content)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", false
	}
	return text, true
}
