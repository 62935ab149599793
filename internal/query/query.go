// Package query evaluates namespace-agnostic structural queries over parsed
// schema documents. It is a purpose-built matcher, not an XPath engine:
// expressions are chains of descendant steps, each a local element name plus
// optional attribute-equality predicates.
//
// Expression syntax:
//
//	//element
//	//simpleType[@name='StatusEnum']
//	//simpleType[@name='StatusEnum']//enumeration[@value='NEW']
//
// Matching ignores namespaces entirely: only the unprefixed local name of an
// element is compared, so the prefix convention of the source document never
// affects results.
//
// Design goals:
//   - Deterministic document order for all result sequences.
//   - Total evaluation: a query over any tree yields a (possibly empty) slice,
//     never a failure.
//   - Uniform evaluation across a whole document family (root first, imports
//     in binding registration order).
package query

import (
	"fmt"
	"regexp"
	"strings"

	"aqwari.net/xml/xmltree"
)

// AttrPred is an attribute-equality predicate on a step, e.g. [@name='Order'].
type AttrPred struct {
	Name  string
	Value string
}

// Step matches descendant elements by local name, narrowed by predicates.
type Step struct {
	Local string
	Preds []AttrPred
}

// Expr is a parsed expression: one or more descendant steps applied in order.
type Expr struct {
	Steps []Step
}

var (
	reStep = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.\-]*)((?:\[@[A-Za-z_][A-Za-z0-9_.\-]*='[^']*'\])*)$`)
	rePred = regexp.MustCompile(`\[@([A-Za-z_][A-Za-z0-9_.\-]*)='([^']*)'\]`)
)

// ParseExpr parses the textual form of an expression. Every string produced
// by Expr.String round-trips through ParseExpr.
func ParseExpr(s string) (Expr, error) {
	if !strings.HasPrefix(s, "//") {
		return Expr{}, fmt.Errorf("query: expression must start with //: %q", s)
	}
	var e Expr
	for _, part := range strings.Split(s[2:], "//") {
		m := reStep.FindStringSubmatch(part)
		if m == nil {
			return Expr{}, fmt.Errorf("query: malformed step %q in %q", part, s)
		}
		st := Step{Local: m[1]}
		for _, pm := range rePred.FindAllStringSubmatch(m[2], -1) {
			st.Preds = append(st.Preds, AttrPred{Name: pm[1], Value: pm[2]})
		}
		e.Steps = append(e.Steps, st)
	}
	return e, nil
}

// Desc builds a single descendant step; useful for assembling expressions in
// code without going through the textual form.
func Desc(local string, preds ...AttrPred) Step {
	return Step{Local: local, Preds: preds}
}

// New assembles an expression from steps.
func New(steps ...Step) Expr { return Expr{Steps: steps} }

// String renders the canonical textual form of the expression.
func (e Expr) String() string {
	var b strings.Builder
	for _, st := range e.Steps {
		b.WriteString("//")
		b.WriteString(st.Local)
		for _, p := range st.Preds {
			fmt.Fprintf(&b, "[@%s='%s']", p.Name, p.Value)
		}
	}
	return b.String()
}

// Select evaluates the expression against one scope element and returns all
// matches in document order. A nil scope or an empty expression yields an
// empty result.
func (e Expr) Select(scope *xmltree.Element) []*xmltree.Element {
	if scope == nil || len(e.Steps) == 0 {
		return nil
	}
	contexts := []*xmltree.Element{scope}
	for _, st := range e.Steps {
		var next []*xmltree.Element
		seen := make(map[*xmltree.Element]struct{})
		for _, ctx := range contexts {
			collectDescendants(ctx, st, seen, &next)
		}
		if len(next) == 0 {
			return nil
		}
		contexts = next
	}
	return contexts
}

// SelectAcross evaluates the expression against each scope in turn and
// concatenates the results. Callers pass the root document's element first,
// then imported documents in binding registration order.
func (e Expr) SelectAcross(scopes ...*xmltree.Element) []*xmltree.Element {
	var out []*xmltree.Element
	for _, scope := range scopes {
		out = append(out, e.Select(scope)...)
	}
	return out
}

// SelectString is the tolerant entry point for textual expressions: a parse
// failure is treated as an empty result, matching the engine's "never fail"
// contract for internally generated queries.
func SelectString(s string, scope *xmltree.Element) []*xmltree.Element {
	e, err := ParseExpr(s)
	if err != nil {
		return nil
	}
	return e.Select(scope)
}

// collectDescendants walks the subtree below ctx (excluding ctx itself) in
// document order, appending every element matching the step.
func collectDescendants(ctx *xmltree.Element, st Step, seen map[*xmltree.Element]struct{}, out *[]*xmltree.Element) {
	for i := range ctx.Children {
		child := &ctx.Children[i]
		if matches(child, st) {
			if _, dup := seen[child]; !dup {
				seen[child] = struct{}{}
				*out = append(*out, child)
			}
		}
		collectDescendants(child, st, seen, out)
	}
}

func matches(el *xmltree.Element, st Step) bool {
	if el.Name.Local != st.Local {
		return false
	}
	for _, p := range st.Preds {
		if el.Attr("", p.Name) != p.Value {
			return false
		}
	}
	return true
}
