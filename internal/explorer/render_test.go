package explorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsd-navigator/internal/workspace"
)

func TestRenderFullTree(t *testing.T) {
	p, _ := newProvider(t)
	snap := recompute(t, p)

	got := Render(snap, RenderOptions{MaxDepth: -1, Decorations: true})
	want := strings.Join([]string{
		"[e] Order : OrderType",
		"  [f] Id : xs:string (string)",
		"  [E] Status : lib:StatusEnum (string) [0∞]",
		"    [v] NEW",
		"    [v] DONE",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderDepthZeroIsRootsOnly(t *testing.T) {
	p, _ := newProvider(t)
	snap := recompute(t, p)

	got := Render(snap, RenderOptions{MaxDepth: 0})
	assert.Equal(t, "[e] Order : OrderType\n", got)
}

func TestRenderWithoutDecorations(t *testing.T) {
	p, _ := newProvider(t)
	snap := recompute(t, p)

	got := Render(snap, RenderOptions{MaxDepth: 1})
	assert.NotContains(t, got, "0∞")
	assert.Contains(t, got, "[E] Status : lib:StatusEnum (string)\n")
}

func TestRenderNillableHint(t *testing.T) {
	fs := workspace.NewMem(map[string]string{
		"/ws/root.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Box">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="Label" type="xs:string" nillable="true"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`,
	})
	p := NewProvider(fs, nil)
	snap, err := p.Recompute(Source{Path: "/ws/root.xsd"})
	require.NoError(t, err)

	got := Render(snap, RenderOptions{MaxDepth: -1, Decorations: true})
	assert.Contains(t, got, "  [f] Label : xs:string (string) nillable\n")
}

func TestRenderRecursiveTypeIsBounded(t *testing.T) {
	fs := workspace.NewMem(map[string]string{
		"/ws/root.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Node" type="NodeType"/>
  <xs:complexType name="NodeType">
    <xs:sequence>
      <xs:element name="Child" type="NodeType" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	})
	p := NewProvider(fs, nil)
	snap, err := p.Recompute(Source{Path: "/ws/root.xsd"})
	require.NoError(t, err)

	got := Render(snap, RenderOptions{MaxDepth: -1})
	lines := strings.Count(got, "\n")
	assert.LessOrEqual(t, lines, hardDepthLimit+2, "expansion stops at the hard depth cap")
	assert.Greater(t, lines, 10, "the recursive chain does expand")
}
