package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsd-navigator/internal/decoration"
	"xsd-navigator/internal/document"
	"xsd-navigator/internal/typeres"
	"xsd-navigator/internal/workspace"
)

const orderFixture = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Order" type="OrderType"/>
  <xs:element name="Note" type="xs:string"/>
  <xs:complexType name="OrderType">
    <xs:sequence>
      <xs:element name="Id" type="xs:string"/>
      <xs:element name="Status" type="StatusEnum"/>
    </xs:sequence>
  </xs:complexType>
  <xs:simpleType name="StatusEnum">
    <xs:restriction base="xs:string">
      <xs:enumeration value="NEW"/>
      <xs:enumeration value="DONE"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`

const extensionFixture = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Thing" type="B"/>
  <xs:complexType name="A">
    <xs:sequence>
      <xs:element name="X" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="B">
    <xs:complexContent>
      <xs:extension base="A">
        <xs:sequence>
          <xs:element name="Y" type="xs:string"/>
        </xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`

const choiceFixture = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Payment">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="Amount" type="xs:decimal"/>
        <xs:choice>
          <xs:element name="Card" type="xs:string"/>
          <xs:element name="Cash" type="xs:string"/>
        </xs:choice>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`

func newBuilder(t *testing.T, root string, files map[string]string) *Builder {
	t.Helper()
	st := document.NewStore(workspace.NewMem(files), nil)
	set, _, err := st.LoadSet([]byte(root), "/ws/root.xsd")
	require.NoError(t, err)
	res := typeres.New(set, nil)
	return NewBuilder(set, res, decoration.NewStore(), nil)
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestRootsAreRootDocumentElementsOnly(t *testing.T) {
	root := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:import namespace="urn:lib" schemaLocation="lib.xsd"/>
  <xs:element name="Local" type="xs:string"/>
</xs:schema>`
	lib := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Imported" type="xs:string"/>
</xs:schema>`
	b := newBuilder(t, root, map[string]string{"/ws/lib.xsd": lib})

	roots := b.Roots()
	assert.Equal(t, []string{"Local"}, names(roots), "imported elements are definitions, not roots")
}

func TestOrderScenario(t *testing.T) {
	b := newBuilder(t, orderFixture, nil)

	roots := b.Roots()
	require.Equal(t, []string{"Order", "Note"}, names(roots))

	order := roots[0]
	assert.True(t, order.HasChildren)
	assert.Equal(t, KindElement, order.Kind)
	assert.Equal(t, "OrderType", order.TypeRef)

	kids := b.Children(order)
	require.Equal(t, []string{"Id", "Status"}, names(kids))

	id := kids[0]
	assert.False(t, id.HasChildren)
	assert.Equal(t, KindField, id.Kind)
	assert.Equal(t, "string", id.BaseType)
	assert.Empty(t, b.Children(id), "HasChildren false implies empty children")

	status := kids[1]
	assert.True(t, status.HasChildren)
	assert.Equal(t, KindEnumerationKind, status.Kind)
	assert.Equal(t, "string", status.BaseType)

	values := b.Children(status)
	require.Equal(t, []string{"NEW", "DONE"}, names(values))
	for _, v := range values {
		assert.Equal(t, KindEnumerationValue, v.Kind)
		assert.False(t, v.HasChildren)
		assert.Empty(t, b.Children(v))
		assert.NotEmpty(t, v.Locator)
	}
}

func TestExtensionInheritedMembersFirst(t *testing.T) {
	b := newBuilder(t, extensionFixture, nil)

	roots := b.Roots()
	require.Len(t, roots, 1)
	thing := roots[0]
	assert.True(t, thing.HasChildren)

	kids := b.Children(thing)
	assert.Equal(t, []string{"X", "Y"}, names(kids), "base members precede the extension's own")
}

func TestExtensionWithoutOwnMembersStillExpandable(t *testing.T) {
	root := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Thing" type="Derived"/>
  <xs:complexType name="Base">
    <xs:sequence>
      <xs:element name="Inherited" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="Derived">
    <xs:complexContent>
      <xs:extension base="Base"/>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`
	b := newBuilder(t, root, nil)

	thing := b.Roots()[0]
	assert.True(t, thing.HasChildren, "inherited members count even when the extension adds none")
	assert.Equal(t, []string{"Inherited"}, names(b.Children(thing)))
}

func TestChoiceBecomesSyntheticMarker(t *testing.T) {
	b := newBuilder(t, choiceFixture, nil)

	payment := b.Roots()[0]
	assert.True(t, payment.HasChildren)
	assert.Equal(t, KindElement, payment.Kind, "inline complexType")

	kids := b.Children(payment)
	require.Equal(t, []string{"Amount", "choice"}, names(kids))

	choice := kids[1]
	assert.Equal(t, KindChoiceGroup, choice.Kind)
	assert.True(t, choice.HasChildren)
	assert.Equal(t, []string{"Card", "Cash"}, names(b.Children(choice)))
}

func TestChoiceWithOnlyNestedChoicesIsNotExpandable(t *testing.T) {
	root := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Outer">
    <xs:complexType>
      <xs:choice>
        <xs:choice>
          <xs:element name="Deep" type="xs:string"/>
        </xs:choice>
      </xs:choice>
    </xs:complexType>
  </xs:element>
</xs:schema>`
	b := newBuilder(t, root, nil)

	outer := b.Roots()[0]
	kids := b.Children(outer)
	require.Equal(t, []string{"choice"}, names(kids))
	assert.False(t, kids[0].HasChildren, "nested choices do not count toward the flag")
}

func TestSequenceAndAllAreFlattened(t *testing.T) {
	root := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Wrap">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="A" type="xs:string"/>
        <xs:sequence>
          <xs:element name="B" type="xs:string"/>
        </xs:sequence>
        <xs:all>
          <xs:element name="C" type="xs:string"/>
        </xs:all>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`
	b := newBuilder(t, root, nil)

	wrap := b.Roots()[0]
	assert.Equal(t, []string{"A", "B", "C"}, names(b.Children(wrap)), "groups are transparent")
}

func TestOpaqueTypeLeaf(t *testing.T) {
	root := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Ref" type="ext:SomewhereElse"/>
</xs:schema>`
	b := newBuilder(t, root, nil)

	ref := b.Roots()[0]
	assert.False(t, ref.HasChildren)
	assert.Equal(t, KindDefault, ref.Kind)
	assert.Empty(t, b.Children(ref))
}

func TestNodeIDsAreDeterministic(t *testing.T) {
	first := newBuilder(t, orderFixture, nil)
	second := newBuilder(t, orderFixture, nil)

	a := first.Children(first.Roots()[0])
	b := second.Children(second.Roots()[0])
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID, "identical trees must yield identical identities")
	}
}

func TestTypeDescription(t *testing.T) {
	b := newBuilder(t, orderFixture, nil)
	kids := b.Children(b.Roots()[0])
	assert.Equal(t, "xs:string (string)", kids[0].TypeDescription())
	assert.Equal(t, "StatusEnum (string)", kids[1].TypeDescription())

	n := &Node{TypeRef: "xs:int", BaseType: "int"}
	assert.Equal(t, "xs:int (int)", n.TypeDescription())
	assert.Equal(t, "", (&Node{}).TypeDescription())
}
