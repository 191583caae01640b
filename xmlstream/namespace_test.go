package xmlstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceStack_XMLPrefixAlwaysResolves(t *testing.T) {
	ns := NewNamespaceStack()
	uri, ok := ns.Resolve("xml")
	require.True(t, ok)
	assert.Equal(t, XMLNamespaceURI, uri)
}

func TestNamespaceStack_BindAndResolve(t *testing.T) {
	ns := NewNamespaceStack()
	ns.PushFrame()
	require.NoError(t, ns.Bind("a", "urn:a"))
	uri, ok := ns.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, "urn:a", uri)
}

func TestNamespaceStack_NestedScopesShadowAndRestore(t *testing.T) {
	ns := NewNamespaceStack()
	ns.PushFrame()
	require.NoError(t, ns.Bind("a", "urn:outer"))

	ns.PushFrame()
	require.NoError(t, ns.Bind("a", "urn:inner"))
	uri, _ := ns.Resolve("a")
	assert.Equal(t, "urn:inner", uri)
	ns.PopFrame()

	uri, _ = ns.Resolve("a")
	assert.Equal(t, "urn:outer", uri)
}

func TestNamespaceStack_UnboundPrefixNotFound(t *testing.T) {
	ns := NewNamespaceStack()
	ns.PushFrame()
	_, ok := ns.Resolve("never-bound")
	assert.False(t, ok)
}

func TestNamespaceStack_CannotRebindXMLPrefix(t *testing.T) {
	ns := NewNamespaceStack()
	ns.PushFrame()
	err := ns.Bind("xml", "urn:wrong")
	require.Error(t, err)
	xerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrReservedPrefixRebound, xerr.Kind)
}

func TestNamespaceStack_CannotDeclareXMLNSAsAPrefix(t *testing.T) {
	ns := NewNamespaceStack()
	ns.PushFrame()
	err := ns.Bind("xmlns", "urn:whatever")
	require.Error(t, err)
	xerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrXmlnsAsPrefix, xerr.Kind)
}

func TestNamespaceStack_EmptyURIWithPrefixIsAnError(t *testing.T) {
	ns := NewNamespaceStack()
	ns.PushFrame()
	err := ns.Bind("p", "")
	require.Error(t, err)
}

func TestNamespaceStack_BindingsOnTopFrameAreInDeclarationOrder(t *testing.T) {
	ns := NewNamespaceStack()
	ns.PushFrame()
	require.NoError(t, ns.Bind("b", "urn:b"))
	require.NoError(t, ns.Bind("a", "urn:a"))
	require.NoError(t, ns.Bind("", "urn:default"))

	bindings := ns.BindingsOnTopFrame()
	require.Len(t, bindings, 3)
	assert.Equal(t, "b", bindings[0].Prefix)
	assert.Equal(t, "a", bindings[1].Prefix)
	assert.Equal(t, "", bindings[2].Prefix)
}

func TestQualifiedName_EqualIgnoresPrefix(t *testing.T) {
	a := QualifiedName{Local: "x", Prefix: "a", URI: "urn:a"}
	b := QualifiedName{Local: "x", Prefix: "b", URI: "urn:a"}
	assert.True(t, a.Equal(b))

	c := QualifiedName{Local: "x", Prefix: "a", URI: "urn:other"}
	assert.False(t, a.Equal(c))
}
