package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0"?>
<ServiceList xmlns="urn:dvb:metadata:servicediscovery:2024" version="1">
  <Name xml:lang="en">Services</Name>
  <Service>
    <UniqueIdentifier>id1</UniqueIdentifier>
  </Service>
</ServiceList>`

func parse(t *testing.T, xml string) Node {
	t.Helper()
	doc, err := DecodeBytes([]byte(xml))
	require.NoError(t, err)
	root := Root(doc)
	require.NotNil(t, root)
	return root
}

func TestElement_Accessors(t *testing.T) {
	root := parse(t, sample)

	assert.Equal(t, "ServiceList", root.Name())
	assert.Nil(t, root.Parent())

	v, ok := root.Attribute("version")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = root.Attribute("missing")
	assert.False(t, ok)

	// namespace declarations are not attributes for validation purposes
	assert.Equal(t, []string{"version"}, root.AttributeNames())

	children := root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "Name", children[0].Name())
	assert.Equal(t, "Services", children[0].Text())
	assert.Equal(t, 3, children[0].Line())

	service := children[1]
	assert.Equal(t, "ServiceList", service.Parent().Name())
	assert.Equal(t, "ServiceList.Service", QualifiedName(service))
	assert.Equal(t, "ServiceList/Service/UniqueIdentifier", Path(service.Children()[0]))
}

func TestElement_PrettyString(t *testing.T) {
	root := parse(t, `<a><b x="1"/><c>text</c></a>`)

	assert.Equal(t, "<a>\n  <b x=\"1\"/>\n  <c>text</c>\n</a>", root.PrettyString(0))
	assert.Equal(t, "<a>\n  <b x=\"1\"/>\n...", root.PrettyString(2))
}

func TestWalk_SkipsChildren(t *testing.T) {
	root := parse(t, `<a><b><c/></b><d/></a>`)

	var visited []string
	Walk(root, func(n Node) bool {
		visited = append(visited, n.Name())
		return n.Name() != "b"
	})
	assert.Equal(t, []string{"a", "b", "d"}, visited)
	assert.Len(t, ChildrenNamed(root, "d"), 1)
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil))
	assert.Nil(t, Root(nil))
}

func TestElement_PrefixedAttributes(t *testing.T) {
	root := parse(t, `<ServiceList xmlns="urn:dvb:metadata:servicediscovery:2024"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xsi:schemaLocation="urn:dvb:metadata:servicediscovery:2024 sl.xsd"
    version="1">
  <Name xml:lang="en">Services</Name>
</ServiceList>`)

	assert.Equal(t, []string{"xsi:schemaLocation", "version"}, root.AttributeNames())
	v, ok := root.Attribute("xsi:schemaLocation")
	assert.True(t, ok)
	assert.Equal(t, "urn:dvb:metadata:servicediscovery:2024 sl.xsd", v)
	_, ok = root.Attribute("schemaLocation")
	assert.False(t, ok)
	_, ok = root.Attribute("xsi")
	assert.False(t, ok, "namespace declarations are not attributes")

	name := root.Children()[0]
	assert.Equal(t, []string{"xml:lang"}, name.AttributeNames())
	v, ok = name.Attribute("xml:lang")
	assert.True(t, ok)
	assert.Equal(t, "en", v)
	_, ok = name.Attribute("lang")
	assert.False(t, ok, "xml:lang is not lang")
}

func TestElement_PrettyStringKeepsPrefixes(t *testing.T) {
	root := parse(t, `<a xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><b xml:lang="en" xsi:type="T"/></a>`)

	b := root.Children()[0]
	assert.Equal(t, `<b xml:lang="en" xsi:type="T"/>`, b.PrettyString(0))
}
