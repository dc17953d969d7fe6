// Package dom defines the read-only tree view the validation engine works on
// and adapts go-xmldom documents to it.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// Node is the capability set every checker relies on. Implementations must be
// safe to read concurrently; nothing in this module mutates a Node.
type Node interface {
	// Name returns the local name of the element.
	Name() string
	// Attribute returns the value of the named attribute and whether it is present.
	Attribute(name string) (string, bool)
	// AttributeNames lists the attributes present on the element, namespace
	// declarations excluded, in document order.
	AttributeNames() []string
	// Children returns the child elements (text and comments are skipped).
	Children() []Node
	// Line is the 1-based source line of the start tag, or 0 when unknown.
	Line() int
	// Text returns the concatenated text content.
	Text() string
	// PrettyString renders the element as indented XML, cut to maxLines
	// lines when maxLines > 0.
	PrettyString(maxLines int) string
	// Parent returns the enclosing element, or nil for the document element.
	Parent() Node
}

// Namespaces whose attributes are addressed by their conventional prefix.
const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

var prefixNamespaces = map[string]string{
	"xml": XMLNamespace,
	"xsi": XSINamespace,
}

type element struct {
	el xmldom.Element
}

var _ Node = (*element)(nil)

// Wrap adapts an xmldom element. A nil element yields a nil Node.
func Wrap(el xmldom.Element) Node {
	if el == nil {
		return nil
	}
	return &element{el: el}
}

// Root returns the document element of doc as a Node.
func Root(doc xmldom.Document) Node {
	if doc == nil {
		return nil
	}
	return Wrap(doc.DocumentElement())
}

// Decode parses an XML document from r.
func Decode(r io.Reader) (xmldom.Document, error) {
	doc, err := xmldom.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return doc, nil
}

// DecodeBytes parses an XML document held in memory.
func DecodeBytes(data []byte) (xmldom.Document, error) {
	doc, err := xmldom.NewDecoderFromBytes(data).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return doc, nil
}

// Unwrap returns the xmldom element behind n, if n came from Wrap.
func Unwrap(n Node) (xmldom.Element, bool) {
	e, ok := n.(*element)
	if !ok {
		return nil, false
	}
	return e.el, true
}

func (e *element) Name() string {
	if name := string(e.el.LocalName()); name != "" {
		return name
	}
	return string(e.el.TagName())
}

func (e *element) Attribute(name string) (string, bool) {
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		if ns, known := prefixNamespaces[prefix]; known {
			if e.el.HasAttributeNS(xmldom.DOMString(ns), xmldom.DOMString(local)) {
				return string(e.el.GetAttributeNS(xmldom.DOMString(ns), xmldom.DOMString(local))), true
			}
		}
	}
	attrs := e.el.Attributes()
	if attrs == nil {
		return "", false
	}
	for i := uint(0); i < attrs.Length(); i++ {
		attr := attrs.Item(i)
		if attr == nil {
			continue
		}
		if qname, decl := AttrName(attr); !decl && qname == name {
			return string(attr.NodeValue()), true
		}
	}
	return "", false
}

func (e *element) AttributeNames() []string {
	attrs := e.el.Attributes()
	if attrs == nil {
		return nil
	}
	names := make([]string, 0, attrs.Length())
	for i := uint(0); i < attrs.Length(); i++ {
		attr := attrs.Item(i)
		if attr == nil {
			continue
		}
		if qname, decl := AttrName(attr); !decl {
			names = append(names, qname)
		}
	}
	return names
}

// AttrName returns the prefixed name of an attribute node as written in the
// source ("xml:lang", "xsi:type", "xmlns:xsi") and whether it declares a
// namespace. The parser keeps only the local name and the namespace URI, so
// the conventional prefixes are restored from the namespace.
func AttrName(attr xmldom.Node) (string, bool) {
	name := string(attr.NodeName())
	ns := string(attr.NamespaceURI())
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		return name, prefix == "xmlns" || local == ""
	}
	switch ns {
	case "xmlns", XMLNSNamespace:
		if name == "xmlns" {
			return name, true
		}
		return "xmlns:" + name, true
	case XMLNamespace:
		return "xml:" + name, false
	case XSINamespace:
		return "xsi:" + name, false
	}
	if name == "xmlns" {
		return name, true
	}
	if prefix := string(attr.Prefix()); prefix != "" && ns != "" {
		return prefix + ":" + name, false
	}
	return name, false
}

func (e *element) Children() []Node {
	children := e.el.Children()
	if children == nil {
		return nil
	}
	out := make([]Node, 0, children.Length())
	for i := uint(0); i < children.Length(); i++ {
		if child := children.Item(i); child != nil {
			out = append(out, &element{el: child})
		}
	}
	return out
}

func (e *element) Line() int {
	line, _, _ := e.el.Position()
	return line
}

func (e *element) Text() string {
	return string(e.el.TextContent())
}

func (e *element) Parent() Node {
	parent := e.el.ParentNode()
	if parent == nil {
		return nil
	}
	if pe, ok := parent.(xmldom.Element); ok && pe != nil {
		return &element{el: pe}
	}
	return nil
}

func (e *element) PrettyString(maxLines int) string {
	var lines []string
	writeElement(&lines, e.el, 0)
	return truncateLines(lines, maxLines)
}
