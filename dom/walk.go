package dom

import "strings"

// Walk visits n and its descendants depth-first in document order. When fn
// returns false the children of the visited node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, fn)
	}
}

// QualifiedName returns "parent.element", or just the element name at the root.
func QualifiedName(n Node) string {
	if n == nil {
		return ""
	}
	if p := n.Parent(); p != nil {
		return p.Name() + "." + n.Name()
	}
	return n.Name()
}

// Path returns the slash separated element path from the document element,
// e.g. "ServiceList/Service/ServiceName".
func Path(n Node) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent() {
		parts = append(parts, cur.Name())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// ChildrenNamed returns the direct children of n with the given name.
func ChildrenNamed(n Node, name string) []Node {
	var out []Node
	for _, child := range n.Children() {
		if child.Name() == name {
			out = append(out, child)
		}
	}
	return out
}
