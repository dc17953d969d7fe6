package diagnostics

import (
	"strings"

	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
)

// SourceRef points a finding at the validated document: a bare line number,
// a tree node, or a literal fragment of text. Line numbers and fragments of
// node references are derived on demand.
type SourceRef struct {
	line    int
	node    dom.Node
	literal string
}

// AtLine refers to a 1-based line of the validated document.
func AtLine(line int) SourceRef {
	return SourceRef{line: line}
}

// AtNode refers to a tree node.
func AtNode(n dom.Node) SourceRef {
	return SourceRef{node: n}
}

// Literal refers to a literal fragment with no position.
func Literal(fragment string) SourceRef {
	return SourceRef{literal: fragment}
}

// LiteralAt refers to a literal fragment found at line.
func LiteralAt(line int, fragment string) SourceRef {
	return SourceRef{line: line, literal: fragment}
}

// IsZero reports whether r refers to nothing.
func (r SourceRef) IsZero() bool {
	return r.line == 0 && r.node == nil && r.literal == ""
}

// Node returns the referenced node, if any.
func (r SourceRef) Node() dom.Node {
	return r.node
}

// Line returns the referenced line, or 0 when none is known.
func (r SourceRef) Line() int {
	if r.node != nil {
		return r.node.Line()
	}
	return r.line
}

// Fragment renders the referenced text cut to maxLines lines.
func (r SourceRef) Fragment(maxLines int) string {
	if r.node != nil {
		return r.node.PrettyString(maxLines)
	}
	return truncate(r.literal, maxLines)
}

func truncate(text string, maxLines int) string {
	if maxLines <= 0 || text == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	return strings.Join(lines[:maxLines], "\n") + "\n..."
}
