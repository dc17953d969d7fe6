package dom

import (
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

const indentUnit = "  "

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// writeElement appends the indented rendering of el to lines.
func writeElement(lines *[]string, el xmldom.Element, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	var open strings.Builder
	open.WriteString("<")
	open.WriteString(string(el.TagName()))
	if attrs := el.Attributes(); attrs != nil {
		for i := uint(0); i < attrs.Length(); i++ {
			attr := attrs.Item(i)
			if attr == nil {
				continue
			}
			name, _ := AttrName(attr)
			open.WriteString(" ")
			open.WriteString(name)
			open.WriteString(`="`)
			open.WriteString(attrEscaper.Replace(string(attr.NodeValue())))
			open.WriteString(`"`)
		}
	}

	var elems []xmldom.Element
	var texts []string
	mixed := false
	nodes := el.ChildNodes()
	if nodes != nil {
		for i := uint(0); i < nodes.Length(); i++ {
			child := nodes.Item(i)
			if child == nil {
				continue
			}
			if ce, ok := child.(xmldom.Element); ok {
				elems = append(elems, ce)
				continue
			}
			if !isTextNode(child) {
				continue
			}
			if t := strings.TrimSpace(string(child.TextContent())); t != "" {
				texts = append(texts, t)
				if len(elems) > 0 {
					mixed = true
				}
			}
		}
	}

	tag := string(el.TagName())
	switch {
	case len(elems) == 0 && len(texts) == 0:
		*lines = append(*lines, indent+open.String()+"/>")
	case len(elems) == 0:
		*lines = append(*lines, indent+open.String()+">"+textEscaper.Replace(strings.Join(texts, " "))+"</"+tag+">")
	default:
		*lines = append(*lines, indent+open.String()+">")
		if !mixed {
			for _, t := range texts {
				*lines = append(*lines, indent+indentUnit+textEscaper.Replace(t))
			}
		}
		for _, ce := range elems {
			writeElement(lines, ce, depth+1)
		}
		if mixed {
			for _, t := range texts {
				*lines = append(*lines, indent+indentUnit+textEscaper.Replace(t))
			}
		}
		*lines = append(*lines, indent+"</"+tag+">")
	}
}

func isTextNode(n xmldom.Node) bool {
	switch string(n.NodeName()) {
	case "#text", "#cdata-section":
		return true
	}
	return false
}

func truncateLines(lines []string, maxLines int) string {
	if maxLines > 0 && len(lines) > maxLines {
		lines = append(lines[:maxLines:maxLines], "...")
	}
	return strings.Join(lines, "\n")
}
