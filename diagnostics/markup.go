package diagnostics

import "strings"

// MarkupLine is one line of the validated document with the notes of every
// finding located on it.
type MarkupLine struct {
	Number int
	Text   string
	Notes  []string
}

// Markup is a line-indexed copy of the validated document.
type Markup struct {
	lines []MarkupLine
}

// NewMarkup splits text into lines, normalising CRLF and CR line endings.
func NewMarkup(text string) *Markup {
	norm := strings.ReplaceAll(text, "\r\n", "\n")
	norm = strings.ReplaceAll(norm, "\r", "\n")
	parts := strings.Split(norm, "\n")
	m := &Markup{lines: make([]MarkupLine, len(parts))}
	for i, p := range parts {
		m.lines[i] = MarkupLine{Number: i + 1, Text: p}
	}
	return m
}

// Line returns the 1-based line n.
func (m *Markup) Line(n int) (MarkupLine, bool) {
	if m == nil || n <= 0 || n > len(m.lines) {
		return MarkupLine{}, false
	}
	return m.lines[n-1], true
}

// Attach adds note to line n. Lines outside the document are ignored.
func (m *Markup) Attach(n int, note string) bool {
	if m == nil || n <= 0 || n > len(m.lines) {
		return false
	}
	m.lines[n-1].Notes = append(m.lines[n-1].Notes, note)
	return true
}

func (m *Markup) Len() int {
	if m == nil {
		return 0
	}
	return len(m.lines)
}

// Lines returns every line, annotated or not.
func (m *Markup) Lines() []MarkupLine {
	if m == nil {
		return nil
	}
	return append([]MarkupLine(nil), m.lines...)
}

// Annotated returns only the lines carrying at least one note.
func (m *Markup) Annotated() []MarkupLine {
	var out []MarkupLine
	if m == nil {
		return out
	}
	for _, l := range m.lines {
		if len(l.Notes) > 0 {
			out = append(out, l)
		}
	}
	return out
}
