package validator

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
)

// PrettyReporter renders human-friendly diagnostics with code frames
// Inspired by rustc-style output

type PrettyReporter struct {
	w     io.Writer
	color bool

	contextBefore   int
	contextAfter    int
	showFullElement bool
	maxElementLines int // 0 = unlimited
}

// PrettyConfig configures PrettyReporter construction
// Zero values are treated as sensible defaults (e.g., 1 line of context)
type PrettyConfig struct {
	Color           bool
	ContextBefore   int
	ContextAfter    int
	ShowFullElement bool
	MaxElementLines int // 0 = unlimited
}

func NewPrettyReporter(w io.Writer, maybeCfg ...PrettyConfig) *PrettyReporter {
	// Default config if none provided
	cfg := PrettyConfig{
		ContextBefore:   1,
		ContextAfter:    1,
		ShowFullElement: true,
	}
	// If caller provided a config, use the last one (pattern: maybeConfig ...)
	for _, c := range maybeCfg {
		cfg = c
	}
	return &PrettyReporter{
		w:               w,
		color:           cfg.Color,
		contextBefore:   cfg.ContextBefore,
		contextAfter:    cfg.ContextAfter,
		showFullElement: cfg.ShowFullElement,
		maxElementLines: cfg.MaxElementLines,
	}
}

// Print renders every finding of sink. Code frames need the sink to hold
// the document text.
func (r *PrettyReporter) Print(sourceName string, sink *diagnostics.Sink) error {
	findings := SortedFindings(sink.All())
	if len(findings) == 0 {
		fmt.Fprintf(r.w, "%s: ok (no issues)\n", nonEmpty(sourceName, "<input>"))
		return nil
	}

	markup := sink.Markup()
	for _, f := range findings {
		refs := f.Locations()
		line := f.Line()
		head := fmt.Sprintf("%s: %s[%s] %s", locationString(sourceName, line), strings.ToUpper(string(f.Severity)), f.Code, f.Message)
		fmt.Fprintln(r.w, r.styleHeader(head, f.Severity))
		if line > 0 && markup != nil {
			r.printFrame(markup, line, tagOf(refs))
		} else if frag := f.Fragment(); frag != "" {
			for _, l := range strings.Split(frag, "\n") {
				fmt.Fprintf(r.w, "         | %s\n", l)
			}
		}
		for _, h := range f.Hints {
			fmt.Fprintln(r.w, r.styleHint("  hint: "+h))
		}
		// Further locations of a multi-element finding
		for _, l := range f.Lines()[min(1, len(f.Lines())):] {
			fmt.Fprintf(r.w, "  note: also here (%s)\n", locationString(sourceName, l))
			if text, ok := markup.Line(l); ok {
				prefix := fmt.Sprintf("  %6d | ", l)
				fmt.Fprintf(r.w, "%s%s\n", prefix, trimRight(text.Text))
			}
		}
		fmt.Fprintln(r.w)
	}

	// Summary
	fmt.Fprintf(r.w, "summary: %d error(s), %d warning(s), %d info, %d total\n",
		sink.ErrorCount()+sink.Count(diagnostics.SeverityFatal),
		sink.Count(diagnostics.SeverityWarning),
		sink.Count(diagnostics.SeverityInfo),
		len(findings))
	for _, sev := range diagnostics.Severities {
		sink.Counts(sev).Each(func(key string, n int) {
			fmt.Fprintf(r.w, "  %-8s %4d %s\n", sev, n, key)
		})
	}
	return nil
}

func (r *PrettyReporter) printFrame(src *diagnostics.Markup, line int, tag string) {
	start, end := line-r.contextBefore, line+r.contextAfter
	if start < 1 {
		start = 1
	}
	if r.showFullElement && tag != "" {
		open := findTagOpenLine(src, line, tag)
		end = findElementCloseLine(src, open, tag, r.maxElementLines)
		start = open
		if r.maxElementLines > 0 && end-start+1 > r.maxElementLines {
			end = start + r.maxElementLines - 1
		}
	}

	for ln := start; ln <= end; ln++ {
		text, ok := src.Line(ln)
		if !ok {
			break
		}
		prefix := fmt.Sprintf("  %6d | ", ln)
		fmt.Fprintf(r.w, "%s%s\n", prefix, trimRight(text.Text))
		if ln == line {
			trimmed := trimRight(text.Text)
			first := firstNonSpace(trimmed)
			indent := visualIndent(trimmed, first+1, 8)
			width := max(1, len([]rune(trimmed[first:])))
			underline := r.styleCaret("^" + strings.Repeat("~", width-1))
			fmt.Fprintf(r.w, "%s%s%s\n", strings.Repeat(" ", len(prefix)), strings.Repeat(" ", indent), underline)
		}
	}
}

// AnnotatedReporter prints the whole document with the findings attached
// below the lines they refer to.
type AnnotatedReporter struct {
	w     io.Writer
	color bool
}

func NewAnnotatedReporter(w io.Writer, color bool) *AnnotatedReporter {
	return &AnnotatedReporter{w: w, color: color}
}

func (r *AnnotatedReporter) Print(sink *diagnostics.Sink) error {
	markup := sink.Markup()
	if markup == nil {
		return fmt.Errorf("no document loaded for annotation")
	}
	for _, line := range markup.Lines() {
		fmt.Fprintf(r.w, "%6d | %s\n", line.Number, trimRight(line.Text))
		for _, note := range line.Notes {
			if r.color {
				note = "\x1b[31m" + note + "\x1b[0m"
			}
			fmt.Fprintf(r.w, "       > %s\n", note)
		}
	}
	// Findings without a line cannot be attached
	for _, f := range sink.All() {
		if f.Line() == 0 {
			fmt.Fprintf(r.w, "       > %s\n", f.String())
		}
	}
	return nil
}

// JSONReporter emits the sink report as JSON

type JSONReporter struct {
	w io.Writer
}

type JSONConfig struct{}

func NewJSONReporter(w io.Writer, _ ...JSONConfig) *JSONReporter { return &JSONReporter{w: w} }

func (r *JSONReporter) Print(sink *diagnostics.Sink) error {
	return sink.WriteJSON(r.w)
}

// --- helpers / styling ---

// tagOf returns the element name of the first node location.
func tagOf(refs []diagnostics.SourceRef) string {
	for _, ref := range refs {
		if n := ref.Node(); n != nil {
			return n.Name()
		}
	}
	return ""
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func locationString(file string, line int) string {
	return fmt.Sprintf("%s:%d", nonEmpty(file, "<input>"), line)
}

func trimRight(s string) string {
	return strings.TrimRight(s, "\t \r\n")
}

func firstNonSpace(s string) int {
	for i, r := range s {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return 0
}

// findTagColumn finds the 1-based column of the '<' of the opening tag
func findTagColumn(line, tag string) int {
	needle := "<" + tag
	idx := strings.Index(line, needle)
	if idx < 0 {
		return 0
	}
	return idx + 1
}

// findTagOpenLine searches backward and forward to locate the line with the opening tag
func findTagOpenLine(src *diagnostics.Markup, approxLine int, tag string) int {
	if tag == "" {
		return approxLine
	}
	low := max(1, approxLine-50)
	for ln := approxLine; ln >= low; ln-- {
		if s, ok := src.Line(ln); ok && findTagColumn(s.Text, tag) > 0 {
			return ln
		}
	}
	high := min(src.Len(), approxLine+50)
	for ln := approxLine + 1; ln <= high; ln++ {
		if s, ok := src.Line(ln); ok && findTagColumn(s.Text, tag) > 0 {
			return ln
		}
	}
	return approxLine
}

// findElementCloseLine scans forward from startLine to find
// either a self-closing "/>" or the matching closing tag "</tag".
// Returns at most startLine+maxSpan-1 if maxSpan>0.
func findElementCloseLine(src *diagnostics.Markup, startLine int, tag string, maxSpan int) int {
	limit := src.Len()
	if maxSpan > 0 && startLine+maxSpan-1 < limit {
		limit = startLine + maxSpan - 1
	}
	closing := "</" + tag
	for ln := startLine; ln <= limit; ln++ {
		line, ok := src.Line(ln)
		if !ok {
			break
		}
		if strings.Contains(line.Text, "/>") || strings.Contains(line.Text, closing) {
			return ln
		}
	}
	return startLine
}

// visualIndent computes the number of spaces needed to visually reach column 'col' (1-based)
// Expands tabs using tabWidth (commonly 8). Treats runes as width 1 for simplicity.
func visualIndent(line string, col int, tabWidth int) int {
	if col <= 1 {
		return 0
	}
	visible := 0
	pos := 1 // 1-based rune index
	for _, r := range line {
		if pos >= col {
			break
		}
		if r == '\t' {
			visible += tabWidth - (visible % tabWidth)
		} else {
			visible++
		}
		pos++
	}
	return visible
}

func (r *PrettyReporter) styleHeader(s string, sev diagnostics.Severity) string {
	if !r.color {
		return s
	}
	switch sev {
	case diagnostics.SeverityError, diagnostics.SeverityFatal, diagnostics.SeverityMisuse:
		return "\x1b[31m" + s + "\x1b[0m" // red
	case diagnostics.SeverityWarning:
		return "\x1b[33m" + s + "\x1b[0m" // yellow
	default:
		return s
	}
}

func (r *PrettyReporter) styleHint(s string) string {
	if !r.color {
		return s
	}
	return "\x1b[36m" + s + "\x1b[0m" // cyan
}

func (r *PrettyReporter) styleCaret(s string) string {
	if !r.color {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

// SortedFindings returns findings ordered by line, then severity, then code.
// Findings without a line come first.
func SortedFindings(findings []diagnostics.Finding) []diagnostics.Finding {
	out := append([]diagnostics.Finding(nil), findings...)
	rank := make(map[diagnostics.Severity]int, len(diagnostics.Severities))
	for i, s := range diagnostics.Severities {
		rank[s] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Line() != b.Line() {
			return a.Line() < b.Line()
		}
		if rank[a.Severity] != rank[b.Severity] {
			return rank[a.Severity] < rank[b.Severity]
		}
		return a.Code < b.Code
	})
	return out
}
