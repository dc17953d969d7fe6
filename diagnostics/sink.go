package diagnostics

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxFragmentLines bounds the rendering of node fragments.
const DefaultMaxFragmentLines = 6

// Config configures a Sink.
type Config struct {
	// MaxFragmentLines limits pretty-printed fragments. Zero selects
	// DefaultMaxFragmentLines, a negative value disables truncation.
	MaxFragmentLines int
}

// Sink collects the findings of one validation run. It is not safe for
// concurrent use; every run owns its own sink.
type Sink struct {
	findings     map[Severity][]Finding
	counts       map[Severity]*GroupingCounter
	descriptions map[string]string
	markup       *Markup
	maxLines     int
}

var _ Recorder = (*Sink)(nil)

// NewSink creates an empty sink. The last config wins.
func NewSink(cfg ...Config) *Sink {
	var c Config
	if len(cfg) > 0 {
		c = cfg[len(cfg)-1]
	}
	if c.MaxFragmentLines == 0 {
		c.MaxFragmentLines = DefaultMaxFragmentLines
	}
	return &Sink{
		findings:     make(map[Severity][]Finding),
		counts:       make(map[Severity]*GroupingCounter),
		descriptions: make(map[string]string),
		maxLines:     c.MaxFragmentLines,
	}
}

// LoadDocument seeds the line-indexed copy of the document. Findings added
// before it is called are not annotated.
func (s *Sink) LoadDocument(text string) {
	s.markup = NewMarkup(text)
}

// Markup returns the annotated document, or nil when no document was loaded.
func (s *Sink) Markup() *Markup {
	return s.markup
}

// Add records d. A malformed diagnostic is replaced by a misuse finding that
// describes what was wrong with it.
func (s *Sink) Add(d Diagnostic) {
	switch {
	case !d.Severity.Valid():
		s.misuse(d, CodeInvalidSeverity,
			fmt.Sprintf("finding %q (%s) reported with invalid severity %q", d.Code, d.Message, d.Severity))
	case strings.TrimSpace(d.Code) == "":
		s.misuse(d, CodeMissingCode,
			fmt.Sprintf("%s finding reported without a code: %s", d.Severity, d.Message))
	case strings.TrimSpace(d.Message) == "":
		s.misuse(d, CodeMissingMessage,
			fmt.Sprintf("%s finding %s reported without a message", d.Severity, d.Code))
	default:
		s.record(d)
	}
}

func (s *Sink) misuse(orig Diagnostic, code, message string) {
	slog.Debug("[DIAGNOSTICS] rejected malformed finding", "code", code, "message", message)
	s.record(Diagnostic{
		Severity:  SeverityMisuse,
		Code:      code,
		Message:   message,
		Key:       "application misuse",
		Location:  orig.Location,
		Locations: orig.Locations,
	})
}

func (s *Sink) record(d Diagnostic) {
	f := Finding{
		Severity: d.Severity,
		Code:     d.Code,
		Message:  d.Message,
		Key:      d.Key,
		Hints:    d.Hints,
		refs:     d.refs(),
		maxLines: s.maxLines,
	}
	s.findings[d.Severity] = append(s.findings[d.Severity], f)
	if d.Key != "" {
		s.Counts(d.Severity).Increment(d.Key)
	}
	if d.Description != "" {
		s.Describe(d.Code, d.Description)
	}
	if s.markup == nil {
		return
	}
	note := f.note()
	seen := make(map[int]bool)
	for _, r := range f.refs {
		if l := r.Line(); l > 0 && !seen[l] {
			seen[l] = true
			s.markup.Attach(l, note)
		}
	}
}

// Counts returns the grouping counter of sev, creating it if needed.
func (s *Sink) Counts(sev Severity) *GroupingCounter {
	c, ok := s.counts[sev]
	if !ok {
		c = NewGroupingCounter()
		s.counts[sev] = c
	}
	return c
}

// Describe records a description for code unless one already exists.
func (s *Sink) Describe(code, text string) {
	if _, ok := s.descriptions[code]; !ok {
		s.descriptions[code] = text
	}
}

func (s *Sink) Description(code string) string {
	return s.descriptions[code]
}

// Findings returns the findings of sev in the order they were added.
func (s *Sink) Findings(sev Severity) []Finding {
	return append([]Finding(nil), s.findings[sev]...)
}

// Errors returns errors followed by application misuse findings.
func (s *Sink) Errors() []Finding {
	out := s.Findings(SeverityError)
	return append(out, s.findings[SeverityMisuse]...)
}

func (s *Sink) Warnings() []Finding {
	return s.Findings(SeverityWarning)
}

func (s *Sink) Informationals() []Finding {
	return s.Findings(SeverityInfo)
}

// All returns every finding in report order.
func (s *Sink) All() []Finding {
	var out []Finding
	for _, sev := range Severities {
		out = append(out, s.findings[sev]...)
	}
	return out
}

func (s *Sink) Count(sev Severity) int {
	return len(s.findings[sev])
}

// ErrorCount counts errors and application misuse findings.
func (s *Sink) ErrorCount() int {
	return s.Count(SeverityError) + s.Count(SeverityMisuse)
}

// HasErrors reports whether the run produced a fatal, error or misuse finding.
func (s *Sink) HasErrors() bool {
	return s.ErrorCount() > 0 || s.Count(SeverityFatal) > 0
}
