package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagnostic is a single finding as reported by a checker.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	// Key groups findings of the same category in the summary counters.
	Key string
	// Description is an optional longer explanation of Code, kept once per
	// code by the sink.
	Description string
	Location    SourceRef
	// Locations makes this a multi-element finding: every location is
	// annotated but the finding is reported once.
	Locations []SourceRef
	Hints     []string
}

func (d Diagnostic) refs() []SourceRef {
	var refs []SourceRef
	if !d.Location.IsZero() {
		refs = append(refs, d.Location)
	}
	for _, r := range d.Locations {
		if !r.IsZero() {
			refs = append(refs, r)
		}
	}
	return refs
}

// Recorder receives diagnostics. *Sink is the canonical implementation.
type Recorder interface {
	Add(d Diagnostic)
}

// Finding is a diagnostic as recorded by a Sink.
type Finding struct {
	Severity Severity
	Code     string
	Message  string
	Key      string
	Hints    []string

	refs     []SourceRef
	maxLines int
}

// Locations returns every location the finding refers to.
func (f Finding) Locations() []SourceRef {
	return append([]SourceRef(nil), f.refs...)
}

// Line returns the line of the first location, or 0.
func (f Finding) Line() int {
	for _, r := range f.refs {
		if l := r.Line(); l > 0 {
			return l
		}
	}
	return 0
}

// Lines returns the known lines of all locations.
func (f Finding) Lines() []int {
	var lines []int
	for _, r := range f.refs {
		if l := r.Line(); l > 0 {
			lines = append(lines, l)
		}
	}
	return lines
}

// Fragment renders the first location that carries text.
func (f Finding) Fragment() string {
	for _, r := range f.refs {
		if s := r.Fragment(f.maxLines); s != "" {
			return s
		}
	}
	return ""
}

func (f Finding) String() string {
	head := fmt.Sprintf("%s(%s): %s", f.Severity, f.Code, f.Message)
	if lines := f.Lines(); len(lines) > 0 {
		parts := make([]string, len(lines))
		for i, l := range lines {
			parts[i] = fmt.Sprint(l)
		}
		head += " [line " + strings.Join(parts, ", ") + "]"
	}
	return head
}

// note is the text attached to annotated lines.
func (f Finding) note() string {
	return fmt.Sprintf("%s(%s): %s", f.Severity, f.Code, f.Message)
}

type findingJSON struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Key      string   `json:"key,omitempty"`
	Line     int      `json:"line,omitempty"`
	Lines    []int    `json:"lines,omitempty"`
	Fragment string   `json:"fragment,omitempty"`
	Hints    []string `json:"hints,omitempty"`
}

func (f Finding) MarshalJSON() ([]byte, error) {
	out := findingJSON{
		Severity: f.Severity,
		Code:     f.Code,
		Message:  f.Message,
		Key:      f.Key,
		Line:     f.Line(),
		Fragment: f.Fragment(),
		Hints:    f.Hints,
	}
	if lines := f.Lines(); len(lines) > 1 {
		out.Lines = lines
	}
	return json.Marshal(out)
}
