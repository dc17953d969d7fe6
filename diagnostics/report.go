package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
)

// Report is the serialisable summary of a sink.
type Report struct {
	Valid          bool                          `json:"valid"`
	Fatal          []Finding                     `json:"fatal,omitempty"`
	Errors         []Finding                     `json:"errors"`
	Warnings       []Finding                     `json:"warnings"`
	Informationals []Finding                     `json:"informationals"`
	Debug          []Finding                     `json:"debug,omitempty"`
	Counts         map[Severity]*GroupingCounter `json:"counts,omitempty"`
	Descriptions   map[string]string             `json:"descriptions,omitempty"`
}

func (s *Sink) Report() Report {
	r := Report{
		Valid:          !s.HasErrors(),
		Fatal:          s.Findings(SeverityFatal),
		Errors:         s.Errors(),
		Warnings:       s.Warnings(),
		Informationals: s.Informationals(),
		Debug:          s.Findings(SeverityDebug),
	}
	if r.Errors == nil {
		r.Errors = []Finding{}
	}
	if r.Warnings == nil {
		r.Warnings = []Finding{}
	}
	if r.Informationals == nil {
		r.Informationals = []Finding{}
	}
	for sev, c := range s.counts {
		if c.Len() == 0 {
			continue
		}
		if r.Counts == nil {
			r.Counts = make(map[Severity]*GroupingCounter)
		}
		r.Counts[sev] = c
	}
	if len(s.descriptions) > 0 {
		r.Descriptions = make(map[string]string, len(s.descriptions))
		for k, v := range s.descriptions {
			r.Descriptions[k] = v
		}
	}
	return r
}

// WriteJSON writes the indented report to w.
func (s *Sink) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Report()); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
