// Package diagnostics collects the findings of a validation run: typed
// diagnostics, per-severity grouping counters and a line-indexed copy of the
// validated document used for annotated output.
package diagnostics

// Severity represents the severity level of a diagnostic
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityDebug   Severity = "debug"
	// SeverityMisuse marks a defect in the caller of the engine rather than
	// in the validated document. It is reported alongside errors.
	SeverityMisuse Severity = "misuse"
)

// Severities lists every valid severity in report order.
var Severities = []Severity{
	SeverityFatal,
	SeverityMisuse,
	SeverityError,
	SeverityWarning,
	SeverityInfo,
	SeverityDebug,
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityFatal, SeverityError, SeverityWarning, SeverityInfo, SeverityDebug, SeverityMisuse:
		return true
	}
	return false
}

// Codes used for findings about incorrect use of the engine itself.
const (
	CodeInvalidSeverity = "AM001"
	CodeMissingCode     = "AM002"
	CodeMissingMessage  = "AM003"
	CodeNilNode         = "AM004"
	CodeInvalidArgument = "AM005"
)
