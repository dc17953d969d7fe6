package validator

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/agentflare-ai/go-xmldom"
	"github.com/agentflare-ai/go-xsd"
	"github.com/paulhiggs/dvb-i-tools-sub001/classification"
	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
	"github.com/paulhiggs/dvb-i-tools-sub001/language"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/paulhiggs/dvb-i-tools-sub001/validator")

// Codes of findings raised by the validator itself.
const (
	CodeNilDocument    = "E000"
	CodeNoRoot         = "E001"
	CodeParse          = "E002"
	CodeSchemaLoad     = "E003"
	CodeDegradedSource = "W001"
)

// Config controls validator behavior
type Config struct {
	SourceName string // Optional source name for reporting

	// Schema is the compiled XSD the document must conform to. When nil the
	// schema is resolved from the document's namespaces with SchemaLoaders,
	// and when those are empty the structural stage is skipped.
	Schema *xsd.Schema

	// SchemaLoaders map namespace patterns to schema loaders. Loaders are
	// tried in order - more specific patterns should come first.
	SchemaLoaders []SchemaLoaderSpec

	// SchemaBasePath resolves relative schema locations.
	SchemaBasePath string

	// Profile holds the declarative element rules. Nil skips the stage.
	Profile *Profile

	// Schemes are the controlled vocabularies referenced by the profile.
	Schemes map[string]*classification.Scheme

	// Languages is the language subtag registry. When nil only the format of
	// language tags is checked.
	Languages *language.Registry

	// SemanticRules allows injection of custom semantic validators.
	// If nil, DefaultSemanticRules() is used.
	// Set to empty slice to disable semantic validation.
	SemanticRules []SemanticRule

	// Strict reports warnings as errors.
	Strict bool

	// StopOnStructureError skips the descendants of an element whose
	// children are missing or not permitted.
	StopOnStructureError bool

	// MaxFragmentLines bounds pretty-printed fragments in findings.
	MaxFragmentLines int

	// LoadErrors are reference data failures reported as warnings so a
	// degraded run is visible in its report.
	LoadErrors []error
}

// Validator validates DVB-I service lists and content guides. A Validator is
// safe for concurrent use; every run gets its own sink.
type Validator struct {
	config Config
}

// New creates a new Validator
func New(cfg ...Config) *Validator {
	c := Config{}
	for _, x := range cfg {
		c = x
	}
	return &Validator{config: c}
}

// ValidateString validates an XML string and returns the findings and the parsed document
func (v *Validator) ValidateString(ctx context.Context, xml string) (*diagnostics.Sink, xmldom.Document, error) {
	sink, doc, _, err := v.validateBytes(ctx, []byte(xml))
	return sink, doc, err
}

// ValidateReader reads all from r, validates, and returns findings, document and source text
func (v *Validator) ValidateReader(ctx context.Context, r io.Reader) (*diagnostics.Sink, xmldom.Document, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to read input: %w", err)
	}
	return v.validateBytes(ctx, data)
}

// validateBytes reports a parse failure both as a fatal finding and as an
// error so callers can render it like any other finding.
func (v *Validator) validateBytes(ctx context.Context, data []byte) (*diagnostics.Sink, xmldom.Document, string, error) {
	source := string(data)
	doc, err := dom.DecodeBytes(data)
	if err != nil {
		sink := v.newSink(source)
		sink.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityFatal,
			Code:     CodeParse,
			Message:  fmt.Sprintf("failed to parse XML: %v", err),
		})
		return sink, nil, source, fmt.Errorf("failed to parse XML: %w", err)
	}
	return v.ValidateDocument(ctx, doc, source), doc, source, nil
}

func (v *Validator) newSink(source string) *diagnostics.Sink {
	sink := diagnostics.NewSink(diagnostics.Config{MaxFragmentLines: v.config.MaxFragmentLines})
	if source != "" {
		sink.LoadDocument(source)
	}
	return sink
}

// ValidateDocument runs every stage on doc. source should be the raw XML
// doc was parsed from; it is used for annotated output.
func (v *Validator) ValidateDocument(ctx context.Context, doc xmldom.Document, source string) *diagnostics.Sink {
	ctx, span := tracer.Start(ctx, "validator.ValidateDocument",
		trace.WithAttributes(attribute.String("source", v.config.SourceName)))
	defer span.End()

	sink := v.newSink(source)
	if doc == nil {
		sink.Add(diagnostics.Diagnostic{Severity: diagnostics.SeverityFatal, Code: CodeNilDocument, Message: "nil document"})
		return sink
	}
	root := dom.Root(doc)
	if root == nil {
		sink.Add(diagnostics.Diagnostic{Severity: diagnostics.SeverityFatal, Code: CodeNoRoot, Message: "document has no root element"})
		return sink
	}

	var rec diagnostics.Recorder = sink
	if v.config.Strict {
		rec = strictRecorder{next: sink}
	}

	v.reportDegradedSources(sink)

	// Structural stage
	newXSDValidator(v.config).validate(ctx, doc, source, rec)

	// Profile stage
	if v.config.Profile != nil {
		newWalker(v.config).walk(root, rec)
	}

	// Semantic stage
	rules := v.config.SemanticRules
	if rules == nil {
		rules = DefaultSemanticRules()
	}
	for _, rule := range rules {
		rule.Check(root, rec)
	}

	span.SetAttributes(
		attribute.Int("errors", sink.ErrorCount()),
		attribute.Int("warnings", sink.Count(diagnostics.SeverityWarning)),
	)
	return sink
}

func (v *Validator) reportDegradedSources(rec diagnostics.Recorder) {
	names := make([]string, 0, len(v.config.Schemes))
	for name := range v.config.Schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, err := range v.config.Schemes[name].Failures() {
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityWarning,
				Code:     CodeDegradedSource,
				Message:  fmt.Sprintf("classification scheme %q is incomplete: %v", name, err),
				Key:      "degraded reference data",
			})
		}
	}
	for _, err := range v.config.LoadErrors {
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityWarning,
			Code:     CodeDegradedSource,
			Message:  fmt.Sprintf("reference data is incomplete: %v", err),
			Key:      "degraded reference data",
		})
	}
}

// strictRecorder escalates warnings to errors.
type strictRecorder struct {
	next diagnostics.Recorder
}

func (r strictRecorder) Add(d diagnostics.Diagnostic) {
	if d.Severity == diagnostics.SeverityWarning {
		d.Severity = diagnostics.SeverityError
	}
	r.next.Add(d)
}
