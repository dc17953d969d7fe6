package validator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agentflare-ai/go-xmldom"
	"github.com/agentflare-ai/go-xsd"
	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
)

// xsdValidator wraps the XSD validator and converts its output to findings
type xsdValidator struct {
	config Config
}

func newXSDValidator(config Config) *xsdValidator {
	return &xsdValidator{config: config}
}

// validate performs XSD validation and records the converted findings
func (v *xsdValidator) validate(ctx context.Context, doc xmldom.Document, source string, rec diagnostics.Recorder) {
	_, span := tracer.Start(ctx, "validator.xsd")
	defer span.End()

	schema, err := v.schemaFor(doc)
	if err != nil {
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     CodeSchemaLoad,
			Message:  fmt.Sprintf("failed to load schemas from xmlns declarations: %v", err),
			Location: diagnostics.AtLine(1),
		})
		return
	}
	if schema == nil {
		slog.Debug("[XSD] no schema configured, skipping structural validation")
		return
	}

	violations := xsd.NewValidator(schema).Validate(doc)
	converter := xsd.NewDiagnosticConverter(v.config.SourceName, source)
	for _, xd := range converter.Convert(violations) {
		d := diagnostics.Diagnostic{
			Severity: xsdSeverity(string(xd.Severity)),
			Code:     xd.Code,
			Message:  xd.Message,
			Key:      "schema",
			Location: diagnostics.AtLine(xd.Position.Line),
			Hints:    xd.Hints,
		}
		for _, r := range xd.Related {
			if r.Position.Line > 0 {
				d.Locations = append(d.Locations, diagnostics.AtLine(r.Position.Line))
			}
		}
		rec.Add(d)
	}
}

// schemaFor returns the configured schema, or resolves one from the
// document's namespace declarations.
func (v *xsdValidator) schemaFor(doc xmldom.Document) (*xsd.Schema, error) {
	if v.config.Schema != nil {
		return v.config.Schema, nil
	}
	if len(v.config.SchemaLoaders) == 0 {
		return nil, nil
	}

	loaders := make([]xsd.PatternLoader, 0, len(v.config.SchemaLoaders))
	for i, spec := range v.config.SchemaLoaders {
		slog.Debug("[XSD] adding schema loader", "index", i, "pattern", spec.Pattern)
		loaders = append(loaders, xsd.PatternLoader{Pattern: spec.Pattern, Loader: spec.Loader})
	}
	loader, err := xsd.NewSchemaLoader(xsd.SchemaLoaderConfig{
		BaseDir: v.config.SchemaBasePath,
		Loaders: loaders,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create schema loader: %w", err)
	}
	return loader.LoadSchemasFromNamespaces(xsd.ExtractNamespaces(doc))
}

func xsdSeverity(s string) diagnostics.Severity {
	switch diagnostics.Severity(s) {
	case diagnostics.SeverityWarning:
		return diagnostics.SeverityWarning
	case diagnostics.SeverityInfo:
		return diagnostics.SeverityInfo
	}
	return diagnostics.SeverityError
}
