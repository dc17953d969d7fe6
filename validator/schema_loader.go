package validator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/agentflare-ai/go-xmldom"
	"github.com/agentflare-ai/go-xsd"
	"github.com/paulhiggs/dvb-i-tools-sub001/source"
)

// SchemaLoaderSpec defines a schema loader with its matching pattern
type SchemaLoaderSpec struct {
	Pattern string               // Regex pattern to match namespace URIs
	Loader  xsd.SchemaLoaderFunc // Function to load the schema
}

// LoadSchema fetches and compiles the XSD at ref.
func LoadSchema(ctx context.Context, f *source.Fetcher, ref source.Ref) (*xsd.Schema, error) {
	if f == nil {
		f = source.NewFetcher()
	}
	slog.Debug("[SCHEMA_LOADER] Loading schema", "source", ref.String())
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc, err := xmldom.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML from %s: %w", ref, err)
	}
	schema, err := xsd.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XSD schema from %s: %w", ref, err)
	}
	slog.Debug("[SCHEMA_LOADER] Schema parsed successfully", "source", ref.String())
	return schema, nil
}

// NamespaceSchemaLoader returns a loader that maps namespace URIs to schema
// locations, e.g. "urn:dvb:metadata:servicediscovery:2024" to a local
// copy of the DVB-I service list schema.
func NamespaceSchemaLoader(f *source.Fetcher, schemas map[string]source.Ref) xsd.SchemaLoaderFunc {
	return func(attr xmldom.Attr) (*xsd.Schema, error) {
		namespace := string(attr.NodeValue())
		ref, ok := schemas[namespace]
		if !ok {
			slog.Debug("[SCHEMA_LOADER] No schema for namespace", "namespace", namespace)
			return nil, fmt.Errorf("no schema configured for namespace %s", namespace)
		}
		return LoadSchema(context.Background(), f, ref)
	}
}

// NamespaceLoaders builds one exact-match loader spec per namespace.
func NamespaceLoaders(f *source.Fetcher, schemas map[string]source.Ref) []SchemaLoaderSpec {
	loader := NamespaceSchemaLoader(f, schemas)
	specs := make([]SchemaLoaderSpec, 0, len(schemas))
	for ns := range schemas {
		specs = append(specs, SchemaLoaderSpec{Pattern: "^" + regexp.QuoteMeta(ns) + "$", Loader: loader})
	}
	return specs
}
