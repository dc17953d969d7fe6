package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/source"
)

func TestValidator_SchemaStage(t *testing.T) {
	schema, err := LoadSchema(context.Background(), nil, source.File("testdata/simple.xsd"))
	if err != nil {
		t.Fatalf("LoadSchema() error = %v", err)
	}
	v := New(Config{SourceName: "doc.xml", Schema: schema, SemanticRules: []SemanticRule{}})

	sink, _, err := v.ValidateString(context.Background(), `<Item xmlns="urn:example:simple">news</Item>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("expected a conforming document, got %v", codes(sink.All()))
	}

	sink, _, err = v.ValidateString(context.Background(), `<root xmlns="urn:example:simple">
<bogus/>
</root>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !sink.HasErrors() {
		t.Fatal("expected undeclared elements to be reported")
	}
	root, ok := hasCode(sink.Errors(), "E207")
	if !ok {
		t.Fatalf("expected E207, got %v", codes(sink.Errors()))
	}
	if root.Line() != 1 {
		t.Errorf("expected root finding on line 1, got %d", root.Line())
	}
	if !strings.Contains(root.Message, "root") {
		t.Errorf("expected message to name the element, got %q", root.Message)
	}
	if got := sink.Counts(diagnostics.SeverityError).Get("schema"); got != len(sink.Errors()) {
		t.Errorf("expected every error grouped under schema, got %d of %d", got, len(sink.Errors()))
	}
}

func TestValidator_SchemaStageSkippedWithoutSchema(t *testing.T) {
	sink, _, err := New(Config{SemanticRules: []SemanticRule{}}).ValidateString(context.Background(), `<root xmlns="urn:example:simple"/>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sink.All()) != 0 {
		t.Fatalf("expected no findings, got %v", codes(sink.All()))
	}
}

func TestXSDSeverity(t *testing.T) {
	tests := map[string]diagnostics.Severity{
		"error":   diagnostics.SeverityError,
		"warning": diagnostics.SeverityWarning,
		"info":    diagnostics.SeverityInfo,
		"fatal":   diagnostics.SeverityError,
		"":        diagnostics.SeverityError,
	}
	for in, want := range tests {
		if got := xsdSeverity(in); got != want {
			t.Errorf("xsdSeverity(%q) = %s, want %s", in, got, want)
		}
	}
}
