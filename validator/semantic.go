package validator

import (
	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
)

// SemanticRule validates constraints that span elements and cannot be
// expressed as per-element profile rules (uniqueness, references, mutual
// exclusion).
type SemanticRule interface {
	// Name returns the diagnostic code for this rule (e.g., "SL101")
	Name() string

	// Check walks the document from root and reports findings to rec
	Check(root dom.Node, rec diagnostics.Recorder)
}

// DefaultSemanticRules returns the integrity rules of a DVB-I service list.
// They only fire on the elements they name, so other documents pass
// through untouched.
func DefaultSemanticRules() []SemanticRule {
	return []SemanticRule{
		// Uniqueness
		&UniqueValueRule{Element: "Service", Child: "UniqueIdentifier", Code: "SL101"},
		&UniqueValueRule{Element: "LCN", Attribute: "channelNumber", Scope: "LCNTable", Code: "SL102"},

		// References
		&ReferenceRule{
			Element: "LCN", Attribute: "serviceRef",
			TargetElement: "Service", TargetChild: "UniqueIdentifier",
			Code: "SL110",
		},

		// Format
		&PatternRule{
			Element: "UniqueIdentifier", Pattern: `^(tag|urn|dvb|http|https):\S+$`,
			Description: "a tag:, urn:, dvb: or http(s) URI", Code: "SL120",
		},
	}
}
