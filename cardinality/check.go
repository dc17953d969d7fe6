package cardinality

import (
	"fmt"
	"strings"

	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
	"github.com/samber/lo"
)

// Default code prefixes. Findings use "<code>-<n>" sub-codes.
const (
	DefaultChildCode     = "CC"
	DefaultAttributeCode = "CA"
)

// Grouping keys of the findings produced by this package.
const (
	KeyMissingElement      = "missing element"
	KeyCardinality         = "cardinality"
	KeyProfiledElement     = "profiled out element"
	KeyUnexpectedElement   = "unexpected element"
	KeyMissingAttribute    = "missing attribute"
	KeyUnexpectedAttribute = "unexpected attribute"
	KeyProfiledAttribute   = "profiled out attribute"
)

// CheckChildren validates the direct children of parent against spec and
// reports every deviation to rec. It returns false when a mandatory child is
// missing or a child is not permitted, so callers can skip deeper checks.
func CheckChildren(parent dom.Node, spec ChildSpec, rec diagnostics.Recorder, code string) bool {
	if code == "" {
		code = DefaultChildCode
	}
	if parent == nil {
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityMisuse,
			Code:     diagnostics.CodeNilNode,
			Message:  fmt.Sprintf("CheckChildren(%s) called with a nil parent", code),
		})
		return false
	}

	ok := true
	where := dom.QualifiedName(parent)
	ruled := make(map[string]bool, len(spec.Rules))
	for _, rule := range spec.Rules {
		if problem := ruleProblem(rule, ruled); problem != "" {
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityMisuse,
				Code:     diagnostics.CodeInvalidArgument,
				Message:  fmt.Sprintf("%s: invalid rule for %s: %s", code, where, problem),
				Location: diagnostics.AtNode(parent),
			})
			// a rejected rule still claims its children
			if name := strings.TrimSpace(rule.Name); name != "" {
				ruled[name] = true
			}
			continue
		}
		ruled[rule.Name] = true

		found := dom.ChildrenNamed(parent, rule.Name)
		count := len(found)
		switch {
		case count == 0:
			if rule.MinOccurs.Value() > 0 {
				rec.Add(diagnostics.Diagnostic{
					Severity: diagnostics.SeverityError,
					Code:     code + "-1",
					Message:  fmt.Sprintf("mandatory element %s not specified in %s", rule.Name, where),
					Key:      KeyMissingElement,
					Location: diagnostics.AtNode(parent),
				})
				ok = false
			}
		case count < rule.MinOccurs.Value() || !rule.MaxOccurs.Allows(count):
			for _, child := range found {
				rec.Add(diagnostics.Diagnostic{
					Severity: diagnostics.SeverityError,
					Code:     code + "-2",
					Message: fmt.Sprintf("%d occurrences of %s in %s, permitted range is %s",
						count, rule.Name, where, rule.Range()),
					Key:      KeyCardinality,
					Location: diagnostics.AtNode(child),
				})
			}
		}
	}

	for _, child := range parent.Children() {
		name := child.Name()
		if ruled[name] {
			continue
		}
		if lo.Contains(spec.Defined, name) {
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityInfo,
				Code:     code + "-3",
				Message:  fmt.Sprintf("element %s is not included in this profile of %s", name, where),
				Key:      KeyProfiledElement,
				Location: diagnostics.AtNode(child),
			})
			continue
		}
		if spec.AllowForeign {
			continue
		}
		d := diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     code + "-4",
			Message:  fmt.Sprintf("element %s not permitted in %s", name, where),
			Key:      KeyUnexpectedElement,
			Location: diagnostics.AtNode(child),
		}
		names := lo.Union(lo.Keys(ruled), spec.Defined)
		if hint := diagnostics.DidYouMean(diagnostics.Nearest(name, names, 3, 2)); hint != "" {
			d.Hints = []string{hint}
		}
		rec.Add(d)
		ok = false
	}
	return ok
}

func ruleProblem(rule ElementRule, seen map[string]bool) string {
	switch {
	case strings.TrimSpace(rule.Name) == "":
		return "rule has no element name"
	case seen[rule.Name]:
		return fmt.Sprintf("duplicate rule for %s", rule.Name)
	case rule.MinOccurs.IsUnbounded():
		return fmt.Sprintf("minOccurs of %s cannot be unbounded", rule.Name)
	case !rule.MaxOccurs.Allows(rule.MinOccurs.Value()):
		return fmt.Sprintf("minOccurs exceeds maxOccurs for %s (%s)", rule.Name, rule.Range())
	}
	return ""
}

// CheckAttributes validates the attributes of elem against spec and reports
// every deviation to rec. Namespace declarations and xsi: attributes are
// ignored.
func CheckAttributes(elem dom.Node, spec AttributeSpec, rec diagnostics.Recorder, code string) {
	if code == "" {
		code = DefaultAttributeCode
	}
	if elem == nil {
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityMisuse,
			Code:     diagnostics.CodeNilNode,
			Message:  fmt.Sprintf("CheckAttributes(%s) called with a nil element", code),
		})
		return
	}

	where := dom.QualifiedName(elem)
	if both := lo.Intersect(spec.Required, spec.Optional); len(both) > 0 {
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityMisuse,
			Code:     diagnostics.CodeInvalidArgument,
			Message:  fmt.Sprintf("%s: attributes of %s both required and optional: %s", code, where, strings.Join(both, ", ")),
			Location: diagnostics.AtNode(elem),
		})
	}

	for _, name := range lo.Uniq(spec.Required) {
		if _, ok := elem.Attribute(name); !ok {
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityError,
				Code:     code + "-5",
				Message:  fmt.Sprintf("%s@%s is required", where, name),
				Key:      KeyMissingAttribute,
				Location: diagnostics.AtNode(elem),
			})
		}
	}

	permitted := lo.Union(spec.Required, spec.Optional)
	for _, name := range elem.AttributeNames() {
		if strings.HasPrefix(name, "xsi:") || lo.Contains(permitted, name) {
			continue
		}
		if lo.Contains(spec.Defined, name) {
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityInfo,
				Code:     code + "-7",
				Message:  fmt.Sprintf("attribute %s is profiled out of %s", name, where),
				Key:      KeyProfiledAttribute,
				Location: diagnostics.AtNode(elem),
			})
			continue
		}
		d := diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     code + "-6",
			Message:  fmt.Sprintf("attribute %s not permitted in %s", name, where),
			Key:      KeyUnexpectedAttribute,
			Location: diagnostics.AtNode(elem),
		}
		if hint := diagnostics.DidYouMean(diagnostics.Nearest(name, lo.Union(permitted, spec.Defined), 3, 2)); hint != "" {
			d.Hints = []string{hint}
		}
		rec.Add(d)
	}
}
