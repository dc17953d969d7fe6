package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
	"github.com/samber/lo"
)

// ============================================================================
// Uniqueness
// ============================================================================

// UniqueValueRule requires a value to be unique among all Element elements.
// The value is Attribute, or the text of the Child element when Child is
// set. With Scope set, uniqueness applies within each Scope element.
type UniqueValueRule struct {
	Element   string
	Attribute string
	Child     string
	Scope     string
	Code      string
}

func (r *UniqueValueRule) Name() string { return r.Code }

func (r *UniqueValueRule) Check(root dom.Node, rec diagnostics.Recorder) {
	if r.Scope == "" {
		r.checkWithin(root, rec)
		return
	}
	dom.Walk(root, func(n dom.Node) bool {
		if n.Name() == r.Scope {
			r.checkWithin(n, rec)
			return false
		}
		return true
	})
}

func (r *UniqueValueRule) checkWithin(scope dom.Node, rec diagnostics.Recorder) {
	var order []string
	seen := make(map[string][]dom.Node)
	dom.Walk(scope, func(n dom.Node) bool {
		if n.Name() != r.Element {
			return true
		}
		v, at, ok := r.value(n)
		if !ok {
			return true
		}
		if _, dup := seen[v]; !dup {
			order = append(order, v)
		}
		seen[v] = append(seen[v], at)
		return true
	})

	for _, v := range order {
		nodes := seen[v]
		if len(nodes) < 2 {
			continue
		}
		locs := lo.Map(nodes, func(n dom.Node, _ int) diagnostics.SourceRef { return diagnostics.AtNode(n) })
		rec.Add(diagnostics.Diagnostic{
			Severity:  diagnostics.SeverityError,
			Code:      r.Code,
			Message:   fmt.Sprintf("%s value %q is used %d times", r.what(), v, len(nodes)),
			Key:       "duplicate value",
			Locations: locs,
			Hints:     []string{fmt.Sprintf("Each %s must be unique", r.what())},
		})
	}
}

func (r *UniqueValueRule) value(n dom.Node) (string, dom.Node, bool) {
	if r.Child != "" {
		children := dom.ChildrenNamed(n, r.Child)
		if len(children) == 0 {
			return "", nil, false
		}
		v := strings.TrimSpace(children[0].Text())
		return v, children[0], v != ""
	}
	v, ok := n.Attribute(r.Attribute)
	return v, n, ok
}

func (r *UniqueValueRule) what() string {
	if r.Child != "" {
		return r.Element + "." + r.Child
	}
	return r.Element + "@" + r.Attribute
}

// ============================================================================
// Mutual exclusion
// ============================================================================

// ExclusiveAttributesRule allows at most one of Attributes on Element, or
// exactly one when Required is set.
type ExclusiveAttributesRule struct {
	Element    string
	Attributes []string
	Required   bool
	Code       string
}

func (r *ExclusiveAttributesRule) Name() string { return r.Code }

func (r *ExclusiveAttributesRule) Check(root dom.Node, rec diagnostics.Recorder) {
	dom.Walk(root, func(n dom.Node) bool {
		if n.Name() != r.Element {
			return true
		}
		present := lo.Filter(r.Attributes, func(a string, _ int) bool {
			_, ok := n.Attribute(a)
			return ok
		})
		switch {
		case len(present) > 1:
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityError,
				Code:     r.Code,
				Message:  fmt.Sprintf("<%s> cannot have both %s", r.Element, diagnostics.QuoteJoin(present)),
				Key:      "exclusive attributes",
				Location: diagnostics.AtNode(n),
				Hints:    []string{"These attributes are mutually exclusive"},
			})
		case len(present) == 0 && r.Required:
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityError,
				Code:     r.Code,
				Message:  fmt.Sprintf("<%s> must specify exactly one of %s", r.Element, diagnostics.QuoteJoin(r.Attributes)),
				Key:      "exclusive attributes",
				Location: diagnostics.AtNode(n),
			})
		}
		return true
	})
}

// ============================================================================
// References
// ============================================================================

// ReferenceRule requires Element@Attribute to name an existing target: the
// TargetAttribute of, or the text of the TargetChild of, some TargetElement.
type ReferenceRule struct {
	Element         string
	Attribute       string
	TargetElement   string
	TargetAttribute string
	TargetChild     string
	Code            string
}

func (r *ReferenceRule) Name() string { return r.Code }

func (r *ReferenceRule) Check(root dom.Node, rec diagnostics.Recorder) {
	targets := make(map[string]bool)
	dom.Walk(root, func(n dom.Node) bool {
		if n.Name() != r.TargetElement {
			return true
		}
		if r.TargetChild != "" {
			for _, c := range dom.ChildrenNamed(n, r.TargetChild) {
				if v := strings.TrimSpace(c.Text()); v != "" {
					targets[v] = true
				}
			}
		} else if v, ok := n.Attribute(r.TargetAttribute); ok {
			targets[v] = true
		}
		return true
	})

	known := lo.Keys(targets)
	sort.Strings(known)
	dom.Walk(root, func(n dom.Node) bool {
		if n.Name() != r.Element {
			return true
		}
		ref, ok := n.Attribute(r.Attribute)
		if !ok || targets[ref] {
			return true
		}
		d := diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     r.Code,
			Message:  fmt.Sprintf("%s@%s %q does not refer to any %s", r.Element, r.Attribute, ref, r.TargetElement),
			Key:      "unresolved reference",
			Location: diagnostics.AtNode(n),
		}
		if hint := diagnostics.DidYouMean(diagnostics.Nearest(ref, known, 3, 3)); hint != "" {
			d.Hints = append(d.Hints, hint)
		}
		rec.Add(d)
		return true
	})
}

// ============================================================================
// Format
// ============================================================================

// PatternRule requires the value of Element@Attribute, or the text of Element
// when Attribute is empty, to match Pattern.
type PatternRule struct {
	Element     string
	Attribute   string
	Pattern     string
	Description string
	Code        string

	once sync.Once
	re   *regexp.Regexp
	err  error
}

func (r *PatternRule) Name() string { return r.Code }

func (r *PatternRule) Check(root dom.Node, rec diagnostics.Recorder) {
	r.once.Do(func() { r.re, r.err = regexp.Compile(r.Pattern) })
	if r.err != nil {
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityMisuse,
			Code:     diagnostics.CodeInvalidArgument,
			Message:  fmt.Sprintf("%s: invalid pattern %q: %v", r.Code, r.Pattern, r.err),
		})
		return
	}
	dom.Walk(root, func(n dom.Node) bool {
		if n.Name() != r.Element {
			return true
		}
		var (
			v    string
			ok   bool
			what = dom.QualifiedName(n)
		)
		if r.Attribute == "" {
			v, ok = strings.TrimSpace(n.Text()), true
		} else {
			v, ok = n.Attribute(r.Attribute)
			what += "@" + r.Attribute
		}
		if ok && !r.re.MatchString(v) {
			d := diagnostics.Diagnostic{
				Severity: diagnostics.SeverityError,
				Code:     r.Code,
				Message:  fmt.Sprintf("%s %q is not well formed", what, v),
				Key:      "malformed value",
				Location: diagnostics.AtNode(n),
			}
			if r.Description != "" {
				d.Hints = []string{"Expected " + r.Description}
			}
			rec.Add(d)
		}
		return true
	})
}
