package validator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/paulhiggs/dvb-i-tools-sub001/cardinality"
	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
	"github.com/paulhiggs/dvb-i-tools-sub001/language"
)

// Grouping keys of value checks.
const (
	KeyInvalidLanguage    = "invalid language"
	KeyDeprecatedLanguage = "deprecated language"
	KeyInvalidValue       = "invalid value"
	KeyDeprecatedValue    = "deprecated value"
	KeyInvalidURI         = "invalid URI"
	KeyInvalidURL         = "invalid URL"
)

// walker applies a profile to every element of a document, depth-first.
type walker struct {
	config  Config
	missing map[string]bool // schemes already reported as not configured
}

func newWalker(config Config) *walker {
	return &walker{config: config, missing: make(map[string]bool)}
}

func (w *walker) walk(root dom.Node, rec diagnostics.Recorder) {
	dom.Walk(root, func(n dom.Node) bool {
		ep, ok := w.config.Profile.Lookup(n)
		if !ok {
			return true
		}
		return w.check(n, ep, rec)
	})
}

// check applies ep to n and reports whether the walk should descend.
func (w *walker) check(n dom.Node, ep *ElementProfile, rec diagnostics.Recorder) bool {
	code := ep.code(n)
	descend := true
	if ep.Children != nil {
		if !cardinality.CheckChildren(n, *ep.Children, rec, code) && w.config.StopOnStructureError {
			descend = false
		}
	}
	if ep.Attributes != nil {
		cardinality.CheckAttributes(n, *ep.Attributes, rec, code)
	}
	for _, attr := range ep.Languages {
		if v, ok := valueOf(n, attr); ok {
			w.checkLanguage(n, attr, v, rec, code)
		}
	}
	for _, attr := range ep.SignLanguages {
		if v, ok := valueOf(n, attr); ok {
			w.checkSignLanguage(n, attr, v, rec, code)
		}
	}
	for _, vc := range ep.Vocabularies {
		if v, ok := valueOf(n, vc.Attribute); ok {
			w.checkVocabulary(n, vc, v, rec, code)
		}
	}
	for _, attr := range ep.URIs {
		if v, ok := valueOf(n, attr); ok && !isURI(v) {
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityError,
				Code:     code + "-13",
				Message:  fmt.Sprintf("%s: %q is not a valid URI", describe(n, attr), v),
				Key:      KeyInvalidURI,
				Location: diagnostics.AtNode(n),
			})
		}
	}
	for _, attr := range ep.URLs {
		if v, ok := valueOf(n, attr); ok && !isURL(v) {
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityError,
				Code:     code + "-14",
				Message:  fmt.Sprintf("%s: %q is not a valid http(s) URL", describe(n, attr), v),
				Key:      KeyInvalidURL,
				Location: diagnostics.AtNode(n),
			})
		}
	}
	return descend
}

func (w *walker) checkLanguage(n dom.Node, attr, v string, rec diagnostics.Recorder, code string) {
	where := describe(n, attr)
	if !language.IsValidFormat(v) {
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     code + "-8",
			Message:  fmt.Sprintf("%s: %q is not a valid language tag", where, v),
			Key:      KeyInvalidLanguage,
			Location: diagnostics.AtNode(n),
		})
		return
	}
	if w.config.Languages == nil {
		return
	}
	res := w.config.Languages.IsKnown(v)
	switch res.Status {
	case language.Unknown:
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     code + "-8",
			Message:  fmt.Sprintf("%s: language %q is not known", where, v),
			Key:      KeyInvalidLanguage,
			Location: diagnostics.AtNode(n),
		})
	case language.Redundant:
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityWarning,
			Code:     code + "-9",
			Message:  fmt.Sprintf("%s: %s", where, language.RedundantMessage(v, res)),
			Key:      KeyDeprecatedLanguage,
			Location: diagnostics.AtNode(n),
		})
	}
}

func (w *walker) checkSignLanguage(n dom.Node, attr, v string, rec diagnostics.Recorder, code string) {
	if w.config.Languages == nil || w.config.Languages.IsKnownSignLanguage(v) {
		return
	}
	rec.Add(diagnostics.Diagnostic{
		Severity: diagnostics.SeverityError,
		Code:     code + "-10",
		Message:  fmt.Sprintf("%s: %q is not a known sign language", describe(n, attr), v),
		Key:      KeyInvalidLanguage,
		Location: diagnostics.AtNode(n),
	})
}

func (w *walker) checkVocabulary(n dom.Node, vc VocabularyCheck, v string, rec diagnostics.Recorder, code string) {
	scheme, ok := w.config.Schemes[vc.Scheme]
	if !ok {
		if !w.missing[vc.Scheme] {
			w.missing[vc.Scheme] = true
			rec.Add(diagnostics.Diagnostic{
				Severity: diagnostics.SeverityMisuse,
				Code:     diagnostics.CodeInvalidArgument,
				Message:  fmt.Sprintf("classification scheme %q used by %s is not configured", vc.Scheme, describe(n, vc.Attribute)),
			})
		}
		return
	}
	where := describe(n, vc.Attribute)
	if !scheme.IsIn(v) {
		d := diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     code + "-11",
			Message:  fmt.Sprintf("%s: %q is not a valid value of %s", where, v, vc.Scheme),
			Key:      KeyInvalidValue,
			Location: diagnostics.AtNode(n),
		}
		if hint := diagnostics.DidYouMean(scheme.Suggest(v, 3)); hint != "" {
			d.Hints = []string{hint}
		}
		rec.Add(d)
		return
	}
	if scheme.IsDeprecated(v) {
		rec.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityWarning,
			Code:     code + "-12",
			Message:  fmt.Sprintf("%s: %q is deprecated in %s", where, v, vc.Scheme),
			Key:      KeyDeprecatedValue,
			Location: diagnostics.AtNode(n),
		})
	}
}

// valueOf returns the named attribute, or the trimmed text for TextValue.
func valueOf(n dom.Node, attr string) (string, bool) {
	if attr == TextValue {
		v := strings.TrimSpace(n.Text())
		return v, v != ""
	}
	return n.Attribute(attr)
}

func describe(n dom.Node, attr string) string {
	if attr == TextValue {
		return dom.QualifiedName(n)
	}
	return dom.QualifiedName(n) + "@" + attr
}

func isURI(v string) bool {
	u, err := url.Parse(v)
	return err == nil && u.Scheme != "" && !strings.ContainsAny(v, " \t\n")
}

func isURL(v string) bool {
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
