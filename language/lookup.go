package language

import (
	"errors"
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
)

// Status is the outcome of a language tag lookup.
type Status int

const (
	Unknown Status = iota
	Known
	Redundant
	NotSpecified
	InvalidType
)

func (s Status) String() string {
	switch s {
	case Known:
		return "known"
	case Redundant:
		return "redundant"
	case NotSpecified:
		return "not specified"
	case InvalidType:
		return "invalid type"
	}
	return "unknown"
}

// Result is a lookup outcome. Preferred is set for redundant tags that have
// a replacement.
type Result struct {
	Status    Status
	Preferred string
}

// Classify looks up an arbitrary value, as found in decoded documents.
// Nil, empty strings and nil string pointers are NotSpecified; anything that
// is not a string is InvalidType.
func (r *Registry) Classify(v any) Result {
	switch t := v.(type) {
	case nil:
		return Result{Status: NotSpecified}
	case string:
		return r.IsKnown(t)
	case *string:
		if t == nil {
			return Result{Status: NotSpecified}
		}
		return r.IsKnown(*t)
	}
	return Result{Status: InvalidType}
}

// IsKnown classifies tag against the registry. Lookups are case-insensitive.
func (r *Registry) IsKnown(tag string) Result {
	if tag == "" {
		return Result{Status: NotSpecified}
	}
	if r == nil {
		return Result{Status: Unknown}
	}
	lower := strings.ToLower(tag)

	if inRanges(r.languageRanges, lower) {
		return Result{Status: Known}
	}
	if red, ok := r.redundant[lower]; ok {
		return Result{Status: Redundant, Preferred: red.preferred}
	}
	if strings.Contains(lower, "-") {
		all := true
		for _, part := range strings.Split(lower, "-") {
			if !r.isKnownPart(part) {
				all = false
				break
			}
		}
		if all {
			return Result{Status: Known}
		}
	}
	if r.known[lower] {
		return Result{Status: Known}
	}
	return Result{Status: Unknown}
}

// CheckSignLanguage returns Known when tag is flagged as a sign language.
func (r *Registry) CheckSignLanguage(tag string) Status {
	if r == nil || tag == "" {
		return Unknown
	}
	if r.sign[strings.ToLower(tag)] {
		return Known
	}
	return Unknown
}

// IsKnownSignLanguage also accepts tags that are only registered with an
// "sgn-" prefix.
func (r *Registry) IsKnownSignLanguage(tag string) bool {
	return r.CheckSignLanguage(tag) == Known || r.CheckSignLanguage("sgn-"+tag) == Known
}

// IsValidFormat reports whether tag is a well-formed BCP 47 tag, whether or
// not its subtags are registered.
func IsValidFormat(tag string) bool {
	if tag == "" || strings.Contains(tag, "_") || repeatsVariant(tag) {
		return false
	}
	_, err := xlanguage.Parse(tag)
	if err == nil {
		return true
	}
	var ve xlanguage.ValueError
	return errors.As(err, &ve)
}

// repeatsVariant reports whether a variant subtag occurs twice, which the
// x/text parser accepts but a well-formed tag may not contain.
func repeatsVariant(tag string) bool {
	seen := make(map[string]bool)
	for _, sub := range strings.Split(strings.ToLower(tag), "-")[1:] {
		if len(sub) == 1 {
			// extensions and private use follow
			return false
		}
		isVariant := (len(sub) >= 5 && len(sub) <= 8) || (len(sub) == 4 && sub[0] >= '0' && sub[0] <= '9')
		if !isVariant {
			continue
		}
		if seen[sub] {
			return true
		}
		seen[sub] = true
	}
	return false
}

// RedundantMessage describes a redundant tag, naming the replacement when
// there is one.
func RedundantMessage(tag string, res Result) string {
	msg := fmt.Sprintf("language %q is deprecated", tag)
	if res.Preferred != "" {
		msg += fmt.Sprintf(" (use %q instead)", res.Preferred)
	}
	return msg
}
