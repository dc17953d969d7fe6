// Package language validates language tags against the IANA language subtag
// registry.
package language

import (
	"strings"
)

// Registry holds the subtags parsed from an IANA language subtag registry.
// It is immutable once parsed and safe for concurrent use.
type Registry struct {
	fileDate string

	known     map[string]bool // language and extlang subtags, variant prefixes and combined forms
	variants  map[string]bool
	sign      map[string]bool
	regions   map[string]bool
	scripts   map[string]bool
	redundant map[string]redundantTag

	languageRanges []subtagRange
	regionRanges   []subtagRange
}

type redundantTag struct {
	tag       string
	preferred string
}

// subtagRange is an inclusive private-use range such as qaa..qtz. Only codes
// of the same length as the bounds can fall inside it.
type subtagRange struct {
	start, end string
}

func (r subtagRange) contains(code string) bool {
	return len(code) == len(r.start) && code >= r.start && code <= r.end
}

func newRegistry() *Registry {
	return &Registry{
		known:     make(map[string]bool),
		variants:  make(map[string]bool),
		sign:      make(map[string]bool),
		regions:   make(map[string]bool),
		scripts:   make(map[string]bool),
		redundant: make(map[string]redundantTag),
	}
}

// FileDate returns the File-Date header of the registry.
func (r *Registry) FileDate() string {
	if r == nil {
		return ""
	}
	return r.fileDate
}

// Count returns the number of known language tags and subtags.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	return len(r.known)
}

func inRanges(ranges []subtagRange, code string) bool {
	for _, rg := range ranges {
		if rg.contains(code) {
			return true
		}
	}
	return false
}

// isKnownPart reports whether a single subtag of a compound tag is known.
func (r *Registry) isKnownPart(part string) bool {
	return r.known[part] || r.variants[part] || r.regions[part] || r.scripts[part] ||
		inRanges(r.languageRanges, part) || inRanges(r.regionRanges, part)
}

// IsKnownRegion reports whether code is a registered or private-use region.
func (r *Registry) IsKnownRegion(code string) bool {
	if r == nil {
		return false
	}
	code = strings.ToLower(code)
	return r.regions[code] || inRanges(r.regionRanges, code)
}
