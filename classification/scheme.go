// Package classification loads controlled vocabularies (TV-Anytime style
// classification schemes) and answers membership queries against them.
package classification

import (
	"sort"

	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
)

// Term is one controlled vocabulary entry.
type Term struct {
	URI        string
	Leaf       bool
	Deprecated bool
}

// Options controls how sources are merged into a Scheme.
type Options struct {
	// LeafNodesOnly keeps only terms that have no children in the source
	// taxonomy.
	LeafNodesOnly bool
	// ExtraTerms are always members, typically legacy values kept for
	// compatibility.
	ExtraTerms []string
}

// Scheme is an immutable set of terms merged from one or more sources. It is
// safe for concurrent use.
type Scheme struct {
	terms    map[string]Term
	failures []error
}

// New builds a scheme from terms. A URI defined several times is a leaf if
// any definition is a leaf, and deprecated only if every definition is.
func New(opts Options, terms ...Term) *Scheme {
	merged := make(map[string]Term, len(terms)+len(opts.ExtraTerms))
	for _, t := range terms {
		if t.URI == "" {
			continue
		}
		if prev, ok := merged[t.URI]; ok {
			t.Leaf = t.Leaf || prev.Leaf
			t.Deprecated = t.Deprecated && prev.Deprecated
		}
		merged[t.URI] = t
	}
	if opts.LeafNodesOnly {
		for uri, t := range merged {
			if !t.Leaf {
				delete(merged, uri)
			}
		}
	}
	for _, uri := range opts.ExtraTerms {
		if uri != "" {
			merged[uri] = Term{URI: uri, Leaf: true}
		}
	}
	return &Scheme{terms: merged}
}

// IsIn reports whether uri is a term of the scheme.
func (s *Scheme) IsIn(uri string) bool {
	if s == nil {
		return false
	}
	_, ok := s.terms[uri]
	return ok
}

// IsLeaf reports whether uri is a term without children.
func (s *Scheme) IsLeaf(uri string) bool {
	if s == nil {
		return false
	}
	return s.terms[uri].Leaf
}

func (s *Scheme) IsDeprecated(uri string) bool {
	if s == nil {
		return false
	}
	return s.terms[uri].Deprecated
}

func (s *Scheme) Count() int {
	if s == nil {
		return 0
	}
	return len(s.terms)
}

// Terms returns the term URIs in sorted order.
func (s *Scheme) Terms() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.terms))
	for uri := range s.terms {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// Failures returns the errors of sources that could not be loaded.
func (s *Scheme) Failures() []error {
	if s == nil {
		return nil
	}
	return append([]error(nil), s.failures...)
}

// Suggest returns up to limit terms close to uri.
func (s *Scheme) Suggest(uri string, limit int) []string {
	return diagnostics.Nearest(uri, s.Terms(), limit, 3)
}
