package classification

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
)

var ErrNotClassificationScheme = errors.New("document is not a ClassificationScheme")

// Parse reads a single classification scheme document.
func Parse(r io.Reader, opts Options) (*Scheme, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read classification scheme: %w", err)
	}
	terms, err := parseTerms(data)
	if err != nil {
		return nil, err
	}
	return New(opts, terms...), nil
}

// parseTerms flattens the Term hierarchy of a ClassificationScheme document.
// Every term is named "<scheme uri>:<termID>".
func parseTerms(data []byte) ([]Term, error) {
	doc, err := dom.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse classification scheme: %w", err)
	}
	root := dom.Root(doc)
	if root == nil || root.Name() != "ClassificationScheme" {
		return nil, ErrNotClassificationScheme
	}
	base, ok := root.Attribute("uri")
	if !ok || strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("%w: missing uri attribute", ErrNotClassificationScheme)
	}
	base = strings.TrimSpace(base)

	var terms []Term
	dom.Walk(root, func(n dom.Node) bool {
		if n.Name() != "Term" {
			return n == root
		}
		if id, ok := n.Attribute("termID"); ok && strings.TrimSpace(id) != "" {
			deprecated, _ := n.Attribute("deprecated")
			terms = append(terms, Term{
				URI:        base + ":" + strings.TrimSpace(id),
				Leaf:       len(dom.ChildrenNamed(n, "Term")) == 0,
				Deprecated: deprecated == "true",
			})
		}
		return true
	})
	return terms, nil
}
