package validator

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agentflare-ai/go-jsonschema"
	"github.com/paulhiggs/dvb-i-tools-sub001/cardinality"
	"github.com/paulhiggs/dvb-i-tools-sub001/dom"
	"github.com/paulhiggs/dvb-i-tools-sub001/source"
)

// TextValue names the text content of an element wherever a profile expects
// an attribute name.
const TextValue = "#text"

//go:embed profile_schema.json
var profileSchemaJSON []byte

var profileSchema = func() *jsonschema.Schema {
	var s jsonschema.Schema
	if err := json.Unmarshal(profileSchemaJSON, &s); err != nil {
		panic(fmt.Sprintf("invalid embedded profile schema: %v", err))
	}
	return &s
}()

// ErrInvalidProfile is returned for profiles that do not match the profile schema.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is a declarative set of element rules: the business rules of one
// kind of document expressed as data.
type Profile struct {
	Name     string           `json:"name,omitempty"`
	Elements []ElementProfile `json:"elements"`

	byPath map[string]*ElementProfile
	byName map[string]*ElementProfile
}

// ElementProfile holds the rules for one element. Path is either a slash
// separated path from the document element ("ServiceList/Service") or a bare
// element name matching the element anywhere.
type ElementProfile struct {
	Path          string                     `json:"path"`
	Code          string                     `json:"code,omitempty"`
	Children      *cardinality.ChildSpec     `json:"children,omitempty"`
	Attributes    *cardinality.AttributeSpec `json:"attributes,omitempty"`
	Languages     []string                   `json:"languages,omitempty"`
	SignLanguages []string                   `json:"signLanguages,omitempty"`
	URIs          []string                   `json:"uris,omitempty"`
	URLs          []string                   `json:"urls,omitempty"`
	Vocabularies  []VocabularyCheck          `json:"vocabularies,omitempty"`
}

// VocabularyCheck requires the value of Attribute to be a term of Scheme.
type VocabularyCheck struct {
	Attribute string `json:"attribute"`
	Scheme    string `json:"scheme"`
}

// NewProfile indexes elements into a profile.
func NewProfile(name string, elements ...ElementProfile) (*Profile, error) {
	p := &Profile{Name: name, Elements: elements}
	if err := p.index(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) index() error {
	p.byPath = make(map[string]*ElementProfile)
	p.byName = make(map[string]*ElementProfile)
	for i := range p.Elements {
		ep := &p.Elements[i]
		key := strings.Trim(ep.Path, "/")
		if key == "" {
			return fmt.Errorf("%w: element %d has no path", ErrInvalidProfile, i)
		}
		target := p.byName
		if strings.Contains(key, "/") {
			target = p.byPath
		}
		if _, dup := target[key]; dup {
			return fmt.Errorf("%w: duplicate rules for %s", ErrInvalidProfile, key)
		}
		target[key] = ep
	}
	return nil
}

// Lookup finds the rules for n, preferring a path match over a name match.
func (p *Profile) Lookup(n dom.Node) (*ElementProfile, bool) {
	if p == nil || n == nil {
		return nil, false
	}
	if p.byPath == nil && p.byName == nil {
		return p.scan(n)
	}
	if ep, ok := p.byPath[dom.Path(n)]; ok {
		return ep, true
	}
	ep, ok := p.byName[n.Name()]
	return ep, ok
}

// scan serves profiles built as literals rather than with NewProfile.
func (p *Profile) scan(n dom.Node) (*ElementProfile, bool) {
	path := dom.Path(n)
	var byName *ElementProfile
	for i := range p.Elements {
		key := strings.Trim(p.Elements[i].Path, "/")
		if key == path && strings.Contains(key, "/") {
			return &p.Elements[i], true
		}
		if key == n.Name() && byName == nil {
			byName = &p.Elements[i]
		}
	}
	return byName, byName != nil
}

// code returns the finding code prefix for n.
func (ep *ElementProfile) code(n dom.Node) string {
	if ep.Code != "" {
		return ep.Code
	}
	return n.Name()
}

// ParseProfile validates data against the profile schema and decodes it.
func ParseProfile(data []byte) (*Profile, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	result := jsonschema.ValidateDocument(doc, profileSchema)
	if !result.Valid {
		msgs := make([]string, 0, len(result.Errors))
		for _, verr := range result.Errors {
			msgs = append(msgs, verr.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(msgs, "; "))
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := p.index(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProfile fetches a profile. loc may select a profile inside a bundle
// with a JSON pointer fragment: "profiles.json#/profiles/ServiceList".
func LoadProfile(ctx context.Context, f *source.Fetcher, loc string) (*Profile, error) {
	if f == nil {
		f = source.NewFetcher()
	}
	path, pointer := source.SplitFragment(loc)
	data, err := f.Fetch(ctx, source.Parse(path))
	if err != nil {
		return nil, err
	}
	data, err = ResolvePointer(data, pointer)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", loc, err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", loc, err)
	}
	return p, nil
}
