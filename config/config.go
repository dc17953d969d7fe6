// Package config reads the TOML configuration of the validate tool and
// assembles the reference data it names into a validator configuration.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/paulhiggs/dvb-i-tools-sub001/classification"
	"github.com/paulhiggs/dvb-i-tools-sub001/language"
	"github.com/paulhiggs/dvb-i-tools-sub001/source"
	"github.com/paulhiggs/dvb-i-tools-sub001/validator"
)

// File is the decoded configuration file.
//
//	profile   = "profiles.json#/profiles/ServiceList"
//	languages = "https://www.iana.org/assignments/language-subtag-registry/language-subtag-registry"
//
//	[[scheme]]
//	name    = "genre"
//	sources = ["cs/ContentCS.xml", "cs/FormatCS.xml"]
//	leafOnly = true
type File struct {
	Schema     string            `toml:"schema"`
	Profile    string            `toml:"profile"`
	Languages  string            `toml:"languages"`
	Namespaces map[string]string `toml:"namespaces"`
	Fetch      Fetch             `toml:"fetch"`
	Schemes    []Scheme          `toml:"scheme"`
	Validation Validation        `toml:"validation"`

	// dir resolves relative locations; empty for configurations built in code.
	dir string
}

// Fetch configures network access.
type Fetch struct {
	Timeout           string  `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requestsPerSecond"`
	Burst             int     `toml:"burst"`
}

// Scheme names a classification scheme merged from Sources.
type Scheme struct {
	Name     string   `toml:"name"`
	Sources  []string `toml:"sources"`
	LeafOnly bool     `toml:"leafOnly"`
	Extra    []string `toml:"extra"`
}

type Validation struct {
	StopOnStructureError bool `toml:"stopOnStructureError"`
	MaxFragmentLines     int  `toml:"maxFragmentLines"`
	Strict               bool `toml:"strict"`
}

// Load decodes the configuration at path. Unknown keys are rejected so that
// typos do not silently disable checks.
func Load(path string) (*File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return &f, nil
}

func (f *File) validate() error {
	seen := make(map[string]bool, len(f.Schemes))
	for i, s := range f.Schemes {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("scheme %d: missing name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("scheme %q defined twice", s.Name)
		}
		seen[s.Name] = true
		if len(s.Sources) == 0 && len(s.Extra) == 0 {
			return fmt.Errorf("scheme %q: no sources", s.Name)
		}
	}
	if f.Fetch.Timeout != "" {
		if _, err := time.ParseDuration(f.Fetch.Timeout); err != nil {
			return fmt.Errorf("fetch.timeout: %w", err)
		}
	}
	return nil
}

// AddScheme adds or replaces a scheme, as the command line does.
func (f *File) AddScheme(s Scheme) {
	for i := range f.Schemes {
		if f.Schemes[i].Name == s.Name {
			f.Schemes[i] = s
			return
		}
	}
	f.Schemes = append(f.Schemes, s)
}

// Resolve interprets loc relative to the configuration file. URLs and
// absolute paths are returned as they are; a "#fragment" is preserved.
func (f *File) Resolve(loc string) source.Ref {
	path, fragment := source.SplitFragment(loc)
	ref := source.Parse(path)
	if !ref.IsRemote() && f.dir != "" && !filepath.IsAbs(ref.Path) {
		ref.Path = filepath.Join(f.dir, ref.Path)
	}
	if fragment != "" {
		if ref.IsRemote() {
			ref.URL += "#" + fragment
		} else {
			ref.Path += "#" + fragment
		}
	}
	return ref
}

// Fetcher builds the fetcher all reference data is loaded with.
func (f *File) Fetcher() *source.Fetcher {
	var timeout time.Duration
	if f.Fetch.Timeout != "" {
		timeout, _ = time.ParseDuration(f.Fetch.Timeout)
	}
	return source.NewFetcher(source.FetchConfig{
		Timeout:           timeout,
		RequestsPerSecond: f.Fetch.RequestsPerSecond,
		Burst:             f.Fetch.Burst,
	})
}

// Build loads every source the file names and returns the resulting
// validator configuration. Schemes and the language registry are loaded
// according to mode: NonBlocking starts them all before waiting on any.
//
// A profile or schema that cannot be loaded is an error, since validating
// without it would silently skip a stage. Vocabulary and registry failures
// only degrade the run and are carried in the LoadErrors of the result.
func (f *File) Build(ctx context.Context, mode source.Mode) (validator.Config, error) {
	if err := f.validate(); err != nil {
		return validator.Config{}, err
	}
	fetcher := f.Fetcher()
	cfg := validator.Config{
		Strict:               f.Validation.Strict,
		StopOnStructureError: f.Validation.StopOnStructureError,
		MaxFragmentLines:     f.Validation.MaxFragmentLines,
	}

	var registry *source.Future[*language.Registry]
	if f.Languages != "" {
		registry = language.Load(ctx, mode, fetcher, f.Resolve(f.Languages))
	}
	schemes := make(map[string]*source.Future[*classification.Scheme], len(f.Schemes))
	for _, s := range f.Schemes {
		refs := make([]source.Ref, len(s.Sources))
		for i, loc := range s.Sources {
			refs[i] = f.Resolve(loc)
		}
		opts := classification.Options{LeafNodesOnly: s.LeafOnly, ExtraTerms: s.Extra}
		schemes[s.Name] = classification.Load(ctx, mode, fetcher, opts, refs...)
	}

	if f.Profile != "" {
		ref := f.Resolve(f.Profile)
		profile, err := validator.LoadProfile(ctx, fetcher, ref.String())
		if err != nil {
			return validator.Config{}, err
		}
		cfg.Profile = profile
	}
	if f.Schema != "" {
		schema, err := validator.LoadSchema(ctx, fetcher, f.Resolve(f.Schema))
		if err != nil {
			return validator.Config{}, err
		}
		cfg.Schema = schema
	}
	if len(f.Namespaces) > 0 {
		refs := make(map[string]source.Ref, len(f.Namespaces))
		for ns, loc := range f.Namespaces {
			refs[ns] = f.Resolve(loc)
		}
		cfg.SchemaLoaders = validator.NamespaceLoaders(fetcher, refs)
		cfg.SchemaBasePath = f.dir
	}

	if registry != nil {
		reg, err := registry.Wait(ctx)
		if err != nil {
			cfg.LoadErrors = append(cfg.LoadErrors, err)
		}
		cfg.Languages = reg
	}
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	cfg.Schemes = make(map[string]*classification.Scheme, len(schemes))
	for _, name := range names {
		// source failures are carried by the scheme itself
		scheme, err := schemes[name].Wait(ctx)
		if scheme == nil {
			return validator.Config{}, fmt.Errorf("scheme %q: %w", name, err)
		}
		cfg.Schemes[name] = scheme
		slog.Debug("[CONFIG] scheme ready", "name", name, "terms", scheme.Count(), "failures", len(scheme.Failures()))
	}
	return cfg, nil
}
