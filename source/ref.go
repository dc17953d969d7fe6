// Package source locates and fetches the data files the validator is
// configured with: taxonomies, the language subtag registry, schemas and
// profiles. Files may be local paths or http(s) URLs.
package source

import "strings"

// Ref names a local file or a remote URL.
type Ref struct {
	Path string
	URL  string
}

// File refers to a local file.
func File(path string) Ref { return Ref{Path: path} }

// URL refers to a remote document.
func URL(u string) Ref { return Ref{URL: u} }

// Parse treats http and https locations as URLs and anything else as a path.
func Parse(loc string) Ref {
	lower := strings.ToLower(loc)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return URL(loc)
	}
	return File(loc)
}

// IsRemote reports whether r refers to a URL.
func (r Ref) IsRemote() bool { return r.URL != "" }

// IsZero reports whether r refers to nothing.
func (r Ref) IsZero() bool { return r.URL == "" && r.Path == "" }

func (r Ref) String() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Path
}

// SplitFragment separates a trailing "#fragment" from loc.
func SplitFragment(loc string) (string, string) {
	if i := strings.LastIndex(loc, "#"); i >= 0 {
		return loc[:i], loc[i+1:]
	}
	return loc, ""
}
