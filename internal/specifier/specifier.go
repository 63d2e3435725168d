// Package specifier parses registry-qualified module specifiers.
//
// A specifier has the shape "scheme:@scope/name@version/subpath" or
// "scheme:name@version/subpath". The version is mandatory: manifests that
// pin registry imports always carry a full version, and a specifier without
// one is not something the sync engine can map to a local package.
package specifier

import (
	"regexp"
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// DefaultScheme is the registry scheme used when none is configured.
const DefaultScheme = "jsr"

// Ref is a parsed specifier.
type Ref struct {
	// Registry is the scheme identifier ("jsr", "npm", ...).
	Registry string

	// Scope includes the leading "@", empty for unscoped packages.
	Scope string

	Name string

	// FullName is "scope/name" or "name".
	FullName string

	Version string

	// Subpath keeps its leading "/", empty when absent.
	Subpath string

	// FullSpecifier is the original string.
	FullSpecifier string

	// Line is the 1-based line the specifier was found on. Only set by ScanAll.
	Line int
}

var specifierPattern = regexp.MustCompile(`^([a-z][a-z0-9+.-]*):(?:(@[^/@\s]+)/)?([^/@\s]+)@([^/\s]+)(/\S*)?$`)

// Parse parses a specifier string. It returns false when the string is not
// a registry specifier or carries no version.
func Parse(s string) (Ref, bool) {
	m := specifierPattern.FindStringSubmatch(s)
	if m == nil {
		return Ref{}, false
	}

	ref := Ref{
		Registry:      m[1],
		Scope:         m[2],
		Name:          m[3],
		Version:       m[4],
		Subpath:       m[5],
		FullSpecifier: s,
	}
	if ref.Subpath == "/" {
		ref.Subpath = ""
	}
	ref.FullName = ref.Name
	if ref.Scope != "" {
		ref.FullName = ref.Scope + "/" + ref.Name
	}
	return ref, true
}

// IsSpecifier reports whether s parses as a versioned registry specifier.
func IsSpecifier(s string) bool {
	_, ok := Parse(s)
	return ok
}

// ImportKey returns the bare import key the specifier refers to:
// the full name, followed by the subpath when there is one.
func (r Ref) ImportKey() string {
	return r.FullName + r.Subpath
}

// PURL renders the reference as a package URL.
func (r Ref) PURL() string {
	p := packageurl.NewPackageURL(r.Registry, r.Scope, r.Name, r.Version, nil, strings.TrimPrefix(r.Subpath, "/"))
	return p.ToString()
}

// ScanAll finds every quoted occurrence of a scheme-prefixed specifier in
// text. It is a lexical scan, not a tokenizer: a specifier embedded inside an
// unrelated string literal is reported too. Matches that do not parse
// (for example, no version) are dropped.
func ScanAll(text, scheme string) []Ref {
	if scheme == "" {
		scheme = DefaultScheme
	}
	pattern := regexp.MustCompile("[\"'`][^\"'`\\n]*?(" + regexp.QuoteMeta(scheme) + ":[^\"'`\\s]+)")

	var refs []Ref
	for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		ref, ok := Parse(text[start:end])
		if !ok {
			continue
		}
		ref.Line = strings.Count(text[:start], "\n") + 1
		refs = append(refs, ref)
	}
	return refs
}
