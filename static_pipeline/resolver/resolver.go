// Package resolver turns raw reference strings into resolved files.
//
// Two addressing styles coexist: bare aliases (sigil-prefixed with @ or #, or
// containing no path separator) are looked up directly in the alias table, and
// everything else is resolved as a URL relative to the containing file's alias
// URL and looked up in the URL table.
package resolver

import (
	"net/url"
	"strings"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
)

// ResolveFile finds the file a reference points at.
func ResolveFile(reference string, file *models.FileInfo, index *models.FileIndex) (*models.FileInfo, bool) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, false
	}

	if alias, ok := sigilAlias(reference); ok {
		return index.ByAlias(alias)
	}

	if !strings.Contains(reference, "/") {
		if target, ok := index.ByAlias(reference); ok {
			return target, true
		}
	}

	resolved, ok := resolveURL(reference, file)
	if !ok || resolved.IsAbs() || resolved.Host != "" {
		return nil, false
	}
	return index.ByURL(resolved.Path)
}

// ResolveReference builds the reference record. A dangling reference still
// carries its best-effort resolved URL.
func ResolveReference(reference string, file *models.FileInfo, index *models.FileIndex, directive models.PolicyDirective) models.ReferenceDetails {
	if target, ok := ResolveFile(reference, file, index); ok {
		return models.ReferenceDetails{URL: target.URL(), Directive: directive, File: target}
	}

	details := models.ReferenceDetails{URL: strings.TrimSpace(reference), Directive: directive}
	if resolved, ok := resolveURL(details.URL, file); ok {
		details.URL = resolved.String()
	}
	return details
}

// Rewrite returns the hashed URL for a reference, keeping any query or fragment
// the original carried. The second result is false when the reference is dangling.
func Rewrite(reference string, file *models.FileInfo, index *models.FileIndex) (string, bool) {
	target, ok := ResolveFile(reference, file, index)
	if !ok {
		return reference, false
	}
	return target.URL() + suffix(strings.TrimSpace(reference)), true
}

func sigilAlias(reference string) (string, bool) {
	switch {
	case strings.HasPrefix(reference, "@"):
		return reference, true
	case strings.HasPrefix(reference, "#"):
		return strings.ReplaceAll(strings.TrimPrefix(reference, "#"), "#", "/"), true
	}
	return "", false
}

func resolveURL(reference string, file *models.FileInfo) (*url.URL, bool) {
	ref, err := url.Parse(reference)
	if err != nil {
		return nil, false
	}
	if file == nil {
		return ref, true
	}
	base, err := url.Parse(file.AliasURL())
	if err != nil {
		return nil, false
	}
	return base.ResolveReference(ref), true
}

func suffix(reference string) string {
	if _, ok := sigilAlias(reference); ok {
		return ""
	}
	if idx := strings.IndexAny(reference, "?#"); idx > 0 {
		return reference[idx:]
	}
	return ""
}
