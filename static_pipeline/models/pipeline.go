package models

import (
	"fmt"
	"net/http"
	"strings"
)

// SetupEvent is one message on the setup progress stream.
type SetupEvent struct {
	Message string
	Err     error
	Done    bool
}

// Action is one servable endpoint handed to the HTTP registry.
type Action struct {
	Path        string
	ContentType string
	Public      bool
	Immutable   bool
	Handler     http.HandlerFunc
}

// EarlyHint describes a preload/prefetch hint for one alias.
type EarlyHint struct {
	Alias       string
	Href        string
	ContentType string
	Rel         string
	As          string
	CrossOrigin bool
}

// LinkHeader renders the hint as a Link header value.
func (h EarlyHint) LinkHeader() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<%s>; rel=%s", h.Href, h.Rel)
	if h.As != "" {
		fmt.Fprintf(&sb, "; as=%s", h.As)
	}
	if h.ContentType != "" {
		fmt.Fprintf(&sb, "; type=%q", h.ContentType)
	}
	if h.CrossOrigin {
		sb.WriteString("; crossorigin")
	}
	return sb.String()
}

// ClosureMode selects how the dependency graph inlines transitive references.
type ClosureMode string

const (
	ClosureSinglePass ClosureMode = "single-pass"
	ClosureTransitive ClosureMode = "transitive"
)

func ParseClosureMode(value string) (ClosureMode, error) {
	switch ClosureMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ClosureSinglePass:
		return ClosureSinglePass, nil
	case ClosureTransitive:
		return ClosureTransitive, nil
	default:
		return "", fmt.Errorf("unknown closure mode %q", value)
	}
}

// ExtensionTable maps lower-case file extensions to content types.
type ExtensionTable struct {
	types map[string]string
}

var defaultExtensions = map[string]string{
	"html":        "text/html",
	"htm":         "text/html",
	"css":         "text/css",
	"js":          "application/javascript",
	"mjs":         "application/javascript",
	"cjs":         "application/javascript",
	"ts":          "application/typescript",
	"mts":         "application/typescript",
	"cts":         "application/typescript",
	"json":        "application/json",
	"map":         "application/json",
	"webmanifest": "application/manifest+json",
	"txt":         "text/plain",
	"xml":         "application/xml",
	"svg":         "image/svg+xml",
	"png":         "image/png",
	"jpg":         "image/jpeg",
	"jpeg":        "image/jpeg",
	"gif":         "image/gif",
	"webp":        "image/webp",
	"avif":        "image/avif",
	"ico":         "image/x-icon",
	"woff":        "font/woff",
	"woff2":       "font/woff2",
	"ttf":         "font/ttf",
	"otf":         "font/otf",
	"mp3":         "audio/mpeg",
	"ogg":         "audio/ogg",
	"wav":         "audio/wav",
	"mp4":         "video/mp4",
	"webm":        "video/webm",
	"vtt":         "text/vtt",
	"wasm":        "application/wasm",
	"pdf":         "application/pdf",
}

// NewExtensionTable layers overrides on top of the built-in table.
// An override with an empty content type removes the extension.
func NewExtensionTable(overrides map[string]string) ExtensionTable {
	types := make(map[string]string, len(defaultExtensions)+len(overrides))
	for ext, contentType := range defaultExtensions {
		types[ext] = contentType
	}
	for ext, contentType := range overrides {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		contentType = strings.TrimSpace(contentType)
		if contentType == "" {
			delete(types, ext)
			continue
		}
		types[ext] = contentType
	}
	return ExtensionTable{types: types}
}

func (t ExtensionTable) Lookup(extension string) (string, bool) {
	contentType, ok := t.types[strings.ToLower(extension)]
	return contentType, ok
}

func (t ExtensionTable) Len() int {
	return len(t.types)
}
