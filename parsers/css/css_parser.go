package css

import (
	"context"
	"regexp"
	"strings"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/meysamhadeli/assetgraph/static_pipeline/resolver"
	"github.com/meysamhadeli/assetgraph/static_pipeline/rewrite"
)

const ContentType = "text/css"

var (
	declarationRegex  = regexp.MustCompile(`(?i)(@import)\s+([^;{}]+)|(-?[a-z][a-z-]*)\s*:\s*([^;{}]+)`)
	urlRegex          = regexp.MustCompile(`(?i)url\(\s*(?:"([^"]*)"|'([^']*)'|([^)"'\s]*))\s*\)`)
	importStringRegex = regexp.MustCompile(`^\s*(?:"([^"]*)"|'([^']*)')`)
	commentRegex      = regexp.MustCompile(`(?s)/\*.*?\*/`)
	vendorPrefixRegex = regexp.MustCompile(`^-[a-z]+-`)
)

// DefaultProperties maps the declarations that carry references to their directive.
var DefaultProperties = map[string]models.PolicyDirective{
	"@import":             models.StyleSrc,
	"background":          models.ImgSrc,
	"background-image":    models.ImgSrc,
	"src":                 models.FontSrc,
	"list-style":          models.ImgSrc,
	"list-style-image":    models.ImgSrc,
	"border-image":        models.ImgSrc,
	"border-image-source": models.ImgSrc,
	"mask":                models.ImgSrc,
	"mask-image":          models.ImgSrc,
	"cursor":              models.ImgSrc,
}

// CSSParser extracts url() references from stylesheet declarations.
type CSSParser struct {
	properties map[string]models.PolicyDirective
}

// NewCSSParser layers overrides over DefaultProperties. An override mapped to
// models.DirectiveNone removes the property.
func NewCSSParser(overrides map[string]models.PolicyDirective) *CSSParser {
	properties := make(map[string]models.PolicyDirective, len(DefaultProperties)+len(overrides))
	for property, directive := range DefaultProperties {
		properties[property] = directive
	}
	for property, directive := range overrides {
		property = strings.ToLower(strings.TrimSpace(property))
		if directive == models.DirectiveNone {
			delete(properties, property)
			continue
		}
		properties[property] = directive
	}
	return &CSSParser{properties: properties}
}

func (p *CSSParser) Supports() []string {
	return []string{ContentType}
}

func (p *CSSParser) Parse(_ context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]models.ReferenceDetails, error) {
	var references []models.ReferenceDetails
	for _, token := range p.tokens(content) {
		references = append(references, resolver.ResolveReference(token.reference, file, index, token.directive))
	}
	return references, nil
}

func (p *CSSParser) Update(_ context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]byte, error) {
	var edits []rewrite.Edit
	for _, token := range p.tokens(content) {
		rewritten, ok := resolver.Rewrite(token.reference, file, index)
		if !ok {
			continue
		}
		edits = append(edits, rewrite.Edit{Start: token.start, End: token.end, Text: rewritten})
	}
	return rewrite.Apply(content, edits), nil
}

type urlToken struct {
	reference string
	directive models.PolicyDirective
	start     int
	end       int
}

// tokens finds every reference in a table property, with byte offsets of the
// reference text itself (quotes excluded).
func (p *CSSParser) tokens(content []byte) []urlToken {
	masked := commentRegex.ReplaceAllFunc(content, func(comment []byte) []byte {
		return []byte(strings.Repeat(" ", len(comment)))
	})

	var tokens []urlToken
	for _, match := range declarationRegex.FindAllSubmatchIndex(masked, -1) {
		property, valueStart, valueEnd := declaration(masked, match)
		directive, ok := p.properties[property]
		if !ok {
			directive, ok = p.properties[vendorPrefixRegex.ReplaceAllString(property, "")]
		}
		if !ok {
			continue
		}

		value := masked[valueStart:valueEnd]
		found := false
		for _, urlMatch := range urlRegex.FindAllSubmatchIndex(value, -1) {
			start, end := firstGroup(urlMatch, 1, 3)
			if start < 0 {
				continue
			}
			found = true
			tokens = appendToken(tokens, content, valueStart+start, valueStart+end, directive)
		}

		if !found && property == "@import" {
			if importMatch := importStringRegex.FindSubmatchIndex(value); importMatch != nil {
				start, end := firstGroup(importMatch, 1, 2)
				if start >= 0 {
					tokens = appendToken(tokens, content, valueStart+start, valueStart+end, directive)
				}
			}
		}
	}
	return tokens
}

func appendToken(tokens []urlToken, content []byte, start int, end int, directive models.PolicyDirective) []urlToken {
	reference := string(content[start:end])
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" || strings.HasPrefix(strings.ToLower(trimmed), "data:") {
		return tokens
	}
	return append(tokens, urlToken{reference: reference, directive: directive, start: start, end: end})
}

func declaration(content []byte, match []int) (string, int, int) {
	if match[2] >= 0 {
		return "@import", match[4], match[5]
	}
	return strings.ToLower(string(content[match[6]:match[7]])), match[8], match[9]
}

// firstGroup returns the offsets of the first participating group in [first, last].
func firstGroup(match []int, first int, last int) (int, int) {
	for group := first; group <= last; group++ {
		if match[2*group] >= 0 {
			return match[2*group], match[2*group+1]
		}
	}
	return -1, -1
}
