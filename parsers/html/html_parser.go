package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/meysamhadeli/assetgraph/static_pipeline/resolver"
	nethtml "golang.org/x/net/html"
)

const ContentType = "text/html"

// linkAsDirectives classifies <link as=...> preloads.
var linkAsDirectives = map[string]models.PolicyDirective{
	"audio":    models.MediaSrc,
	"video":    models.MediaSrc,
	"track":    models.MediaSrc,
	"document": models.FrameSrc,
	"embed":    models.ObjectSrc,
	"object":   models.ObjectSrc,
	"fetch":    models.ConnectSrc,
	"font":     models.FontSrc,
	"image":    models.ImgSrc,
	"script":   models.ScriptSrc,
	"style":    models.StyleSrc,
	"worker":   models.WorkerSrc,
}

var attributeRegex = regexp.MustCompile(`([^\s"'>/=]+)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+)))?`)

// HTMLParser classifies element references by the CSP directive that governs them.
type HTMLParser struct{}

func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

func (p *HTMLParser) Supports() []string {
	return []string{ContentType}
}

type attributeRef struct {
	key       string
	directive models.PolicyDirective
	srcset    bool
}

func (p *HTMLParser) Parse(_ context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]models.ReferenceDetails, error) {
	var references []models.ReferenceDetails
	err := walkTags(content, func(_ []byte, token nethtml.Token, parent string) []byte {
		attrs := attributeMap(token)
		for _, ref := range classify(token.Data, attrs, parent) {
			value, ok := attrs[ref.key]
			if !ok {
				continue
			}
			for _, reference := range attributeURLs(value, ref.srcset) {
				references = append(references, resolver.ResolveReference(reference, file, index, ref.directive))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", file.Alias(), err)
	}
	return references, nil
}

func (p *HTMLParser) Update(_ context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(content))
	err := walkTags(content, func(raw []byte, token nethtml.Token, parent string) []byte {
		attrs := attributeMap(token)
		for _, ref := range classify(token.Data, attrs, parent) {
			srcset := ref.srcset
			raw = rewriteAttribute(raw, ref.key, func(value string) (string, bool) {
				return rewriteValue(value, srcset, file, index)
			})
		}
		return raw
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("update html %s: %w", file.Alias(), err)
	}
	return out.Bytes(), nil
}

// walkTags visits every start or self-closing tag along with the nearest open
// media container (picture, audio, video). When out is given, every token is
// copied to it, with tags replaced by whatever visit returns.
func walkTags(content []byte, visit func(raw []byte, token nethtml.Token, parent string) []byte, out ...*bytes.Buffer) error {
	var sink *bytes.Buffer
	if len(out) > 0 {
		sink = out[0]
	}

	tokenizer := nethtml.NewTokenizer(bytes.NewReader(content))
	var containers []string
	for {
		tokenType := tokenizer.Next()
		if tokenType == nethtml.ErrorToken {
			if errors.Is(tokenizer.Err(), io.EOF) {
				return nil
			}
			return tokenizer.Err()
		}

		raw := append([]byte(nil), tokenizer.Raw()...)
		switch tokenType {
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			token := tokenizer.Token()
			parent := ""
			if len(containers) > 0 {
				parent = containers[len(containers)-1]
			}
			if rewritten := visit(raw, token, parent); rewritten != nil {
				raw = rewritten
			}
			if tokenType == nethtml.StartTagToken && isContainer(token.Data) {
				containers = append(containers, token.Data)
			}
		case nethtml.EndTagToken:
			name, _ := tokenizer.TagName()
			if isContainer(string(name)) && len(containers) > 0 && containers[len(containers)-1] == string(name) {
				containers = containers[:len(containers)-1]
			}
		}

		if sink != nil {
			sink.Write(raw)
		}
	}
}

func isContainer(tag string) bool {
	return tag == "picture" || tag == "video" || tag == "audio"
}

func attributeMap(token nethtml.Token) map[string]string {
	attrs := make(map[string]string, len(token.Attr))
	for _, attr := range token.Attr {
		if attr.Namespace != "" {
			continue
		}
		if _, ok := attrs[attr.Key]; !ok {
			attrs[attr.Key] = attr.Val
		}
	}
	return attrs
}

func classify(tag string, attrs map[string]string, parent string) []attributeRef {
	switch tag {
	case "link":
		if directive, ok := linkDirective(attrs); ok {
			return []attributeRef{{key: "href", directive: directive}}
		}
	case "img":
		return []attributeRef{{key: "src", directive: models.ImgSrc}, {key: "srcset", directive: models.ImgSrc, srcset: true}}
	case "source":
		switch parent {
		case "picture":
			return []attributeRef{{key: "srcset", directive: models.ImgSrc, srcset: true}, {key: "src", directive: models.ImgSrc}}
		case "video", "audio":
			return []attributeRef{{key: "src", directive: models.MediaSrc}}
		}
	case "track", "audio":
		return []attributeRef{{key: "src", directive: models.MediaSrc}}
	case "video":
		return []attributeRef{{key: "src", directive: models.MediaSrc}, {key: "poster", directive: models.ImgSrc}}
	case "iframe", "fencedframe":
		return []attributeRef{{key: "src", directive: models.ChildSrc}}
	case "script":
		return []attributeRef{{key: "src", directive: models.ScriptSrc}}
	case "embed":
		return []attributeRef{{key: "src", directive: models.ObjectSrc}}
	case "object":
		return []attributeRef{{key: "data", directive: models.ObjectSrc}}
	}
	return nil
}

// linkDirective reports whether a <link> is a fetch at all, and under which directive.
func linkDirective(attrs map[string]string) (models.PolicyDirective, bool) {
	rels := strings.Fields(strings.ToLower(attrs["rel"]))
	for _, rel := range rels {
		switch rel {
		case "stylesheet":
			return models.StyleSrc, true
		case "icon", "apple-touch-icon":
			return models.ImgSrc, true
		case "manifest":
			return models.ManifestSrc, true
		case "modulepreload":
			return models.ScriptSrc, true
		}
	}
	if as, ok := attrs["as"]; ok {
		return linkAsDirectives[strings.ToLower(strings.TrimSpace(as))], true
	}
	return models.DirectiveNone, false
}

func attributeURLs(value string, srcset bool) []string {
	if !srcset {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		return []string{strings.TrimSpace(value)}
	}
	var urls []string
	for _, candidate := range strings.Split(value, ",") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}

func rewriteValue(value string, srcset bool, file *models.FileInfo, index *models.FileIndex) (string, bool) {
	if !srcset {
		return resolver.Rewrite(value, file, index)
	}

	changed := false
	candidates := strings.Split(value, ",")
	for i, candidate := range candidates {
		rest := strings.TrimLeft(candidate, " \t\r\n\f")
		lead := candidate[:len(candidate)-len(rest)]
		end := strings.IndexAny(rest, " \t\r\n\f")
		if end < 0 {
			end = len(rest)
		}
		if end == 0 {
			continue
		}
		if rewritten, ok := resolver.Rewrite(rest[:end], file, index); ok {
			candidates[i] = lead + rewritten + rest[end:]
			changed = true
		}
	}
	return strings.Join(candidates, ","), changed
}

// rewriteAttribute replaces the value of the first attribute named key inside a
// raw tag, leaving every other byte of the tag untouched.
func rewriteAttribute(raw []byte, key string, transform func(string) (string, bool)) []byte {
	start := bytes.IndexAny(raw, " \t\r\n\f/>")
	if start < 0 {
		return raw
	}

	for _, match := range attributeRegex.FindAllSubmatchIndex(raw[start:], -1) {
		if !strings.EqualFold(string(raw[start+match[2]:start+match[3]]), key) {
			continue
		}
		valueStart, valueEnd := -1, -1
		for group := 2; group <= 4; group++ {
			if match[2*group] >= 0 {
				valueStart, valueEnd = start+match[2*group], start+match[2*group+1]
				break
			}
		}
		if valueStart < 0 {
			return raw
		}

		rewritten, ok := transform(nethtml.UnescapeString(string(raw[valueStart:valueEnd])))
		if !ok {
			return raw
		}
		out := make([]byte, 0, len(raw)+len(rewritten))
		out = append(out, raw[:valueStart]...)
		out = append(out, nethtml.EscapeString(rewritten)...)
		out = append(out, raw[valueEnd:]...)
		return out
	}
	return raw
}
