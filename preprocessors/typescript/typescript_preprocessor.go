package typescript

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/meysamhadeli/assetgraph/parsers/javascript"
	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/meysamhadeli/assetgraph/static_pipeline/resolver"
	sitter "github.com/smacker/go-tree-sitter"
	tsgrammar "github.com/smacker/go-tree-sitter/typescript/typescript"
)

const ContentType = "application/typescript"

// sourceExtensions maps the extension an import is written with to the
// TypeScript sources that compile to it.
var sourceExtensions = map[string][]string{
	".js":  {".ts"},
	".mjs": {".mts"},
	".cjs": {".cts"},
	"":     {".ts", ".mts"},
}

// TypeScriptPreprocessor serves .ts sources as JavaScript.
type TypeScriptPreprocessor struct {
	lang *sitter.Language
}

func NewTypeScriptPreprocessor() *TypeScriptPreprocessor {
	return &TypeScriptPreprocessor{lang: tsgrammar.GetLanguage()}
}

func (p *TypeScriptPreprocessor) Extensions() []string {
	return []string{"ts", "mts", "cts"}
}

func (p *TypeScriptPreprocessor) OutputContentType() string {
	return javascript.ContentType
}

func (p *TypeScriptPreprocessor) OutputExtension() string {
	return "js"
}

func (p *TypeScriptPreprocessor) Parse(ctx context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]models.ReferenceDetails, error) {
	specifiers, err := javascript.FindImports(ctx, p.lang, content, javascript.ScanOptions{SkipTypeOnly: true})
	if err != nil {
		return nil, fmt.Errorf("parse typescript %s: %w", file.Alias(), err)
	}
	return javascript.References(sourceSpecifiers(specifiers, file, index), file, index), nil
}

// Process rewrites resolved specifiers in the TypeScript source, then strips
// types with esbuild. Imports whose bindings are only used as types are
// elided the way tsc does it.
func (p *TypeScriptPreprocessor) Process(ctx context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]byte, error) {
	specifiers, err := javascript.FindImports(ctx, p.lang, content, javascript.ScanOptions{SkipTypeOnly: true})
	if err != nil {
		return nil, fmt.Errorf("process typescript %s: %w", file.Alias(), err)
	}
	rewritten := javascript.RewriteSpecifiers(content, sourceSpecifiers(specifiers, file, index), file, index)

	result := api.Transform(string(rewritten), api.TransformOptions{
		Loader:     api.LoaderTS,
		Format:     api.FormatDefault,
		Target:     api.ESNext,
		Sourcefile: file.Alias(),
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("transpile typescript %s: %s", file.Alias(), formatMessages(result.Errors))
	}
	return result.Code, nil
}

// sourceSpecifiers points relative specifiers written against the compiled
// output (`./util.js`, `./util`) at the TypeScript file they come from.
// Specifiers that already resolve, or carry a query or fragment, are kept.
func sourceSpecifiers(specifiers []javascript.ImportSpecifier, file *models.FileInfo, index *models.FileIndex) []javascript.ImportSpecifier {
	out := make([]javascript.ImportSpecifier, len(specifiers))
	copy(out, specifiers)
	for i, specifier := range out {
		reference := specifier.Reference
		if !isRelative(reference) || strings.ContainsAny(reference, "?#") {
			continue
		}
		if _, ok := resolver.ResolveFile(reference, file, index); ok {
			continue
		}
		extension := path.Ext(reference)
		candidates, ok := sourceExtensions[extension]
		if !ok {
			continue
		}
		stem := strings.TrimSuffix(reference, extension)
		for _, candidate := range candidates {
			if _, ok := resolver.ResolveFile(stem+candidate, file, index); ok {
				out[i].Reference = stem + candidate
				break
			}
		}
	}
	return out
}

func isRelative(reference string) bool {
	return strings.HasPrefix(reference, "./") || strings.HasPrefix(reference, "../") || strings.HasPrefix(reference, "/")
}

func formatMessages(messages []api.Message) string {
	parts := make([]string, 0, len(messages))
	for _, message := range messages {
		if message.Location != nil {
			parts = append(parts, fmt.Sprintf("%d:%d: %s", message.Location.Line, message.Location.Column+1, message.Text))
			continue
		}
		parts = append(parts, message.Text)
	}
	return strings.Join(parts, "; ")
}
