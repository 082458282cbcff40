package javascript

import (
	"context"
	"fmt"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/meysamhadeli/assetgraph/static_pipeline/resolver"
	"github.com/meysamhadeli/assetgraph/static_pipeline/rewrite"
	sitter "github.com/smacker/go-tree-sitter"
	jsgrammar "github.com/smacker/go-tree-sitter/javascript"
)

const ContentType = "application/javascript"

// JavaScriptParser finds module specifiers with the tree-sitter javascript grammar.
type JavaScriptParser struct {
	lang *sitter.Language
}

func NewJavaScriptParser() *JavaScriptParser {
	return &JavaScriptParser{lang: jsgrammar.GetLanguage()}
}

func (p *JavaScriptParser) Supports() []string {
	return []string{ContentType, "text/javascript"}
}

func (p *JavaScriptParser) Parse(ctx context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]models.ReferenceDetails, error) {
	specifiers, err := FindImports(ctx, p.lang, content, ScanOptions{})
	if err != nil {
		return nil, fmt.Errorf("parse javascript %s: %w", file.Alias(), err)
	}
	return References(specifiers, file, index), nil
}

func (p *JavaScriptParser) Update(ctx context.Context, content []byte, file *models.FileInfo, index *models.FileIndex) ([]byte, error) {
	specifiers, err := FindImports(ctx, p.lang, content, ScanOptions{})
	if err != nil {
		return nil, fmt.Errorf("update javascript %s: %w", file.Alias(), err)
	}
	return RewriteSpecifiers(content, specifiers, file, index), nil
}

// References resolves each specifier against file.
func References(specifiers []ImportSpecifier, file *models.FileInfo, index *models.FileIndex) []models.ReferenceDetails {
	references := make([]models.ReferenceDetails, 0, len(specifiers))
	for _, specifier := range specifiers {
		references = append(references, resolver.ResolveReference(specifier.Reference, file, index, specifier.Directive))
	}
	return references
}

// RewriteSpecifiers replaces every resolved specifier literal with its hashed URL.
// Unresolved specifiers keep their source text.
func RewriteSpecifiers(content []byte, specifiers []ImportSpecifier, file *models.FileInfo, index *models.FileIndex) []byte {
	var edits []rewrite.Edit
	for _, specifier := range specifiers {
		rewritten, ok := resolver.Rewrite(specifier.Reference, file, index)
		if !ok {
			continue
		}
		edits = append(edits, rewrite.Edit{Start: specifier.Start, End: specifier.End, Text: rewritten})
	}
	return rewrite.Apply(content, edits)
}
