package javascript

import (
	"context"
	"fmt"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	sitter "github.com/smacker/go-tree-sitter"
)

// ImportSpecifier is one module specifier string literal found in a syntax tree.
// Start and End delimit the literal's text without its quotes.
type ImportSpecifier struct {
	Reference string
	Directive models.PolicyDirective
	Start     int
	End       int
}

// ScanOptions tunes the walk for grammar-specific syntax.
type ScanOptions struct {
	// SkipTypeOnly ignores `import type` / `export type` statements.
	SkipTypeOnly bool
}

// FindImports parses content with lang and returns every static import,
// re-export, dynamic import() and worker registration with a literal specifier.
func FindImports(ctx context.Context, lang *sitter.Language, content []byte, options ScanOptions) ([]ImportSpecifier, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse module: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root)
	}

	var specifiers []ImportSpecifier
	add := func(node *sitter.Node, directive models.PolicyDirective) {
		if specifier, ok := literal(node, content); ok {
			specifier.Directive = directive
			specifiers = append(specifiers, specifier)
		}
	}

	walk(root, func(node *sitter.Node) {
		switch node.Type() {
		case "import_statement", "export_statement":
			if options.SkipTypeOnly && hasKeyword(node, "type") {
				return
			}
			add(node.ChildByFieldName("source"), models.ScriptSrc)
		case "call_expression":
			function := node.ChildByFieldName("function")
			if function == nil {
				return
			}
			switch {
			case function.Type() == "import":
				add(firstArgument(node), models.ScriptSrc)
			case isServiceWorkerRegister(function, content):
				add(firstArgument(node), models.WorkerSrc)
			}
		case "new_expression":
			constructor := node.ChildByFieldName("constructor")
			if constructor == nil || constructor.Type() != "identifier" {
				return
			}
			switch constructor.Content(content) {
			case "Worker", "SharedWorker":
				add(firstArgument(node), models.WorkerSrc)
			}
		}
	})

	return specifiers, nil
}

func walk(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), visit)
	}
}

func literal(node *sitter.Node, content []byte) (ImportSpecifier, bool) {
	if node == nil || node.Type() != "string" {
		return ImportSpecifier{}, false
	}
	start, end := int(node.StartByte()), int(node.EndByte())
	if end-start < 2 {
		return ImportSpecifier{}, false
	}
	return ImportSpecifier{
		Reference: string(content[start+1 : end-1]),
		Start:     start + 1,
		End:       end - 1,
	}, true
}

func firstArgument(call *sitter.Node) *sitter.Node {
	arguments := call.ChildByFieldName("arguments")
	if arguments == nil || arguments.NamedChildCount() == 0 {
		return nil
	}
	return arguments.NamedChild(0)
}

// hasKeyword reports whether node has an anonymous child token equal to keyword.
func hasKeyword(node *sitter.Node, keyword string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && !child.IsNamed() && child.Type() == keyword {
			return true
		}
	}
	return false
}

// isServiceWorkerRegister matches `<...>.serviceWorker.register`.
func isServiceWorkerRegister(function *sitter.Node, content []byte) bool {
	if function.Type() != "member_expression" {
		return false
	}
	property := function.ChildByFieldName("property")
	if property == nil || property.Content(content) != "register" {
		return false
	}
	object := function.ChildByFieldName("object")
	if object == nil {
		return false
	}
	if object.Type() == "member_expression" {
		inner := object.ChildByFieldName("property")
		return inner != nil && inner.Content(content) == "serviceWorker"
	}
	return object.Type() == "identifier" && object.Content(content) == "serviceWorker"
}

func syntaxError(root *sitter.Node) error {
	var first *sitter.Node
	walk(root, func(node *sitter.Node) {
		if first == nil && (node.Type() == "ERROR" || node.IsMissing()) {
			first = node
		}
	})
	if first == nil {
		return fmt.Errorf("syntax error in module")
	}
	point := first.StartPoint()
	return fmt.Errorf("syntax error at line %d, column %d", point.Row+1, point.Column+1)
}
