package static_pipeline

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// minify shrinks CSS and JavaScript output. Other content types pass through.
func minify(content []byte, contentType string, sourcefile string) ([]byte, error) {
	var loader api.Loader
	switch contentType {
	case "text/css":
		loader = api.LoaderCSS
	case "application/javascript", "text/javascript":
		loader = api.LoaderJS
	default:
		return content, nil
	}

	result := api.Transform(string(content), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        sourcefile,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		messages := make([]string, 0, len(result.Errors))
		for _, message := range result.Errors {
			messages = append(messages, message.Text)
		}
		return nil, fmt.Errorf("failed to minify %s: %s", sourcefile, strings.Join(messages, "; "))
	}
	return result.Code, nil
}
