package static_pipeline

import (
	"strings"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
)

// Hint describes how a client may preload or prefetch alias.
func (p *StaticPipeline) Hint(alias string) (models.EarlyHint, error) {
	loaded, err := p.current()
	if err != nil {
		return models.EarlyHint{}, err
	}
	file, err := p.File(alias)
	if err != nil {
		return models.EarlyHint{}, err
	}
	return p.hint(loaded, file), nil
}

// Hints returns the hint for alias followed by hints for every file its
// dependency map resolves to, without duplicates.
func (p *StaticPipeline) Hints(alias string) ([]models.EarlyHint, error) {
	loaded, err := p.current()
	if err != nil {
		return nil, err
	}
	file, err := p.File(alias)
	if err != nil {
		return nil, err
	}

	hints := []models.EarlyHint{p.hint(loaded, file)}
	seen := map[string]bool{alias: true}
	if dependencies, ok := loaded.graph.Get(alias); ok {
		for _, ref := range dependencies.References() {
			if !ref.Resolved() || seen[ref.File.Alias()] {
				continue
			}
			seen[ref.File.Alias()] = true
			hints = append(hints, p.hint(loaded, ref.File))
		}
	}
	return hints, nil
}

func (p *StaticPipeline) hint(loaded *tables, file *models.FileInfo) models.EarlyHint {
	contentType := p.outputContentType(file)
	href := file.URL()
	if loaded.registry != nil {
		href = loaded.registry.URL(href)
	}

	hint := models.EarlyHint{Alias: file.Alias(), Href: href, ContentType: contentType, Rel: "preload"}
	switch {
	case contentType == "text/css":
		hint.As = "style"
	case contentType == "application/javascript" || contentType == "text/javascript":
		hint.As = "script"
	case strings.HasPrefix(contentType, "font/"):
		hint.As = "font"
		hint.CrossOrigin = true
	case strings.HasPrefix(contentType, "image/"):
		hint.As = "image"
	case contentType == "application/json" || contentType == "application/manifest+json":
		hint.As = "fetch"
		hint.CrossOrigin = true
	case contentType == "text/html":
		hint.Rel = "prefetch"
		hint.As = "document"
	default:
		hint.Rel = "prefetch"
	}
	return hint
}
