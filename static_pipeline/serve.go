package static_pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
)

const immutableCacheControl = "public, max-age=31536000, immutable"

// Render reads a loaded file and returns the bytes a client receives along
// with their content type.
func (p *StaticPipeline) Render(ctx context.Context, file *models.FileInfo) ([]byte, string, error) {
	loaded, err := p.current()
	if err != nil {
		return nil, "", err
	}
	return p.render(ctx, loaded, file)
}

func (p *StaticPipeline) render(ctx context.Context, loaded *tables, file *models.FileInfo) ([]byte, string, error) {
	contentType := p.outputContentType(file)
	content, err := os.ReadFile(file.AbsolutePath())
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", file.Alias(), err)
	}

	var key string
	if p.options.Cache != nil {
		key = ArtifactKey(file.Alias(), content)
		if artifact, ok := p.options.Cache.Get(key); ok {
			return artifact, contentType, nil
		}
	}

	artifact, err := p.transform(ctx, content, loaded.index, file)
	if err != nil {
		return nil, "", err
	}
	if p.options.Minify {
		artifact, err = minify(artifact, contentType, file.Alias())
		if err != nil {
			return nil, "", err
		}
	}

	if p.options.Cache != nil {
		p.options.Cache.Set(key, artifact)
	}
	return artifact, contentType, nil
}

// transform applies the preprocessor, else the parser, else passes bytes through.
func (p *StaticPipeline) transform(ctx context.Context, content []byte, index *models.FileIndex, file *models.FileInfo) ([]byte, error) {
	if preprocessor, ok := p.preprocessors[strings.ToLower(file.Extension())]; ok {
		out, err := preprocessor.Process(ctx, content, file, index)
		if err != nil {
			return nil, fmt.Errorf("failed to process %s: %w", file.Alias(), err)
		}
		return out, nil
	}
	if parser, ok := p.parsers[strings.ToLower(file.ContentType())]; ok {
		out, err := parser.Update(ctx, content, file, index)
		if err != nil {
			return nil, fmt.Errorf("failed to update %s: %w", file.Alias(), err)
		}
		return out, nil
	}
	return content, nil
}

func (p *StaticPipeline) handler(loaded *tables, file *models.FileInfo) http.HandlerFunc {
	etag := strconv.Quote(file.Hash())
	return func(w http.ResponseWriter, r *http.Request) {
		artifact, contentType, err := p.render(r.Context(), loaded, file)
		if err != nil {
			p.logger.Error("Failed to render file", p.logger.Args("alias", file.Alias(), "error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		header := w.Header()
		header.Set("Content-Type", contentType)
		header.Set("Cache-Control", immutableCacheControl)
		header.Set("ETag", etag)
		header.Set("X-Content-Type-Options", "nosniff")

		if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		header.Set("Content-Length", strconv.Itoa(len(artifact)))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(artifact)
		}
	}
}
