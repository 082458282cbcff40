package html

import (
	"context"
	"testing"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/meysamhadeli/assetgraph/static_pipeline/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html>
<head>
  <link rel="stylesheet" href="css/site.css">
  <link rel="preload" as="font" href="fonts/body.woff2" crossorigin>
  <link rel="preload" as="unknown" href="data/blob.bin">
  <link rel="canonical" href="https://example.com/">
  <link rel="icon" href="favicon.ico">
  <script src="app.js" defer></script>
</head>
<body>
  <img alt="logo src=wrong.png" src="img/logo.png" srcset="img/logo.png 1x, img/logo@2x.png 2x">
  <picture><source srcset="img/wide.webp"><img src="img/logo.png"></picture>
  <video src="media/intro.mp4" poster="img/poster.jpg"><source src="media/intro.webm"><track src="media/intro.vtt"></video>
  <iframe src="embed.html"></iframe>
  <script type="module">import "./inline.js";</script>
</body>
</html>`

func pageIndex() (*models.FileIndex, map[string]*models.FileInfo) {
	return testsupport.Index(
		"site/index.html",
		"site/css/site.css",
		"site/fonts/body.woff2",
		"site/favicon.ico",
		"site/app.js",
		"site/img/logo.png",
		"site/img/logo@2x.png",
		"site/img/wide.webp",
		"site/img/poster.jpg",
		"site/media/intro.mp4",
		"site/media/intro.webm",
		"site/media/intro.vtt",
		"site/embed.html",
	)
}

func directiveFor(refs []models.ReferenceDetails, file *models.FileInfo) []models.PolicyDirective {
	var out []models.PolicyDirective
	for _, ref := range refs {
		if ref.File == file {
			out = append(out, ref.Directive)
		}
	}
	return out
}

func TestHTMLParser_Classification(t *testing.T) {
	index, files := pageIndex()
	parser := NewHTMLParser()

	refs, err := parser.Parse(context.Background(), []byte(page), files["site/index.html"], index)
	require.NoError(t, err)

	assert.Equal(t, []models.PolicyDirective{models.StyleSrc}, directiveFor(refs, files["site/css/site.css"]))
	assert.Equal(t, []models.PolicyDirective{models.FontSrc}, directiveFor(refs, files["site/fonts/body.woff2"]))
	assert.Equal(t, []models.PolicyDirective{models.ImgSrc}, directiveFor(refs, files["site/favicon.ico"]))
	assert.Equal(t, []models.PolicyDirective{models.ScriptSrc}, directiveFor(refs, files["site/app.js"]))
	assert.Equal(t, []models.PolicyDirective{models.ImgSrc, models.ImgSrc, models.ImgSrc}, directiveFor(refs, files["site/img/logo.png"]))
	assert.Equal(t, []models.PolicyDirective{models.ImgSrc}, directiveFor(refs, files["site/img/logo@2x.png"]))
	assert.Equal(t, []models.PolicyDirective{models.ImgSrc}, directiveFor(refs, files["site/img/wide.webp"]))
	assert.Equal(t, []models.PolicyDirective{models.ImgSrc}, directiveFor(refs, files["site/img/poster.jpg"]))
	assert.Equal(t, []models.PolicyDirective{models.MediaSrc}, directiveFor(refs, files["site/media/intro.mp4"]))
	assert.Equal(t, []models.PolicyDirective{models.MediaSrc}, directiveFor(refs, files["site/media/intro.webm"]))
	assert.Equal(t, []models.PolicyDirective{models.MediaSrc}, directiveFor(refs, files["site/media/intro.vtt"]))
	assert.Equal(t, []models.PolicyDirective{models.ChildSrc}, directiveFor(refs, files["site/embed.html"]))

	var unclassified []models.ReferenceDetails
	for _, ref := range refs {
		if ref.Directive == models.DirectiveNone {
			unclassified = append(unclassified, ref)
		}
		assert.NotEqual(t, "https://example.com/", ref.URL, "canonical links are not fetches")
	}
	require.Len(t, unclassified, 1)
	assert.Nil(t, unclassified[0].File)
	assert.Equal(t, "/static/site/data/blob.bin", unclassified[0].URL)
}

func TestHTMLParser_UpdateRewritesResolvedAttributes(t *testing.T) {
	index, files := pageIndex()
	parser := NewHTMLParser()

	updated, err := parser.Update(context.Background(), []byte(page), files["site/index.html"], index)
	require.NoError(t, err)
	out := string(updated)

	assert.Contains(t, out, `<link rel="stylesheet" href="`+files["site/css/site.css"].URL()+`">`)
	assert.Contains(t, out, `<script src="`+files["site/app.js"].URL()+`" defer></script>`)
	assert.Contains(t, out, `alt="logo src=wrong.png" src="`+files["site/img/logo.png"].URL()+`"`)
	assert.Contains(t, out, `srcset="`+files["site/img/logo.png"].URL()+` 1x, `+files["site/img/logo@2x.png"].URL()+` 2x"`)
	assert.Contains(t, out, `poster="`+files["site/img/poster.jpg"].URL()+`"`)
	assert.Contains(t, out, `href="data/blob.bin"`)
	assert.Contains(t, out, `<script type="module">import "./inline.js";</script>`)
	assert.Contains(t, out, `<link rel="canonical" href="https://example.com/">`)
}

func TestHTMLParser_RoundTripLeavesNoDangling(t *testing.T) {
	index, files := testsupport.Index("index.html", "app.js", "style.css")
	parser := NewHTMLParser()
	content := []byte(`<link rel=stylesheet href=style.css><script src="app.js"></script>`)

	updated, err := parser.Update(context.Background(), content, files["index.html"], index)
	require.NoError(t, err)

	refs, err := parser.Parse(context.Background(), updated, files["index.html"], index)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	for _, ref := range refs {
		assert.True(t, ref.Resolved(), ref.URL)
	}
}
