package css

import (
	"context"
	"testing"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/meysamhadeli/assetgraph/static_pipeline/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSSParser_ImportIsStyleSrc(t *testing.T) {
	index, files := testsupport.Index("site/main.css", "site/x.css")
	parser := NewCSSParser(nil)
	content := []byte(`@import url("x.css");` + "\n" + `@import url("missing.css");`)

	refs, err := parser.Parse(context.Background(), content, files["site/main.css"], index)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, models.StyleSrc, refs[0].Directive)
	assert.Same(t, files["site/x.css"], refs[0].File)
	assert.Nil(t, refs[1].File)

	updated, err := parser.Update(context.Background(), content, files["site/main.css"], index)
	require.NoError(t, err)
	assert.Equal(t,
		`@import url("`+files["site/x.css"].URL()+`");`+"\n"+`@import url("missing.css");`,
		string(updated))
}

func TestCSSParser_DirectivesAndQuoting(t *testing.T) {
	index, files := testsupport.Index("site/a.css", "site/b.png", "site/c.jpg", "site/font.woff2", "site/font.woff")
	parser := NewCSSParser(nil)
	content := []byte(`
/* background: url(ignored.png) */
.hero { color: red; background: url(b.png) no-repeat; }
.card { background-image: url('c.jpg'), url(data:image/png;base64,AAAA); }
@font-face {
  font-family: "Icons";
  src: url("font.woff2") format("woff2"), url(font.woff) format("woff");
}
`)

	refs, err := parser.Parse(context.Background(), content, files["site/a.css"], index)
	require.NoError(t, err)
	require.Len(t, refs, 4)

	assert.Equal(t, models.ImgSrc, refs[0].Directive)
	assert.Same(t, files["site/b.png"], refs[0].File)
	assert.Equal(t, models.ImgSrc, refs[1].Directive)
	assert.Same(t, files["site/c.jpg"], refs[1].File)
	assert.Equal(t, models.FontSrc, refs[2].Directive)
	assert.Equal(t, models.FontSrc, refs[3].Directive)

	updated, err := parser.Update(context.Background(), content, files["site/a.css"], index)
	require.NoError(t, err)
	assert.Contains(t, string(updated), "url("+files["site/b.png"].URL()+")")
	assert.Contains(t, string(updated), "url('"+files["site/c.jpg"].URL()+"')")
	assert.Contains(t, string(updated), `url("`+files["site/font.woff2"].URL()+`")`)
	assert.Contains(t, string(updated), "/* background: url(ignored.png) */")
}

func TestCSSParser_BareImportString(t *testing.T) {
	index, files := testsupport.Index("main.css", "reset.css")
	parser := NewCSSParser(nil)

	refs, err := parser.Parse(context.Background(), []byte(`@import "reset.css";`), files["main.css"], index)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Same(t, files["reset.css"], refs[0].File)
}

func TestCSSParser_PropertyOverrides(t *testing.T) {
	index, files := testsupport.Index("a.css", "b.png")
	parser := NewCSSParser(map[string]models.PolicyDirective{
		"background": models.DirectiveNone,
		"content":    models.ImgSrc,
	})
	content := []byte(`.a { background: url(b.png); } .b::after { content: url(b.png); }`)

	refs, err := parser.Parse(context.Background(), content, files["a.css"], index)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, models.ImgSrc, refs[0].Directive)
}

func TestCSSParser_RoundTripLeavesNoDangling(t *testing.T) {
	index, files := testsupport.Index("site/a.css", "site/b.png")
	parser := NewCSSParser(nil)
	content := []byte(`.a { background: url(b.png); }`)

	updated, err := parser.Update(context.Background(), content, files["site/a.css"], index)
	require.NoError(t, err)

	refs, err := parser.Parse(context.Background(), updated, files["site/a.css"], index)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.True(t, refs[0].Resolved())
}
