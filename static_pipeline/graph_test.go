package static_pipeline

import (
	"testing"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/meysamhadeli/assetgraph/static_pipeline/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(file *models.FileInfo, directive models.PolicyDirective) models.ReferenceDetails {
	return models.ReferenceDetails{URL: file.URL(), Directive: directive, File: file}
}

func TestBuildDependencyGraph_GroupsAndKeepsDangling(t *testing.T) {
	_, files := testsupport.Index("site/index.html", "site/app.js", "site/logo.png")
	dangling := models.ReferenceDetails{URL: "/static/site/missing.css", Directive: models.StyleSrc}
	unclassified := models.ReferenceDetails{URL: "/static/site/blob.bin"}

	builders := map[string]*models.DependencyMapBuilder{
		"site/index.html": models.NewDependencyMapBuilder(files["site/index.html"], []models.ReferenceDetails{
			ref(files["site/app.js"], models.ScriptSrc),
			ref(files["site/logo.png"], models.ImgSrc),
			ref(files["site/logo.png"], models.ImgSrc),
			dangling,
			unclassified,
		}),
		"site/app.js":   models.NewDependencyMapBuilder(files["site/app.js"], nil),
		"site/logo.png": models.NewDependencyMapBuilder(files["site/logo.png"], nil),
	}

	graph := BuildDependencyGraph(builders, models.ClosureSinglePass, quietLogger())
	require.Equal(t, 3, graph.Len())

	index, ok := graph.Get("site/index.html")
	require.True(t, ok)
	assert.Len(t, index.References(), 4)
	assert.Len(t, index.Policy(models.ImgSrc), 1)
	assert.Equal(t, []models.ReferenceDetails{dangling}, index.Policy(models.StyleSrc))
	assert.Equal(t, []models.PolicyDirective{models.ImgSrc, models.ScriptSrc, models.StyleSrc}, index.Directives())
	assert.Len(t, index.Dangling(), 2)

	described := graph.Describe()["site/index.html"]
	assert.Equal(t, []string{files["site/app.js"].URL()}, described["script-src"])
	assert.Equal(t, []string{"/static/site/blob.bin"}, described["unclassified"])
}

func TestBuildDependencyGraph_SinglePassFollowsAliasOrder(t *testing.T) {
	_, files := testsupport.Index("a.js", "b.js", "c.js", "z.js")

	build := func(mode models.ClosureMode) *models.DependencyGraph {
		builders := map[string]*models.DependencyMapBuilder{
			"a.js": models.NewDependencyMapBuilder(files["a.js"], []models.ReferenceDetails{ref(files["z.js"], models.ScriptSrc)}),
			"z.js": models.NewDependencyMapBuilder(files["z.js"], []models.ReferenceDetails{ref(files["b.js"], models.ScriptSrc)}),
			"b.js": models.NewDependencyMapBuilder(files["b.js"], []models.ReferenceDetails{ref(files["c.js"], models.ScriptSrc)}),
			"c.js": models.NewDependencyMapBuilder(files["c.js"], nil),
		}
		return BuildDependencyGraph(builders, mode, quietLogger())
	}

	targetsOf := func(graph *models.DependencyGraph, alias string) []string {
		m, ok := graph.Get(alias)
		require.True(t, ok)
		var out []string
		for _, r := range m.References() {
			out = append(out, r.File.Alias())
		}
		return out
	}

	single := build(models.ClosureSinglePass)
	// z.js sorts after a.js, so a.js only sees z.js's direct reference.
	assert.Equal(t, []string{"z.js", "b.js"}, targetsOf(single, "a.js"))
	// b.js sorts before z.js and is merged first.
	assert.Equal(t, []string{"b.js", "c.js"}, targetsOf(single, "z.js"))

	transitive := build(models.ClosureTransitive)
	assert.Equal(t, []string{"z.js", "b.js", "c.js"}, targetsOf(transitive, "a.js"))
}

func TestBuildDependencyGraph_SelfReferenceDoesNotLoop(t *testing.T) {
	_, files := testsupport.Index("a.js")
	builders := map[string]*models.DependencyMapBuilder{
		"a.js": models.NewDependencyMapBuilder(files["a.js"], []models.ReferenceDetails{ref(files["a.js"], models.ScriptSrc)}),
	}

	for _, mode := range []models.ClosureMode{models.ClosureSinglePass, models.ClosureTransitive} {
		graph := BuildDependencyGraph(builders, mode, quietLogger())
		m, ok := graph.Get("a.js")
		require.True(t, ok)
		assert.Len(t, m.References(), 1)
	}
}
