package static_pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFileName(t *testing.T) {
	cases := []struct {
		name      string
		stem      string
		lang      string
		extension string
	}{
		{"index.html", "index", "", "html"},
		{"index.en.html", "index", "en", "html"},
		{"index.en-us.html", "index", "en-US", "html"},
		{"jquery.min.js", "jquery.min", "", "js"},
		{"LOGO.PNG", "LOGO", "", "PNG"},
		{"README", "README", "", ""},
		{"app.js.map", "app.js", "", "map"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stem, lang, extension := SplitFileName(tc.name)
			assert.Equal(t, tc.stem, stem)
			assert.Equal(t, tc.lang, lang)
			assert.Equal(t, tc.extension, extension)
		})
	}
}

func TestHashContent(t *testing.T) {
	content := []byte("body { color: red }")

	assert.Equal(t, HashContent(content), HashContent(append([]byte(nil), content...)))
	assert.NotEqual(t, HashContent(content), HashContent([]byte("body { color: blue }")))
	assert.Len(t, HashContent(nil), 16)
}
