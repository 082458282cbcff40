package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	content := []byte(`import "./a.js"; import "./b.js";`)

	out := Apply(content, []Edit{
		{Start: 25, End: 31, Text: "/static/b-2.js"},
		{Start: 8, End: 14, Text: "/static/a-1.js"},
	})
	assert.Equal(t, `import "/static/a-1.js"; import "/static/b-2.js";`, string(out))
	assert.Equal(t, `import "./a.js"; import "./b.js";`, string(content))
}

func TestApply_DropsOverlappingAndInvalidEdits(t *testing.T) {
	content := []byte("abcdef")

	out := Apply(content, []Edit{
		{Start: 1, End: 3, Text: "X"},
		{Start: 2, End: 4, Text: "Y"},
		{Start: 5, End: 99, Text: "Z"},
	})
	assert.Equal(t, "aXdef", string(out))
}

func TestApply_NoEditsCopies(t *testing.T) {
	content := []byte("abc")
	out := Apply(content, nil)
	out[0] = 'z'
	assert.Equal(t, "abc", string(content))
}
