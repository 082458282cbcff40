// Package rewrite splices replacement text over byte ranges of a source file.
package rewrite

import (
	"bytes"
	"sort"
)

// Edit replaces content[Start:End] with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Apply returns a copy of content with every edit applied. Overlapping edits
// after the first one in source order are dropped.
func Apply(content []byte, edits []Edit) []byte {
	if len(edits) == 0 {
		out := make([]byte, len(content))
		copy(out, content)
		return out
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var buf bytes.Buffer
	buf.Grow(len(content))
	cursor := 0
	for _, edit := range sorted {
		if edit.Start < cursor || edit.End < edit.Start || edit.End > len(content) {
			continue
		}
		buf.Write(content[cursor:edit.Start])
		buf.WriteString(edit.Text)
		cursor = edit.End
	}
	buf.Write(content[cursor:])
	return buf.Bytes()
}
