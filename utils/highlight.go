package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderJSON writes value as indented JSON, syntax highlighted for a terminal
// unless plain is set.
func RenderJSON(w io.Writer, value interface{}, theme string, plain bool) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	if plain {
		_, err := w.Write(buf.Bytes())
		return err
	}
	return quick.Highlight(w, buf.String(), "json", "terminal256", theme)
}
