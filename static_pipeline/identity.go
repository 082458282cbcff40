package static_pipeline

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/language"
)

// HashContent is the content address of a file: xxh3-64 as 16 hex digits.
func HashContent(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}

var localeRegex = regexp.MustCompile(`^[A-Za-z]{2}(?:-[A-Za-z]{2})?$`)

// SplitFileName splits `<name>(.<lang>)?.<extension>`. The middle segment only
// counts as a language when it is a known two-letter code with an optional region.
func SplitFileName(name string) (stem string, lang string, extension string) {
	extension = strings.TrimPrefix(path.Ext(name), ".")
	if extension == "" {
		return name, "", ""
	}
	stem = strings.TrimSuffix(name, "."+extension)

	middle := strings.TrimPrefix(path.Ext(stem), ".")
	if middle == "" || middle == stem || !localeRegex.MatchString(middle) {
		return stem, "", extension
	}
	tag, err := language.Parse(middle)
	if err != nil {
		return stem, "", extension
	}
	return strings.TrimSuffix(stem, "."+middle), tag.String(), extension
}
