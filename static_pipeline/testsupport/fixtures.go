// Package testsupport builds file indexes for parser and resolver tests.
package testsupport

import (
	"fmt"
	"path"
	"strings"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/zeebo/xxh3"
)

const Prefix = "/static"

// File builds a finalized FileInfo for alias, hashing the alias itself.
func File(alias string) *models.FileInfo {
	name := path.Base(alias)
	ext := strings.TrimPrefix(path.Ext(name), ".")
	contentType, _ := models.NewExtensionTable(nil).Lookup(ext)
	working := models.WorkingFile{
		Name:         name,
		RelativePath: alias,
		AbsolutePath: "/fixtures/" + alias,
		Extension:    ext,
		ContentType:  contentType,
		Alias:        alias,
	}
	hash := fmt.Sprintf("%016x", xxh3.HashString(alias))
	outExt := ext
	switch ext {
	case "ts", "mts", "cts":
		outExt = "js"
	}
	return working.Finalize(hash, models.MintURL(Prefix, working.FriendlyName(), hash, outExt), models.MintAliasURL(Prefix, alias))
}

// Index builds an index over the given aliases.
func Index(aliases ...string) (*models.FileIndex, map[string]*models.FileInfo) {
	byAlias := make(map[string]*models.FileInfo, len(aliases))
	byURL := make(map[string]*models.FileInfo, len(aliases))
	for _, alias := range aliases {
		file := File(alias)
		byAlias[alias] = file
		byURL[file.AliasURL()] = file
	}
	return models.NewFileIndex(byAlias, byURL), byAlias
}
