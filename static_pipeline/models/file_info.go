package models

import (
	"path"
	"strings"
)

// StaticFile declares a single file served under an explicit alias.
type StaticFile struct {
	Alias string `mapstructure:"alias" json:"alias"`
	Path  string `mapstructure:"path" json:"path"`
}

// StaticDirectory declares a directory tree whose files are namespaced under Alias.
type StaticDirectory struct {
	Alias string `mapstructure:"alias" json:"alias"`
	Path  string `mapstructure:"path" json:"path"`
}

// WorkingFile is the mutable record produced during discovery.
type WorkingFile struct {
	Name           string
	DirectoryAlias string
	RelativePath   string
	AbsolutePath   string
	Extension      string
	Lang           string
	ContentType    string
	Alias          string
}

// FriendlyName is the alias without its final extension.
func (w WorkingFile) FriendlyName() string {
	if w.Extension == "" {
		return w.Alias
	}
	return strings.TrimSuffix(w.Alias, "."+w.Extension)
}

// Finalize freezes the working record once hashing and URL minting have completed.
func (w WorkingFile) Finalize(hash string, url string, aliasURL string) *FileInfo {
	return &FileInfo{
		name:           w.Name,
		directoryAlias: w.DirectoryAlias,
		relativePath:   w.RelativePath,
		absolutePath:   w.AbsolutePath,
		extension:      w.Extension,
		lang:           w.Lang,
		contentType:    w.ContentType,
		alias:          w.Alias,
		hash:           hash,
		url:            url,
		aliasURL:       aliasURL,
	}
}

// MintURL builds the content-addressed URL {prefix}/{friendlyName}-{hash}.{extension}.
func MintURL(prefix string, friendlyName string, hash string, extension string) string {
	minted := joinPrefix(prefix, friendlyName) + "-" + hash
	if extension != "" {
		minted += "." + extension
	}
	return minted
}

// MintAliasURL builds the stable resolution URL {prefix}/{alias}.
func MintAliasURL(prefix string, alias string) string {
	return joinPrefix(prefix, alias)
}

func joinPrefix(prefix string, name string) string {
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "/" {
		return "/" + strings.TrimPrefix(name, "/")
	}
	return prefix + "/" + strings.TrimPrefix(name, "/")
}

// FileInfo is the immutable identity of a discovered file.
type FileInfo struct {
	name           string
	directoryAlias string
	relativePath   string
	absolutePath   string
	extension      string
	lang           string
	contentType    string
	alias          string
	hash           string
	url            string
	aliasURL       string
}

func (f *FileInfo) Name() string           { return f.name }
func (f *FileInfo) DirectoryAlias() string { return f.directoryAlias }
func (f *FileInfo) RelativePath() string   { return f.relativePath }
func (f *FileInfo) AbsolutePath() string   { return f.absolutePath }
func (f *FileInfo) Extension() string      { return f.extension }
func (f *FileInfo) Lang() string           { return f.lang }
func (f *FileInfo) ContentType() string    { return f.contentType }
func (f *FileInfo) Alias() string          { return f.alias }
func (f *FileInfo) Hash() string           { return f.hash }

// URL is the content-addressed URL handed to clients.
func (f *FileInfo) URL() string { return f.url }

// AliasURL is the stable URL used only to resolve relative references.
func (f *FileInfo) AliasURL() string { return f.aliasURL }

// Dir is the alias directory the file lives in.
func (f *FileInfo) Dir() string {
	dir := path.Dir(f.alias)
	if dir == "." {
		return ""
	}
	return dir
}

// FileIndex is the read-only lookup view handed to parsers and preprocessors.
// Rewritten content carries hashed URLs, so those resolve as well.
type FileIndex struct {
	byAlias  map[string]*FileInfo
	byURL    map[string]*FileInfo
	byHashed map[string]*FileInfo
}

// NewFileIndex copies both tables so later mutation of the inputs cannot leak in.
func NewFileIndex(byAlias map[string]*FileInfo, byURL map[string]*FileInfo) *FileIndex {
	index := &FileIndex{
		byAlias:  make(map[string]*FileInfo, len(byAlias)),
		byURL:    make(map[string]*FileInfo, len(byURL)),
		byHashed: make(map[string]*FileInfo, len(byAlias)),
	}
	for key, file := range byAlias {
		index.byAlias[key] = file
		index.byHashed[file.URL()] = file
	}
	for key, file := range byURL {
		index.byURL[key] = file
	}
	return index
}

func (i *FileIndex) ByAlias(alias string) (*FileInfo, bool) {
	if i == nil {
		return nil, false
	}
	file, ok := i.byAlias[alias]
	return file, ok
}

func (i *FileIndex) ByURL(aliasURL string) (*FileInfo, bool) {
	if i == nil {
		return nil, false
	}
	if file, ok := i.byURL[aliasURL]; ok {
		return file, true
	}
	file, ok := i.byHashed[aliasURL]
	return file, ok
}

func (i *FileIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byAlias)
}
