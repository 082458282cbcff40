package models

// PolicyDirective mirrors the Content-Security-Policy fetch directives.
type PolicyDirective string

const (
	DirectiveNone  PolicyDirective = ""
	ChildSrc       PolicyDirective = "child-src"
	ConnectSrc     PolicyDirective = "connect-src"
	DefaultSrc     PolicyDirective = "default-src"
	FencedFrameSrc PolicyDirective = "fenced-frame-src"
	FontSrc        PolicyDirective = "font-src"
	FrameSrc       PolicyDirective = "frame-src"
	ImgSrc         PolicyDirective = "img-src"
	ManifestSrc    PolicyDirective = "manifest-src"
	MediaSrc       PolicyDirective = "media-src"
	ObjectSrc      PolicyDirective = "object-src"
	ScriptSrc      PolicyDirective = "script-src"
	ScriptSrcElem  PolicyDirective = "script-src-elem"
	ScriptSrcAttr  PolicyDirective = "script-src-attr"
	StyleSrc       PolicyDirective = "style-src"
	StyleSrcElem   PolicyDirective = "style-src-elem"
	StyleSrcAttr   PolicyDirective = "style-src-attr"
	WorkerSrc      PolicyDirective = "worker-src"
)

var knownDirectives = map[PolicyDirective]struct{}{
	ChildSrc: {}, ConnectSrc: {}, DefaultSrc: {}, FencedFrameSrc: {}, FontSrc: {},
	FrameSrc: {}, ImgSrc: {}, ManifestSrc: {}, MediaSrc: {}, ObjectSrc: {},
	ScriptSrc: {}, ScriptSrcElem: {}, ScriptSrcAttr: {}, StyleSrc: {},
	StyleSrcElem: {}, StyleSrcAttr: {}, WorkerSrc: {},
}

// ParseDirective returns the directive named by value, if it is one of the known directives.
func ParseDirective(value string) (PolicyDirective, bool) {
	directive := PolicyDirective(value)
	_, ok := knownDirectives[directive]
	return directive, ok
}

func (d PolicyDirective) String() string {
	if d == DirectiveNone {
		return "unclassified"
	}
	return string(d)
}

// ReferenceDetails is one outbound reference found in a file.
// File is nil when the reference is dangling.
type ReferenceDetails struct {
	URL       string          `json:"url"`
	Directive PolicyDirective `json:"directive,omitempty"`
	File      *FileInfo       `json:"-"`
}

func (r ReferenceDetails) Resolved() bool {
	return r.File != nil
}
