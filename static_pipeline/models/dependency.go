package models

import (
	"sort"
)

// DependencyMapBuilder collects the references of one file before the graph is frozen.
type DependencyMapBuilder struct {
	File       *FileInfo
	References []ReferenceDetails

	seen map[referenceKey]struct{}
}

type referenceKey struct {
	url       string
	directive PolicyDirective
}

func NewDependencyMapBuilder(file *FileInfo, references []ReferenceDetails) *DependencyMapBuilder {
	builder := &DependencyMapBuilder{File: file}
	builder.Append(references...)
	return builder
}

// Append adds references that are not already present with the same URL and directive.
func (b *DependencyMapBuilder) Append(references ...ReferenceDetails) {
	if b.seen == nil {
		b.seen = make(map[referenceKey]struct{}, len(references))
	}
	for _, ref := range references {
		key := referenceKey{url: ref.URL, directive: ref.Directive}
		if _, ok := b.seen[key]; ok {
			continue
		}
		b.seen[key] = struct{}{}
		b.References = append(b.References, ref)
	}
}

// Finalize groups references by directive and returns the read-only map.
func (b *DependencyMapBuilder) Finalize() *DependencyMap {
	references := make([]ReferenceDetails, len(b.References))
	copy(references, b.References)

	policies := make(map[PolicyDirective][]ReferenceDetails)
	for _, ref := range references {
		if ref.Directive == DirectiveNone {
			continue
		}
		policies[ref.Directive] = append(policies[ref.Directive], ref)
	}

	return &DependencyMap{
		file:       b.File,
		references: references,
		policies:   policies,
	}
}

// DependencyMap holds a file's references grouped by policy directive.
type DependencyMap struct {
	file       *FileInfo
	references []ReferenceDetails
	policies   map[PolicyDirective][]ReferenceDetails
}

func (m *DependencyMap) File() *FileInfo {
	return m.file
}

func (m *DependencyMap) References() []ReferenceDetails {
	out := make([]ReferenceDetails, len(m.references))
	copy(out, m.references)
	return out
}

// Policy returns the references filed under one directive.
func (m *DependencyMap) Policy(directive PolicyDirective) []ReferenceDetails {
	refs := m.policies[directive]
	out := make([]ReferenceDetails, len(refs))
	copy(out, refs)
	return out
}

func (m *DependencyMap) Policies() map[PolicyDirective][]ReferenceDetails {
	out := make(map[PolicyDirective][]ReferenceDetails, len(m.policies))
	for directive := range m.policies {
		out[directive] = m.Policy(directive)
	}
	return out
}

// Directives lists the populated directives in sorted order.
func (m *DependencyMap) Directives() []PolicyDirective {
	out := make([]PolicyDirective, 0, len(m.policies))
	for directive := range m.policies {
		out = append(out, directive)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dangling returns the references that did not resolve to a known file.
func (m *DependencyMap) Dangling() []ReferenceDetails {
	var out []ReferenceDetails
	for _, ref := range m.references {
		if !ref.Resolved() {
			out = append(out, ref)
		}
	}
	return out
}

// DependencyGraph maps every scanned alias to its frozen dependency map.
type DependencyGraph struct {
	maps map[string]*DependencyMap
}

func NewDependencyGraph(maps map[string]*DependencyMap) *DependencyGraph {
	frozen := make(map[string]*DependencyMap, len(maps))
	for alias, m := range maps {
		frozen[alias] = m
	}
	return &DependencyGraph{maps: frozen}
}

func (g *DependencyGraph) Get(alias string) (*DependencyMap, bool) {
	if g == nil {
		return nil, false
	}
	m, ok := g.maps[alias]
	return m, ok
}

func (g *DependencyGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.maps)
}

func (g *DependencyGraph) Aliases() []string {
	if g == nil {
		return nil
	}
	out := make([]string, 0, len(g.maps))
	for alias := range g.maps {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// Describe renders alias -> directive -> sorted reference URLs for CSP assembly and debugging.
// References without a directive appear under "unclassified".
func (g *DependencyGraph) Describe() map[string]map[string][]string {
	out := make(map[string]map[string][]string, g.Len())
	for _, alias := range g.Aliases() {
		m := g.maps[alias]
		byDirective := make(map[string][]string)
		for _, ref := range m.references {
			key := ref.Directive.String()
			byDirective[key] = append(byDirective[key], ref.URL)
		}
		for key := range byDirective {
			sort.Strings(byDirective[key])
		}
		out[alias] = byDirective
	}
	return out
}
