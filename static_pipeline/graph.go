package static_pipeline

import (
	"sort"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/pterm/pterm"
)

// BuildDependencyGraph merges each file's references with those of the files
// it references, then freezes the result.
//
// In single-pass mode each map is visited once in alias order and inlines the
// references its direct targets hold at that moment, so grandchildren only
// appear when the intermediate file was merged earlier in the pass. Transitive
// mode walks the full closure instead.
func BuildDependencyGraph(builders map[string]*models.DependencyMapBuilder, mode models.ClosureMode, logger *pterm.Logger) *models.DependencyGraph {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	}

	aliases := make([]string, 0, len(builders))
	for alias := range builders {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	direct := make(map[string][]models.ReferenceDetails, len(builders))
	for _, alias := range aliases {
		refs := append([]models.ReferenceDetails(nil), builders[alias].References...)
		direct[alias] = refs
		for _, ref := range refs {
			if !ref.Resolved() {
				logger.Warn("Unresolved reference", logger.Args("alias", alias, "reference", ref.URL, "directive", ref.Directive.String()))
			}
		}
	}

	switch mode {
	case models.ClosureTransitive:
		for _, alias := range aliases {
			mergeClosure(alias, builders[alias], direct)
		}
	default:
		for _, alias := range aliases {
			mergeSinglePass(alias, builders)
		}
	}

	maps := make(map[string]*models.DependencyMap, len(builders))
	for _, alias := range aliases {
		maps[alias] = builders[alias].Finalize()
	}
	return models.NewDependencyGraph(maps)
}

func mergeSinglePass(alias string, builders map[string]*models.DependencyMapBuilder) {
	builder := builders[alias]
	snapshot := append([]models.ReferenceDetails(nil), builder.References...)
	for _, ref := range snapshot {
		if !ref.Resolved() || ref.File.Alias() == alias {
			continue
		}
		if target, ok := builders[ref.File.Alias()]; ok {
			builder.Append(target.References...)
		}
	}
}

func mergeClosure(alias string, builder *models.DependencyMapBuilder, direct map[string][]models.ReferenceDetails) {
	visited := map[string]bool{alias: true}
	queue := targets(direct[alias])
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true

		refs, ok := direct[next]
		if !ok {
			continue
		}
		builder.Append(refs...)
		queue = append(queue, targets(refs)...)
	}
}

func targets(refs []models.ReferenceDetails) []string {
	var out []string
	for _, ref := range refs {
		if ref.Resolved() {
			out = append(out, ref.File.Alias())
		}
	}
	return out
}
