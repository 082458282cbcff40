package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/meysamhadeli/assetgraph/static_pipeline"
	"github.com/meysamhadeli/assetgraph/utils"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [alias...]",
	Short: "Print the dependency graph grouped by CSP directive.",
	Long: `The 'graph' subcommand loads the static tree and prints, for every file (or only the given
aliases), the reference URLs it needs grouped by Content-Security-Policy directive.
References that did not resolve to a known file are listed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, _ := cmd.Flags().GetString("theme")
		plain, _ := cmd.Flags().GetBool("plain")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		return handleGraphCommand(rootDependencies, args, theme, plain)
	},
}

func init() {
	graphCmd.Flags().String("theme", "dracula", "Syntax highlighting theme for the JSON output.")
	graphCmd.Flags().Bool("plain", false, "Print plain JSON without highlighting.")
	rootCmd.AddCommand(graphCmd)
}

func handleGraphCommand(rootDependencies *RootDependencies, aliases []string, theme string, plain bool) error {
	if err := loadPipeline(context.Background(), rootDependencies, nil); err != nil {
		return err
	}

	described := rootDependencies.Pipeline.Graph().Describe()
	if len(aliases) > 0 {
		selected := make(map[string]map[string][]string, len(aliases))
		for _, alias := range aliases {
			entry, ok := described[alias]
			if !ok {
				return fmt.Errorf("%w: %q", static_pipeline.ErrUnknownAlias, alias)
			}
			selected[alias] = entry
		}
		described = selected
	}

	return utils.RenderJSON(os.Stdout, described, theme, plain)
}
