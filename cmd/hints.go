package cmd

import (
	"context"
	"fmt"

	"github.com/meysamhadeli/assetgraph/server"
	"github.com/spf13/cobra"
)

var hintsCmd = &cobra.Command{
	Use:   "hints alias...",
	Short: "Print Link header values for preloading a file and its dependencies.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deep, _ := cmd.Flags().GetBool("deps")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		return handleHintsCommand(rootDependencies, args, deep)
	},
}

func init() {
	hintsCmd.Flags().Bool("deps", true, "Include hints for every file the alias depends on.")
	rootCmd.AddCommand(hintsCmd)
}

func handleHintsCommand(rootDependencies *RootDependencies, aliases []string, deep bool) error {
	registry := server.NewRegistry(rootDependencies.Config.BaseURL)
	if err := loadPipeline(context.Background(), rootDependencies, registry); err != nil {
		return err
	}

	for _, alias := range aliases {
		if !deep {
			hint, err := rootDependencies.Pipeline.Hint(alias)
			if err != nil {
				return err
			}
			fmt.Printf("Link: %s\n", hint.LinkHeader())
			continue
		}

		hints, err := rootDependencies.Pipeline.Hints(alias)
		if err != nil {
			return err
		}
		for _, hint := range hints {
			fmt.Printf("Link: %s\n", hint.LinkHeader())
		}
	}
	return nil
}
