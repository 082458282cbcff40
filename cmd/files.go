package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List every discovered file with its hashed URL.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		return handleFilesCommand(rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

func handleFilesCommand(rootDependencies *RootDependencies) error {
	if err := loadPipeline(context.Background(), rootDependencies, nil); err != nil {
		return err
	}

	data := pterm.TableData{{"Alias", "URL", "Content Type", "Lang", "References"}}
	graph := rootDependencies.Pipeline.Graph()
	for _, file := range rootDependencies.Pipeline.Files() {
		references := 0
		if dependencies, ok := graph.Get(file.Alias()); ok {
			references = len(dependencies.References())
		}
		data = append(data, []string{file.Alias(), file.URL(), file.ContentType(), file.Lang(), fmt.Sprintf("%d", references)})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
