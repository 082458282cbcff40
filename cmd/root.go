package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/meysamhadeli/assetgraph/config"
	"github.com/meysamhadeli/assetgraph/constants/lipgloss"
	"github.com/meysamhadeli/assetgraph/parsers/css"
	"github.com/meysamhadeli/assetgraph/parsers/html"
	"github.com/meysamhadeli/assetgraph/parsers/javascript"
	"github.com/meysamhadeli/assetgraph/static_pipeline"
	"github.com/meysamhadeli/assetgraph/static_pipeline/contracts"
	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

// RootDependencies is everything a subcommand needs after configuration is loaded.
type RootDependencies struct {
	Cwd      string
	Config   *config.Config
	Logger   *pterm.Logger
	Cache    *static_pipeline.ArtifactCache
	Pipeline *static_pipeline.StaticPipeline
}

var rootCmd = &cobra.Command{
	Use:   "assetgraph",
	Short: "Serve static files under content-addressed URLs with a CSP dependency graph.",
	Long: `assetgraph discovers a tree of static files, gives every file an immutable hashed URL,
rewrites the references between stylesheets, markup and scripts to those URLs, and
classifies every reference by the Content-Security-Policy directive that governs it.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("version: %s", version)))
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}

func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		return nil, err
	}
	if len(cfg.Files) == 0 && len(cfg.Directories) == 0 {
		return nil, fmt.Errorf("nothing to serve: declare files or directories in static-config, or pass --dir alias=path")
	}

	logger := cfg.NewLogger(os.Stderr)

	var cache *static_pipeline.ArtifactCache
	if cfg.EnableCache {
		cache, err = static_pipeline.NewArtifactCache(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
	}

	overrides, err := cfg.CSSOverrides()
	if err != nil {
		return nil, err
	}

	pipeline, err := static_pipeline.New(static_pipeline.Options{
		Files:       cfg.Files,
		Directories: cfg.Directories,
		Extensions:  cfg.Extensions,
		Parsers: []contracts.IReferenceParser{
			css.NewCSSParser(overrides),
			html.NewHTMLParser(),
			javascript.NewJavaScriptParser(),
		},
		Prefix:      cfg.Prefix,
		Concurrency: cfg.Concurrency,
		Closure:     models.ClosureMode(cfg.Closure),
		Cache:       cache,
		Minify:      cfg.Minify,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return &RootDependencies{
		Cwd:      cwd,
		Config:   cfg,
		Logger:   logger,
		Cache:    cache,
		Pipeline: pipeline,
	}, nil
}

// loadPipeline runs setup behind a spinner, mirroring each progress event.
func loadPipeline(ctx context.Context, deps *RootDependencies, registry contracts.IActionRegistry) error {
	spinner := pterm.DefaultSpinner.
		WithWriter(os.Stderr).
		WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100 * time.Millisecond).
		WithRemoveWhenDone(true)

	spinnerLoad, _ := spinner.Start("Loading static files...")
	for event := range deps.Pipeline.Load(ctx, registry) {
		if event.Err != nil {
			spinnerLoad.Fail(event.Err.Error())
			return event.Err
		}
		if event.Done {
			_ = spinnerLoad.Stop()
			fmt.Fprintln(os.Stderr, lipgloss.Green.Render(event.Message))
			return nil
		}
		spinnerLoad.UpdateText(event.Message)
	}
	_ = spinnerLoad.Stop()
	return static_pipeline.ErrNotLoaded
}
