package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/meysamhadeli/assetgraph/constants/lipgloss"
	"github.com/meysamhadeli/assetgraph/server"
	"github.com/meysamhadeli/assetgraph/utils"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the static tree and serve it until interrupted.",
	Long: `The 'serve' subcommand discovers and hashes every configured file, builds the dependency
graph, and serves each file at its content-addressed URL with immutable cache headers.
References are rewritten per request; TypeScript is served as JavaScript.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		return handleServeCommand(rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func handleServeCommand(rootDependencies *RootDependencies) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := server.NewRegistry(rootDependencies.Config.BaseURL)
	registry.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := loadPipeline(ctx, rootDependencies, registry); err != nil {
		return err
	}

	srv := server.New(rootDependencies.Config.Address, registry, rootDependencies.Logger)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		utils.GracefulShutdown(ctx, cancel, func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				rootDependencies.Logger.Error("Graceful shutdown failed", rootDependencies.Logger.Args("error", err.Error()))
			}
			if rootDependencies.Cache != nil {
				stats := rootDependencies.Cache.GetPerformanceStats()
				rootDependencies.Logger.Info("Artifact cache", rootDependencies.Logger.Args(
					"requests", stats["total_requests"],
					"hit_rate_percent", stats["hit_rate_percent"],
					"evictions", stats["evictions"],
				))
			}
		})
	}()

	fmt.Println(lipgloss.BoxStyle.Render(fmt.Sprintf("Serving %d files on %s", len(rootDependencies.Pipeline.Files()), rootDependencies.Config.Address)))

	if err := srv.Start(); err != nil {
		cancel()
		<-shutdownDone
		return fmt.Errorf("server stopped: %w", err)
	}
	<-shutdownDone
	fmt.Println(lipgloss.Yellow.Render("🔄 Exiting..."))
	return nil
}
