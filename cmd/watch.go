package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/assetforge/assetforge/internal/build"
	"github.com/assetforge/assetforge/internal/config"
	"github.com/assetforge/assetforge/internal/manifest"
	"github.com/assetforge/assetforge/internal/runner"
	"github.com/assetforge/assetforge/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the static tree and recompile stale blocks on change",
	Long: `Watch the static asset tree and recompile any block whose contents change.
Bursts of writes are debounced so one editor save triggers one rebuild.

Examples:
  assetforge watch
  assetforge watch --debounce 500ms`,
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Debounce window for file change events")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blocks, err := manifest.LoadBlocks(cfg.Build.BlocksPath)
	if err != nil {
		return err
	}

	pipeline := build.NewPipeline(cfg, runner.NewExecRunner(logger), logger)

	rebuild := func() error {
		cached, err := manifest.LoadOrEmpty(cfg.Build.ManifestPath)
		if err != nil {
			return err
		}
		current, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
		if err != nil {
			return err
		}

		results := pipeline.Run(ctx, cached, current, blocks)
		failed := reportResults(ctx, logger, results)
		if failed > 0 {
			fmt.Printf("⚠️  %d blocks failed; watching for fixes\n", failed)
		}
		return current.Save(cfg.Build.ManifestPath)
	}

	// Initial build before watching.
	if err := rebuild(); err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher(watchDebounce, logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.AddFilter(watcher.AssetFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		fmt.Printf("🔄 %d files changed, rebuilding...\n", len(events))
		return rebuild()
	})

	if err := fw.AddRecursive(cfg.StaticDir); err != nil {
		return err
	}
	fw.Start(ctx)

	fmt.Printf("👀 Watching %s for changes (Ctrl+C to stop)\n", cfg.StaticDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopping watcher...")
	return nil
}
