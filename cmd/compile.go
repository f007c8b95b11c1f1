package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/assetforge/assetforge/internal/build"
	"github.com/assetforge/assetforge/internal/config"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
	"github.com/assetforge/assetforge/internal/runner"
)

var compileCmd = &cobra.Command{
	Use:   "compile [blocks-file]",
	Short: "Compile all stale asset blocks",
	Long: `Compile every declared asset block whose contents changed since the last
build, writing versioned artifacts to the output directory and updating the
build manifest.

Examples:
  assetforge compile                       # Blocks file from configuration
  assetforge compile web/blocks.json       # Explicit blocks file
  assetforge compile --force               # Recompile everything`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

var compileForce bool

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().BoolVar(&compileForce, "force", false, "Recompile all blocks regardless of staleness")
}

func runCompile(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	blocksPath := cfg.Build.BlocksPath
	if len(args) == 1 {
		blocksPath = args[0]
	}

	logger := newLogger()
	ctx := context.Background()

	blocks, err := manifest.LoadBlocks(blocksPath)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		fmt.Println("No asset blocks declared.")
		return nil
	}

	cached, err := manifest.LoadOrEmpty(cfg.Build.ManifestPath)
	if err != nil {
		return err
	}
	if compileForce {
		cached = manifest.New()
	}

	current, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
	if err != nil {
		return err
	}

	fmt.Printf("🔨 Compiling %d asset blocks...\n", len(blocks))

	pipeline := build.NewPipeline(cfg, runner.NewExecRunner(logger), logger)
	results := pipeline.Run(ctx, cached, current, blocks)

	failed := reportResults(ctx, logger, results)

	if err := current.Save(cfg.Build.ManifestPath); err != nil {
		return err
	}

	snap := pipeline.Metrics().Snapshot()
	fmt.Printf("✅ Done in %v: %d compiled, %d up to date, %d failed\n",
		time.Since(startTime).Round(time.Millisecond), snap.Compiled, snap.Skipped, snap.Failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d blocks failed to compile", failed, len(blocks))
	}
	return nil
}

func reportResults(ctx context.Context, logger logging.Logger, results []build.Result) int {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Error(ctx, res.Err, "block failed", "block", res.Block.String())
		}
	}
	return failed
}
