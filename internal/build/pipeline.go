// Package build drives incremental compilation across a set of blocks.
// Blocks are independent of each other, so stale ones compile concurrently on
// a small worker pool; manifests are read-only snapshots during the run and
// results are applied back to the current manifest only after all workers
// finish.
package build

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/assetforge/assetforge/internal/compiler"
	"github.com/assetforge/assetforge/internal/config"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
	"github.com/assetforge/assetforge/internal/runner"
)

// Result is the outcome of one block's build.
type Result struct {
	Block      *manifest.Block
	OutputPath string
	Skipped    bool
	Duration   time.Duration
	Err        error
}

// Pipeline compiles stale blocks and writes their versioned artifacts.
type Pipeline struct {
	cfg     *config.Config
	run     runner.Runner
	logger  logging.Logger
	metrics *Metrics
}

// NewPipeline creates a build pipeline.
func NewPipeline(cfg *config.Config, run runner.Runner, logger logging.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		run:     run,
		logger:  logger.WithComponent("build"),
		metrics: &Metrics{},
	}
}

// Metrics returns the pipeline's build metrics.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Run checks every block against the cached manifest and compiles the stale
// ones, up to the configured number of workers in parallel. A failing block
// fails only its own result; the remaining blocks still build. Compiled
// paths are recorded into the current manifest after all workers finish, so
// the manifests stay read-only while compiles are in flight.
func (p *Pipeline) Run(ctx context.Context, cached, current *manifest.Manifest, blocks []manifest.Block) []Result {
	results := make([]Result, len(blocks))

	tasks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.cfg.Build.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				results[i] = p.buildBlock(ctx, cached, current, &blocks[i])
			}
		}()
	}
	for i := range blocks {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	for _, res := range results {
		p.metrics.record(res)
		if res.Err == nil {
			entry := current.Blocks[res.Block.NameHash]
			entry.CompiledPath = res.OutputPath
			current.Blocks[res.Block.NameHash] = entry
		}
	}
	return results
}

// buildBlock compiles a single block if it is stale and writes the artifact.
func (p *Pipeline) buildBlock(ctx context.Context, cached, current *manifest.Manifest, block *manifest.Block) Result {
	start := time.Now()
	res := Result{Block: block}

	c, err := compiler.New(block, p.cfg, p.run, p.logger)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	res.OutputPath = block.CompiledPath(p.cfg.OutputDir, current)
	if !c.NeedsCompile(ctx, cached, current) {
		p.logger.Debug(ctx, "block up to date", "block", block.String())
		res.Skipped = true
		res.Duration = time.Since(start)
		return res
	}

	output, err := c.Compile(ctx, current)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	if err := os.WriteFile(res.OutputPath, output, 0644); err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	res.Duration = time.Since(start)
	p.logger.Info(ctx, "block compiled", "block", block.String(),
		"output", res.OutputPath, "duration", res.Duration)
	return res
}
