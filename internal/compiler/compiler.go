// Package compiler implements the per-block compilation strategies. All four
// strategies (JS, CSS, LESS, SASS) share one contract: decide staleness
// against the manifests, resolve input paths, and produce compiled bytes by
// driving external compiler processes.
//
// LESS and SASS differ from CSS only in how the CSS text is produced
// upstream, so both delegate into the CSS strategy's minify-and-inline stage
// by composition. Strategies are stateless across calls; a compiler instance
// carries only its block's configuration.
package compiler

import (
	"context"
	"fmt"
	"os"

	"github.com/assetforge/assetforge/internal/config"
	forgeerrors "github.com/assetforge/assetforge/internal/errors"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
	"github.com/assetforge/assetforge/internal/runner"
)

// Compiler is the contract shared by all block compilation strategies.
type Compiler interface {
	// Block returns the block this compiler was built for.
	Block() *manifest.Block

	// Kind returns the block kind this strategy handles.
	Kind() manifest.Kind

	// NeedsCompile reports whether the block is stale relative to the
	// cached manifest.
	NeedsCompile(ctx context.Context, cached, current *manifest.Manifest) bool

	// ResolveInputPaths maps the block's relative asset references to
	// absolute paths under the static root. Every missing path is collected
	// into a single DependencyError.
	ResolveInputPaths() ([]string, error)

	// Compile produces the block's compiled bytes. Failures propagate
	// unchanged; no retry and no partial output.
	Compile(ctx context.Context, current *manifest.Manifest) ([]byte, error)
}

// New creates the compiler strategy matching the block's declared kind.
func New(block *manifest.Block, cfg *config.Config, run runner.Runner, logger logging.Logger) (Compiler, error) {
	switch block.Kind {
	case manifest.KindJS:
		return NewJS(block, cfg, run, logger), nil
	case manifest.KindCSS:
		return NewCSS(block, cfg, run, logger), nil
	case manifest.KindLess:
		return NewLess(block, cfg, run, logger), nil
	case manifest.KindSass:
		return NewSass(block, cfg, run, logger), nil
	default:
		return nil, fmt.Errorf("unknown compiler kind %q", block.Kind)
	}
}

// base carries the configuration shared by every strategy and implements the
// contract methods that do not differ between them. The concrete doCompile
// is wired in by each strategy's constructor.
type base struct {
	block  *manifest.Block
	cfg    *config.Config
	run    runner.Runner
	logger logging.Logger
	do     func(ctx context.Context, current *manifest.Manifest) ([]byte, error)
}

// Block returns the block this compiler was built for.
func (b *base) Block() *manifest.Block {
	return b.block
}

// Kind returns the block kind this strategy handles.
func (b *base) Kind() manifest.Kind {
	return b.block.Kind
}

// NeedsCompile delegates to the manifest staleness check using this block's
// identifier and expected artifact path.
func (b *base) NeedsCompile(ctx context.Context, cached, current *manifest.Manifest) bool {
	compiledPath := b.block.CompiledPath(b.cfg.OutputDir, current)
	return manifest.IsStale(ctx, b.logger, cached, current, b.block.NameHash, compiledPath)
}

// ResolveInputPaths resolves every declared asset reference against the
// static root, failing with one DependencyError that lists all missing paths.
// Resolution happens before any external process is spawned.
func (b *base) ResolveInputPaths() ([]string, error) {
	paths := make([]string, 0, len(b.block.Paths))
	var missing []string
	for _, rel := range b.block.Paths {
		path := manifest.StaticPath(b.cfg.StaticDir, rel)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			missing = append(missing, path)
			continue
		}
		paths = append(paths, path)
	}
	if len(missing) > 0 {
		return nil, forgeerrors.NewDependencyError(b.block.String(), missing)
	}
	return paths, nil
}

// Compile logs the block identity and dispatches to the concrete strategy.
func (b *base) Compile(ctx context.Context, current *manifest.Manifest) ([]byte, error) {
	b.logger.Info(ctx, "compiling block", "block", b.block.String(), "hash", b.block.NameHash)
	return b.do(ctx, current)
}
