package compiler

import (
	"context"

	"github.com/assetforge/assetforge/internal/config"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
	"github.com/assetforge/assetforge/internal/runner"
)

// SassCompiler transpiles SASS sources to CSS and delegates the result into
// the CSS stage. Unlike LESS, the transpiler handles multiple inputs, so the
// whole block goes to a single invocation.
type SassCompiler struct {
	base
	css *CSSCompiler
}

// NewSass creates the SASS strategy for the given block.
func NewSass(block *manifest.Block, cfg *config.Config, run runner.Runner, logger logging.Logger) *SassCompiler {
	c := &SassCompiler{
		base: base{
			block:  block,
			cfg:    cfg,
			run:    run,
			logger: logger.WithComponent("compiler.sass"),
		},
		css: NewCSS(block, cfg, run, logger),
	}
	c.do = c.doCompile
	return c
}

func (c *SassCompiler) doCompile(ctx context.Context, current *manifest.Manifest) ([]byte, error) {
	paths, err := c.ResolveInputPaths()
	if err != nil {
		return nil, err
	}

	args := append([]string{"--compass", "--trace", "-l"}, paths...)
	out, err := c.run.Run(ctx, c.cfg.Tools.SassCompiler, args, nil)
	if err != nil {
		return nil, err
	}
	return c.css.compileCSS(ctx, string(out))
}
