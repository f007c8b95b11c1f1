package compiler

import (
	"context"

	"github.com/assetforge/assetforge/internal/config"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
	"github.com/assetforge/assetforge/internal/runner"
)

// JSCompiler minifies a block of JavaScript sources with the closure
// compiler. All inputs go to a single invocation; the compiler's stdout is
// the artifact, verbatim.
type JSCompiler struct {
	base
}

// NewJS creates the JS strategy for the given block.
func NewJS(block *manifest.Block, cfg *config.Config, run runner.Runner, logger logging.Logger) *JSCompiler {
	c := &JSCompiler{base: base{
		block:  block,
		cfg:    cfg,
		run:    run,
		logger: logger.WithComponent("compiler.js"),
	}}
	c.do = c.doCompile
	return c
}

func (c *JSCompiler) doCompile(ctx context.Context, current *manifest.Manifest) ([]byte, error) {
	paths, err := c.ResolveInputPaths()
	if err != nil {
		return nil, err
	}

	args := []string{
		"-jar", c.cfg.Tools.ClosureCompiler,
		"--compilation_level", "SIMPLE_OPTIMIZATIONS",
	}
	for _, path := range paths {
		args = append(args, "--js", path)
	}
	return c.run.Run(ctx, c.cfg.Tools.Java, args, nil)
}
