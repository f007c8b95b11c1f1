package compiler

import (
	"context"
	"strings"

	"github.com/assetforge/assetforge/internal/config"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
	"github.com/assetforge/assetforge/internal/runner"
)

// LessCompiler transpiles LESS sources to CSS and delegates the result into
// the CSS stage. The transpiler cannot batch, so each input file gets its own
// invocation and the outputs are concatenated in input order.
type LessCompiler struct {
	base
	css *CSSCompiler
}

// NewLess creates the LESS strategy for the given block.
func NewLess(block *manifest.Block, cfg *config.Config, run runner.Runner, logger logging.Logger) *LessCompiler {
	c := &LessCompiler{
		base: base{
			block:  block,
			cfg:    cfg,
			run:    run,
			logger: logger.WithComponent("compiler.less"),
		},
		css: NewCSS(block, cfg, run, logger),
	}
	c.do = c.doCompile
	return c
}

func (c *LessCompiler) doCompile(ctx context.Context, current *manifest.Manifest) ([]byte, error) {
	paths, err := c.ResolveInputPaths()
	if err != nil {
		return nil, err
	}

	outputs := make([]string, 0, len(paths))
	for _, path := range paths {
		out, err := c.run.Run(ctx, c.cfg.Tools.LessCompiler, []string{path}, nil)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, string(out))
	}
	return c.css.compileCSS(ctx, strings.Join(outputs, "\n"))
}
