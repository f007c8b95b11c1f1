package compiler

import (
	"context"
	"os"
	"strings"

	"github.com/assetforge/assetforge/internal/config"
	"github.com/assetforge/assetforge/internal/inline"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
	"github.com/assetforge/assetforge/internal/runner"
)

// CSSCompiler minifies a block of CSS. The minifier only reads a single
// stream, so the input files are concatenated in declaration order and piped
// over stdin. Before minification the image inliner rewrites eligible url()
// references, unless inlining is disabled.
//
// The LESS and SASS strategies reuse this stage by handing it pre-compiled
// CSS text, so the minify-and-inline behavior cannot diverge between the
// three CSS-family kinds.
type CSSCompiler struct {
	base
	inliner *inline.Inliner
}

// NewCSS creates the CSS strategy for the given block.
func NewCSS(block *manifest.Block, cfg *config.Config, run runner.Runner, logger logging.Logger) *CSSCompiler {
	c := &CSSCompiler{
		base: base{
			block:  block,
			cfg:    cfg,
			run:    run,
			logger: logger.WithComponent("compiler.css"),
		},
		inliner: inline.New(cfg.StaticDir, cfg.StaticURLPrefix, !cfg.SkipInlineImages, logger),
	}
	c.do = c.doCompile
	return c
}

func (c *CSSCompiler) doCompile(ctx context.Context, current *manifest.Manifest) ([]byte, error) {
	paths, err := c.ResolveInputPaths()
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		contents = append(contents, string(data))
	}
	return c.compileCSS(ctx, strings.Join(contents, "\n"))
}

// compileCSS runs the shared inline-and-minify stage over CSS text, whether
// read from the block's own files or supplied by a delegating strategy.
func (c *CSSCompiler) compileCSS(ctx context.Context, cssInput string) ([]byte, error) {
	inlined, err := c.inliner.Rewrite(ctx, cssInput)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-jar", c.cfg.Tools.CSSMinifier,
		"--type", "css", "--line-break", "160",
	}
	return c.run.Run(ctx, c.cfg.Tools.Java, args, []byte(inlined))
}
