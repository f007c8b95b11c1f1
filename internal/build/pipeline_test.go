package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetforge/assetforge/internal/config"
	forgeerrors "github.com/assetforge/assetforge/internal/errors"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
)

// fakeRunner answers every external-process call with canned minifier output.
type fakeRunner struct {
	fail func(name string) error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	if f.fail != nil {
		if err := f.fail(name); err != nil {
			return nil, err
		}
	}
	return []byte("compiled by " + name), nil
}

func testConfig(t *testing.T) *config.Config {
	staticDir := t.TempDir()
	return &config.Config{
		StaticDir:       staticDir,
		OutputDir:       filepath.Join(staticDir, "assets"),
		StaticURLPrefix: "/static/",
		Tools: config.ToolsConfig{
			Java:            "java",
			ClosureCompiler: "closure.jar",
			CSSMinifier:     "yui.jar",
			LessCompiler:    "lessc",
			SassCompiler:    "sass",
		},
		Build: config.BuildConfig{Workers: 4},
	}
}

func declareBlock(t *testing.T, cfg *config.Config, name string, kind manifest.Kind, files map[string]string) manifest.Block {
	t.Helper()
	paths := make([]string, 0, len(files))
	for rel, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, rel), []byte(content), 0644))
		paths = append(paths, rel)
	}
	b := manifest.Block{Name: name, Kind: kind, Paths: paths}
	b.NameHash = b.ComputeNameHash()
	return b
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("compiles stale blocks and writes artifacts", func(t *testing.T) {
		cfg := testConfig(t)
		blocks := []manifest.Block{
			declareBlock(t, cfg, "app", manifest.KindJS, map[string]string{"app.js": "var x;"}),
			declareBlock(t, cfg, "styles", manifest.KindCSS, map[string]string{"s.css": "a{}"}),
		}
		current, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
		require.NoError(t, err)

		p := NewPipeline(cfg, &fakeRunner{}, logging.NopLogger{})
		results := p.Run(ctx, manifest.New(), current, blocks)

		require.Len(t, results, 2)
		for _, res := range results {
			require.NoError(t, res.Err)
			assert.False(t, res.Skipped)
			assert.FileExists(t, res.OutputPath)
			assert.Equal(t, res.OutputPath, current.Blocks[res.Block.NameHash].CompiledPath)
		}

		snap := p.Metrics().Snapshot()
		assert.EqualValues(t, 2, snap.TotalBlocks)
		assert.EqualValues(t, 2, snap.Compiled)
	})

	t.Run("fresh blocks are skipped without spawning processes", func(t *testing.T) {
		cfg := testConfig(t)
		blocks := []manifest.Block{
			declareBlock(t, cfg, "styles", manifest.KindCSS, map[string]string{"s.css": "a{}"}),
		}
		current, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
		require.NoError(t, err)

		p := NewPipeline(cfg, &fakeRunner{}, logging.NopLogger{})
		first := p.Run(ctx, manifest.New(), current, blocks)
		require.NoError(t, first[0].Err)

		// Second run against the manifest the first run produced.
		second := p.Run(ctx, current, current, blocks)
		require.Len(t, second, 1)
		assert.True(t, second[0].Skipped)
		assert.NoError(t, second[0].Err)

		snap := p.Metrics().Snapshot()
		assert.EqualValues(t, 1, snap.Skipped)
	})

	t.Run("a failing block does not stop the others", func(t *testing.T) {
		cfg := testConfig(t)
		blocks := []manifest.Block{
			declareBlock(t, cfg, "broken", manifest.KindLess, map[string]string{"bad.less": "@;"}),
			declareBlock(t, cfg, "fine", manifest.KindJS, map[string]string{"ok.js": "var y;"}),
		}
		current, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
		require.NoError(t, err)

		run := &fakeRunner{fail: func(name string) error {
			if name == "lessc" {
				return forgeerrors.NewCompileError([]string{"lessc"}, "syntax error", nil)
			}
			return nil
		}}
		p := NewPipeline(cfg, run, logging.NopLogger{})
		results := p.Run(ctx, manifest.New(), current, blocks)

		require.Len(t, results, 2)
		assert.Error(t, results[0].Err)
		assert.True(t, forgeerrors.IsCompileError(results[0].Err))
		assert.NoError(t, results[1].Err)
		assert.FileExists(t, results[1].OutputPath)

		// The failed block keeps no compiled path.
		assert.Empty(t, current.Blocks[blocks[0].NameHash].CompiledPath)

		snap := p.Metrics().Snapshot()
		assert.EqualValues(t, 1, snap.Failed)
		assert.EqualValues(t, 1, snap.Compiled)
	})

	t.Run("edited asset forces a recompile", func(t *testing.T) {
		cfg := testConfig(t)
		blocks := []manifest.Block{
			declareBlock(t, cfg, "styles", manifest.KindCSS, map[string]string{"s.css": "a{}"}),
		}
		current, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
		require.NoError(t, err)

		p := NewPipeline(cfg, &fakeRunner{}, logging.NopLogger{})
		p.Run(ctx, manifest.New(), current, blocks)
		cached := current

		require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "s.css"), []byte("a{color:red}"), 0644))
		fresh, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
		require.NoError(t, err)

		results := p.Run(ctx, cached, fresh, blocks)
		require.Len(t, results, 1)
		assert.False(t, results[0].Skipped)
		assert.NoError(t, results[0].Err)
	})

	t.Run("many blocks build concurrently without losing results", func(t *testing.T) {
		cfg := testConfig(t)
		var blocks []manifest.Block
		for i := 0; i < 16; i++ {
			name := string(rune('a'+i)) + ".js"
			content := "var " + name + ";"
			blocks = append(blocks, declareBlock(t, cfg, name, manifest.KindJS, map[string]string{name: content}))
		}
		current, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
		require.NoError(t, err)

		p := NewPipeline(cfg, &fakeRunner{}, logging.NopLogger{})
		results := p.Run(ctx, manifest.New(), current, blocks)

		require.Len(t, results, 16)
		for i, res := range results {
			assert.Equal(t, blocks[i].NameHash, res.Block.NameHash)
			assert.NoError(t, res.Err)
		}
	})
}
