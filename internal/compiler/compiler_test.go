package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetforge/assetforge/internal/config"
	forgeerrors "github.com/assetforge/assetforge/internal/errors"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
)

// invocation records one external-process call made through the fake runner.
type invocation struct {
	name  string
	args  []string
	stdin []byte
}

// fakeRunner records invocations and answers them via respond, standing in
// for the external compiler processes.
type fakeRunner struct {
	calls   []invocation
	respond func(name string, args []string, stdin []byte) ([]byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	f.calls = append(f.calls, invocation{name: name, args: args, stdin: stdin})
	if f.respond != nil {
		return f.respond(name, args, stdin)
	}
	return []byte("minified"), nil
}

func testConfig(staticDir string) *config.Config {
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
		Build: config.BuildConfig{Workers: 1},
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func newBlock(kind manifest.Kind, paths ...string) *manifest.Block {
	b := &manifest.Block{Name: "test", Kind: kind, Paths: paths}
	b.NameHash = b.ComputeNameHash()
	return b
}

func TestNewSelectsStrategy(t *testing.T) {
	cfg := testConfig(t.TempDir())
	run := &fakeRunner{}
	logger := logging.NopLogger{}

	for kind, want := range map[manifest.Kind]interface{}{
		manifest.KindJS:   (*JSCompiler)(nil),
		manifest.KindCSS:  (*CSSCompiler)(nil),
		manifest.KindLess: (*LessCompiler)(nil),
		manifest.KindSass: (*SassCompiler)(nil),
	} {
		c, err := New(newBlock(kind, "a"), cfg, run, logger)
		require.NoError(t, err)
		assert.IsType(t, want, c)
		assert.Equal(t, kind, c.Kind())
	}

	_, err := New(newBlock("coffee", "a"), cfg, run, logger)
	assert.Error(t, err)
}

func TestResolveInputPaths(t *testing.T) {
	t.Run("resolves in declaration order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.js", "")
		writeFile(t, dir, "a.js", "")

		c := NewJS(newBlock(manifest.KindJS, "b.js", "a.js"), testConfig(dir), &fakeRunner{}, logging.NopLogger{})
		paths, err := c.ResolveInputPaths()
		require.NoError(t, err)

		assert.Equal(t, []string{
			filepath.Join(dir, "b.js"),
			filepath.Join(dir, "a.js"),
		}, paths)
	})

	t.Run("collects every missing path", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "present.js", "")

		c := NewJS(newBlock(manifest.KindJS, "missing1.js", "present.js", "missing2.js"),
			testConfig(dir), &fakeRunner{}, logging.NopLogger{})
		_, err := c.ResolveInputPaths()

		var de *forgeerrors.DependencyError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, []string{
			filepath.Join(dir, "missing1.js"),
			filepath.Join(dir, "missing2.js"),
		}, de.Missing)
	})

	t.Run("no process spawned on resolution failure", func(t *testing.T) {
		run := &fakeRunner{}
		c := NewJS(newBlock(manifest.KindJS, "gone.js"), testConfig(t.TempDir()), run, logging.NopLogger{})

		_, err := c.Compile(context.Background(), manifest.New())
		require.Error(t, err)
		assert.Empty(t, run.calls)
	})
}

func TestJSCompile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "var a;")
	writeFile(t, dir, "b.js", "var b;")

	run := &fakeRunner{respond: func(name string, args []string, stdin []byte) ([]byte, error) {
		return []byte("compiled js"), nil
	}}
	c := NewJS(newBlock(manifest.KindJS, "a.js", "b.js"), testConfig(dir), run, logging.NopLogger{})

	out, err := c.Compile(context.Background(), manifest.New())
	require.NoError(t, err)
	assert.Equal(t, "compiled js", string(out))

	require.Len(t, run.calls, 1)
	call := run.calls[0]
	assert.Equal(t, "java", call.name)
	assert.Equal(t, []string{
		"-jar", "closure.jar",
		"--compilation_level", "SIMPLE_OPTIMIZATIONS",
		"--js", filepath.Join(dir, "a.js"),
		"--js", filepath.Join(dir, "b.js"),
	}, call.args)
	assert.Nil(t, call.stdin)
}

func TestCSSCompile(t *testing.T) {
	t.Run("concatenates inputs in order and pipes to the minifier", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "one.css", "a{}")
		writeFile(t, dir, "two.css", "b{}")

		run := &fakeRunner{}
		c := NewCSS(newBlock(manifest.KindCSS, "one.css", "two.css"), testConfig(dir), run, logging.NopLogger{})

		_, err := c.Compile(context.Background(), manifest.New())
		require.NoError(t, err)

		require.Len(t, run.calls, 1)
		call := run.calls[0]
		assert.Equal(t, "java", call.name)
		assert.Equal(t, []string{"-jar", "yui.jar", "--type", "css", "--line-break", "160"}, call.args)
		assert.Equal(t, "a{}\nb{}", string(call.stdin))
	})

	t.Run("inlines images before minifying", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "icon.png", "tinypng")
		writeFile(t, dir, "style.css", ".i { background: url(/static/icon.png); }")

		run := &fakeRunner{}
		c := NewCSS(newBlock(manifest.KindCSS, "style.css"), testConfig(dir), run, logging.NopLogger{})

		_, err := c.Compile(context.Background(), manifest.New())
		require.NoError(t, err)

		require.Len(t, run.calls, 1)
		assert.Contains(t, string(run.calls[0].stdin), "data:image/png;base64,")
	})

	t.Run("skip_inline_images disables the inliner", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "style.css", ".i { background: url(/static/never-checked.png); }")

		cfg := testConfig(dir)
		cfg.SkipInlineImages = true
		run := &fakeRunner{}
		c := NewCSS(newBlock(manifest.KindCSS, "style.css"), cfg, run, logging.NopLogger{})

		_, err := c.Compile(context.Background(), manifest.New())
		require.NoError(t, err)

		require.Len(t, run.calls, 1)
		assert.Contains(t, string(run.calls[0].stdin), "url(/static/never-checked.png)")
	})
}

func TestLessCompile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.less", "@c: red; a { color: @c }")
	writeFile(t, dir, "b.less", "@c: blue; b { color: @c }")

	run := &fakeRunner{respond: func(name string, args []string, stdin []byte) ([]byte, error) {
		if name == "lessc" {
			// Transpile one file per invocation.
			return []byte("css-of-" + filepath.Base(args[0])), nil
		}
		return []byte("minified"), nil
	}}
	c := NewLess(newBlock(manifest.KindLess, "a.less", "b.less"), testConfig(dir), run, logging.NopLogger{})

	out, err := c.Compile(context.Background(), manifest.New())
	require.NoError(t, err)
	assert.Equal(t, "minified", string(out))

	// One lessc run per input file, then one minifier run.
	require.Len(t, run.calls, 3)
	assert.Equal(t, "lessc", run.calls[0].name)
	assert.Equal(t, []string{filepath.Join(dir, "a.less")}, run.calls[0].args)
	assert.Equal(t, "lessc", run.calls[1].name)
	assert.Equal(t, []string{filepath.Join(dir, "b.less")}, run.calls[1].args)

	minify := run.calls[2]
	assert.Equal(t, "java", minify.name)
	assert.Equal(t, "css-of-a.less\ncss-of-b.less", string(minify.stdin))
}

func TestSassCompile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sass", "")
	writeFile(t, dir, "b.sass", "")

	run := &fakeRunner{respond: func(name string, args []string, stdin []byte) ([]byte, error) {
		if name == "sass" {
			return []byte("sass-css"), nil
		}
		return []byte("minified"), nil
	}}
	c := NewSass(newBlock(manifest.KindSass, "a.sass", "b.sass"), testConfig(dir), run, logging.NopLogger{})

	out, err := c.Compile(context.Background(), manifest.New())
	require.NoError(t, err)
	assert.Equal(t, "minified", string(out))

	// A single transpiler run covering both inputs, then the minifier.
	require.Len(t, run.calls, 2)
	sassCall := run.calls[0]
	assert.Equal(t, "sass", sassCall.name)
	assert.Equal(t, []string{
		"--compass", "--trace", "-l",
		filepath.Join(dir, "a.sass"),
		filepath.Join(dir, "b.sass"),
	}, sassCall.args)

	assert.Equal(t, "sass-css", string(run.calls[1].stdin))
}

func TestCompileErrorPropagation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.less", "")

	wantErr := forgeerrors.NewCompileError([]string{"lessc"}, "syntax error", errors.New("exit status 1"))
	run := &fakeRunner{respond: func(name string, args []string, stdin []byte) ([]byte, error) {
		return nil, wantErr
	}}
	c := NewLess(newBlock(manifest.KindLess, "a.less"), testConfig(dir), run, logging.NopLogger{})

	_, err := c.Compile(context.Background(), manifest.New())
	require.Error(t, err)
	assert.True(t, forgeerrors.IsCompileError(err))
	// The transpiler failed, so the CSS stage never ran.
	assert.Len(t, run.calls, 1)
}

func TestNeedsCompile(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0755))

	block := newBlock(manifest.KindCSS, "style.css")
	c := NewCSS(block, cfg, &fakeRunner{}, logging.NopLogger{})

	current := manifest.New()
	current.Blocks[block.NameHash] = manifest.BlockEntry{Version: "v1"}

	t.Run("stale when cache is empty", func(t *testing.T) {
		assert.True(t, c.NeedsCompile(context.Background(), manifest.New(), current))
	})

	t.Run("fresh when versions match and artifact exists", func(t *testing.T) {
		artifact := block.CompiledPath(cfg.OutputDir, current)
		require.NoError(t, os.WriteFile(artifact, []byte("x"), 0644))

		cached := manifest.New()
		cached.Blocks[block.NameHash] = manifest.BlockEntry{Version: "v1"}

		assert.False(t, c.NeedsCompile(context.Background(), cached, current))
	})

	t.Run("stale again when version changes", func(t *testing.T) {
		cached := manifest.New()
		cached.Blocks[block.NameHash] = manifest.BlockEntry{Version: "v0"}

		assert.True(t, c.NeedsCompile(context.Background(), cached, current))
	})
}

func TestCSSConcatenationSeparator(t *testing.T) {
	// The minifier input must join files with a single newline even when the
	// sources already end in newlines of their own.
	dir := t.TempDir()
	writeFile(t, dir, "x.css", "x{}\n")
	writeFile(t, dir, "y.css", "y{}\n")

	run := &fakeRunner{}
	c := NewCSS(newBlock(manifest.KindCSS, "x.css", "y.css"), testConfig(dir), run, logging.NopLogger{})

	_, err := c.Compile(context.Background(), manifest.New())
	require.NoError(t, err)
	require.Len(t, run.calls, 1)
	assert.True(t, strings.HasPrefix(string(run.calls[0].stdin), "x{}\n\ny{}\n"))
}
