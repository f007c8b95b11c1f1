package manifest

import (
	"path/filepath"
	"regexp"
)

// StaticPath maps a relative static URL to a path under the static root. The
// root is always passed in explicitly; nothing here depends on the process
// working directory.
func StaticPath(staticDir, relPath string) string {
	return filepath.Join(staticDir, relPath)
}

// OutputPath maps a compiled artifact name to a path under the output root.
func OutputPath(outputDir, name string) string {
	return filepath.Join(outputDir, name)
}

// StaticURLPattern builds the pattern matching url() references under the
// static URL prefix. Only url() forms carry asset references we own, so
// vendor constructs like IE filter syntax stay out of scope.
func StaticURLPattern(staticURLPrefix string) *regexp.Regexp {
	return regexp.MustCompile(
		`(url\(["']?)` + regexp.QuoteMeta(staticURLPrefix) + `([^)"'\s]+)(["']?\))`)
}

// CompiledName returns the versioned artifact filename for the block, derived
// from its content hash in the current manifest.
func (b *Block) CompiledName(current *Manifest) string {
	return current.Blocks[b.NameHash].Version + b.Kind.OutputExt()
}

// CompiledPath returns the on-disk destination of the block's compiled
// artifact.
func (b *Block) CompiledPath(outputDir string, current *Manifest) string {
	return OutputPath(outputDir, b.CompiledName(current))
}
