// Package inline implements the CSS image-inlining pass: eligible url()
// references to static assets are rewritten into base64 data URIs so small
// images ship inside the stylesheet instead of as extra requests.
package inline

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	forgeerrors "github.com/assetforge/assetforge/internal/errors"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
)

const kb = 1024

// MaxFileSize is the largest raw asset we consider for inlining.
const MaxFileSize = 24 * kb

// MaxDataURISize is the encoded ceiling. IE8 rejects URLs of 32KB or more,
// so a data URI that reaches it is left as a plain reference.
const MaxDataURISize = 32 * kb

// Inliner rewrites static-asset url() references in CSS text into data URIs,
// subject to the size thresholds above.
type Inliner struct {
	staticDir string
	enabled   bool
	pattern   *regexp.Regexp
	logger    logging.Logger
}

// New creates an inliner for assets referenced under the given static URL
// prefix and resolved against staticDir. When enabled is false, Rewrite
// returns its input unchanged.
func New(staticDir, staticURLPrefix string, enabled bool, logger logging.Logger) *Inliner {
	return &Inliner{
		staticDir: staticDir,
		enabled:   enabled,
		pattern:   manifest.StaticURLPattern(staticURLPrefix),
		logger:    logger.WithComponent("inline"),
	}
}

// Rewrite scans the CSS source for inlinable url() references and replaces
// each eligible one with a data URI. Oversized assets are skipped and logged
// at debug level; a reference to a file that does not exist on disk fails the
// pass with a DependencyError. Assets inlined more than once get a warning
// after the pass, as a duplication signal.
func (in *Inliner) Rewrite(ctx context.Context, css string) (string, error) {
	if !in.enabled {
		return css, nil
	}

	var missing []string
	inlined := make(map[string]int)

	result := in.pattern.ReplaceAllStringFunc(css, func(match string) string {
		groups := in.pattern.FindStringSubmatch(match)
		before, relPath, after := groups[1], groups[2], groups[3]

		path := manifest.StaticPath(in.staticDir, relPath)
		info, err := os.Stat(path)
		if err != nil {
			missing = append(missing, relPath)
			return match
		}
		if info.Size() > MaxFileSize {
			in.logger.Debug(ctx, "not inlining oversized asset",
				"path", path, "kb", float64(info.Size())/kb)
			return match
		}

		data, err := os.ReadFile(path)
		if err != nil {
			missing = append(missing, relPath)
			return match
		}

		dataURI := fmt.Sprintf("data:%s;base64,%s",
			mimeType(path), base64.StdEncoding.EncodeToString(data))
		if len(dataURI) >= MaxDataURISize {
			in.logger.Debug(ctx, "not inlining asset with oversized data URI",
				"path", path, "encoded_kb", float64(len(dataURI))/kb)
			return match
		}

		inlined[relPath]++
		return before + dataURI + after
	})

	if len(missing) > 0 {
		sort.Strings(missing)
		return "", forgeerrors.NewDependencyError("css url() references", missing)
	}

	for relPath, count := range inlined {
		if count > 1 {
			in.logger.Warn(ctx, nil, "inlined asset duplicated",
				"path", relPath, "count", count)
		}
	}
	return result, nil
}

func mimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
