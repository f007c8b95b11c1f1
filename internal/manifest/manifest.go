// Package manifest holds the build-state snapshots the incremental compiler
// works against: asset paths mapped to content versions and block identifiers
// mapped to aggregate content hashes plus compiled-output metadata.
//
// Two manifests exist during a build. The cached manifest is the one persisted
// by the last successful build; the current manifest is computed fresh from
// the present file tree. Both are treated as read-only snapshots while blocks
// compile, so concurrent block builds need no locking.
package manifest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	forgeerrors "github.com/assetforge/assetforge/internal/errors"
	"github.com/assetforge/assetforge/internal/logging"
)

// AssetEntry records the content version of a single source asset.
type AssetEntry struct {
	Version string `json:"version"`
}

// BlockEntry records a block's aggregate content hash and, once compiled,
// where its output artifact was written.
type BlockEntry struct {
	Version      string `json:"version"`
	CompiledPath string `json:"compiled_path,omitempty"`
}

// Manifest is a snapshot of build state.
type Manifest struct {
	Assets map[string]AssetEntry `json:"assets"`
	Blocks map[string]BlockEntry `json:"blocks"`
}

// New returns an empty manifest, as used for the very first build when no
// cached manifest exists yet.
func New() *Manifest {
	return &Manifest{
		Assets: make(map[string]AssetEntry),
		Blocks: make(map[string]BlockEntry),
	}
}

// Load reads a manifest from a JSON file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if m.Assets == nil {
		m.Assets = make(map[string]AssetEntry)
	}
	if m.Blocks == nil {
		m.Blocks = make(map[string]BlockEntry)
	}
	return &m, nil
}

// LoadOrEmpty reads a manifest from disk, returning an empty manifest when
// the file does not exist. First builds run against an empty cache.
func LoadOrEmpty(path string) (*Manifest, error) {
	m, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes the manifest to a JSON file. Persisting the manifest is the
// build driver's job; concurrent builds must serialize their writes.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// IsStale reports whether the block identified by blockID needs to be
// recompiled. It returns false only when the cached manifest knows the block,
// the recorded version matches the current content hash, and the compiled
// artifact still exists at compiledPath. The three stale conditions are
// distinguished in the log stream but collapse to a single boolean.
//
// The current manifest must contain blockID; a missing entry is a programming
// error in the caller and panics.
func IsStale(ctx context.Context, logger logging.Logger, cached, current *Manifest, blockID, compiledPath string) bool {
	cur, ok := current.Blocks[blockID]
	if !ok {
		panic(fmt.Sprintf("manifest: block %s absent from current manifest", blockID))
	}

	prev, ok := cached.Blocks[blockID]
	if !ok {
		logger.Warn(ctx, nil, "new or unknown block hash", "block", blockID)
		return true
	}
	if prev.Version != cur.Version {
		logger.Warn(ctx, nil, "block contents changed", "block", blockID,
			"cached_version", prev.Version, "current_version", cur.Version)
		return true
	}
	if _, err := os.Stat(compiledPath); err != nil {
		logger.Warn(ctx, err, "missing compiled artifact", "block", blockID, "path", compiledPath)
		return true
	}
	return false
}

// BlockContentHash folds the content versions of the given asset paths, in
// order, into a single digest. The result is deterministic for a fixed path
// ordering and changes when the order changes. Paths absent from the
// manifest's asset table produce a DependencyError listing every missing one.
func BlockContentHash(m *Manifest, paths []string) (string, error) {
	h := sha256.New()
	var missing []string
	for _, path := range paths {
		entry, ok := m.Assets[path]
		if !ok {
			missing = append(missing, path)
			continue
		}
		io.WriteString(h, entry.Version)
	}
	if len(missing) > 0 {
		return "", forgeerrors.NewDependencyError("block content hash", missing)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
