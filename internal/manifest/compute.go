package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sort"

	forgeerrors "github.com/assetforge/assetforge/internal/errors"
)

// ComputeCurrent builds the current manifest for the given blocks by hashing
// every referenced asset file under staticDir. Block entries carry the
// aggregate content hash of their assets; compiled paths are filled in later
// as blocks compile.
//
// A declared asset that does not exist on disk makes the block set malformed;
// all missing paths are collected into one DependencyError.
func ComputeCurrent(staticDir string, blocks []Block) (*Manifest, error) {
	m := New()

	var missing []string
	seen := make(map[string]bool)
	for _, block := range blocks {
		for _, rel := range block.Paths {
			if seen[rel] {
				continue
			}
			seen[rel] = true

			data, err := os.ReadFile(StaticPath(staticDir, rel))
			if err != nil {
				missing = append(missing, rel)
				continue
			}
			sum := sha256.Sum256(data)
			m.Assets[rel] = AssetEntry{Version: hex.EncodeToString(sum[:])}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, forgeerrors.NewDependencyError("current manifest", missing)
	}

	for _, block := range blocks {
		version, err := BlockContentHash(m, block.Paths)
		if err != nil {
			return nil, err
		}
		m.Blocks[block.NameHash] = BlockEntry{Version: version}
	}
	return m, nil
}
